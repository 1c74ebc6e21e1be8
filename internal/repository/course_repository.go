package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/bnu-scit/registrar-api/internal/models"
)

// CourseRepository handles persistence of course offerings.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// List returns all courses ordered by code.
func (r *CourseRepository) List(ctx context.Context) ([]models.Course, error) {
	const query = `SELECT course_code, course_name, credits, semester, department, max_students, prerequisites FROM courses ORDER BY course_code ASC`
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// FindByCode returns a course by its code.
func (r *CourseRepository) FindByCode(ctx context.Context, code string) (*models.Course, error) {
	const query = `SELECT course_code, course_name, credits, semester, department, max_students, prerequisites FROM courses WHERE course_code = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, code); err != nil {
		return nil, err
	}
	return &course, nil
}

// ListUnscheduled returns courses without an active schedule assignment.
func (r *CourseRepository) ListUnscheduled(ctx context.Context) ([]models.CourseOption, error) {
	const query = `SELECT course_code, course_name FROM courses
        WHERE course_code NOT IN (SELECT course_code FROM course_schedule)
        ORDER BY course_code ASC`
	var options []models.CourseOption
	if err := r.db.SelectContext(ctx, &options, query); err != nil {
		return nil, fmt.Errorf("list unscheduled courses: %w", err)
	}
	return options, nil
}

// Create persists a new course record.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	const query = `INSERT INTO courses (course_code, course_name, credits, semester, department, max_students, prerequisites)
        VALUES (:course_code, :course_name, :credits, :semester, :department, :max_students, :prerequisites)`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// Delete removes a course by code.
func (r *CourseRepository) Delete(ctx context.Context, code string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE course_code = $1`, code)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
