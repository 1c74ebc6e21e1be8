package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/bnu-scit/registrar-api/internal/models"
)

// MarkRepository handles persistence of gradebook marks.
type MarkRepository struct {
	db *sqlx.DB
}

// NewMarkRepository constructs the repository.
func NewMarkRepository(db *sqlx.DB) *MarkRepository {
	return &MarkRepository{db: db}
}

// Upsert inserts or replaces the mark for (course, student, assignment).
func (r *MarkRepository) Upsert(ctx context.Context, mark *models.Mark) error {
	const query = `INSERT INTO marks (course_code, student_id, assignment_name, total_marks, obtained_marks)
        VALUES (:course_code, :student_id, :assignment_name, :total_marks, :obtained_marks)
        ON CONFLICT (course_code, student_id, assignment_name)
        DO UPDATE SET total_marks = EXCLUDED.total_marks, obtained_marks = EXCLUDED.obtained_marks`
	if _, err := r.db.NamedExecContext(ctx, query, mark); err != nil {
		return fmt.Errorf("upsert mark: %w", err)
	}
	return nil
}

// UpdateObtained updates the obtained score for an existing mark.
func (r *MarkRepository) UpdateObtained(ctx context.Context, courseCode, studentID, assignmentName string, obtained int) error {
	const query = `UPDATE marks SET obtained_marks = $4 WHERE course_code = $1 AND student_id = $2 AND assignment_name = $3`
	res, err := r.db.ExecContext(ctx, query, courseCode, studentID, assignmentName, obtained)
	if err != nil {
		return fmt.Errorf("update mark: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListAssignments returns the distinct assignment names for a course.
func (r *MarkRepository) ListAssignments(ctx context.Context, courseCode string) ([]string, error) {
	const query = `SELECT DISTINCT assignment_name FROM marks WHERE course_code = $1 ORDER BY assignment_name ASC`
	var assignments []string
	if err := r.db.SelectContext(ctx, &assignments, query, courseCode); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return assignments, nil
}

// ListByAssignment returns all marks for one assignment in a course.
func (r *MarkRepository) ListByAssignment(ctx context.Context, courseCode, assignmentName string) ([]models.Mark, error) {
	const query = `SELECT course_code, student_id, assignment_name, total_marks, obtained_marks
        FROM marks WHERE course_code = $1 AND assignment_name = $2 ORDER BY student_id ASC`
	var marks []models.Mark
	if err := r.db.SelectContext(ctx, &marks, query, courseCode, assignmentName); err != nil {
		return nil, fmt.Errorf("list assignment marks: %w", err)
	}
	return marks, nil
}

// ListByStudent returns a student's marks, optionally narrowed to a course.
func (r *MarkRepository) ListByStudent(ctx context.Context, studentID, courseCode string) ([]models.MarkDetail, error) {
	query := `SELECT m.course_code, m.student_id, m.assignment_name, m.total_marks, m.obtained_marks, c.course_name
        FROM marks m
        JOIN courses c ON m.course_code = c.course_code
        WHERE m.student_id = $1`
	args := []interface{}{studentID}
	if courseCode != "" {
		query += " AND m.course_code = $2"
		args = append(args, courseCode)
	}
	query += " ORDER BY m.assignment_name ASC"

	var marks []models.MarkDetail
	if err := r.db.SelectContext(ctx, &marks, query, args...); err != nil {
		return nil, fmt.Errorf("list student marks: %w", err)
	}
	return marks, nil
}
