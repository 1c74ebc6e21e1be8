package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/bnu-scit/registrar-api/internal/models"
)

// StudentRepository handles persistence of students.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs the repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students filtered by the provided criteria.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	base := "FROM students"
	var conditions []string
	var args []interface{}

	if filter.Degree != "" {
		conditions = append(conditions, fmt.Sprintf("degree = $%d", len(args)+1))
		args = append(args, filter.Degree)
	}
	if filter.Semester > 0 {
		conditions = append(conditions, fmt.Sprintf("semester = $%d", len(args)+1))
		args = append(args, filter.Semester)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(first_name ILIKE $%d OR last_name ILIKE $%d OR email ILIKE $%d)", len(args)+1, len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]bool{
		"student_id": true,
		"last_name":  true,
		"semester":   true,
		"created_at": true,
	}
	sortBy := filter.SortBy
	if !allowedSorts[sortBy] {
		sortBy = "student_id"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT student_id, first_name, last_name, email, degree, semester, password_hash, created_at
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, base+clause, sortBy, order, size, offset)

	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// FindByID returns a student by its identifier.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	const query = `SELECT student_id, first_name, last_name, email, degree, semester, password_hash, created_at FROM students WHERE student_id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// Create persists a new student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.CreatedAt.IsZero() {
		student.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO students (student_id, first_name, last_name, email, degree, semester, password_hash, created_at)
        VALUES (:student_id, :first_name, :last_name, :email, :degree, :semester, :password_hash, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// UpdatePassword replaces the stored credential hash.
func (r *StudentRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE students SET password_hash = $2 WHERE student_id = $1`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update student password: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a student by id.
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM students WHERE student_id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
