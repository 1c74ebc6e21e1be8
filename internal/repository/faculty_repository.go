package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/bnu-scit/registrar-api/internal/models"
)

// FacultyRepository handles persistence of faculty members.
type FacultyRepository struct {
	db *sqlx.DB
}

// NewFacultyRepository constructs the repository.
func NewFacultyRepository(db *sqlx.DB) *FacultyRepository {
	return &FacultyRepository{db: db}
}

const facultyColumns = `faculty_id, first_name, last_name, email, degree, qualification, expertise_sub, designation, password_hash, created_at`

// List returns all faculty ordered by name.
func (r *FacultyRepository) List(ctx context.Context) ([]models.Faculty, error) {
	query := fmt.Sprintf(`SELECT %s FROM faculty ORDER BY last_name ASC, first_name ASC`, facultyColumns)
	var faculty []models.Faculty
	if err := r.db.SelectContext(ctx, &faculty, query); err != nil {
		return nil, fmt.Errorf("list faculty: %w", err)
	}
	return faculty, nil
}

// FindByID returns a faculty member by id.
func (r *FacultyRepository) FindByID(ctx context.Context, id int64) (*models.Faculty, error) {
	query := fmt.Sprintf(`SELECT %s FROM faculty WHERE faculty_id = $1`, facultyColumns)
	var faculty models.Faculty
	if err := r.db.GetContext(ctx, &faculty, query, id); err != nil {
		return nil, err
	}
	return &faculty, nil
}

// FindByEmail returns a faculty member by email.
func (r *FacultyRepository) FindByEmail(ctx context.Context, email string) (*models.Faculty, error) {
	query := fmt.Sprintf(`SELECT %s FROM faculty WHERE email = $1`, facultyColumns)
	var faculty models.Faculty
	if err := r.db.GetContext(ctx, &faculty, query, email); err != nil {
		return nil, err
	}
	return &faculty, nil
}

// Create persists a new faculty record.
func (r *FacultyRepository) Create(ctx context.Context, faculty *models.Faculty) error {
	if faculty.CreatedAt.IsZero() {
		faculty.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO faculty (faculty_id, first_name, last_name, email, degree, qualification, expertise_sub, designation, password_hash, created_at)
        VALUES (:faculty_id, :first_name, :last_name, :email, :degree, :qualification, :expertise_sub, :designation, :password_hash, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, faculty); err != nil {
		return fmt.Errorf("create faculty: %w", err)
	}
	return nil
}

// UpdatePassword replaces the stored credential hash.
func (r *FacultyRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE faculty SET password_hash = $2 WHERE faculty_id = $1`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update faculty password: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a faculty member by id.
func (r *FacultyRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM faculty WHERE faculty_id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete faculty: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
