package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/bnu-scit/registrar-api/internal/models"
)

// ClassroomRepository handles persistence of classrooms.
type ClassroomRepository struct {
	db *sqlx.DB
}

// NewClassroomRepository constructs the repository.
func NewClassroomRepository(db *sqlx.DB) *ClassroomRepository {
	return &ClassroomRepository{db: db}
}

// List returns all classrooms ordered by building and number.
func (r *ClassroomRepository) List(ctx context.Context) ([]models.Classroom, error) {
	const query = `SELECT room_id, building, room_number, capacity, room_type FROM classrooms ORDER BY building ASC, room_number ASC`
	var rooms []models.Classroom
	if err := r.db.SelectContext(ctx, &rooms, query); err != nil {
		return nil, fmt.Errorf("list classrooms: %w", err)
	}
	return rooms, nil
}

// FindByID returns a classroom by id.
func (r *ClassroomRepository) FindByID(ctx context.Context, id string) (*models.Classroom, error) {
	const query = `SELECT room_id, building, room_number, capacity, room_type FROM classrooms WHERE room_id = $1`
	var room models.Classroom
	if err := r.db.GetContext(ctx, &room, query, id); err != nil {
		return nil, err
	}
	return &room, nil
}

// ListAvailable returns rooms not committed to any schedule in the timeslot.
func (r *ClassroomRepository) ListAvailable(ctx context.Context, timeslotID int64) ([]models.ClassroomOption, error) {
	const query = `SELECT room_id, room_number || ' ' || building AS label FROM classrooms
        WHERE room_id NOT IN (SELECT room_id FROM course_schedule WHERE timeslot_id = $1)
        ORDER BY building ASC, room_number ASC`
	var options []models.ClassroomOption
	if err := r.db.SelectContext(ctx, &options, query, timeslotID); err != nil {
		return nil, fmt.Errorf("list available rooms: %w", err)
	}
	return options, nil
}

// Create persists a new classroom record.
func (r *ClassroomRepository) Create(ctx context.Context, room *models.Classroom) error {
	const query = `INSERT INTO classrooms (room_id, building, room_number, capacity, room_type)
        VALUES (:room_id, :building, :room_number, :capacity, :room_type)`
	if _, err := r.db.NamedExecContext(ctx, query, room); err != nil {
		return fmt.Errorf("create classroom: %w", err)
	}
	return nil
}

// Delete removes a classroom by id.
func (r *ClassroomRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM classrooms WHERE room_id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete classroom: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
