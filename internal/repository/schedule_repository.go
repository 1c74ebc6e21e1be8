package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/bnu-scit/registrar-api/internal/models"
)

// ScheduleRepository provides persistence for course schedule assignments.
// Deleting a schedule goes through DeleteCascade only; no bare delete is
// exposed, so enrollments can never be orphaned.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository creates a new schedule repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

const scheduleDetailColumns = `cs.schedule_id, cs.course_code, c.course_name, c.department, c.semester,
        cs.faculty_id, f.first_name || ' ' || f.last_name AS faculty_name,
        cs.timeslot_id, t.day_of_week, CAST(t.start_time AS TEXT) AS start_time, CAST(t.end_time AS TEXT) AS end_time,
        cs.room_id, cl.room_number, cl.building`

const scheduleDetailJoins = `FROM course_schedule cs
        JOIN courses c ON cs.course_code = c.course_code
        JOIN faculty f ON cs.faculty_id = f.faculty_id
        JOIN timeslots t ON cs.timeslot_id = t.timeslot_id
        JOIN classrooms cl ON cs.room_id = cl.room_id`

// FindByID loads a schedule assignment by id.
func (r *ScheduleRepository) FindByID(ctx context.Context, id int64) (*models.CourseSchedule, error) {
	const query = `SELECT schedule_id, course_code, faculty_id, timeslot_id, room_id, created_at FROM course_schedule WHERE schedule_id = $1`
	var sched models.CourseSchedule
	if err := r.db.GetContext(ctx, &sched, query, id); err != nil {
		return nil, err
	}
	return &sched, nil
}

// ListDetailed returns all schedule assignments with joined entity info.
func (r *ScheduleRepository) ListDetailed(ctx context.Context) ([]models.ScheduleDetail, error) {
	query := fmt.Sprintf(`SELECT %s %s ORDER BY cs.schedule_id ASC`, scheduleDetailColumns, scheduleDetailJoins)
	var details []models.ScheduleDetail
	if err := r.db.SelectContext(ctx, &details, query); err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	return details, nil
}

// ListDetailedByFaculty returns the timetable for one faculty member.
func (r *ScheduleRepository) ListDetailedByFaculty(ctx context.Context, facultyID int64) ([]models.ScheduleDetail, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE cs.faculty_id = $1 ORDER BY cs.schedule_id ASC`, scheduleDetailColumns, scheduleDetailJoins)
	var details []models.ScheduleDetail
	if err := r.db.SelectContext(ctx, &details, query, facultyID); err != nil {
		return nil, fmt.Errorf("list faculty timetable: %w", err)
	}
	return details, nil
}

// ListDetailedForCatalog returns scheduled courses matching a student's
// semester and degree, the view students pick sections from.
func (r *ScheduleRepository) ListDetailedForCatalog(ctx context.Context, semester int, degree string) ([]models.ScheduleDetail, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE c.semester = $1 AND c.department = $2 ORDER BY cs.schedule_id ASC`, scheduleDetailColumns, scheduleDetailJoins)
	var details []models.ScheduleDetail
	if err := r.db.SelectContext(ctx, &details, query, semester, degree); err != nil {
		return nil, fmt.Errorf("list catalog schedules: %w", err)
	}
	return details, nil
}

// ListCoursesByFaculty returns the distinct courses a faculty member teaches.
func (r *ScheduleRepository) ListCoursesByFaculty(ctx context.Context, facultyID int64) ([]models.CourseOption, error) {
	const query = `SELECT DISTINCT cs.course_code, c.course_name FROM course_schedule cs
        JOIN courses c ON cs.course_code = c.course_code
        WHERE cs.faculty_id = $1 ORDER BY cs.course_code ASC`
	var options []models.CourseOption
	if err := r.db.SelectContext(ctx, &options, query, facultyID); err != nil {
		return nil, fmt.Errorf("list faculty courses: %w", err)
	}
	return options, nil
}

// ListAvailableFaculty returns faculty not committed to any schedule in the
// timeslot.
func (r *ScheduleRepository) ListAvailableFaculty(ctx context.Context, timeslotID int64) ([]models.FacultyOption, error) {
	const query = `SELECT faculty_id, first_name || ' ' || last_name AS name FROM faculty
        WHERE faculty_id NOT IN (SELECT faculty_id FROM course_schedule WHERE timeslot_id = $1)
        ORDER BY faculty_id ASC`
	var options []models.FacultyOption
	if err := r.db.SelectContext(ctx, &options, query, timeslotID); err != nil {
		return nil, fmt.Errorf("list available faculty: %w", err)
	}
	return options, nil
}

// CreateExclusive inserts a schedule assignment after re-validating, inside
// one transaction, that the course is unscheduled and that neither the
// faculty member nor the room is committed to the timeslot. Availability
// computed by the caller may be stale; the parent rows are locked so two
// assigners cannot both pass validation. A unique-index violation from a
// racing commit is reported as the same conflict.
func (r *ScheduleRepository) CreateExclusive(ctx context.Context, sched *models.CourseSchedule) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schedule assignment: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var locked string
	if err = tx.GetContext(ctx, &locked, `SELECT course_code FROM courses WHERE course_code = $1 FOR UPDATE`, sched.CourseCode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sql.ErrNoRows
		}
		return fmt.Errorf("lock course: %w", err)
	}
	var lockedFaculty int64
	if err = tx.GetContext(ctx, &lockedFaculty, `SELECT faculty_id FROM faculty WHERE faculty_id = $1 FOR UPDATE`, sched.FacultyID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sql.ErrNoRows
		}
		return fmt.Errorf("lock faculty: %w", err)
	}
	if err = tx.GetContext(ctx, &locked, `SELECT room_id FROM classrooms WHERE room_id = $1 FOR UPDATE`, sched.RoomID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sql.ErrNoRows
		}
		return fmt.Errorf("lock classroom: %w", err)
	}
	var timeslotExists int
	if err = tx.GetContext(ctx, &timeslotExists, `SELECT 1 FROM timeslots WHERE timeslot_id = $1`, sched.TimeslotID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sql.ErrNoRows
		}
		return fmt.Errorf("check timeslot: %w", err)
	}

	if err = r.checkExclusive(ctx, tx, sched); err != nil {
		return err
	}

	const insertQuery = `INSERT INTO course_schedule (course_code, faculty_id, timeslot_id, room_id, created_at)
        VALUES ($1, $2, $3, $4, $5) RETURNING schedule_id`
	now := time.Now().UTC()
	if err = tx.GetContext(ctx, &sched.ID, insertQuery, sched.CourseCode, sched.FacultyID, sched.TimeslotID, sched.RoomID, now); err != nil {
		if isUniqueViolation(err) {
			err = &models.ScheduleConflictError{
				Message: "schedule assignment lost a concurrent race",
				Conflict: models.ScheduleConflict{
					Dimension:  models.ConflictDimensionCourse,
					CourseCode: sched.CourseCode,
					TimeslotID: sched.TimeslotID,
				},
			}
			return err
		}
		return fmt.Errorf("insert schedule: %w", err)
	}
	sched.CreatedAt = now

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit schedule assignment: %w", err)
	}
	return nil
}

func (r *ScheduleRepository) checkExclusive(ctx context.Context, tx *sqlx.Tx, sched *models.CourseSchedule) error {
	type existing struct {
		ScheduleID int64  `db:"schedule_id"`
		CourseCode string `db:"course_code"`
		TimeslotID int64  `db:"timeslot_id"`
	}

	conflict := func(dimension string, row existing) error {
		return &models.ScheduleConflictError{
			Message: fmt.Sprintf("%s already committed to a schedule", dimension),
			Conflict: models.ScheduleConflict{
				Dimension:  dimension,
				ScheduleID: row.ScheduleID,
				CourseCode: row.CourseCode,
				TimeslotID: row.TimeslotID,
			},
		}
	}

	var row existing
	err := tx.GetContext(ctx, &row, `SELECT schedule_id, course_code, timeslot_id FROM course_schedule WHERE course_code = $1`, sched.CourseCode)
	if err == nil {
		return conflict(models.ConflictDimensionCourse, row)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("check course assignment: %w", err)
	}

	err = tx.GetContext(ctx, &row, `SELECT schedule_id, course_code, timeslot_id FROM course_schedule WHERE faculty_id = $1 AND timeslot_id = $2`, sched.FacultyID, sched.TimeslotID)
	if err == nil {
		return conflict(models.ConflictDimensionFaculty, row)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("check faculty availability: %w", err)
	}

	err = tx.GetContext(ctx, &row, `SELECT schedule_id, course_code, timeslot_id FROM course_schedule WHERE room_id = $1 AND timeslot_id = $2`, sched.RoomID, sched.TimeslotID)
	if err == nil {
		return conflict(models.ConflictDimensionRoom, row)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("check room availability: %w", err)
	}

	return nil
}

// DeleteCascade removes all enrollments referencing the schedule and then
// the schedule row itself, in that order, as one transaction. Returns
// sql.ErrNoRows without side effects when the schedule does not exist.
func (r *ScheduleRepository) DeleteCascade(ctx context.Context, scheduleID int64) (removedEnrollments int64, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin schedule removal: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var id int64
	if err = tx.GetContext(ctx, &id, `SELECT schedule_id FROM course_schedule WHERE schedule_id = $1 FOR UPDATE`, scheduleID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, sql.ErrNoRows
		}
		return 0, fmt.Errorf("lock schedule: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM enrollments WHERE schedule_id = $1`, scheduleID)
	if err != nil {
		return 0, fmt.Errorf("delete schedule enrollments: %w", err)
	}
	removedEnrollments, _ = res.RowsAffected()

	if _, err = tx.ExecContext(ctx, `DELETE FROM course_schedule WHERE schedule_id = $1`, scheduleID); err != nil {
		return 0, fmt.Errorf("delete schedule: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit schedule removal: %w", err)
	}
	return removedEnrollments, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
