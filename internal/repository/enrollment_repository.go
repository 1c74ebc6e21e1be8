package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/bnu-scit/registrar-api/internal/models"
	appErrors "github.com/bnu-scit/registrar-api/pkg/errors"
)

// EnrollmentRepository handles persistence of enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// CreateGuarded inserts an enrollment after running the admission checks
// inside one transaction: the schedule exists, the student is not already
// enrolled in it, holds no other enrollment in the same timeslot, and the
// section still has a free seat. The student row is locked so concurrent
// enrollments by the same student serialize even across different
// schedules sharing a timeslot, and the schedule row is locked so two
// concurrent enrollments cannot both observe the last seat as free.
// Failed checks surface as the typed errors from pkg/errors.
func (r *EnrollmentRepository) CreateGuarded(ctx context.Context, enrollment *models.Enrollment) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin enrollment: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// Student lock comes first. The clash COUNT below reads a snapshot
	// that cannot see another transaction's uncommitted enrollment, so
	// without this lock two enrollments into different schedules in the
	// same timeslot would both pass the clash check and both commit.
	var lockedStudent string
	if err = tx.GetContext(ctx, &lockedStudent, `SELECT student_id FROM students WHERE student_id = $1 FOR UPDATE`, enrollment.StudentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sql.ErrNoRows
		}
		return fmt.Errorf("lock student for enrollment: %w", err)
	}

	var section struct {
		CourseCode  string `db:"course_code"`
		TimeslotID  int64  `db:"timeslot_id"`
		MaxStudents int    `db:"max_students"`
	}
	const sectionQuery = `SELECT cs.course_code, cs.timeslot_id, c.max_students
        FROM course_schedule cs
        JOIN courses c ON cs.course_code = c.course_code
        WHERE cs.schedule_id = $1 FOR UPDATE OF cs`
	if err = tx.GetContext(ctx, &section, sectionQuery, enrollment.ScheduleID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sql.ErrNoRows
		}
		return fmt.Errorf("lock schedule for enrollment: %w", err)
	}

	var exists int
	err = tx.GetContext(ctx, &exists, `SELECT 1 FROM enrollments WHERE student_id = $1 AND schedule_id = $2`, enrollment.StudentID, enrollment.ScheduleID)
	if err == nil {
		err = appErrors.Clone(appErrors.ErrAlreadyEnrolled, "")
		return err
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("check existing enrollment: %w", err)
	}

	var clashes int
	const clashQuery = `SELECT COUNT(*) FROM enrollments e
        JOIN course_schedule cs ON e.schedule_id = cs.schedule_id
        WHERE e.student_id = $1 AND cs.timeslot_id = $2`
	if err = tx.GetContext(ctx, &clashes, clashQuery, enrollment.StudentID, section.TimeslotID); err != nil {
		return fmt.Errorf("check timeslot clash: %w", err)
	}
	if clashes > 0 {
		err = appErrors.Clone(appErrors.ErrTimeslotClash, "")
		return err
	}

	var enrolled int
	if err = tx.GetContext(ctx, &enrolled, `SELECT COUNT(*) FROM enrollments WHERE schedule_id = $1`, enrollment.ScheduleID); err != nil {
		return fmt.Errorf("count enrollments: %w", err)
	}
	if enrolled >= section.MaxStudents {
		err = appErrors.Clone(appErrors.ErrCapacityFull, "")
		return err
	}

	now := time.Now().UTC()
	if _, err = tx.ExecContext(ctx, `INSERT INTO enrollments (student_id, schedule_id, enrolled_at) VALUES ($1, $2, $3)`, enrollment.StudentID, enrollment.ScheduleID, now); err != nil {
		if isUniqueViolation(err) {
			err = appErrors.Clone(appErrors.ErrAlreadyEnrolled, "")
			return err
		}
		return fmt.Errorf("insert enrollment: %w", err)
	}
	enrollment.EnrolledAt = now

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit enrollment: %w", err)
	}
	return nil
}

// Delete removes the (student, schedule) enrollment row. Returns
// sql.ErrNoRows when no row matched so a second withdrawal is reported, not
// crashed on.
func (r *EnrollmentRepository) Delete(ctx context.Context, studentID string, scheduleID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM enrollments WHERE student_id = $1 AND schedule_id = $2`, studentID, scheduleID)
	if err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Exists reports whether the (student, schedule) enrollment is present.
func (r *EnrollmentRepository) Exists(ctx context.Context, studentID string, scheduleID int64) (bool, error) {
	var exists int
	err := r.db.GetContext(ctx, &exists, `SELECT 1 FROM enrollments WHERE student_id = $1 AND schedule_id = $2`, studentID, scheduleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return true, nil
}

// CountBySchedule returns the number of seats taken in a section.
func (r *EnrollmentRepository) CountBySchedule(ctx context.Context, scheduleID int64) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM enrollments WHERE schedule_id = $1`, scheduleID); err != nil {
		return 0, fmt.Errorf("count schedule enrollments: %w", err)
	}
	return count, nil
}

// CountByCourse returns the distinct students enrolled across all sections
// of a course.
func (r *EnrollmentRepository) CountByCourse(ctx context.Context, courseCode string) (int, error) {
	const query = `SELECT COUNT(DISTINCT e.student_id) FROM enrollments e
        JOIN course_schedule cs ON e.schedule_id = cs.schedule_id
        WHERE cs.course_code = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, courseCode); err != nil {
		return 0, fmt.Errorf("count course enrollments: %w", err)
	}
	return count, nil
}

// ListDetailedByStudent returns a student's enrolled sections with joined
// course, faculty, timeslot and room info.
func (r *EnrollmentRepository) ListDetailedByStudent(ctx context.Context, studentID string) ([]models.ScheduleDetail, error) {
	query := fmt.Sprintf(`SELECT %s FROM enrollments e
        JOIN course_schedule cs ON e.schedule_id = cs.schedule_id
        JOIN courses c ON cs.course_code = c.course_code
        JOIN faculty f ON cs.faculty_id = f.faculty_id
        JOIN timeslots t ON cs.timeslot_id = t.timeslot_id
        JOIN classrooms cl ON cs.room_id = cl.room_id
        WHERE e.student_id = $1 ORDER BY cs.schedule_id ASC`, scheduleDetailColumns)
	var details []models.ScheduleDetail
	if err := r.db.SelectContext(ctx, &details, query, studentID); err != nil {
		return nil, fmt.Errorf("list student enrollments: %w", err)
	}
	return details, nil
}

// RosterByCourse returns the distinct students enrolled in any section of a
// course.
func (r *EnrollmentRepository) RosterByCourse(ctx context.Context, courseCode string) ([]models.RosterEntry, error) {
	const query = `SELECT DISTINCT s.student_id, s.first_name, s.last_name, s.email, s.semester, s.degree
        FROM enrollments e
        JOIN students s ON e.student_id = s.student_id
        JOIN course_schedule cs ON e.schedule_id = cs.schedule_id
        WHERE cs.course_code = $1 ORDER BY s.student_id ASC`
	var roster []models.RosterEntry
	if err := r.db.SelectContext(ctx, &roster, query, courseCode); err != nil {
		return nil, fmt.Errorf("list course roster: %w", err)
	}
	return roster, nil
}

// ListCoursesByStudent returns the distinct courses a student is enrolled in.
func (r *EnrollmentRepository) ListCoursesByStudent(ctx context.Context, studentID string) ([]models.CourseOption, error) {
	const query = `SELECT DISTINCT c.course_code, c.course_name FROM enrollments e
        JOIN course_schedule cs ON e.schedule_id = cs.schedule_id
        JOIN courses c ON cs.course_code = c.course_code
        WHERE e.student_id = $1 ORDER BY c.course_code ASC`
	var options []models.CourseOption
	if err := r.db.SelectContext(ctx, &options, query, studentID); err != nil {
		return nil, fmt.Errorf("list student courses: %w", err)
	}
	return options, nil
}
