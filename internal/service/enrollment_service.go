package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/bnu-scit/registrar-api/internal/models"
	appErrors "github.com/bnu-scit/registrar-api/pkg/errors"
)

type enrollmentRepository interface {
	CreateGuarded(ctx context.Context, enrollment *models.Enrollment) error
	Delete(ctx context.Context, studentID string, scheduleID int64) error
	CountBySchedule(ctx context.Context, scheduleID int64) (int, error)
	CountByCourse(ctx context.Context, courseCode string) (int, error)
	ListDetailedByStudent(ctx context.Context, studentID string) ([]models.ScheduleDetail, error)
	RosterByCourse(ctx context.Context, courseCode string) ([]models.RosterEntry, error)
	ListCoursesByStudent(ctx context.Context, studentID string) ([]models.CourseOption, error)
}

type studentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

// EnrollRequest describes an enrollment attempt.
type EnrollRequest struct {
	StudentID  string `json:"student_id" validate:"required"`
	ScheduleID int64  `json:"schedule_id" validate:"required"`
}

// EnrollmentService admits and withdraws students from scheduled sections.
// All admission invariants are re-checked inside the repository transaction;
// this layer resolves entities, maps errors and records metrics.
type EnrollmentService struct {
	repo      enrollmentRepository
	students  studentReader
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(repo enrollmentRepository, students studentReader, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{repo: repo, students: students, metrics: metrics, validator: validate, logger: logger}
}

// Enroll admits a student into a scheduled section. Checks run in order and
// short-circuit: schedule exists, not already enrolled, no timeslot clash,
// seat available.
func (s *EnrollmentService) Enroll(ctx context.Context, req EnrollRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}
	if _, err := s.students.FindByID(ctx, req.StudentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load student")
	}

	enrollment := &models.Enrollment{StudentID: req.StudentID, ScheduleID: req.ScheduleID}
	if err := s.repo.CreateGuarded(ctx, enrollment); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			s.metrics.RecordEnrollmentRejection("schedule_missing")
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		case appErrors.HasCode(err, appErrors.ErrAlreadyEnrolled):
			s.metrics.RecordEnrollmentRejection("already_enrolled")
			return nil, err
		case appErrors.HasCode(err, appErrors.ErrTimeslotClash):
			s.metrics.RecordEnrollmentRejection("timeslot_clash")
			return nil, err
		case appErrors.HasCode(err, appErrors.ErrCapacityFull):
			s.metrics.RecordEnrollmentRejection("capacity_full")
			return nil, err
		default:
			return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to enroll student")
		}
	}

	s.metrics.RecordEnrollment()
	s.logger.Info("student enrolled", zap.String("student_id", req.StudentID), zap.Int64("schedule_id", req.ScheduleID))
	return enrollment, nil
}

// Withdraw removes the student's enrollment. A second withdrawal of the
// same pair reports NOT_ENROLLED rather than failing hard.
func (s *EnrollmentService) Withdraw(ctx context.Context, studentID string, scheduleID int64) error {
	if err := s.repo.Delete(ctx, studentID, scheduleID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotEnrolled, "")
		}
		return appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to withdraw student")
	}
	s.logger.Info("student withdrawn", zap.String("student_id", studentID), zap.Int64("schedule_id", scheduleID))
	return nil
}

// StudentTimetable returns the sections a student is enrolled in.
func (s *EnrollmentService) StudentTimetable(ctx context.Context, studentID string) ([]models.ScheduleDetail, error) {
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load student")
	}
	details, err := s.repo.ListDetailedByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load enrollments")
	}
	return details, nil
}

// StudentCourses returns the distinct courses a student is enrolled in.
func (s *EnrollmentService) StudentCourses(ctx context.Context, studentID string) ([]models.CourseOption, error) {
	options, err := s.repo.ListCoursesByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to list student courses")
	}
	return options, nil
}

// Roster returns the distinct students enrolled in a course.
func (s *EnrollmentService) Roster(ctx context.Context, courseCode string) ([]models.RosterEntry, error) {
	roster, err := s.repo.RosterByCourse(ctx, courseCode)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load roster")
	}
	return roster, nil
}

// EnrolledCount returns the distinct students enrolled in a course.
func (s *EnrollmentService) EnrolledCount(ctx context.Context, courseCode string) (int, error) {
	count, err := s.repo.CountByCourse(ctx, courseCode)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to count enrollments")
	}
	return count, nil
}

// SeatsTaken returns the occupied seats in one section.
func (s *EnrollmentService) SeatsTaken(ctx context.Context, scheduleID int64) (int, error) {
	count, err := s.repo.CountBySchedule(ctx, scheduleID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to count seats")
	}
	return count, nil
}
