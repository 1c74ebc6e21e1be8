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

type scheduleRepository interface {
	FindByID(ctx context.Context, id int64) (*models.CourseSchedule, error)
	ListDetailed(ctx context.Context) ([]models.ScheduleDetail, error)
	ListDetailedByFaculty(ctx context.Context, facultyID int64) ([]models.ScheduleDetail, error)
	ListCoursesByFaculty(ctx context.Context, facultyID int64) ([]models.CourseOption, error)
	CreateExclusive(ctx context.Context, sched *models.CourseSchedule) error
	DeleteCascade(ctx context.Context, scheduleID int64) (int64, error)
}

type courseReader interface {
	FindByCode(ctx context.Context, code string) (*models.Course, error)
}

type facultyReader interface {
	FindByID(ctx context.Context, id int64) (*models.Faculty, error)
}

type classroomReader interface {
	FindByID(ctx context.Context, id string) (*models.Classroom, error)
}

type timeslotReader interface {
	FindByID(ctx context.Context, id int64) (*models.Timeslot, error)
}

type catalogInvalidator interface {
	InvalidateCatalog(ctx context.Context)
}

// AssignScheduleRequest describes a schedule assignment.
type AssignScheduleRequest struct {
	CourseCode string `json:"course_code" validate:"required"`
	FacultyID  int64  `json:"faculty_id" validate:"required"`
	TimeslotID int64  `json:"timeslot_id" validate:"required"`
	RoomID     string `json:"room_id" validate:"required"`
}

// RemoveScheduleResult reports what a cascade removal deleted.
type RemoveScheduleResult struct {
	ScheduleID         int64 `json:"schedule_id"`
	RemovedEnrollments int64 `json:"removed_enrollments"`
}

// ScheduleService binds unscheduled courses to (faculty, timeslot, room)
// triples and is the only sanctioned removal path for schedules.
type ScheduleService struct {
	repo      scheduleRepository
	courses   courseReader
	faculty   facultyReader
	rooms     classroomReader
	timeslots timeslotReader
	catalog   catalogInvalidator
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScheduleService constructs ScheduleService.
func NewScheduleService(repo scheduleRepository, courses courseReader, faculty facultyReader, rooms classroomReader, timeslots timeslotReader, catalog catalogInvalidator, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{repo: repo, courses: courses, faculty: faculty, rooms: rooms, timeslots: timeslots, catalog: catalog, metrics: metrics, validator: validate, logger: logger}
}

// List returns every schedule assignment with joined detail.
func (s *ScheduleService) List(ctx context.Context) ([]models.ScheduleDetail, error) {
	details, err := s.repo.ListDetailed(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to list schedules")
	}
	return details, nil
}

// Get returns one schedule assignment.
func (s *ScheduleService) Get(ctx context.Context, id int64) (*models.CourseSchedule, error) {
	sched, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load schedule")
	}
	return sched, nil
}

// FacultyTimetable returns the schedules taught by one faculty member.
func (s *ScheduleService) FacultyTimetable(ctx context.Context, facultyID int64) ([]models.ScheduleDetail, error) {
	if _, err := s.faculty.FindByID(ctx, facultyID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "faculty not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load faculty")
	}
	details, err := s.repo.ListDetailedByFaculty(ctx, facultyID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load timetable")
	}
	return details, nil
}

// FacultyCourses returns the distinct courses a faculty member teaches.
func (s *ScheduleService) FacultyCourses(ctx context.Context, facultyID int64) ([]models.CourseOption, error) {
	options, err := s.repo.ListCoursesByFaculty(ctx, facultyID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to list faculty courses")
	}
	return options, nil
}

// Assign binds a course to a faculty member, timeslot and room. The caller
// usually picked from availability listings, but those may be stale, so the
// repository re-validates everything inside its transaction before writing.
func (s *ScheduleService) Assign(ctx context.Context, req AssignScheduleRequest) (*models.CourseSchedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	if _, err := s.courses.FindByCode(ctx, req.CourseCode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load course")
	}
	if _, err := s.faculty.FindByID(ctx, req.FacultyID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "faculty not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load faculty")
	}
	if _, err := s.timeslots.FindByID(ctx, req.TimeslotID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timeslot not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load timeslot")
	}
	if _, err := s.rooms.FindByID(ctx, req.RoomID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "classroom not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load classroom")
	}

	sched := &models.CourseSchedule{
		CourseCode: req.CourseCode,
		FacultyID:  req.FacultyID,
		TimeslotID: req.TimeslotID,
		RoomID:     req.RoomID,
	}
	if err := s.repo.CreateExclusive(ctx, sched); err != nil {
		var conflict *models.ScheduleConflictError
		if errors.As(err, &conflict) {
			s.logger.Info("schedule assignment rejected",
				zap.String("course", req.CourseCode),
				zap.String("dimension", conflict.Conflict.Dimension))
			return nil, appErrors.Wrap(conflict, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, conflict.Message)
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "referenced entity not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to assign schedule")
	}

	s.metrics.RecordAssignment()
	if s.catalog != nil {
		s.catalog.InvalidateCatalog(ctx)
	}
	s.logger.Info("schedule assigned",
		zap.Int64("schedule_id", sched.ID),
		zap.String("course", sched.CourseCode),
		zap.Int64("faculty_id", sched.FacultyID),
		zap.Int64("timeslot_id", sched.TimeslotID),
		zap.String("room_id", sched.RoomID))
	return sched, nil
}

// Remove deletes a schedule and its dependent enrollments atomically,
// enrollments first.
func (s *ScheduleService) Remove(ctx context.Context, scheduleID int64) (*RemoveScheduleResult, error) {
	removed, err := s.repo.DeleteCascade(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to remove schedule")
	}
	s.metrics.RecordRemoval()
	if s.catalog != nil {
		s.catalog.InvalidateCatalog(ctx)
	}
	s.logger.Info("schedule removed", zap.Int64("schedule_id", scheduleID), zap.Int64("removed_enrollments", removed))
	return &RemoveScheduleResult{ScheduleID: scheduleID, RemovedEnrollments: removed}, nil
}
