package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/bnu-scit/registrar-api/internal/models"
	appErrors "github.com/bnu-scit/registrar-api/pkg/errors"
)

type availabilityScheduleReader interface {
	ListAvailableFaculty(ctx context.Context, timeslotID int64) ([]models.FacultyOption, error)
	ListCoursesByFaculty(ctx context.Context, facultyID int64) ([]models.CourseOption, error)
}

type availabilityRoomReader interface {
	ListAvailable(ctx context.Context, timeslotID int64) ([]models.ClassroomOption, error)
}

type availabilityCourseReader interface {
	ListUnscheduled(ctx context.Context) ([]models.CourseOption, error)
}

type availabilityTimeslotReader interface {
	FindByID(ctx context.Context, id int64) (*models.Timeslot, error)
	List(ctx context.Context) ([]models.Timeslot, error)
}

// AvailabilityService computes which resources are free for a timeslot and
// which courses still need a schedule. Read-only; an empty result means no
// assignment is possible right now, not a failure.
type AvailabilityService struct {
	schedules availabilityScheduleReader
	rooms     availabilityRoomReader
	courses   availabilityCourseReader
	timeslots availabilityTimeslotReader
	logger    *zap.Logger
}

// NewAvailabilityService constructs AvailabilityService.
func NewAvailabilityService(schedules availabilityScheduleReader, rooms availabilityRoomReader, courses availabilityCourseReader, timeslots availabilityTimeslotReader, logger *zap.Logger) *AvailabilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityService{schedules: schedules, rooms: rooms, courses: courses, timeslots: timeslots, logger: logger}
}

// AvailableFaculty returns faculty with no schedule bound to the timeslot.
func (s *AvailabilityService) AvailableFaculty(ctx context.Context, timeslotID int64) ([]models.FacultyOption, error) {
	if err := s.requireTimeslot(ctx, timeslotID); err != nil {
		return nil, err
	}
	options, err := s.schedules.ListAvailableFaculty(ctx, timeslotID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to list available faculty")
	}
	return options, nil
}

// AvailableRooms returns rooms with no schedule bound to the timeslot.
func (s *AvailabilityService) AvailableRooms(ctx context.Context, timeslotID int64) ([]models.ClassroomOption, error) {
	if err := s.requireTimeslot(ctx, timeslotID); err != nil {
		return nil, err
	}
	options, err := s.rooms.ListAvailable(ctx, timeslotID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to list available rooms")
	}
	return options, nil
}

// UnscheduledCourses returns courses not referenced by any schedule.
func (s *AvailabilityService) UnscheduledCourses(ctx context.Context) ([]models.CourseOption, error) {
	options, err := s.courses.ListUnscheduled(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to list unscheduled courses")
	}
	return options, nil
}

// Timeslots returns every timeslot for pickers.
func (s *AvailabilityService) Timeslots(ctx context.Context) ([]models.Timeslot, error) {
	slots, err := s.timeslots.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to list timeslots")
	}
	return slots, nil
}

func (s *AvailabilityService) requireTimeslot(ctx context.Context, timeslotID int64) error {
	if _, err := s.timeslots.FindByID(ctx, timeslotID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "timeslot not found")
		}
		return appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load timeslot")
	}
	return nil
}
