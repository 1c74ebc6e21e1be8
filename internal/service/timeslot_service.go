package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/bnu-scit/registrar-api/internal/models"
	appErrors "github.com/bnu-scit/registrar-api/pkg/errors"
)

type timeslotRepository interface {
	List(ctx context.Context) ([]models.Timeslot, error)
	FindByID(ctx context.Context, id int64) (*models.Timeslot, error)
	Create(ctx context.Context, slot *models.Timeslot) error
	Delete(ctx context.Context, id int64) error
}

// CreateTimeslotRequest describes a new weekly time window. Times use the
// 24-hour HH:MM format.
type CreateTimeslotRequest struct {
	DayOfWeek string `json:"day_of_week" validate:"required"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
}

// TimeslotService manages the weekly timeslot vocabulary.
type TimeslotService struct {
	timeslots timeslotRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTimeslotService constructs a TimeslotService instance.
func NewTimeslotService(timeslots timeslotRepository, validate *validator.Validate, logger *zap.Logger) *TimeslotService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimeslotService{timeslots: timeslots, validator: validate, logger: logger}
}

// List returns all timeslots.
func (s *TimeslotService) List(ctx context.Context) ([]models.Timeslot, error) {
	slots, err := s.timeslots.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to list timeslots")
	}
	return slots, nil
}

// Get returns a timeslot by id.
func (s *TimeslotService) Get(ctx context.Context, id int64) (*models.Timeslot, error) {
	slot, err := s.timeslots.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timeslot not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load timeslot")
	}
	return slot, nil
}

// Create registers a new timeslot. The day must be a valid weekday name and
// the window must start strictly before it ends.
func (s *TimeslotService) Create(ctx context.Context, req CreateTimeslotRequest) (*models.Timeslot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timeslot payload")
	}
	if !models.WeekDays[req.DayOfWeek] {
		return nil, appErrors.Clone(appErrors.ErrValidation, "day_of_week must be a weekday name")
	}
	start, err := time.Parse("15:04", req.StartTime)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start_time must use HH:MM")
	}
	end, err := time.Parse("15:04", req.EndTime)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_time must use HH:MM")
	}
	if !start.Before(end) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start_time must be before end_time")
	}

	slot := &models.Timeslot{
		DayOfWeek: req.DayOfWeek,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	}
	if err := s.timeslots.Create(ctx, slot); err != nil {
		if isPqCode(err, pqCheckViolation) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "start_time must be before end_time")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to create timeslot")
	}
	s.logger.Info("timeslot created", zap.Int64("timeslot_id", slot.ID), zap.String("label", slot.Label()))
	return slot, nil
}

// Delete removes a timeslot. Timeslots referenced by a schedule cannot be
// removed.
func (s *TimeslotService) Delete(ctx context.Context, id int64) error {
	if err := s.timeslots.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "timeslot not found")
		}
		if isPqCode(err, pqForeignKeyViolation) {
			return appErrors.Clone(appErrors.ErrConflict, "timeslot is referenced by a schedule")
		}
		return appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to delete timeslot")
	}
	s.logger.Info("timeslot deleted", zap.Int64("timeslot_id", id))
	return nil
}
