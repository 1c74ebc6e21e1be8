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

type classroomRepository interface {
	List(ctx context.Context) ([]models.Classroom, error)
	FindByID(ctx context.Context, id string) (*models.Classroom, error)
	Create(ctx context.Context, room *models.Classroom) error
	Delete(ctx context.Context, id string) error
}

// CreateClassroomRequest describes a new classroom record.
type CreateClassroomRequest struct {
	ID         string `json:"room_id" validate:"required"`
	Building   string `json:"building" validate:"required"`
	RoomNumber string `json:"room_number" validate:"required"`
	Capacity   int    `json:"capacity" validate:"required,min=1"`
	RoomType   string `json:"room_type"`
}

// ClassroomService manages classroom records.
type ClassroomService struct {
	rooms     classroomRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassroomService constructs a ClassroomService instance.
func NewClassroomService(rooms classroomRepository, validate *validator.Validate, logger *zap.Logger) *ClassroomService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassroomService{rooms: rooms, validator: validate, logger: logger}
}

// List returns all classrooms.
func (s *ClassroomService) List(ctx context.Context) ([]models.Classroom, error) {
	rooms, err := s.rooms.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to list classrooms")
	}
	return rooms, nil
}

// Get returns a classroom by id.
func (s *ClassroomService) Get(ctx context.Context, id string) (*models.Classroom, error) {
	room, err := s.rooms.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "classroom not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load classroom")
	}
	return room, nil
}

// Create registers a new classroom.
func (s *ClassroomService) Create(ctx context.Context, req CreateClassroomRequest) (*models.Classroom, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid classroom payload")
	}
	room := &models.Classroom{
		ID:         req.ID,
		Building:   req.Building,
		RoomNumber: req.RoomNumber,
		Capacity:   req.Capacity,
		RoomType:   req.RoomType,
	}
	if err := s.rooms.Create(ctx, room); err != nil {
		if isPqCode(err, pqUniqueViolation) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "classroom already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to create classroom")
	}
	s.logger.Info("classroom created", zap.String("room_id", room.ID))
	return room, nil
}

// Delete removes a classroom. Rooms referenced by a schedule cannot be
// removed.
func (s *ClassroomService) Delete(ctx context.Context, id string) error {
	if err := s.rooms.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "classroom not found")
		}
		if isPqCode(err, pqForeignKeyViolation) {
			return appErrors.Clone(appErrors.ErrConflict, "classroom is referenced by a schedule")
		}
		return appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to delete classroom")
	}
	s.logger.Info("classroom deleted", zap.String("room_id", id))
	return nil
}
