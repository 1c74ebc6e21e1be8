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

type facultyRepository interface {
	List(ctx context.Context) ([]models.Faculty, error)
	FindByID(ctx context.Context, id int64) (*models.Faculty, error)
	Create(ctx context.Context, faculty *models.Faculty) error
	Delete(ctx context.Context, id int64) error
}

// CreateFacultyRequest describes a new faculty record.
type CreateFacultyRequest struct {
	FirstName     string `json:"first_name" validate:"required"`
	LastName      string `json:"last_name" validate:"required"`
	Email         string `json:"email" validate:"required,email"`
	Degree        string `json:"degree"`
	Qualification string `json:"qualification"`
	ExpertiseSub  string `json:"expertise_sub"`
	Designation   string `json:"designation"`
	Password      string `json:"password" validate:"required,min=6"`
}

// FacultyService manages faculty records.
type FacultyService struct {
	faculty   facultyRepository
	verifier  CredentialVerifier
	validator *validator.Validate
	logger    *zap.Logger
}

// NewFacultyService constructs a FacultyService instance.
func NewFacultyService(faculty facultyRepository, verifier CredentialVerifier, validate *validator.Validate, logger *zap.Logger) *FacultyService {
	if verifier == nil {
		verifier = BcryptVerifier{}
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FacultyService{faculty: faculty, verifier: verifier, validator: validate, logger: logger}
}

// List returns all faculty members.
func (s *FacultyService) List(ctx context.Context) ([]models.Faculty, error) {
	faculty, err := s.faculty.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to list faculty")
	}
	return faculty, nil
}

// Get returns a faculty member by id.
func (s *FacultyService) Get(ctx context.Context, id int64) (*models.Faculty, error) {
	faculty, err := s.faculty.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "faculty not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load faculty")
	}
	return faculty, nil
}

// Create registers a new faculty member with a hashed initial credential.
func (s *FacultyService) Create(ctx context.Context, req CreateFacultyRequest) (*models.Faculty, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid faculty payload")
	}
	hashed, err := s.verifier.Hash(req.Password)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	faculty := &models.Faculty{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		Degree:        req.Degree,
		Qualification: req.Qualification,
		ExpertiseSub:  req.ExpertiseSub,
		Designation:   req.Designation,
		PasswordHash:  hashed,
	}
	if err := s.faculty.Create(ctx, faculty); err != nil {
		if isPqCode(err, pqUniqueViolation) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "faculty email already registered")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to create faculty")
	}
	s.logger.Info("faculty created", zap.Int64("faculty_id", faculty.ID), zap.String("email", faculty.Email))
	return faculty, nil
}

// Delete removes a faculty member. Faculty with assigned schedules cannot
// be removed.
func (s *FacultyService) Delete(ctx context.Context, id int64) error {
	if err := s.faculty.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "faculty not found")
		}
		if isPqCode(err, pqForeignKeyViolation) {
			return appErrors.Clone(appErrors.ErrConflict, "faculty has assigned schedules")
		}
		return appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to delete faculty")
	}
	s.logger.Info("faculty deleted", zap.Int64("faculty_id", id))
	return nil
}
