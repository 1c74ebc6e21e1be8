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

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) error
}

// CreateStudentRequest describes a new student record.
type CreateStudentRequest struct {
	ID        string `json:"student_id" validate:"required"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Degree    string `json:"degree" validate:"required"`
	Semester  int    `json:"semester" validate:"required,min=1,max=12"`
	Password  string `json:"password" validate:"required,min=6"`
}

// StudentService manages student records.
type StudentService struct {
	students  studentRepository
	verifier  CredentialVerifier
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs a StudentService instance.
func NewStudentService(students studentRepository, verifier CredentialVerifier, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if verifier == nil {
		verifier = BcryptVerifier{}
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{students: students, verifier: verifier, validator: validate, logger: logger}
}

// List returns students matching the filter with pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}
	students, total, err := s.students.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to list students")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return students, pagination, nil
}

// Get returns a student by id.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.students.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load student")
	}
	return student, nil
}

// Create registers a new student with a hashed initial credential.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	hashed, err := s.verifier.Hash(req.Password)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	student := &models.Student{
		ID:           req.ID,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Degree:       req.Degree,
		Semester:     req.Semester,
		PasswordHash: hashed,
	}
	if err := s.students.Create(ctx, student); err != nil {
		if isPqCode(err, pqUniqueViolation) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "student already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to create student")
	}
	s.logger.Info("student created", zap.String("student_id", student.ID))
	return student, nil
}

// Delete removes a student. Students with active enrollments cannot be
// removed.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	if err := s.students.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		if isPqCode(err, pqForeignKeyViolation) {
			return appErrors.Clone(appErrors.ErrConflict, "student has active enrollments")
		}
		return appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to delete student")
	}
	s.logger.Info("student deleted", zap.String("student_id", id))
	return nil
}
