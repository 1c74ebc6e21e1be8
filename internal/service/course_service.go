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

type courseRepository interface {
	List(ctx context.Context) ([]models.Course, error)
	FindByCode(ctx context.Context, code string) (*models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, code string) error
}

// CreateCourseRequest describes a new course offering.
type CreateCourseRequest struct {
	Code          string `json:"course_code" validate:"required"`
	Name          string `json:"course_name" validate:"required"`
	Credits       int    `json:"credits" validate:"required,min=1,max=12"`
	Semester      int    `json:"semester" validate:"required,min=1,max=12"`
	Department    string `json:"department" validate:"required"`
	MaxStudents   int    `json:"max_students" validate:"required,min=1"`
	Prerequisites string `json:"prerequisites"`
}

// CourseService manages the course catalog entries.
type CourseService struct {
	courses   courseRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs a CourseService instance.
func NewCourseService(courses courseRepository, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{courses: courses, validator: validate, logger: logger}
}

// List returns all courses.
func (s *CourseService) List(ctx context.Context) ([]models.Course, error) {
	courses, err := s.courses.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to list courses")
	}
	return courses, nil
}

// Get returns a course by code.
func (s *CourseService) Get(ctx context.Context, code string) (*models.Course, error) {
	course, err := s.courses.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load course")
	}
	return course, nil
}

// Create registers a new course offering.
func (s *CourseService) Create(ctx context.Context, req CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	course := &models.Course{
		Code:          req.Code,
		Name:          req.Name,
		Credits:       req.Credits,
		Semester:      req.Semester,
		Department:    req.Department,
		MaxStudents:   req.MaxStudents,
		Prerequisites: req.Prerequisites,
	}
	if err := s.courses.Create(ctx, course); err != nil {
		if isPqCode(err, pqUniqueViolation) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "course already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to create course")
	}
	s.logger.Info("course created", zap.String("course_code", course.Code))
	return course, nil
}

// Delete removes a course. Courses with an active schedule cannot be
// removed; recorded marks do not block removal and are dropped with the
// course.
func (s *CourseService) Delete(ctx context.Context, code string) error {
	if err := s.courses.Delete(ctx, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		if isPqCode(err, pqForeignKeyViolation) {
			return appErrors.Clone(appErrors.ErrConflict, "course has an active schedule")
		}
		return appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to delete course")
	}
	s.logger.Info("course deleted", zap.String("course_code", code))
	return nil
}
