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

type markRepository interface {
	Upsert(ctx context.Context, mark *models.Mark) error
	UpdateObtained(ctx context.Context, courseCode, studentID, assignmentName string, obtained int) error
	ListAssignments(ctx context.Context, courseCode string) ([]string, error)
	ListByAssignment(ctx context.Context, courseCode, assignmentName string) ([]models.Mark, error)
	ListByStudent(ctx context.Context, studentID, courseCode string) ([]models.MarkDetail, error)
}

// RecordMarkRequest describes an assignment score for one student.
type RecordMarkRequest struct {
	CourseCode     string `json:"course_code" validate:"required"`
	StudentID      string `json:"student_id" validate:"required"`
	AssignmentName string `json:"assignment_name" validate:"required"`
	TotalMarks     int    `json:"total_marks" validate:"required,min=1"`
	ObtainedMarks  int    `json:"obtained_marks" validate:"min=0"`
}

// MarkService manages the gradebook. Scores are recorded per course,
// student and assignment; re-recording an existing entry overwrites it.
type MarkService struct {
	marks     markRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewMarkService constructs a MarkService instance.
func NewMarkService(marks markRepository, validate *validator.Validate, logger *zap.Logger) *MarkService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MarkService{marks: marks, validator: validate, logger: logger}
}

// Record stores a score, overwriting any previous entry for the same
// assignment.
func (s *MarkService) Record(ctx context.Context, req RecordMarkRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid mark payload")
	}
	if req.ObtainedMarks > req.TotalMarks {
		return appErrors.Clone(appErrors.ErrValidation, "obtained_marks cannot exceed total_marks")
	}
	mark := &models.Mark{
		CourseCode:     req.CourseCode,
		StudentID:      req.StudentID,
		AssignmentName: req.AssignmentName,
		TotalMarks:     req.TotalMarks,
		ObtainedMarks:  req.ObtainedMarks,
	}
	if err := s.marks.Upsert(ctx, mark); err != nil {
		if isPqCode(err, pqForeignKeyViolation) {
			return appErrors.Clone(appErrors.ErrNotFound, "course or student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to record mark")
	}
	s.logger.Info("mark recorded",
		zap.String("course_code", req.CourseCode),
		zap.String("student_id", req.StudentID),
		zap.String("assignment", req.AssignmentName))
	return nil
}

// UpdateObtained adjusts only the obtained score of an existing entry.
func (s *MarkService) UpdateObtained(ctx context.Context, courseCode, studentID, assignmentName string, obtained int) error {
	if obtained < 0 {
		return appErrors.Clone(appErrors.ErrValidation, "obtained_marks cannot be negative")
	}
	if err := s.marks.UpdateObtained(ctx, courseCode, studentID, assignmentName, obtained); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "mark not found")
		}
		return appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to update mark")
	}
	return nil
}

// Assignments lists the distinct assignment names recorded for a course.
func (s *MarkService) Assignments(ctx context.Context, courseCode string) ([]string, error) {
	names, err := s.marks.ListAssignments(ctx, courseCode)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to list assignments")
	}
	return names, nil
}

// AssignmentMarks lists every student's score for one assignment.
func (s *MarkService) AssignmentMarks(ctx context.Context, courseCode, assignmentName string) ([]models.Mark, error) {
	marks, err := s.marks.ListByAssignment(ctx, courseCode, assignmentName)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to list marks")
	}
	return marks, nil
}

// StudentMarks lists a student's scores, optionally narrowed to one course.
func (s *MarkService) StudentMarks(ctx context.Context, studentID, courseCode string) ([]models.MarkDetail, error) {
	marks, err := s.marks.ListByStudent(ctx, studentID, courseCode)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to list student marks")
	}
	return marks, nil
}
