package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bnu-scit/registrar-api/internal/models"
	appErrors "github.com/bnu-scit/registrar-api/pkg/errors"
)

type mockCourseRepo struct {
	courses   []models.Course
	course    *models.Course
	createErr error
	deleteErr error
	findErr   error
	created   *models.Course
}

func (m *mockCourseRepo) List(ctx context.Context) ([]models.Course, error) {
	return m.courses, nil
}

func (m *mockCourseRepo) FindByCode(ctx context.Context, code string) (*models.Course, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.course, nil
}

func (m *mockCourseRepo) Create(ctx context.Context, course *models.Course) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = course
	return nil
}

func (m *mockCourseRepo) Delete(ctx context.Context, code string) error {
	return m.deleteErr
}

func newCourseService(repo *mockCourseRepo) *CourseService {
	return NewCourseService(repo, validator.New(), zap.NewNop())
}

func TestCourseServiceCreate(t *testing.T) {
	repo := &mockCourseRepo{}
	svc := newCourseService(repo)

	course, err := svc.Create(context.Background(), CreateCourseRequest{
		Code: "CS101", Name: "Intro to Programming", Credits: 3,
		Semester: 1, Department: "CS", MaxStudents: 30,
	})
	require.NoError(t, err)
	assert.Equal(t, "CS101", course.Code)
	require.NotNil(t, repo.created)
}

func TestCourseServiceCreateDuplicate(t *testing.T) {
	unique := &pq.Error{Code: pq.ErrorCode(pqUniqueViolation)}
	repo := &mockCourseRepo{createErr: fmt.Errorf("create course: %w", unique)}
	svc := newCourseService(repo)

	_, err := svc.Create(context.Background(), CreateCourseRequest{
		Code: "CS101", Name: "Intro to Programming", Credits: 3,
		Semester: 1, Department: "CS", MaxStudents: 30,
	})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrConflict))
}

func TestCourseServiceDeleteScheduled(t *testing.T) {
	fk := &pq.Error{Code: pq.ErrorCode(pqForeignKeyViolation), Constraint: "course_schedule_course_code_fkey"}
	repo := &mockCourseRepo{deleteErr: fmt.Errorf("delete course: %w", fk)}
	svc := newCourseService(repo)

	err := svc.Delete(context.Background(), "CS101")
	require.True(t, appErrors.HasCode(err, appErrors.ErrConflict))
	assert.Equal(t, "course has an active schedule", appErrors.FromError(err).Message)
}

func TestCourseServiceDeleteMissing(t *testing.T) {
	repo := &mockCourseRepo{deleteErr: sql.ErrNoRows}
	svc := newCourseService(repo)

	err := svc.Delete(context.Background(), "ghost")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}
