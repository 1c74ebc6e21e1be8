package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bnu-scit/registrar-api/internal/middleware"
	"github.com/bnu-scit/registrar-api/internal/models"
	"github.com/bnu-scit/registrar-api/internal/service"
	appErrors "github.com/bnu-scit/registrar-api/pkg/errors"
)

type enrollmentRepoStub struct {
	createErr    error
	deleteErr    error
	lastEnrolled *models.Enrollment
	lastDeleted  string
}

func (s *enrollmentRepoStub) CreateGuarded(ctx context.Context, enrollment *models.Enrollment) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.lastEnrolled = enrollment
	return nil
}

func (s *enrollmentRepoStub) Delete(ctx context.Context, studentID string, scheduleID int64) error {
	s.lastDeleted = studentID
	return s.deleteErr
}

func (s *enrollmentRepoStub) CountBySchedule(ctx context.Context, scheduleID int64) (int, error) {
	return 0, nil
}

func (s *enrollmentRepoStub) CountByCourse(ctx context.Context, courseCode string) (int, error) {
	return 0, nil
}

func (s *enrollmentRepoStub) ListDetailedByStudent(ctx context.Context, studentID string) ([]models.ScheduleDetail, error) {
	return []models.ScheduleDetail{{ScheduleID: 7, CourseCode: "CS101"}}, nil
}

func (s *enrollmentRepoStub) RosterByCourse(ctx context.Context, courseCode string) ([]models.RosterEntry, error) {
	return nil, nil
}

func (s *enrollmentRepoStub) ListCoursesByStudent(ctx context.Context, studentID string) ([]models.CourseOption, error) {
	return nil, nil
}

type studentReaderStub struct {
	err error
}

func (s *studentReaderStub) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.Student{ID: id, Semester: 5, Degree: "BSCS"}, nil
}

func newEnrollmentHandlerFixture(repo *enrollmentRepoStub) *EnrollmentHandler {
	svc := service.NewEnrollmentService(repo, &studentReaderStub{}, nil, nil, zap.NewNop())
	return NewEnrollmentHandler(svc)
}

func studentClaims(id string) *models.JWTClaims {
	return &models.JWTClaims{PrincipalID: id, Role: models.RoleStudent}
}

func TestEnrollmentHandlerEnrollForcesSelf(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &enrollmentRepoStub{}
	handler := newEnrollmentHandlerFixture(repo)

	payload, _ := json.Marshal(service.EnrollRequest{StudentID: "2021-CS-999", ScheduleID: 7})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/enrollments", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextUserKey, studentClaims("2021-CS-042"))

	handler.Enroll(c)
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, repo.lastEnrolled)
	assert.Equal(t, "2021-CS-042", repo.lastEnrolled.StudentID, "students may only enroll themselves")
}

func TestEnrollmentHandlerEnrollConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &enrollmentRepoStub{createErr: appErrors.Clone(appErrors.ErrAlreadyEnrolled, "")}
	handler := newEnrollmentHandlerFixture(repo)

	payload, _ := json.Marshal(service.EnrollRequest{StudentID: "2021-CS-042", ScheduleID: 7})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/enrollments", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextUserKey, studentClaims("2021-CS-042"))

	handler.Enroll(c)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestEnrollmentHandlerEnrollInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newEnrollmentHandlerFixture(&enrollmentRepoStub{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/enrollments", bytes.NewBufferString(`{"schedule_id":`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextUserKey, studentClaims("2021-CS-042"))

	handler.Enroll(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEnrollmentHandlerWithdrawUsesOwnID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &enrollmentRepoStub{}
	handler := newEnrollmentHandlerFixture(repo)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodDelete, "/enrollments/7", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "7"}}
	c.Set(middleware.ContextUserKey, studentClaims("2021-CS-042"))

	handler.Withdraw(c)
	c.Writer.WriteHeaderNow()
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "2021-CS-042", repo.lastDeleted)
}

func TestEnrollmentHandlerWithdrawAdminRequiresStudentID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newEnrollmentHandlerFixture(&enrollmentRepoStub{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodDelete, "/enrollments/7", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "7"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{PrincipalID: "registrar@scit.bnu.edu.pk", Role: models.RoleAdmin})

	handler.Withdraw(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEnrollmentHandlerWithdrawNotEnrolled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &enrollmentRepoStub{deleteErr: sql.ErrNoRows}
	handler := newEnrollmentHandlerFixture(repo)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodDelete, "/enrollments/7", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "7"}}
	c.Set(middleware.ContextUserKey, studentClaims("2021-CS-042"))

	handler.Withdraw(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestEnrollmentHandlerMyTimetable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newEnrollmentHandlerFixture(&enrollmentRepoStub{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/me/timetable", nil)
	c.Request = req
	c.Set(middleware.ContextUserKey, studentClaims("2021-CS-042"))

	handler.MyTimetable(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "CS101")
}
