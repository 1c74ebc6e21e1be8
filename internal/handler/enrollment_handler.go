package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bnu-scit/registrar-api/internal/models"
	"github.com/bnu-scit/registrar-api/internal/service"
	appErrors "github.com/bnu-scit/registrar-api/pkg/errors"
	"github.com/bnu-scit/registrar-api/pkg/response"
)

// EnrollmentHandler exposes enrollment endpoints.
type EnrollmentHandler struct {
	enrollments *service.EnrollmentService
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments *service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

// Enroll godoc
// @Summary Enroll a student into a scheduled section
// @Description Students enroll themselves; admins may enroll any student
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body service.EnrollRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /enrollments [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	var req service.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid enrollment payload"))
		return
	}

	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if claims.Role == models.RoleStudent {
		req.StudentID = claims.PrincipalID
	}

	enrollment, err := h.enrollments.Enroll(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, enrollment)
}

// Withdraw godoc
// @Summary Withdraw a student from a scheduled section
// @Tags Enrollments
// @Produce json
// @Param id path int true "Schedule ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /enrollments/{id} [delete]
func (h *EnrollmentHandler) Withdraw(c *gin.Context) {
	scheduleID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || scheduleID < 1 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid schedule id"))
		return
	}

	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	studentID := claims.PrincipalID
	if claims.Role == models.RoleAdmin {
		studentID = c.Query("student_id")
		if studentID == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "student_id query parameter is required"))
			return
		}
	}

	if err := h.enrollments.Withdraw(c.Request.Context(), studentID, scheduleID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// MyTimetable godoc
// @Summary Weekly timetable for the authenticated student
// @Tags Enrollments
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /me/timetable [get]
func (h *EnrollmentHandler) MyTimetable(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	timetable, err := h.enrollments.StudentTimetable(c.Request.Context(), claims.PrincipalID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, timetable, nil)
}

// MyCourses godoc
// @Summary Courses the authenticated student is enrolled in
// @Tags Enrollments
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /me/courses [get]
func (h *EnrollmentHandler) MyCourses(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	courses, err := h.enrollments.StudentCourses(c.Request.Context(), claims.PrincipalID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}

// StudentTimetable godoc
// @Summary Weekly timetable for any student
// @Tags Enrollments
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/timetable [get]
func (h *EnrollmentHandler) StudentTimetable(c *gin.Context) {
	timetable, err := h.enrollments.StudentTimetable(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, timetable, nil)
}

// Roster godoc
// @Summary Enrolled students for a course
// @Tags Enrollments
// @Produce json
// @Param code path string true "Course code"
// @Success 200 {object} response.Envelope
// @Router /courses/{code}/roster [get]
func (h *EnrollmentHandler) Roster(c *gin.Context) {
	roster, err := h.enrollments.Roster(c.Request.Context(), c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, roster, nil)
}

// Seats godoc
// @Summary Seats taken for a scheduled section
// @Tags Enrollments
// @Produce json
// @Param id path int true "Schedule ID"
// @Success 200 {object} response.Envelope
// @Router /schedules/{id}/seats [get]
func (h *EnrollmentHandler) Seats(c *gin.Context) {
	scheduleID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || scheduleID < 1 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid schedule id"))
		return
	}
	taken, err := h.enrollments.SeatsTaken(c.Request.Context(), scheduleID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"schedule_id": scheduleID, "seats_taken": taken}, nil)
}
