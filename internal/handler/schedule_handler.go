package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bnu-scit/registrar-api/internal/service"
	appErrors "github.com/bnu-scit/registrar-api/pkg/errors"
	"github.com/bnu-scit/registrar-api/pkg/response"
)

// ScheduleHandler exposes schedule assignment endpoints.
type ScheduleHandler struct {
	schedules *service.ScheduleService
}

// NewScheduleHandler constructs ScheduleHandler.
func NewScheduleHandler(schedules *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{schedules: schedules}
}

func scheduleIDFromPath(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid schedule id"))
		return 0, false
	}
	return id, true
}

// List godoc
// @Summary List all schedule assignments
// @Tags Schedules
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /schedules [get]
func (h *ScheduleHandler) List(c *gin.Context) {
	schedules, err := h.schedules.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedules, nil)
}

// Get godoc
// @Summary Get one schedule assignment
// @Tags Schedules
// @Produce json
// @Param id path int true "Schedule ID"
// @Success 200 {object} response.Envelope
// @Router /schedules/{id} [get]
func (h *ScheduleHandler) Get(c *gin.Context) {
	id, ok := scheduleIDFromPath(c)
	if !ok {
		return
	}
	schedule, err := h.schedules.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}

// Assign godoc
// @Summary Assign a course to faculty, room and timeslot
// @Tags Schedules
// @Accept json
// @Produce json
// @Param payload body service.AssignScheduleRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /schedules [post]
func (h *ScheduleHandler) Assign(c *gin.Context) {
	var req service.AssignScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}
	schedule, err := h.schedules.Assign(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, schedule)
}

// Remove godoc
// @Summary Remove a schedule assignment and its enrollments
// @Tags Schedules
// @Produce json
// @Param id path int true "Schedule ID"
// @Success 200 {object} response.Envelope
// @Router /schedules/{id} [delete]
func (h *ScheduleHandler) Remove(c *gin.Context) {
	id, ok := scheduleIDFromPath(c)
	if !ok {
		return
	}
	result, err := h.schedules.Remove(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// MyTimetable godoc
// @Summary Weekly timetable for the authenticated faculty member
// @Tags Schedules
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /me/teaching/timetable [get]
func (h *ScheduleHandler) MyTimetable(c *gin.Context) {
	facultyID, ok := facultyIDFromClaims(claimsFromContext(c))
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	timetable, err := h.schedules.FacultyTimetable(c.Request.Context(), facultyID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, timetable, nil)
}

// MyCourses godoc
// @Summary Courses taught by the authenticated faculty member
// @Tags Schedules
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /me/teaching/courses [get]
func (h *ScheduleHandler) MyCourses(c *gin.Context) {
	facultyID, ok := facultyIDFromClaims(claimsFromContext(c))
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	courses, err := h.schedules.FacultyCourses(c.Request.Context(), facultyID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}

// FacultyTimetable godoc
// @Summary Weekly timetable for any faculty member
// @Tags Schedules
// @Produce json
// @Param id path int true "Faculty ID"
// @Success 200 {object} response.Envelope
// @Router /faculty/{id}/timetable [get]
func (h *ScheduleHandler) FacultyTimetable(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid faculty id"))
		return
	}
	timetable, err := h.schedules.FacultyTimetable(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, timetable, nil)
}
