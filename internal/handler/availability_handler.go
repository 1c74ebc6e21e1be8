package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bnu-scit/registrar-api/internal/service"
	appErrors "github.com/bnu-scit/registrar-api/pkg/errors"
	"github.com/bnu-scit/registrar-api/pkg/response"
)

// AvailabilityHandler exposes the scheduling picker endpoints.
type AvailabilityHandler struct {
	availability *service.AvailabilityService
}

// NewAvailabilityHandler constructs AvailabilityHandler.
func NewAvailabilityHandler(availability *service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{availability: availability}
}

func timeslotIDFromQuery(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Query("timeslot_id"), 10, 64)
	if err != nil || id < 1 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "timeslot_id query parameter is required"))
		return 0, false
	}
	return id, true
}

// Faculty godoc
// @Summary List faculty free in a timeslot
// @Tags Availability
// @Produce json
// @Param timeslot_id query int true "Timeslot ID"
// @Success 200 {object} response.Envelope
// @Router /availability/faculty [get]
func (h *AvailabilityHandler) Faculty(c *gin.Context) {
	timeslotID, ok := timeslotIDFromQuery(c)
	if !ok {
		return
	}
	options, err := h.availability.AvailableFaculty(c.Request.Context(), timeslotID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, options, nil)
}

// Rooms godoc
// @Summary List classrooms free in a timeslot
// @Tags Availability
// @Produce json
// @Param timeslot_id query int true "Timeslot ID"
// @Success 200 {object} response.Envelope
// @Router /availability/rooms [get]
func (h *AvailabilityHandler) Rooms(c *gin.Context) {
	timeslotID, ok := timeslotIDFromQuery(c)
	if !ok {
		return
	}
	options, err := h.availability.AvailableRooms(c.Request.Context(), timeslotID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, options, nil)
}

// UnscheduledCourses godoc
// @Summary List courses without a schedule
// @Tags Availability
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /availability/courses [get]
func (h *AvailabilityHandler) UnscheduledCourses(c *gin.Context) {
	options, err := h.availability.UnscheduledCourses(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, options, nil)
}
