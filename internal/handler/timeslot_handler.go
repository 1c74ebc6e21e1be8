package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bnu-scit/registrar-api/internal/service"
	appErrors "github.com/bnu-scit/registrar-api/pkg/errors"
	"github.com/bnu-scit/registrar-api/pkg/response"
)

// TimeslotHandler exposes timeslot endpoints.
type TimeslotHandler struct {
	timeslots *service.TimeslotService
}

// NewTimeslotHandler constructs TimeslotHandler.
func NewTimeslotHandler(timeslots *service.TimeslotService) *TimeslotHandler {
	return &TimeslotHandler{timeslots: timeslots}
}

// List godoc
// @Summary List timeslots
// @Tags Timeslots
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /timeslots [get]
func (h *TimeslotHandler) List(c *gin.Context) {
	slots, err := h.timeslots.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}

// Create godoc
// @Summary Register a timeslot
// @Tags Timeslots
// @Accept json
// @Produce json
// @Param payload body service.CreateTimeslotRequest true "Timeslot payload"
// @Success 201 {object} response.Envelope
// @Router /timeslots [post]
func (h *TimeslotHandler) Create(c *gin.Context) {
	var req service.CreateTimeslotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid timeslot payload"))
		return
	}
	slot, err := h.timeslots.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, slot)
}

// Delete godoc
// @Summary Remove a timeslot
// @Tags Timeslots
// @Produce json
// @Param id path int true "Timeslot ID"
// @Success 204 {object} response.Envelope
// @Router /timeslots/{id} [delete]
func (h *TimeslotHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid timeslot id"))
		return
	}
	if err := h.timeslots.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
