package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bnu-scit/registrar-api/internal/service"
	appErrors "github.com/bnu-scit/registrar-api/pkg/errors"
	"github.com/bnu-scit/registrar-api/pkg/response"
)

// ClassroomHandler exposes classroom endpoints.
type ClassroomHandler struct {
	rooms *service.ClassroomService
}

// NewClassroomHandler constructs ClassroomHandler.
func NewClassroomHandler(rooms *service.ClassroomService) *ClassroomHandler {
	return &ClassroomHandler{rooms: rooms}
}

// List godoc
// @Summary List classrooms
// @Tags Classrooms
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /classrooms [get]
func (h *ClassroomHandler) List(c *gin.Context) {
	rooms, err := h.rooms.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rooms, nil)
}

// Get godoc
// @Summary Get classroom detail
// @Tags Classrooms
// @Produce json
// @Param id path string true "Room ID"
// @Success 200 {object} response.Envelope
// @Router /classrooms/{id} [get]
func (h *ClassroomHandler) Get(c *gin.Context) {
	room, err := h.rooms.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, room, nil)
}

// Create godoc
// @Summary Register a classroom
// @Tags Classrooms
// @Accept json
// @Produce json
// @Param payload body service.CreateClassroomRequest true "Classroom payload"
// @Success 201 {object} response.Envelope
// @Router /classrooms [post]
func (h *ClassroomHandler) Create(c *gin.Context) {
	var req service.CreateClassroomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid classroom payload"))
		return
	}
	room, err := h.rooms.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, room)
}

// Delete godoc
// @Summary Remove a classroom
// @Tags Classrooms
// @Produce json
// @Param id path string true "Room ID"
// @Success 204 {object} response.Envelope
// @Router /classrooms/{id} [delete]
func (h *ClassroomHandler) Delete(c *gin.Context) {
	if err := h.rooms.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
