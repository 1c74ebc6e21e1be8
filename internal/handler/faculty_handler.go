package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bnu-scit/registrar-api/internal/service"
	appErrors "github.com/bnu-scit/registrar-api/pkg/errors"
	"github.com/bnu-scit/registrar-api/pkg/response"
)

// FacultyHandler exposes faculty record endpoints.
type FacultyHandler struct {
	faculty *service.FacultyService
}

// NewFacultyHandler constructs FacultyHandler.
func NewFacultyHandler(faculty *service.FacultyService) *FacultyHandler {
	return &FacultyHandler{faculty: faculty}
}

func facultyIDFromPath(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid faculty id"))
		return 0, false
	}
	return id, true
}

// List godoc
// @Summary List faculty members
// @Tags Faculty
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /faculty [get]
func (h *FacultyHandler) List(c *gin.Context) {
	faculty, err := h.faculty.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, faculty, nil)
}

// Get godoc
// @Summary Get faculty detail
// @Tags Faculty
// @Produce json
// @Param id path int true "Faculty ID"
// @Success 200 {object} response.Envelope
// @Router /faculty/{id} [get]
func (h *FacultyHandler) Get(c *gin.Context) {
	id, ok := facultyIDFromPath(c)
	if !ok {
		return
	}
	faculty, err := h.faculty.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, faculty, nil)
}

// Create godoc
// @Summary Register a faculty member
// @Tags Faculty
// @Accept json
// @Produce json
// @Param payload body service.CreateFacultyRequest true "Faculty payload"
// @Success 201 {object} response.Envelope
// @Router /faculty [post]
func (h *FacultyHandler) Create(c *gin.Context) {
	var req service.CreateFacultyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid faculty payload"))
		return
	}
	faculty, err := h.faculty.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, faculty)
}

// Delete godoc
// @Summary Remove a faculty member
// @Tags Faculty
// @Produce json
// @Param id path int true "Faculty ID"
// @Success 204 {object} response.Envelope
// @Router /faculty/{id} [delete]
func (h *FacultyHandler) Delete(c *gin.Context) {
	id, ok := facultyIDFromPath(c)
	if !ok {
		return
	}
	if err := h.faculty.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
