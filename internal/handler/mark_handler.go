package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bnu-scit/registrar-api/internal/models"
	"github.com/bnu-scit/registrar-api/internal/service"
	appErrors "github.com/bnu-scit/registrar-api/pkg/errors"
	"github.com/bnu-scit/registrar-api/pkg/response"
)

// MarkHandler exposes gradebook endpoints.
type MarkHandler struct {
	marks *service.MarkService
}

// NewMarkHandler constructs MarkHandler.
func NewMarkHandler(marks *service.MarkService) *MarkHandler {
	return &MarkHandler{marks: marks}
}

// Record godoc
// @Summary Record an assignment score
// @Description Recording the same assignment again overwrites the previous score
// @Tags Marks
// @Accept json
// @Produce json
// @Param payload body service.RecordMarkRequest true "Mark payload"
// @Success 204 {object} response.Envelope
// @Router /marks [put]
func (h *MarkHandler) Record(c *gin.Context) {
	var req service.RecordMarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid mark payload"))
		return
	}
	if err := h.marks.Record(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Assignments godoc
// @Summary List recorded assignment names for a course
// @Tags Marks
// @Produce json
// @Param code path string true "Course code"
// @Success 200 {object} response.Envelope
// @Router /courses/{code}/assignments [get]
func (h *MarkHandler) Assignments(c *gin.Context) {
	names, err := h.marks.Assignments(c.Request.Context(), c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, names, nil)
}

// AssignmentMarks godoc
// @Summary Scores for one assignment across the roster
// @Tags Marks
// @Produce json
// @Param code path string true "Course code"
// @Param assignment query string true "Assignment name"
// @Success 200 {object} response.Envelope
// @Router /courses/{code}/marks [get]
func (h *MarkHandler) AssignmentMarks(c *gin.Context) {
	assignment := c.Query("assignment")
	if assignment == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "assignment query parameter is required"))
		return
	}
	marks, err := h.marks.AssignmentMarks(c.Request.Context(), c.Param("code"), assignment)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, marks, nil)
}

// MyMarks godoc
// @Summary Scores for the authenticated student
// @Tags Marks
// @Produce json
// @Param course query string false "Narrow to one course"
// @Success 200 {object} response.Envelope
// @Router /me/marks [get]
func (h *MarkHandler) MyMarks(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil || claims.Role != models.RoleStudent {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	marks, err := h.marks.StudentMarks(c.Request.Context(), claims.PrincipalID, c.Query("course"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, marks, nil)
}

// StudentMarks godoc
// @Summary Scores for any student
// @Tags Marks
// @Produce json
// @Param id path string true "Student ID"
// @Param course query string false "Narrow to one course"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/marks [get]
func (h *MarkHandler) StudentMarks(c *gin.Context) {
	marks, err := h.marks.StudentMarks(c.Request.Context(), c.Param("id"), c.Query("course"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, marks, nil)
}
