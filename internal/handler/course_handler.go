package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bnu-scit/registrar-api/internal/service"
	appErrors "github.com/bnu-scit/registrar-api/pkg/errors"
	"github.com/bnu-scit/registrar-api/pkg/response"
)

// CourseHandler exposes course catalog endpoints.
type CourseHandler struct {
	courses *service.CourseService
}

// NewCourseHandler constructs CourseHandler.
func NewCourseHandler(courses *service.CourseService) *CourseHandler {
	return &CourseHandler{courses: courses}
}

// List godoc
// @Summary List courses
// @Tags Courses
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	courses, err := h.courses.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}

// Get godoc
// @Summary Get course detail
// @Tags Courses
// @Produce json
// @Param code path string true "Course code"
// @Success 200 {object} response.Envelope
// @Router /courses/{code} [get]
func (h *CourseHandler) Get(c *gin.Context) {
	course, err := h.courses.Get(c.Request.Context(), c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}

// Create godoc
// @Summary Register a course
// @Tags Courses
// @Accept json
// @Produce json
// @Param payload body service.CreateCourseRequest true "Course payload"
// @Success 201 {object} response.Envelope
// @Router /courses [post]
func (h *CourseHandler) Create(c *gin.Context) {
	var req service.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid course payload"))
		return
	}
	course, err := h.courses.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, course)
}

// Delete godoc
// @Summary Remove a course
// @Tags Courses
// @Produce json
// @Param code path string true "Course code"
// @Success 204 {object} response.Envelope
// @Router /courses/{code} [delete]
func (h *CourseHandler) Delete(c *gin.Context) {
	if err := h.courses.Delete(c.Request.Context(), c.Param("code")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
