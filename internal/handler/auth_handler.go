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

// AuthHandler wires HTTP endpoints to the auth service.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// Login godoc
// @Summary Authenticate a principal
// @Description Students log in with their student id, faculty with their email, the administrator with the configured admin email
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// Me godoc
// @Summary Current principal
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	principal := models.Principal{ID: claims.PrincipalID, FullName: claims.FullName, Role: claims.Role}
	response.JSON(c, http.StatusOK, principal, nil)
}

// ChangePassword godoc
// @Summary Change own password
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.ChangePasswordRequest true "Password payload"
// @Success 204 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid password payload"))
		return
	}

	var err error
	switch claims.Role {
	case models.RoleStudent:
		err = h.service.ChangeStudentPassword(c.Request.Context(), claims.PrincipalID, req)
	case models.RoleFaculty:
		facultyID, ok := facultyIDFromClaims(claims)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			return
		}
		err = h.service.ChangeFacultyPassword(c.Request.Context(), facultyID, req)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "admin password is managed via configuration"))
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ResetStudentPassword godoc
// @Summary Issue a temporary password for a student
// @Tags Authentication
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/password/reset [post]
func (h *AuthHandler) ResetStudentPassword(c *gin.Context) {
	res, err := h.service.ResetStudentPassword(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// ResetFacultyPassword godoc
// @Summary Issue a temporary password for a faculty member
// @Tags Authentication
// @Produce json
// @Param id path int true "Faculty ID"
// @Success 200 {object} response.Envelope
// @Router /faculty/{id}/password/reset [post]
func (h *AuthHandler) ResetFacultyPassword(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid faculty id"))
		return
	}
	res, err := h.service.ResetFacultyPassword(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}
