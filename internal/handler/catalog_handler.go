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

// CatalogHandler exposes the scheduled-course catalog students pick
// sections from.
type CatalogHandler struct {
	catalog *service.CatalogService
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// Sections godoc
// @Summary Scheduled sections available for enrollment
// @Description Students see sections for their own semester and degree; admins pass semester and degree explicitly
// @Tags Catalog
// @Produce json
// @Param semester query int false "Semester (admin only)"
// @Param degree query string false "Degree (admin only)"
// @Success 200 {object} response.Envelope
// @Router /catalog/sections [get]
func (h *CatalogHandler) Sections(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if claims.Role == models.RoleStudent {
		sections, err := h.catalog.SectionsForStudent(c.Request.Context(), claims.PrincipalID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, sections, nil)
		return
	}

	semester, err := strconv.Atoi(c.Query("semester"))
	if err != nil || semester < 1 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "semester query parameter is required"))
		return
	}
	degree := c.Query("degree")
	if degree == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "degree query parameter is required"))
		return
	}

	sections, err := h.catalog.Sections(c.Request.Context(), semester, degree)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sections, nil)
}
