package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bnu-scit/registrar-api/internal/middleware"
	"github.com/bnu-scit/registrar-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

func facultyIDFromClaims(claims *models.JWTClaims) (int64, bool) {
	if claims == nil || claims.Role != models.RoleFaculty {
		return 0, false
	}
	id, err := strconv.ParseInt(claims.PrincipalID, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
