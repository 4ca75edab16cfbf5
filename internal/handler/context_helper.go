package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rukundo0023/empowerhered-sub000/internal/middleware"
	"github.com/rukundo0023/empowerhered-sub000/internal/models"
	appErrors "github.com/rukundo0023/empowerhered-sub000/pkg/errors"
	"github.com/rukundo0023/empowerhered-sub000/pkg/response"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	return middleware.Claims(c)
}

// bindJSON decodes the body and writes a 400 envelope on failure.
func bindJSON(c *gin.Context, dest interface{}, message string) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, message))
		return false
	}
	return true
}

// requireClaims writes a 401 envelope when the request carries no authenticated user.
func requireClaims(c *gin.Context) (*models.JWTClaims, bool) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return nil, false
	}
	return claims, true
}
