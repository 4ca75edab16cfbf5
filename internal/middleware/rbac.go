package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/rukundo0023/empowerhered-sub000/internal/models"
	appErrors "github.com/rukundo0023/empowerhered-sub000/pkg/errors"
	"github.com/rukundo0023/empowerhered-sub000/pkg/response"
)

// RequireRoles only lets callers holding one of roles through. Admins always pass.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles)+1)
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	allowed[models.RoleAdmin] = struct{}{}

	return func(c *gin.Context) {
		claims := Claims(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			return
		}
		if _, ok := allowed[claims.Role]; !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "insufficient role"))
			return
		}
		c.Next()
	}
}
