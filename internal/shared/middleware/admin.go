package middleware

import (
	"github.com/gin-gonic/gin"

	"catalog-importer/internal/shared/response"
	"catalog-importer/pkg/jwt"
)

// AdminMiddleware kiểm tra role do AuthMiddleware set vào context.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := c.Get(ContextRole)
		if !ok || role != jwt.RoleAdmin {
			response.Forbidden(c, "Access denied: admin role required")
			c.Abort()
			return
		}

		c.Next()
	}
}
