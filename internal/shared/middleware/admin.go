package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"grocery-backend/internal/shared/apperror"
	"grocery-backend/internal/shared/response"
)

const RoleAdmin = "admin"

// AdminMiddleware checks the role set by AuthMiddleware.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextKeyRole) != RoleAdmin {
			response.AbortWithError(c, http.StatusForbidden, apperror.CodeForbidden, "access denied: admin role required")
			return
		}

		c.Next()
	}
}
