package middleware

import (
	"net/http"

	"course-payments/internal/shared"

	"github.com/gin-gonic/gin"
)

// AdminMiddleware checks the role set by AuthMiddleware.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get(shared.ContextKeyRole)
		if r, ok := role.(string); !ok || r != shared.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"error":   "Access denied: admin role required",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
