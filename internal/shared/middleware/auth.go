package middleware

import (
	"strings"

	"course-payments/internal/shared"
	"course-payments/pkg/jwt"
	"course-payments/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuthMiddleware validates the bearer access token and puts the caller into the context.
func AuthMiddleware(jwtManager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(401, gin.H{"error": "missing authorization header"})
			c.Abort()
			return
		}

		// 2. "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(401, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}

		// 3. Verify and parse
		claims, err := jwtManager.ValidateAccessToken(parts[1])
		if err != nil {
			logger.Debug("rejected access token", map[string]interface{}{
				"error":      err.Error(),
				"request_id": c.GetString("request_id"),
			})
			c.JSON(401, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		// 4. user id must be a UUID
		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.JSON(401, gin.H{"error": "invalid user ID in token"})
			c.Abort()
			return
		}

		c.Set(shared.ContextKeyUserID, userID)
		c.Set(shared.ContextKeyRole, claims.Role)
		c.Set(shared.ContextKeyEmail, claims.Email)

		c.Next()
	}
}
