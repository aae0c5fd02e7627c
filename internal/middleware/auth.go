package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/01moynul/calibration-catalog/internal/auth"
)

// ContextAdminID is the gin context key holding the authenticated admin id.
const ContextAdminID = "adminID"

// AdminAuth lets a request through only with a valid "Bearer <token>" header.
func AdminAuth(issuer *auth.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. --- Get Authorization Header ---
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authorization header required"})
			return
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token format (must be Bearer)"})
			return
		}

		// 2. --- Validate Token ---
		adminID, err := issuer.ValidateToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
			return
		}

		// 3. --- Success ---
		c.Set(ContextAdminID, adminID)
		c.Next()
	}
}
