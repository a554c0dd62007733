package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/m-zohaibk/AQUABILL/internal/auth"
)

const (
	// ContextKeyUserID holds the key for user ID in Gin context.
	ContextKeyUserID = "userID"

	// RevokedTokenKeyPrefix prefixes Redis keys for signed-out token IDs.
	RevokedTokenKeyPrefix = "revoked_jwt:"
)

// AuthMiddleware creates a Gin middleware for JWT authentication.
// Tokens revoked via sign-out are tracked in Redis by their jti claim.
func AuthMiddleware(jwtSecret string, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}"})
			return
		}

		tokenString := parts[1]
		claims, err := auth.ValidateJWT(tokenString, jwtSecret)
		if err != nil {
			errMsg := fmt.Sprintf("Invalid or expired token: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errMsg})
			return
		}

		if rdb != nil && claims.ID != "" {
			revoked, err := rdb.Exists(c.Request.Context(), RevokedTokenKeyPrefix+claims.ID).Result()
			if err == nil && revoked > 0 {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token has been revoked"})
				return
			}
			// Redis errors fall through: a cache outage should not lock
			// every user out of the API.
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Set("jwtClaims", claims)

		c.Next()
	}
}
