package mw

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"equipment-tracker-backend/internal/auth"
)

// actorKey is the gin context key holding the authenticated token claims.
const actorKey = "actor"

// BearerAuth validates the Authorization header and stores the actor claims
// in the request context.
func BearerAuth(tokens *auth.TokenService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
			return
		}

		claims, err := tokens.Validate(parts[1])
		if err != nil {
			logger.Warn("rejected bearer token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(actorKey, claims)
		c.Next()
	}
}

// Actor returns the authenticated claims set by BearerAuth, or nil on
// unauthenticated routes.
func Actor(c *gin.Context) *auth.Claims {
	v, ok := c.Get(actorKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}

// ActorID returns a pointer to the authenticated user's id, for audit
// entries.
func ActorID(c *gin.Context) *int64 {
	claims := Actor(c)
	if claims == nil {
		return nil
	}
	id := claims.UserID
	return &id
}
