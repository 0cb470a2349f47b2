package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/XquisitoAI/xquisito-backend/internal/auth"
)

const claimsKey = "session_claims"

// Session validates the table-session token on every request and stores
// the claims in the gin context. Requests without a valid token are
// rejected before reaching any handler.
func Session(manager *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": auth.ErrMissingToken.Error()})
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		claims, err := manager.Validate(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": auth.ErrInvalidToken.Error()})
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// SessionClaims returns the validated claims stored by Session, or nil
// on unauthenticated routes.
func SessionClaims(c *gin.Context) *auth.SessionClaims {
	value, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, ok := value.(*auth.SessionClaims)
	if !ok {
		return nil
	}
	return claims
}
