// README: Bearer-token auth middleware; attaches the verified actor to the request.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"motorpool/internal/auth"
	"motorpool/internal/modules/identity"
	"motorpool/internal/types"
)

const actorKey = "actor"

// TokenVerifier abstracts the JWT service so tests can stub verification.
type TokenVerifier interface {
	VerifyToken(raw string) (*auth.Claims, error)
}

func Auth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "malformed authorization header"})
			return
		}
		claims, err := verifier.VerifyToken(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(actorKey, identity.Actor{
			UserID:       types.ID(claims.UserID),
			Role:         identity.Role(claims.Role),
			DepartmentID: types.ID(claims.DepartmentID),
		})
		c.Next()
	}
}

// Actor returns the verified actor set by Auth. The zero Actor means the
// route was not behind Auth.
func Actor(c *gin.Context) identity.Actor {
	v, ok := c.Get(actorKey)
	if !ok {
		return identity.Actor{}
	}
	actor, _ := v.(identity.Actor)
	return actor
}

// RequireRoles gates a route group to the given roles after Auth ran.
func RequireRoles(roles ...identity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := identity.RequireRole(Actor(c), roles...); err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
