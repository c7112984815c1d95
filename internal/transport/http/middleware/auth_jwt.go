package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"eventhub/internal/core/auth"
	"eventhub/internal/domain"
	resp "eventhub/internal/transport/http/response"
)

const keyPrincipal = "principal"

// AuthJWT verifies the bearer token and resolves the acting principal from
// the token's email claim. A missing or soft-deleted account fails even if
// the token itself is valid.
func AuthJWT(j *auth.JWTer, users domain.UserRepository, requireRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Error(resp.CodeUnauthorized, "Token header not found"))
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")
		claims, err := j.Parse(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Error(resp.CodeUnauthorized, "Invalid token"))
			return
		}
		if requireRole != "" && claims.Role != requireRole {
			c.AbortWithStatusJSON(http.StatusForbidden, resp.Error(resp.CodeForbidden, "forbidden"))
			return
		}
		u, err := users.FindByEmail(c.Request.Context(), claims.Email)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Error(resp.CodeUnauthorized, "User not found"))
			return
		}
		c.Set(keyPrincipal, u)
		c.Set("userId", u.ID)
		c.Set("role", u.Role)
		c.Next()
	}
}

// Principal returns the authenticated user set by AuthJWT.
func Principal(c *gin.Context) (*domain.User, bool) {
	v, ok := c.Get(keyPrincipal)
	if !ok {
		return nil, false
	}
	u, ok := v.(*domain.User)
	return u, ok
}
