package httpmiddleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"vidshare.local/internal/platform/auth"
)

func parseBearer(header string) string {
	fields := strings.Fields(header)
	if len(fields) != 2 || !strings.EqualFold(fields[0], "Bearer") {
		return ""
	}
	return fields[1]
}

func identityFromClaims(c auth.Claims) auth.Identity {
	return auth.Identity{
		UserID:        c.UserID,
		Name:          c.Name,
		Email:         c.Email,
		EmailVerified: c.EmailVerified,
		Role:          c.Role,
	}
}

// AuthRequired rejects requests without a valid bearer token.
func AuthRequired(ts auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.Request.Header.Get("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}
		token := parseBearer(header)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}
		claims, err := ts.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), identityFromClaims(claims)))
		c.Next()
	}
}

// AuthOptional attaches an identity when a valid token is present and
// otherwise lets the request through anonymously.
func AuthOptional(ts auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.Request.Header.Get("Authorization")
		if header == "" {
			c.Next()
			return
		}
		token := parseBearer(header)
		if token == "" {
			c.Next()
			return
		}
		claims, err := ts.Verify(token)
		if err != nil {
			c.Next()
			return
		}
		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), identityFromClaims(claims)))
		c.Next()
	}
}

func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := auth.GetIdentity(c.Request.Context())
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if id.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
