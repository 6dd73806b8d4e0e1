package middleware

import (
	"net/http"
	"strings"

	"gearvault/internal/domain"

	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

// TokenVerifier resolves a bearer credential into a principal.
type TokenVerifier interface {
	Verify(token string) (domain.Principal, error)
}

// JWTAuth rejects requests without a valid bearer token and stores the
// verified principal on the context.
func JWTAuth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "AUTH_HEADER_MISSING", "message": "Authorization header is required"},
			})
			return
		}

		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "INVALID_AUTH_FORMAT", "message": "Authorization header must be: Bearer <token>"},
			})
			return
		}

		principal, err := verifier.Verify(strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "INVALID_TOKEN", "message": "Invalid or expired token"},
			})
			return
		}

		c.Set(principalKey, principal)
		c.Set("user_id", principal.UserID)
		c.Next()
	}
}

// GetPrincipal returns the verified caller, or the zero principal on
// unauthenticated routes.
func GetPrincipal(c *gin.Context) domain.Principal {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(domain.Principal); ok {
			return p
		}
	}
	return domain.Principal{}
}

// SetPrincipal stores p on the context; used by tests and internal callers.
func SetPrincipal(c *gin.Context, p domain.Principal) {
	c.Set(principalKey, p)
	c.Set("user_id", p.UserID)
}
