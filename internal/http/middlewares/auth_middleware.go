package middlewares

import (
	"strings"

	"github.com/geocoder89/kinerjahub/internal/apperr"
	"github.com/geocoder89/kinerjahub/internal/auth"
	"github.com/gin-gonic/gin"
)

// Keep this small interface so tests can fake it easily.
type TokenVerifier interface {
	VerifyAccess(token string) (auth.Identity, error)
}

// FailureRecorder counts rejected tokens. Satisfied by *observability.Prom.
type FailureRecorder interface {
	IncAuthFailure(reason string)
}

type AuthMiddleware struct {
	tokens  TokenVerifier
	metrics FailureRecorder
}

func NewAuthMiddleware(tokens TokenVerifier, metrics FailureRecorder) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, metrics: metrics}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			m.reject(c, auth.ErrMissingToken)
			return
		}

		id, err := m.tokens.VerifyAccess(raw)
		if err != nil {
			m.reject(c, err)
			return
		}

		c.Set(CtxIdentity, id)
		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), id))

		c.Next()
	}
}

func (m *AuthMiddleware) reject(c *gin.Context, err error) {
	if m.metrics != nil {
		reason := "invalid_token"
		if appErr, ok := apperr.As(err); ok {
			reason = appErr.Code
		}
		m.metrics.IncAuthFailure(reason)
	}
	abortWithError(c, err)
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	raw := strings.TrimSpace(header[len(prefix):])
	return raw, raw != ""
}

// IdentityFromContext returns the identity stored by RequireAuth.
func IdentityFromContext(c *gin.Context) (auth.Identity, bool) {
	v, ok := c.Get(CtxIdentity)
	if !ok {
		return auth.Identity{}, false
	}
	id, ok := v.(auth.Identity)
	return id, ok
}
