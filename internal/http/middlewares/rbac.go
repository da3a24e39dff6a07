package middlewares

import (
	"net/http"

	"github.com/geocoder89/kinerjahub/internal/authz"
	"github.com/geocoder89/kinerjahub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// RequireRole admits only the listed roles. It must run after RequireAuth.
func RequireRole(roles ...user.Role) gin.HandlerFunc {
	allowed := make(map[user.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		id, ok := IdentityFromContext(c)
		if !ok {
			abortJSON(c, http.StatusUnauthorized, "missing_identity", "Missing identity context.")
			return
		}

		if _, ok := allowed[id.Role]; !ok {
			abortWithError(c, authz.ErrForbiddenRole)
			return
		}
		c.Next()
	}
}
