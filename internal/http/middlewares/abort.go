package middlewares

import (
	"github.com/geocoder89/kinerjahub/internal/apperr"
	"github.com/gin-gonic/gin"
)

// abortJSON writes the same failure envelope the handlers use.
func abortJSON(c *gin.Context, status int, code, message string) {
	body := gin.H{
		"success": false,
		"message": message,
		"code":    code,
	}
	if id, ok := c.Get(CtxRequestID); ok {
		body["requestId"] = id
	}
	c.AbortWithStatusJSON(status, body)
}

func abortWithError(c *gin.Context, err error) {
	appErr, ok := apperr.As(err)
	if !ok {
		appErr = apperr.Internal("Internal server error.", err)
	}
	abortJSON(c, appErr.Kind.Status(), appErr.Code, appErr.Message)
}

// ExposeErrorDetail marks the request so error responses may echo internal detail.
func ExposeErrorDetail(enabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(CtxExposeErrors, enabled)
		c.Next()
	}
}
