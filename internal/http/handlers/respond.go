package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/kinerjahub/internal/apperr"
	"github.com/geocoder89/kinerjahub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

// Envelope is the shape of every JSON response body.
type Envelope struct {
	Success   bool                `json:"success"`
	Message   string              `json:"message,omitempty"`
	Data      any                 `json:"data,omitempty"`
	Count     *int                `json:"count,omitempty"`
	Errors    []apperr.FieldError `json:"errors,omitempty"`
	Code      string              `json:"code,omitempty"`
	RequestID string              `json:"requestId,omitempty"`
	// development only
	Type   string `json:"type,omitempty"`
	Detail string `json:"detail,omitempty"`
}

const requestTimeout = 3 * time.Second

func requestContext(ctx *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx.Request.Context(), requestTimeout)
}

func requestIDFrom(ctx *gin.Context) string {
	v, ok := ctx.Get(middlewares.CtxRequestID)

	if ok {
		s, ok := v.(string)
		if ok && s != "" {
			return s
		}
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

func RespondData(ctx *gin.Context, status int, message string, data any) {
	ctx.JSON(status, Envelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func RespondList(ctx *gin.Context, message string, data any, count int) {
	ctx.JSON(http.StatusOK, Envelope{
		Success: true,
		Message: message,
		Data:    data,
		Count:   &count,
	})
}

// RespondErr is the single place errors become HTTP responses.
func RespondErr(ctx *gin.Context, err error) {
	appErr, ok := apperr.As(err)
	if !ok {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeErr(ctx, http.StatusRequestEntityTooLarge, &apperr.Error{
				Kind:    apperr.KindValidation,
				Code:    "payload_too_large",
				Message: "Request body is too large.",
				Err:     err,
			})
			return
		}
		appErr = apperr.Internal("Internal server error.", err)
	}

	status := appErr.Kind.Status()
	if status >= http.StatusInternalServerError {
		slog.Default().ErrorContext(ctx.Request.Context(), "request failed",
			"route", ctx.FullPath(),
			"request_id", requestIDFrom(ctx),
			"err", err,
		)
	}

	writeErr(ctx, status, appErr)
}

func writeErr(ctx *gin.Context, status int, appErr *apperr.Error) {
	body := Envelope{
		Success:   false,
		Message:   appErr.Message,
		Errors:    appErr.Fields,
		Code:      appErr.Code,
		RequestID: requestIDFrom(ctx),
	}

	if ctx.GetBool(middlewares.CtxExposeErrors) {
		body.Type = appErr.Kind.String()
		if appErr.Err != nil {
			body.Detail = appErr.Err.Error()
		}
	}

	ctx.AbortWithStatusJSON(status, body)
}
