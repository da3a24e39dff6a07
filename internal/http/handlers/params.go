package handlers

import (
	"strconv"

	"github.com/geocoder89/kinerjahub/internal/apperr"
	"github.com/geocoder89/kinerjahub/internal/auth"
	"github.com/geocoder89/kinerjahub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

var errInvalidID = apperr.Invalid("invalid_id", "ID must be a positive integer.", apperr.Field("id", "must be a positive integer"))

// pathID parses the :id segment, answering 400 itself when it is not a positive integer.
func pathID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		RespondErr(ctx, errInvalidID)
		return 0, false
	}
	return id, true
}

// optionalQueryID reads a positive integer query parameter. Absent means nil.
func optionalQueryID(ctx *gin.Context, name string) (*int64, bool) {
	raw, ok := ctx.GetQuery(name)
	if !ok || raw == "" {
		return nil, true
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		RespondErr(ctx, apperr.Invalid("invalid_query", "Query parameter must be a positive integer.", apperr.Field(name, "must be a positive integer")))
		return nil, false
	}
	return &id, true
}

// identity returns the caller stored by the auth middleware.
func identity(ctx *gin.Context) (auth.Identity, bool) {
	id, ok := middlewares.IdentityFromContext(ctx)
	if !ok {
		RespondErr(ctx, auth.ErrMissingToken)
		return auth.Identity{}, false
	}
	return id, true
}
