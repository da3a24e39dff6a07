package middlewares

// gin context keys shared with handlers.
const (
	CtxRequestID    = "request_id"
	CtxIdentity     = "auth.identity"
	CtxExposeErrors = "errors.expose"
)
