package http

import (
	"log/slog"

	"github.com/geocoder89/kinerjahub/internal/auth"
	"github.com/geocoder89/kinerjahub/internal/config"
	"github.com/geocoder89/kinerjahub/internal/domain/user"
	"github.com/geocoder89/kinerjahub/internal/http/handlers"
	"github.com/geocoder89/kinerjahub/internal/http/middlewares"
	"github.com/geocoder89/kinerjahub/internal/observability"
	"github.com/geocoder89/kinerjahub/internal/security"
	"github.com/geocoder89/kinerjahub/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Deps are the long-lived collaborators the router wires into handlers.
type Deps struct {
	Stores service.Stores
	Tokens *auth.Manager
	Hasher security.PasswordHasher

	// AuthLimiter guards the public auth endpoints. nil selects an in-memory limiter.
	AuthLimiter middlewares.Limiter

	// Prom and Gatherer are optional; without them /metrics is not mounted.
	Prom     *observability.Prom
	Gatherer prometheus.Gatherer

	// Tracing adds the otelgin middleware.
	Tracing bool
}

func NewRouter(log *slog.Logger, cfg config.Config, deps Deps) *gin.Engine {
	switch cfg.Env {
	case config.EnvProduction:
		gin.SetMode(gin.ReleaseMode)
	case config.EnvTest:
		gin.SetMode(gin.TestMode)
	}

	r := gin.New()

	// middleware
	r.Use(gin.Recovery())
	if deps.Tracing {
		r.Use(otelgin.Middleware("kinerjahub-api"))
	}
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middlewares.ExposeErrorDetail(cfg.ExposeErrorDetail()))
	if cfg.MaxBodyBytes > 0 {
		r.Use(middlewares.MaxBodyBytes(cfg.MaxBodyBytes))
	}
	r.Use(middlewares.RequireJSON())

	var (
		failures    middlewares.FailureRecorder
		rateLimited middlewares.RateLimitRecorder
	)
	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
		failures = deps.Prom
		rateLimited = deps.Prom
	}

	r.NoRoute(func(ctx *gin.Context) {
		ctx.JSON(404, handlers.Envelope{Success: false, Message: "Route not found.", Code: "route_not_found"})
	})

	// health
	h := handlers.NewHealthHandler(deps.Stores.Ping)
	r.GET("/", h.Root)
	r.GET("/health", h.Healthz)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	// services
	authSvc := service.NewAuthService(deps.Stores.Users, deps.Hasher, deps.Tokens)
	reportSvc := service.NewReportService(deps.Stores.Reports, deps.Stores.Categories)
	unitSvc := service.NewUnitService(deps.Stores.Units)
	userSvc := service.NewUserService(deps.Stores.Users, deps.Hasher)

	authHandler := handlers.NewAuthHandler(authSvc, failures)
	reportsHandler := handlers.NewReportsHandler(reportSvc)
	unitsHandler := handlers.NewUnitsHandler(unitSvc)
	usersHandler := handlers.NewUsersHandler(userSvc)

	authMW := middlewares.NewAuthMiddleware(deps.Tokens, failures)
	requireAuth := authMW.RequireAuth()
	superOnly := middlewares.RequireRole(user.RoleSuperUser)
	writers := middlewares.RequireRole(user.RoleSuperUser, user.RoleEntryUser)

	limiter := deps.AuthLimiter
	if limiter == nil {
		limiter = middlewares.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow)
	}
	limited := middlewares.RateLimit(limiter, middlewares.KeyByIP, rateLimited)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", limited, authHandler.Register)
		authGroup.POST("/login", limited, authHandler.Login)
		authGroup.POST("/refresh", limited, authHandler.Refresh)
		authGroup.GET("/me", requireAuth, authHandler.Me)
	}

	reports := api.Group("/reports", requireAuth)
	{
		reports.GET("", reportsHandler.List)
		reports.GET("/kategori", reportsHandler.Categories)
		reports.GET("/:id", reportsHandler.Get)
		reports.POST("", writers, reportsHandler.Create)
		reports.PATCH("/:id", writers, reportsHandler.Update)
		reports.DELETE("/:id", superOnly, reportsHandler.Delete)
	}

	units := api.Group("/units", requireAuth)
	{
		units.GET("", unitsHandler.List)
		units.GET("/:id", unitsHandler.Get)
		units.POST("", superOnly, unitsHandler.Create)
		units.PATCH("/:id", superOnly, unitsHandler.Update)
		units.DELETE("/:id", superOnly, unitsHandler.Delete)
	}

	users := api.Group("/users", requireAuth)
	{
		users.GET("", usersHandler.List)
		users.GET("/:id", usersHandler.Get)
		users.POST("", superOnly, usersHandler.Create)
		users.POST("/create", superOnly, usersHandler.Create)
		users.PATCH("/:id", superOnly, usersHandler.Update)
		users.DELETE("/:id", superOnly, usersHandler.Delete)
	}

	log.Debug("router ready", "env", cfg.Env)

	return r
}
