// Package api provides the HTTP API for the Framehaus server.
package api

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/framehaus/framehaus/internal/api/handlers"
	"github.com/framehaus/framehaus/internal/api/middleware"
	"github.com/framehaus/framehaus/internal/auth"
	"github.com/framehaus/framehaus/internal/billing"
	"github.com/framehaus/framehaus/internal/config"
	"github.com/framehaus/framehaus/internal/db"
	"github.com/framehaus/framehaus/internal/landing"
	"github.com/framehaus/framehaus/internal/provisioning"
	"github.com/framehaus/framehaus/internal/storage"
)

// Config holds configuration for the API router.
type Config struct {
	// Environment controls production-only guards such as the CORS policy.
	Environment config.Environment
	// AllowedOrigins for CORS. Empty means all origins allowed in dev mode.
	AllowedOrigins []string
	// RateLimitRequests is the number of requests allowed per period.
	RateLimitRequests int64
	// RateLimitPeriod is the duration string for rate limiting (e.g. "1m", "1h").
	RateLimitPeriod string
}

// DefaultConfig returns a Config with sensible defaults for development.
func DefaultConfig() Config {
	return Config{
		Environment:       config.EnvDevelopment,
		AllowedOrigins:    []string{},
		RateLimitRequests: 100,
		RateLimitPeriod:   "1m",
	}
}

// Router wraps a Gin engine with configured middleware and routes.
type Router struct {
	Engine *gin.Engine
	logger zerolog.Logger
}

// NewRouter creates a new Router with the given dependencies.
func NewRouter(
	cfg Config,
	database *db.DB,
	sessions *auth.SessionStore,
	login *auth.LoginService,
	provisioner *provisioning.Provisioner,
	landingSvc *landing.Service,
	sweeper *billing.Sweeper,
	objects *storage.Client,
	logger zerolog.Logger,
) (*Router, error) {
	r := &Router{
		Engine: gin.New(),
		logger: logger.With().Str("component", "router").Logger(),
	}

	// Global middleware
	r.Engine.Use(gin.Recovery())
	r.Engine.Use(middleware.RequestLogger(logger))
	r.Engine.Use(middleware.CORS(cfg.AllowedOrigins, cfg.Environment))

	rateLimiter, err := middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitPeriod)
	if err != nil {
		return nil, err
	}
	r.Engine.Use(rateLimiter)

	// Public endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(database, logger)
	healthHandler.RegisterPublicRoutes(r.Engine)

	metricsHandler := handlers.NewMetricsHandler(logger)
	metricsHandler.RegisterPublicRoutes(r.Engine)

	landingHandler := handlers.NewLandingHandler(landingSvc, database, logger)
	landingHandler.RegisterPublicRoutes(r.Engine)

	brandsHandler := handlers.NewBrandsHandler(database, sweeper, logger)
	brandsHandler.RegisterPublicRoutes(r.Engine)

	// Auth routes (no auth required)
	authGroup := r.Engine.Group("/auth")
	authHandler := handlers.NewAuthHandler(login, sessions, logger)
	authHandler.RegisterRoutes(authGroup)

	// API v1 routes (session required)
	apiV1 := r.Engine.Group("/api/v1")
	apiV1.Use(middleware.AuthMiddleware(sessions, logger))

	authHandler.RegisterSessionRoutes(apiV1.Group("/auth"))

	brandsHandler.RegisterRoutes(apiV1)

	albumsHandler := handlers.NewAlbumsHandler(database, logger)
	albumsHandler.RegisterRoutes(apiV1)

	photosHandler := handlers.NewPhotosHandler(database, objects, logger)
	photosHandler.RegisterRoutes(apiV1)

	landingHandler.RegisterRoutes(apiV1)

	// Superadmin console routes
	admin := apiV1.Group("/admin")
	admin.Use(middleware.SuperadminMiddleware(logger))

	provisioningHandler := handlers.NewProvisioningHandler(provisioner, logger)
	provisioningHandler.RegisterRoutes(admin)

	brandsHandler.RegisterAdminRoutes(admin)

	auditLogsHandler := handlers.NewAuditLogsHandler(database, logger)
	auditLogsHandler.RegisterRoutes(admin)

	r.logger.Info().Msg("API router initialized")
	return r, nil
}
