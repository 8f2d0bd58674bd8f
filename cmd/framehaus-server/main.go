// Package main is the entrypoint for the Framehaus server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/framehaus/framehaus/internal/api"
	"github.com/framehaus/framehaus/internal/auth"
	"github.com/framehaus/framehaus/internal/billing"
	"github.com/framehaus/framehaus/internal/config"
	"github.com/framehaus/framehaus/internal/db"
	"github.com/framehaus/framehaus/internal/landing"
	"github.com/framehaus/framehaus/internal/provisioning"
	"github.com/framehaus/framehaus/internal/storage"
	"github.com/framehaus/framehaus/internal/thumbs"
)

var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("version", Version).Logger()
	if os.Getenv("ENV") != string(config.EnvProduction) {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	logger.Info().
		Str("version", Version).
		Str("commit", Commit).
		Str("build_date", BuildDate).
		Msg("Starting Framehaus server")

	cfg := config.LoadServerConfig()

	if cfg.DatabaseURL == "" {
		logger.Fatal().Msg("DATABASE_URL environment variable is required")
		return 1
	}

	database, err := db.New(ctx, db.DefaultConfig(cfg.DatabaseURL), logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
		return 1
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Failed to run database migrations")
		return 1
	}

	// Redis backs the published landing page cache. The server runs without
	// it; pages are then always read from the store.
	var landingCache landing.Cache
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to parse REDIS_URL")
			return 1
		}
		redisClient := redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn().Err(err).Msg("Redis unreachable, serving landing pages without cache")
		} else {
			landingCache = landing.NewRedisCache(redisClient)
			defer redisClient.Close()
		}
	}

	if cfg.SessionSecret == "" {
		logger.Fatal().Msg("SESSION_SECRET environment variable is required")
		return 1
	}

	isSecure := cfg.Environment == config.EnvProduction
	sessionCfg := auth.DefaultSessionConfig([]byte(cfg.SessionSecret), isSecure, cfg.SessionMaxAge)
	sessions, err := auth.NewSessionStore(sessionCfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize session store")
		return 1
	}

	objects, err := storage.New(ctx, cfg.S3, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize object storage")
		return 1
	}

	login := auth.NewLoginService(database, logger)
	provisioner := provisioning.NewProvisioner(database, logger)
	landingSvc := landing.NewService(database, landingCache, logger)
	sweeper := billing.NewSweeper(database, logger)
	thumbPool := thumbs.NewPool(database, objects, cfg.ThumbWorkers, logger)

	routerCfg := api.Config{
		Environment:       cfg.Environment,
		AllowedOrigins:    cfg.AllowedOrigins,
		RateLimitRequests: cfg.RateLimitRequests,
		RateLimitPeriod:   cfg.RateLimitPeriod,
	}

	router, err := api.NewRouter(routerCfg, database, sessions, login, provisioner, landingSvc, sweeper, objects, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize router")
		return 1
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router.Engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.ListenAddr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	if err := sweeper.Start(); err != nil {
		logger.Error().Err(err).Msg("Failed to start billing sweeper")
	}
	defer sweeper.Stop()

	thumbPool.Start(ctx)
	defer thumbPool.Stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	logger.Info().Str("signal", sig.String()).Msg("Shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server shutdown error")
		return 1
	}

	logger.Info().Msg("Server stopped gracefully")
	return 0
}
