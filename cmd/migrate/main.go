// Package main is the Framehaus schema migration tool. It applies the
// embedded migrations, reports the current schema version, and lists which
// migrations a database still needs.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/framehaus/framehaus/internal/db"
)

func main() {
	var (
		dbURL   = flag.String("db", "", "Database URL (or set DATABASE_URL env var)")
		showVer = flag.Bool("version", false, "Show current schema version")
		list    = flag.Bool("list", false, "List migrations with applied/pending status")
	)
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().
		Timestamp().
		Logger()

	url := *dbURL
	if url == "" {
		url = os.Getenv("DATABASE_URL")
	}

	// Listing works without a database; status markers need one.
	if *list && url == "" {
		listMigrations(logger, 0)
		return
	}
	if url == "" {
		logger.Fatal().Msg("database URL required: use -db flag or set DATABASE_URL")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cfg := db.DefaultConfig(url)
	cfg.MaxConns = 5
	cfg.MinConns = 1

	database, err := db.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close()

	switch {
	case *list:
		version, err := database.CurrentVersion(ctx)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to get schema version")
		}
		listMigrations(logger, version)
	case *showVer:
		version, err := database.CurrentVersion(ctx)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to get schema version")
		}
		fmt.Printf("Current schema version: %d\n", version)
	default:
		runMigrations(ctx, database, logger)
	}
}

func runMigrations(ctx context.Context, database *db.DB, logger zerolog.Logger) {
	before, err := database.CurrentVersion(ctx)
	if err != nil {
		before = 0
	}

	logger.Info().Int("from_version", before).Msg("running database migrations")
	if err := database.Migrate(ctx); err != nil {
		logger.Fatal().Err(err).Msg("migration failed")
	}

	after, err := database.CurrentVersion(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("could not get current version")
		return
	}
	if after == before {
		logger.Info().Int("version", after).Msg("schema already up to date")
	} else {
		logger.Info().Int("version", after).Msg("migrations complete")
	}
}

// listMigrations prints the embedded migrations. appliedThrough is the
// current schema version, or 0 when no database was consulted.
func listMigrations(logger zerolog.Logger, appliedThrough int) {
	migrations, err := db.GetMigrations()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to list migrations")
	}

	if len(migrations) == 0 {
		fmt.Println("No migrations found")
		return
	}

	fmt.Println("Migrations:")
	for _, m := range migrations {
		status := ""
		if appliedThrough > 0 {
			if m.Version <= appliedThrough {
				status = "  [applied]"
			} else {
				status = "  [pending]"
			}
		}
		fmt.Printf("  %03d: %s%s\n", m.Version, m.Name, status)
	}
}
