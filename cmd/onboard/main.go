// Package main is the Framehaus onboarding CLI. It provisions brands and
// superadmin accounts directly against the database, for bootstrap and
// bulk-import scenarios where the HTTP console is not available yet.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/framehaus/framehaus/internal/auth"
	"github.com/framehaus/framehaus/internal/db"
	"github.com/framehaus/framehaus/internal/landing"
	"github.com/framehaus/framehaus/internal/models"
	"github.com/framehaus/framehaus/internal/provisioning"
)

var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "onboard",
		Short:        "Framehaus onboarding CLI",
		Long:         "Provision brands and superadmin accounts directly against the Framehaus database.",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newSuperadminCmd(),
		newBrandCmd(),
		newSeedCmd(),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Framehaus onboard %s\n", Version)
		},
	}
}

func newSuperadminCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "superadmin",
		Short: "Create a superadmin account",
		Long: `Create a superadmin account with a generated temporary password.

The password is printed once and never stored in plaintext; rotate it
after the first login.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSuperadmin(email)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Superadmin email address (required)")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func runSuperadmin(email string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	database, logger, err := connect(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	existing, err := database.GetAccountByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("lookup account: %w", err)
	}
	if existing != nil {
		// Promote an existing superuser instead of failing.
		if err := database.SetSuperadmin(ctx, existing.ID, true); err != nil {
			return fmt.Errorf("promote to superadmin: %w", err)
		}
		logger.Info().Str("email", email).Msg("existing account promoted to superadmin")
		return nil
	}

	password, err := auth.GenerateTemporaryPassword()
	if err != nil {
		return fmt.Errorf("generate password: %w", err)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	account := models.NewAccount(email, hash)
	if err := database.CreateAccount(ctx, account); err != nil {
		return fmt.Errorf("create account: %w", err)
	}

	profile := models.NewSuperuser(account.ID, email)
	profile.IsSuperadmin = true
	if err := database.CreateSuperuser(ctx, profile); err != nil {
		return fmt.Errorf("create superuser profile: %w", err)
	}

	logger.Info().Str("email", email).Str("superuser_id", profile.ID.String()).Msg("superadmin created")
	fmt.Printf("Superadmin created: %s\n", email)
	fmt.Printf("Temporary password: %s\n", password)
	return nil
}

func newBrandCmd() *cobra.Command {
	var (
		name      string
		subdomain string
		email     string
		phone     string
		address   string
	)

	cmd := &cobra.Command{
		Use:   "brand",
		Short: "Provision a single brand",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			database, logger, err := connect(ctx)
			if err != nil {
				return err
			}
			defer database.Close()

			provisioner := provisioning.NewProvisioner(database, logger)
			result, err := provisioner.Provision(ctx, uuid.Nil, provisioning.ProvisionRequest{
				Name:      name,
				Subdomain: subdomain,
				Email:     email,
				Phone:     phone,
				Address:   address,
			})
			if err != nil {
				return err
			}

			printResult(subdomain, result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Brand display name (required)")
	cmd.Flags().StringVar(&subdomain, "subdomain", "", "Brand subdomain (required)")
	cmd.Flags().StringVar(&email, "email", "", "Owner email address (required)")
	cmd.Flags().StringVar(&phone, "phone", "", "Owner phone number")
	cmd.Flags().StringVar(&address, "address", "", "Studio address")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("subdomain")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

// seedFile is the YAML layout accepted by the seed command.
type seedFile struct {
	Brands []seedBrand `yaml:"brands"`
}

type seedBrand struct {
	Name           string      `yaml:"name"`
	Subdomain      string      `yaml:"subdomain"`
	Email          string      `yaml:"email"`
	Phone          string      `yaml:"phone"`
	Address        string      `yaml:"address"`
	PrimaryColor   string      `yaml:"primary_color"`
	SecondaryColor string      `yaml:"secondary_color"`
	Albums         []string    `yaml:"albums"`
	Landing        seedLanding `yaml:"landing"`
}

// seedLanding builds a minimal landing page: a hero block and an optional
// text block, published immediately.
type seedLanding struct {
	Headline string `yaml:"headline"`
	About    string `yaml:"about"`
}

func newSeedCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Provision brands from a YAML file",
		Long: `Provision a batch of brands from a YAML file.

Each entry needs name, subdomain, and email. Entries that fail (for
example a taken subdomain) are reported and skipped; the rest of the
batch still runs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(file)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Path to the YAML seed file (required)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runSeed(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}

	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("parse seed file: %w", err)
	}
	if len(seed.Brands) == 0 {
		return fmt.Errorf("seed file contains no brands")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	database, logger, err := connect(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	provisioner := provisioning.NewProvisioner(database, logger)
	landingSvc := landing.NewService(database, nil, logger)

	var failures int
	for _, b := range seed.Brands {
		req := provisioning.ProvisionRequest{
			Name:      b.Name,
			Subdomain: b.Subdomain,
			Email:     b.Email,
			Phone:     b.Phone,
			Address:   b.Address,
		}
		if b.PrimaryColor != "" || b.SecondaryColor != "" {
			req.Branding = &models.Branding{
				PrimaryColor:   b.PrimaryColor,
				SecondaryColor: b.SecondaryColor,
			}
		}

		result, err := provisioner.Provision(ctx, uuid.Nil, req)
		if err != nil {
			failures++
			fmt.Fprintf(os.Stderr, "FAILED %s: %v\n", b.Subdomain, err)
			continue
		}
		printResult(b.Subdomain, result)

		if err := seedContent(ctx, database, landingSvc, result.BrandID, b); err != nil {
			failures++
			fmt.Fprintf(os.Stderr, "FAILED %s content: %v\n", b.Subdomain, err)
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d brands failed", failures, len(seed.Brands))
	}
	return nil
}

// seedContent creates the brand's starter albums and publishes a first
// landing page when the seed entry asks for them.
func seedContent(ctx context.Context, database *db.DB, landingSvc *landing.Service, brandID uuid.UUID, b seedBrand) error {
	for _, title := range b.Albums {
		if err := database.CreateAlbum(ctx, models.NewAlbum(brandID, title)); err != nil {
			return fmt.Errorf("create album %q: %w", title, err)
		}
	}

	if b.Landing.Headline == "" && b.Landing.About == "" {
		return nil
	}

	var sections []models.Section
	if b.Landing.Headline != "" {
		body, err := json.Marshal(map[string]string{"headline": b.Landing.Headline})
		if err != nil {
			return err
		}
		sections = append(sections, models.Section{Type: models.SectionHero, Body: body})
	}
	if b.Landing.About != "" {
		body, err := json.Marshal(map[string]string{"text": b.Landing.About})
		if err != nil {
			return err
		}
		sections = append(sections, models.Section{Type: models.SectionText, Body: body})
	}

	if err := landingSvc.SaveDraft(ctx, brandID, sections); err != nil {
		return fmt.Errorf("save landing draft: %w", err)
	}
	if _, err := landingSvc.Publish(ctx, brandID); err != nil {
		return fmt.Errorf("publish landing page: %w", err)
	}
	return nil
}

func printResult(subdomain string, result *provisioning.ProvisionResult) {
	fmt.Printf("Provisioned %s (brand %s, owner %s, identity %s)\n",
		subdomain, result.BrandID, result.SuperuserID, result.Outcome)
	if result.TemporaryPassword != "" {
		fmt.Printf("  Temporary password: %s\n", result.TemporaryPassword)
	}
}

func connect(ctx context.Context) (*db.DB, zerolog.Logger, error) {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().
		Timestamp().
		Logger()

	url := os.Getenv("DATABASE_URL")
	if url == "" {
		return nil, logger, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	cfg := db.DefaultConfig(url)
	cfg.MaxConns = 5
	cfg.MinConns = 1

	database, err := db.New(ctx, cfg, logger)
	if err != nil {
		return nil, logger, fmt.Errorf("connect to database: %w", err)
	}
	return database, logger, nil
}
