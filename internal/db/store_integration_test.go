//go:build integration

package db

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/framehaus/framehaus/internal/models"
)

var testDB *DB

func TestMain(m *testing.M) {
	if !dockerAvailable() {
		fmt.Println("Docker is not available, skipping integration tests")
		os.Exit(0)
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("framehaus_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		log.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		pgContainer.Terminate(ctx)
		log.Fatalf("failed to get connection string: %v", err)
	}

	logger := zerolog.New(zerolog.NewConsoleWriter())
	cfg := DefaultConfig(connStr)
	cfg.MaxConns = 5
	cfg.MinConns = 1

	testDB, err = New(ctx, cfg, logger)
	if err != nil {
		pgContainer.Terminate(ctx)
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := testDB.Migrate(ctx); err != nil {
		testDB.Close()
		pgContainer.Terminate(ctx)
		log.Fatalf("failed to run migrations: %v", err)
	}

	code := m.Run()

	testDB.Close()
	pgContainer.Terminate(ctx)

	os.Exit(code)
}

// dockerAvailable returns true if a Docker daemon is reachable.
func dockerAvailable() bool {
	cmd := exec.Command("docker", "info")
	return cmd.Run() == nil
}

// setupTestDB returns the shared test database after cleaning all tables.
func setupTestDB(t *testing.T) *DB {
	t.Helper()
	cleanTables(t, testDB)
	return testDB
}

// cleanTables truncates all user tables between tests for isolation.
func cleanTables(t *testing.T, db *DB) {
	t.Helper()
	ctx := context.Background()
	_, err := db.Pool.Exec(ctx, `
		DO $$ DECLARE r RECORD;
		BEGIN
			FOR r IN (SELECT tablename FROM pg_tables WHERE schemaname = 'public' AND tablename != 'schema_migrations') LOOP
				EXECUTE 'TRUNCATE TABLE ' || quote_ident(r.tablename) || ' CASCADE';
			END LOOP;
		END $$;
	`)
	require.NoError(t, err)
}

// createTestOwner creates and persists an account plus superuser profile.
func createTestOwner(t *testing.T, db *DB, email string) *models.Superuser {
	t.Helper()
	ctx := context.Background()
	account := models.NewAccount(email, "bcrypt-hash-"+uuid.New().String())
	require.NoError(t, db.CreateAccount(ctx, account))
	profile := models.NewSuperuser(account.ID, email)
	require.NoError(t, db.CreateSuperuser(ctx, profile))
	return profile
}

// createTestBrand provisions a brand with a fresh owner in one transaction.
func createTestBrand(t *testing.T, db *DB, name, subdomain, email string) *models.Brand {
	t.Helper()
	ctx := context.Background()
	account := models.NewAccount(email, "bcrypt-hash-"+uuid.New().String())
	require.NoError(t, db.CreateAccount(ctx, account))
	brand := models.NewBrand(name, subdomain, subdomain, email, account.ID)
	owner := models.NewSuperuser(account.ID, email, brand.ID)
	require.NoError(t, db.CreateBrandWithOwner(ctx, brand, owner))
	return brand
}

func TestStore_CreateBrandWithOwner(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	t.Run("CommitsBrandAndProfileTogether", func(t *testing.T) {
		brand := createTestBrand(t, db, "Acme Photo", "acme-photo", "owner@acme.test")

		got, err := db.GetBrandBySubdomain(ctx, "acme-photo")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, brand.ID, got.ID)
		assert.Equal(t, models.BrandStatusActive, got.Status)

		profile, err := db.GetSuperuserByEmail(ctx, "owner@acme.test")
		require.NoError(t, err)
		require.NotNil(t, profile)
		assert.Contains(t, profile.BrandIDs, brand.ID)
	})

	t.Run("DuplicateSubdomainRollsBack", func(t *testing.T) {
		createTestBrand(t, db, "First", "taken", "first@test.io")

		account := models.NewAccount("second@test.io", "bcrypt-hash")
		require.NoError(t, db.CreateAccount(ctx, account))
		brand := models.NewBrand("Second", "taken", "taken", "second@test.io", account.ID)
		owner := models.NewSuperuser(account.ID, "second@test.io", brand.ID)

		err := db.CreateBrandWithOwner(ctx, brand, owner)
		require.ErrorIs(t, err, ErrDuplicateSubdomain)

		// The losing transaction must leave no profile behind.
		profile, err := db.GetSuperuserByEmail(ctx, "second@test.io")
		require.NoError(t, err)
		assert.Nil(t, profile)
	})

	t.Run("SubdomainConflictIsCaseInsensitive", func(t *testing.T) {
		createTestBrand(t, db, "Lower", "studio-nine", "nine@test.io")

		account := models.NewAccount("ten@test.io", "bcrypt-hash")
		require.NoError(t, db.CreateAccount(ctx, account))
		brand := models.NewBrand("Upper", "studio-nine", "Studio-Nine", "ten@test.io", account.ID)
		owner := models.NewSuperuser(account.ID, "ten@test.io", brand.ID)

		err := db.CreateBrandWithOwner(ctx, brand, owner)
		require.ErrorIs(t, err, ErrDuplicateSubdomain)
	})

	t.Run("ExistingProfileGainsBrand", func(t *testing.T) {
		profile := createTestOwner(t, db, "multi@test.io")

		first := models.NewBrand("First Studio", "multi-one", "multi-one", "multi@test.io", profile.ID)
		require.NoError(t, db.CreateBrandWithOwner(ctx, first, models.NewSuperuser(profile.ID, profile.Email, first.ID)))

		second := models.NewBrand("Second Studio", "multi-two", "multi-two", "multi@test.io", profile.ID)
		require.NoError(t, db.CreateBrandWithOwner(ctx, second, models.NewSuperuser(profile.ID, profile.Email, second.ID)))

		got, err := db.GetSuperuserByEmail(ctx, "multi@test.io")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Contains(t, got.BrandIDs, first.ID)
		assert.Contains(t, got.BrandIDs, second.ID)
	})
}

func TestStore_Accounts(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	t.Run("DuplicateEmail", func(t *testing.T) {
		first := models.NewAccount("dup@test.io", "hash-one")
		require.NoError(t, db.CreateAccount(ctx, first))

		second := models.NewAccount("dup@test.io", "hash-two")
		err := db.CreateAccount(ctx, second)
		require.ErrorIs(t, err, ErrDuplicateEmail)
	})

	t.Run("NotFoundReturnsNil", func(t *testing.T) {
		got, err := db.GetAccountByEmail(ctx, "nobody@test.io")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("PasswordRotation", func(t *testing.T) {
		account := models.NewAccount("rotate@test.io", "old-hash")
		require.NoError(t, db.CreateAccount(ctx, account))

		require.NoError(t, db.UpdateAccountPassword(ctx, account.ID, "new-hash"))

		got, err := db.GetAccountByID(ctx, account.ID)
		require.NoError(t, err)
		assert.Equal(t, "new-hash", got.PasswordHash)
	})
}

func TestStore_ThumbJobQueue(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	newQueuedPhoto := func(t *testing.T, brand *models.Brand) *models.Photo {
		t.Helper()
		album := models.NewAlbum(brand.ID, "Portfolio")
		require.NoError(t, db.CreateAlbum(ctx, album))
		photo := models.NewPhoto(brand.ID, album.ID, "brands/x/photos/y.jpg", "image/jpeg")
		require.NoError(t, db.CreatePhoto(ctx, photo))
		require.NoError(t, db.EnqueueThumbJob(ctx, models.NewThumbJob(photo.ID)))
		return photo
	}

	t.Run("ClaimMarksRunning", func(t *testing.T) {
		brand := createTestBrand(t, db, "Queue", "queue-one", "q1@test.io")
		photo := newQueuedPhoto(t, brand)

		job, err := db.ClaimThumbJob(ctx)
		require.NoError(t, err)
		require.NotNil(t, job)
		assert.Equal(t, photo.ID, job.PhotoID)
		assert.Equal(t, models.ThumbJobRunning, job.State)
		assert.Equal(t, 1, job.Attempts)

		// Queue is drained, a second claim comes back empty.
		again, err := db.ClaimThumbJob(ctx)
		require.NoError(t, err)
		assert.Nil(t, again)
	})

	t.Run("CompleteFinishesJob", func(t *testing.T) {
		brand := createTestBrand(t, db, "Queue", "queue-two", "q2@test.io")
		newQueuedPhoto(t, brand)

		job, err := db.ClaimThumbJob(ctx)
		require.NoError(t, err)
		require.NotNil(t, job)

		require.NoError(t, db.CompleteThumbJob(ctx, job.ID))

		count, err := db.CountThumbJobs(ctx, models.ThumbJobDone)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("FailRequeuesUntilBudgetExhausted", func(t *testing.T) {
		brand := createTestBrand(t, db, "Queue", "queue-three", "q3@test.io")
		newQueuedPhoto(t, brand)

		for attempt := 1; attempt <= models.MaxThumbAttempts; attempt++ {
			job, err := db.ClaimThumbJob(ctx)
			require.NoError(t, err, "attempt %d", attempt)
			require.NotNil(t, job, "attempt %d", attempt)
			assert.Equal(t, attempt, job.Attempts)

			terminal, err := db.FailThumbJob(ctx, job.ID, "decode error")
			require.NoError(t, err)
			assert.Equal(t, attempt == models.MaxThumbAttempts, terminal)
		}

		job, err := db.ClaimThumbJob(ctx)
		require.NoError(t, err)
		assert.Nil(t, job, "terminally failed job must not be claimable")
	})
}

func TestStore_Landing(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	sections := []models.Section{
		{Type: models.SectionHero, Body: []byte(`{"headline":"Welcome"}`)},
	}

	t.Run("PublishWithoutDraft", func(t *testing.T) {
		brand := createTestBrand(t, db, "Landing", "landing-one", "l1@test.io")

		_, err := db.PublishLandingSnapshot(ctx, brand.ID)
		require.ErrorIs(t, err, ErrNoDraft)
	})

	t.Run("PublishBumpsVersion", func(t *testing.T) {
		brand := createTestBrand(t, db, "Landing", "landing-two", "l2@test.io")

		draft := &models.LandingDraft{BrandID: brand.ID, Sections: sections, UpdatedAt: time.Now()}
		require.NoError(t, db.UpsertLandingDraft(ctx, draft))

		first, err := db.PublishLandingSnapshot(ctx, brand.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, first.Version)

		second, err := db.PublishLandingSnapshot(ctx, brand.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, second.Version)

		latest, err := db.GetLatestLandingSnapshot(ctx, brand.ID)
		require.NoError(t, err)
		require.NotNil(t, latest)
		assert.Equal(t, 2, latest.Version)
	})

	t.Run("DraftUpsertReplaces", func(t *testing.T) {
		brand := createTestBrand(t, db, "Landing", "landing-three", "l3@test.io")

		draft := &models.LandingDraft{BrandID: brand.ID, Sections: sections, UpdatedAt: time.Now()}
		require.NoError(t, db.UpsertLandingDraft(ctx, draft))

		replaced := &models.LandingDraft{
			BrandID: brand.ID,
			Sections: []models.Section{
				{Type: models.SectionText, Body: []byte(`{"text":"About"}`)},
				{Type: models.SectionContact, Body: []byte(`{"email":"hi@test.io"}`)},
			},
			UpdatedAt: time.Now(),
		}
		require.NoError(t, db.UpsertLandingDraft(ctx, replaced))

		got, err := db.GetLandingDraft(ctx, brand.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Len(t, got.Sections, 2)
	})
}

func TestStore_Billing(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	t.Run("ExpiredActiveBrandsOnly", func(t *testing.T) {
		expired := createTestBrand(t, db, "Expired", "bill-expired", "b1@test.io")
		require.NoError(t, db.ExtendBrandSubscription(ctx, expired.ID, time.Now().Add(-24*time.Hour)))
		current := createTestBrand(t, db, "Current", "bill-current", "b2@test.io")
		require.NoError(t, db.ExtendBrandSubscription(ctx, current.ID, time.Now().Add(24*time.Hour)))

		got, err := db.ListExpiredActiveBrands(ctx, time.Now())
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, expired.ID, got[0].ID)
	})

	t.Run("SuspendForBilling", func(t *testing.T) {
		brand := createTestBrand(t, db, "Suspend", "bill-suspend", "b3@test.io")
		require.NoError(t, db.SuspendBrandForBilling(ctx, brand.ID))

		got, err := db.GetBrandByID(ctx, brand.ID)
		require.NoError(t, err)
		assert.Equal(t, models.BrandStatusSuspended, got.Status)

		// Suspended brands never show up in the sweep again.
		expired, err := db.ListExpiredActiveBrands(ctx, time.Now().Add(365*24*time.Hour))
		require.NoError(t, err)
		for _, b := range expired {
			assert.NotEqual(t, brand.ID, b.ID)
		}
	})
}

func TestStore_AuditLogs(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	profile := createTestOwner(t, db, "admin@test.io")
	brand := createTestBrand(t, db, "Audited", "audited", "owner@audited.test")

	for i := 0; i < 3; i++ {
		entry := models.NewAdminAuditLog(profile.ID, models.ActionProvisionBrand, &brand.ID, []byte(`{}`))
		require.NoError(t, db.CreateAdminAuditLog(ctx, entry))
	}

	logs, total, err := db.ListAdminAuditLogs(ctx, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, logs, 2)

	rest, _, err := db.ListAdminAuditLogs(ctx, 2, 2)
	require.NoError(t, err)
	assert.Len(t, rest, 1)

	// System actions carry the nil actor id; the row must survive the
	// superusers foreign key and round-trip as nil.
	entry := models.NewAdminAuditLog(uuid.Nil, models.ActionSuspendBrand, &brand.ID, []byte(`{"reason":"subscription_expired"}`))
	require.NoError(t, db.CreateAdminAuditLog(ctx, entry))

	logs, total, err = db.ListAdminAuditLogs(ctx, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	require.Len(t, logs, 1)
	assert.Equal(t, uuid.Nil, logs[0].SuperuserID)
	assert.Equal(t, models.ActionSuspendBrand, logs[0].Action)
}
