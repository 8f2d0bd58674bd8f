package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/framehaus/framehaus/internal/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Common login errors.
var (
	// ErrInvalidCredentials is returned for unknown emails and wrong
	// passwords alike, so responses do not leak which one it was.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrNoProfile is returned when an account exists but has no superuser
	// profile (an orphan that has not been repaired by provisioning yet).
	ErrNoProfile = errors.New("account has no superuser profile")
)

// LoginStore defines the interface for login-related data access.
type LoginStore interface {
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
	GetAccountByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	GetSuperuserByID(ctx context.Context, id uuid.UUID) (*models.Superuser, error)
	UpdateAccountPassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

// LoginService authenticates superusers against the account store.
type LoginService struct {
	store  LoginStore
	logger zerolog.Logger
}

// NewLoginService creates a new LoginService.
func NewLoginService(store LoginStore, logger zerolog.Logger) *LoginService {
	return &LoginService{
		store:  store,
		logger: logger.With().Str("component", "login").Logger(),
	}
}

// Login verifies the email/password pair and returns the session user.
func (s *LoginService) Login(ctx context.Context, email, password string) (*SessionUser, error) {
	account, err := s.store.GetAccountByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("lookup account: %w", err)
	}
	if account == nil || !CheckPassword(password, account.PasswordHash) {
		s.logger.Debug().Str("email", email).Msg("failed login attempt")
		return nil, ErrInvalidCredentials
	}

	profile, err := s.store.GetSuperuserByID(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("lookup superuser profile: %w", err)
	}
	if profile == nil {
		s.logger.Warn().
			Str("account_id", account.ID.String()).
			Str("email", email).
			Msg("login attempt by orphan account")
		return nil, ErrNoProfile
	}

	s.logger.Info().
		Str("superuser_id", profile.ID.String()).
		Bool("superadmin", profile.IsSuperadmin).
		Msg("superuser logged in")

	return &SessionUser{
		ID:              profile.ID,
		Email:           profile.Email,
		IsSuperadmin:    profile.IsSuperadmin,
		AuthenticatedAt: time.Now(),
	}, nil
}

// ChangePassword verifies the current password and replaces it. Used to
// rotate temporary passwords issued during provisioning.
func (s *LoginService) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	account, err := s.store.GetAccountByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("lookup account: %w", err)
	}
	if account == nil || !CheckPassword(current, account.PasswordHash) {
		return ErrInvalidCredentials
	}

	if len(next) < 12 {
		return fmt.Errorf("new password must be at least 12 characters")
	}

	hash, err := HashPassword(next)
	if err != nil {
		return err
	}
	if err := s.store.UpdateAccountPassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.logger.Info().Str("superuser_id", userID.String()).Msg("password changed")
	return nil
}
