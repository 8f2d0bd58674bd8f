package auth

import (
	"encoding/gob"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"
)

func init() {
	// Register types for session serialization
	gob.Register(uuid.UUID{})
	gob.Register(time.Time{})
}

const (
	// SessionName is the name of the session cookie.
	SessionName = "framehaus_session"
	// UserIDKey is the session key for the authenticated superuser ID.
	UserIDKey = "user_id"
	// EmailKey is the session key for the superuser's email.
	EmailKey = "email"
	// SuperadminKey is the session key for the superadmin flag.
	SuperadminKey = "is_superadmin"
	// AuthenticatedAtKey is the session key for when the user authenticated.
	AuthenticatedAtKey = "authenticated_at"
)

// SessionConfig holds session store configuration.
type SessionConfig struct {
	Secret     []byte
	MaxAge     int  // seconds
	Secure     bool // require HTTPS
	HTTPOnly   bool // prevent JavaScript access
	SameSite   http.SameSite
	CookiePath string
}

// DefaultSessionConfig returns a SessionConfig with secure defaults.
func DefaultSessionConfig(secret []byte, secure bool, maxAge int) SessionConfig {
	return SessionConfig{
		Secret:     secret,
		MaxAge:     maxAge,
		Secure:     secure,
		HTTPOnly:   true,
		SameSite:   http.SameSiteLaxMode,
		CookiePath: "/",
	}
}

// SessionStore wraps a gorilla/sessions store with helper methods.
type SessionStore struct {
	store  *sessions.CookieStore
	logger zerolog.Logger
}

// NewSessionStore creates a new session store.
func NewSessionStore(cfg SessionConfig, logger zerolog.Logger) (*SessionStore, error) {
	if len(cfg.Secret) < 32 {
		return nil, fmt.Errorf("session secret must be at least 32 bytes")
	}

	store := sessions.NewCookieStore(cfg.Secret)
	store.Options = &sessions.Options{
		Path:     cfg.CookiePath,
		MaxAge:   cfg.MaxAge,
		HttpOnly: cfg.HTTPOnly,
		Secure:   cfg.Secure,
		SameSite: cfg.SameSite,
	}

	s := &SessionStore{
		store:  store,
		logger: logger.With().Str("component", "session").Logger(),
	}

	s.logger.Info().
		Bool("secure", cfg.Secure).
		Int("max_age", cfg.MaxAge).
		Msg("session store initialized")

	return s, nil
}

// SessionUser represents the authenticated superuser data stored in session.
type SessionUser struct {
	ID              uuid.UUID
	Email           string
	IsSuperadmin    bool
	AuthenticatedAt time.Time
}

// SetUser stores user data in the session after successful authentication.
func (s *SessionStore) SetUser(r *http.Request, w http.ResponseWriter, user *SessionUser) error {
	session, err := s.store.Get(r, SessionName)
	if err != nil {
		// A stale or tampered cookie decodes to an error; start fresh
		session, _ = s.store.New(r, SessionName)
	}

	session.Values[UserIDKey] = user.ID
	session.Values[EmailKey] = user.Email
	session.Values[SuperadminKey] = user.IsSuperadmin
	session.Values[AuthenticatedAtKey] = time.Now()

	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// GetUser retrieves the authenticated user from the request session.
func (s *SessionStore) GetUser(r *http.Request) (*SessionUser, error) {
	session, err := s.store.Get(r, SessionName)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	userID, ok := session.Values[UserIDKey].(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return nil, fmt.Errorf("no authenticated user in session")
	}

	user := &SessionUser{ID: userID}
	if email, ok := session.Values[EmailKey].(string); ok {
		user.Email = email
	}
	if isSuperadmin, ok := session.Values[SuperadminKey].(bool); ok {
		user.IsSuperadmin = isSuperadmin
	}
	if at, ok := session.Values[AuthenticatedAtKey].(time.Time); ok {
		user.AuthenticatedAt = at
	}

	return user, nil
}

// ClearUser removes the authenticated user from the session.
func (s *SessionStore) ClearUser(r *http.Request, w http.ResponseWriter) error {
	session, err := s.store.Get(r, SessionName)
	if err != nil {
		session, _ = s.store.New(r, SessionName)
	}

	session.Options.MaxAge = -1
	for k := range session.Values {
		delete(session.Values, k)
	}

	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
