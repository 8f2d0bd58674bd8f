package models

import (
	"time"

	"github.com/google/uuid"
)

// Account represents a credential record in the authentication store: the
// login half of an identity. An account may exist without a Superuser
// profile (an orphan left by a partially failed provisioning attempt).
type Account struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewAccount creates an Account with the given email and password hash.
func NewAccount(email, passwordHash string) *Account {
	now := time.Now()
	return &Account{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Superuser represents the profile half of an identity: a login-capable
// owner of one or more brands. Its ID matches the Account ID.
type Superuser struct {
	ID           uuid.UUID   `json:"id"`
	Email        string      `json:"email"`
	BrandIDs     []uuid.UUID `json:"brand_ids"`
	IsSuperadmin bool        `json:"is_superadmin"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// NewSuperuser creates a Superuser profile for an existing account id. The
// brand list is never nil: the profile column rejects NULL, and the JSON
// form serializes as an empty array.
func NewSuperuser(accountID uuid.UUID, email string, brandIDs ...uuid.UUID) *Superuser {
	if brandIDs == nil {
		brandIDs = []uuid.UUID{}
	}
	now := time.Now()
	return &Superuser{
		ID:        accountID,
		Email:     email,
		BrandIDs:  brandIDs,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// OwnsBrand returns true if the superuser's brand list contains the id.
func (s *Superuser) OwnsBrand(brandID uuid.UUID) bool {
	for _, id := range s.BrandIDs {
		if id == brandID {
			return true
		}
	}
	return false
}
