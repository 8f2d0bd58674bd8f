// Package models defines the domain models for Framehaus.
package models

import (
	"time"

	"github.com/google/uuid"
)

// BrandStatus defines the lifecycle status of a brand.
type BrandStatus string

const (
	// BrandStatusActive is a live, serving brand.
	BrandStatusActive BrandStatus = "active"
	// BrandStatusSuspended is a brand disabled by an admin or an expired subscription.
	BrandStatusSuspended BrandStatus = "suspended"
	// BrandStatusPending is a brand created but not yet activated.
	BrandStatusPending BrandStatus = "pending"
)

// SubscriptionStatus defines the billing state of a brand's subscription.
type SubscriptionStatus string

const (
	// SubscriptionActive is a paid, current subscription.
	SubscriptionActive SubscriptionStatus = "active"
	// SubscriptionPastDue is a subscription whose period end has passed.
	SubscriptionPastDue SubscriptionStatus = "past_due"
	// SubscriptionCanceled is a subscription canceled by the customer.
	SubscriptionCanceled SubscriptionStatus = "canceled"
)

// Subscription holds the billing state attached to a brand. The billing
// reference is an opaque identifier in the external payment provider.
type Subscription struct {
	Status     SubscriptionStatus `json:"status"`
	BillingRef string             `json:"billing_ref,omitempty"`
	PeriodEnd  time.Time          `json:"period_end"`
}

// Branding holds the per-brand theme colors.
type Branding struct {
	PrimaryColor   string `json:"primary_color,omitempty"`
	SecondaryColor string `json:"secondary_color,omitempty"`
}

// SEO holds the search metadata served on the brand's public pages.
type SEO struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// Brand represents one tenant: an isolated gallery instance with its own
// subdomain, owner, and subscription.
type Brand struct {
	ID           uuid.UUID    `json:"id"`
	Name         string       `json:"name"`
	Slug         string       `json:"slug"`
	Subdomain    string       `json:"subdomain"`
	OwnerEmail   string       `json:"owner_email"`
	Phone        string       `json:"phone,omitempty"`
	Address      string       `json:"address,omitempty"`
	Status       BrandStatus  `json:"status"`
	Branding     Branding     `json:"branding"`
	Subscription Subscription `json:"subscription"`
	SEO          SEO          `json:"seo"`
	SuperuserID  uuid.UUID    `json:"superuser_id"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// NewBrand creates a Brand with active status, a one-year subscription
// period, and SEO fields defaulted from the name.
func NewBrand(name, slug, subdomain, ownerEmail string, superuserID uuid.UUID) *Brand {
	now := time.Now()
	return &Brand{
		ID:          uuid.New(),
		Name:        name,
		Slug:        slug,
		Subdomain:   subdomain,
		OwnerEmail:  ownerEmail,
		Status:      BrandStatusActive,
		SuperuserID: superuserID,
		Subscription: Subscription{
			Status:    SubscriptionActive,
			PeriodEnd: now.AddDate(1, 0, 0),
		},
		SEO: SEO{
			Title:       name,
			Description: name + " photo gallery",
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsActive returns true if the brand is serving traffic.
func (b *Brand) IsActive() bool {
	return b.Status == BrandStatusActive
}

// SubscriptionExpired returns true if the subscription period end has passed.
func (b *Brand) SubscriptionExpired(now time.Time) bool {
	return now.After(b.Subscription.PeriodEnd)
}
