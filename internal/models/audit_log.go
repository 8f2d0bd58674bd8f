package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AdminAction identifies a superadmin console action for the audit trail.
type AdminAction string

const (
	// ActionProvisionBrand is a brand provisioning run.
	ActionProvisionBrand AdminAction = "provision_brand"
	// ActionSuspendBrand is a manual or billing-driven suspension.
	ActionSuspendBrand AdminAction = "suspend_brand"
	// ActionActivateBrand is a manual reactivation.
	ActionActivateBrand AdminAction = "activate_brand"
	// ActionUpdateBrand is an edit of brand details.
	ActionUpdateBrand AdminAction = "update_brand"
)

// AdminAuditLog records one superadmin console action.
type AdminAuditLog struct {
	ID          uuid.UUID       `json:"id"`
	SuperuserID uuid.UUID       `json:"superuser_id"`
	Action      AdminAction     `json:"action"`
	BrandID     *uuid.UUID      `json:"brand_id,omitempty"`
	Details     json.RawMessage `json:"details,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// NewAdminAuditLog creates an audit entry for the given actor and action.
func NewAdminAuditLog(superuserID uuid.UUID, action AdminAction, brandID *uuid.UUID, details json.RawMessage) *AdminAuditLog {
	return &AdminAuditLog{
		ID:          uuid.New(),
		SuperuserID: superuserID,
		Action:      action,
		BrandID:     brandID,
		Details:     details,
		CreatedAt:   time.Now(),
	}
}
