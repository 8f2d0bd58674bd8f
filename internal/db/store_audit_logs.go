package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/framehaus/framehaus/internal/models"
)

// CreateAdminAuditLog inserts a superadmin console audit entry. A nil
// SuperuserID marks a system-initiated action and is stored as NULL so the
// foreign key to superusers does not require a synthetic actor row.
func (db *DB) CreateAdminAuditLog(ctx context.Context, log *models.AdminAuditLog) error {
	var actor *uuid.UUID
	if log.SuperuserID != uuid.Nil {
		actor = &log.SuperuserID
	}

	_, err := db.Pool.Exec(ctx, `
		INSERT INTO admin_audit_logs (id, superuser_id, action, brand_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, log.ID, actor, string(log.Action), log.BrandID, log.Details, log.CreatedAt)
	if err != nil {
		return fmt.Errorf("create admin audit log: %w", err)
	}
	return nil
}

// ListAdminAuditLogs returns audit entries with pagination, newest first.
// System entries come back with a nil SuperuserID.
func (db *DB) ListAdminAuditLogs(ctx context.Context, limit, offset int) ([]*models.AdminAuditLog, int, error) {
	var total int
	err := db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM admin_audit_logs`).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count admin audit logs: %w", err)
	}

	rows, err := db.Pool.Query(ctx, `
		SELECT id, superuser_id, action, brand_id, details, created_at
		FROM admin_audit_logs
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list admin audit logs: %w", err)
	}
	defer rows.Close()

	var logs []*models.AdminAuditLog
	for rows.Next() {
		var log models.AdminAuditLog
		var actor *uuid.UUID
		var actionStr string
		err := rows.Scan(&log.ID, &actor, &actionStr, &log.BrandID, &log.Details, &log.CreatedAt)
		if err != nil {
			return nil, 0, fmt.Errorf("scan admin audit log: %w", err)
		}
		if actor != nil {
			log.SuperuserID = *actor
		}
		log.Action = models.AdminAction(actionStr)
		logs = append(logs, &log)
	}

	return logs, total, nil
}
