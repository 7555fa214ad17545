package database

import (
	"context"
	"fmt"
	"time"

	"github.com/hrdocs/personnel-backend/internal/models"
)

// AuditLogRepository stores audit entries
type AuditLogRepository struct {
	db DB
}

// NewAuditLogRepository creates a new AuditLogRepository
func NewAuditLogRepository(db DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

// Create inserts an audit entry
func (r *AuditLogRepository) Create(ctx context.Context, e *models.AuditLog) error {
	query := `
		INSERT INTO audit_logs (id, user_id, action, entity_type, entity_id, details, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`
	err := conn(ctx, r.db).QueryRowxContext(ctx, query,
		e.ID, e.UserID, e.Action, e.EntityType, e.EntityID, string(e.Details), e.IPAddress, e.UserAgent,
	).Scan(&e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to log audit event: %w", err)
	}
	return nil
}

// ListRecent returns the newest entries, optionally for one user
func (r *AuditLogRepository) ListRecent(ctx context.Context, userID int64, limit int) ([]models.AuditLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query := `
		SELECT id, user_id, action, entity_type, entity_id, details, ip_address, user_agent, created_at
		FROM audit_logs
		WHERE ($1 = 0 OR user_id = $1)
		ORDER BY created_at DESC
		LIMIT $2
	`
	logs := []models.AuditLog{}
	if err := conn(ctx, r.db).SelectContext(ctx, &logs, query, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to list audit events: %w", err)
	}
	return logs, nil
}

// DeleteOlderThan removes entries created before cutoff
func (r *AuditLogRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM audit_logs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup old audit logs: %w", err)
	}
	return result.RowsAffected()
}

// CountFailedLogins counts login_failed entries for a username since the given
// time and returns the newest one. Zero entries report since as the latest.
func (r *AuditLogRepository) CountFailedLogins(ctx context.Context, username string, since time.Time) (int, time.Time, error) {
	return r.countSince(ctx, `entity_type = 'user' AND entity_id = $2`, username, since)
}

// CountFailedLoginsFromIP counts login_failed entries from one client IP since the given time
func (r *AuditLogRepository) CountFailedLoginsFromIP(ctx context.Context, ip string, since time.Time) (int, time.Time, error) {
	return r.countSince(ctx, `ip_address = $2`, ip, since)
}

func (r *AuditLogRepository) countSince(ctx context.Context, predicate, value string, since time.Time) (int, time.Time, error) {
	query := `
		SELECT COUNT(*), COALESCE(MAX(created_at), $3)
		FROM audit_logs
		WHERE action = $1 AND ` + predicate + ` AND created_at > $3
	`
	var (
		count int
		last  time.Time
	)
	if err := conn(ctx, r.db).QueryRowxContext(ctx, query, "login_failed", value, since).Scan(&count, &last); err != nil {
		return 0, time.Time{}, fmt.Errorf("failed to count failed logins: %w", err)
	}
	return count, last, nil
}
