package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hrdocs/personnel-backend/internal/database"
	"github.com/hrdocs/personnel-backend/internal/models"
	"github.com/hrdocs/personnel-backend/internal/utils"
	"github.com/sirupsen/logrus"
)

// Audit actions
const (
	AuditLogin             = "login"
	AuditLoginFailed       = "login_failed"
	AuditTokenRefresh      = "token_refresh"
	AuditDocumentCreated   = "document_created"
	AuditDocumentSent      = "document_sent"
	AuditDocumentArchived  = "document_archived"
	AuditDocumentSigned    = "document_signed"
	AuditInternshipChanged = "internship_changed"
	AuditInternshipsSwept  = "internships_swept"
	AuditDirectoryDeleted  = "directory_deleted"
	AuditAccountChanged    = "account_changed"
	AuditPasswordReset     = "password_reset"
	AuditSettingChanged    = "setting_changed"
)

// AuditEvent is an action to be recorded
type AuditEvent struct {
	// UserID is nil before authentication and for system jobs
	UserID     *int64
	Action     string
	EntityType string
	EntityID   string
	IPAddress  string
	UserAgent  string
	Details    map[string]interface{}
}

// AuditService writes the audit trail
type AuditService struct {
	logs    *database.AuditLogRepository
	enabled bool
	logger  *logrus.Logger
}

// NewAuditService creates a new audit service
func NewAuditService(logs *database.AuditLogRepository, enabled bool, logger *logrus.Logger) *AuditService {
	return &AuditService{logs: logs, enabled: enabled, logger: logger}
}

// Record stores an event. Audit failures are logged and never fail the
// operation being audited.
func (s *AuditService) Record(ctx context.Context, event AuditEvent) {
	if s == nil || !s.enabled {
		return
	}
	if err := s.record(ctx, event); err != nil {
		s.logger.WithError(err).WithField("action", event.Action).Warn("Failed to write audit event")
	}
}

func (s *AuditService) record(ctx context.Context, event AuditEvent) error {
	details := event.Details
	if details == nil {
		details = map[string]interface{}{}
	}
	if event.UserAgent != "" {
		details["device_info"] = utils.ParseClient(event.UserAgent)
	}
	raw, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("failed to encode audit details: %w", err)
	}

	entry := &models.AuditLog{
		ID:         uuid.New(),
		Action:     event.Action,
		EntityType: event.EntityType,
		EntityID:   event.EntityID,
		Details:    raw,
		IPAddress:  event.IPAddress,
		UserAgent:  event.UserAgent,
	}
	if event.UserID != nil {
		entry.UserID = models.NewNullInt64(*event.UserID)
	}
	return s.logs.Create(ctx, entry)
}

// Recent returns the newest audit entries, optionally for one user
func (s *AuditService) Recent(ctx context.Context, userID int64, limit int) ([]models.AuditLog, error) {
	return s.logs.ListRecent(ctx, userID, limit)
}

// CleanupOldAuditLogs removes entries older than the retention period
func (s *AuditService) CleanupOldAuditLogs(ctx context.Context, olderThan time.Duration) (int64, error) {
	return s.logs.DeleteOlderThan(ctx, time.Now().Add(-olderThan))
}
