package services

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/hrdocs/personnel-backend/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// detailsArg captures the JSON details written with an audit entry
type detailsArg struct {
	got map[string]interface{}
}

func (d *detailsArg) Match(v driver.Value) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	return json.Unmarshal([]byte(s), &d.got) == nil
}

func TestAuditRecord(t *testing.T) {
	db, mock := newTestDB(t)
	svc := NewAuditService(database.NewAuditLogRepository(db), true, quietLogger())
	userID := int64(3)
	details := &detailsArg{}

	mock.ExpectQuery(`INSERT INTO audit_logs`).
		WithArgs(sqlmock.AnyArg(), userID, AuditDocumentSigned, "document", "7", details, "203.0.113.7",
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	svc.Record(context.Background(), AuditEvent{
		UserID:     &userID,
		Action:     AuditDocumentSigned,
		EntityType: "document",
		EntityID:   "7",
		IPAddress:  "203.0.113.7",
		UserAgent:  "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		Details:    map[string]interface{}{"order_number": "4/2025"},
	})

	require.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, "4/2025", details.got["order_number"])
	assert.Contains(t, details.got, "device_info")
}

func TestAuditRecord_FailureIsSwallowed(t *testing.T) {
	db, mock := newTestDB(t)
	svc := NewAuditService(database.NewAuditLogRepository(db), true, quietLogger())

	mock.ExpectQuery(`INSERT INTO audit_logs`).WillReturnError(errors.New("connection reset"))

	assert.NotPanics(t, func() {
		svc.Record(context.Background(), AuditEvent{Action: AuditLoginFailed})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRecord_Disabled(t *testing.T) {
	db, mock := newTestDB(t)
	svc := NewAuditService(database.NewAuditLogRepository(db), false, quietLogger())
	svc.Record(context.Background(), AuditEvent{Action: AuditLogin})

	var nilSvc *AuditService
	nilSvc.Record(context.Background(), AuditEvent{Action: AuditLogin})

	assert.NoError(t, mock.ExpectationsWereMet())
}
