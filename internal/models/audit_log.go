package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AuditLog is a recorded user action
type AuditLog struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	UserID     NullInt64       `json:"user_id" db:"user_id"`
	Action     string          `json:"action" db:"action"`
	EntityType string          `json:"entity_type" db:"entity_type"`
	EntityID   string          `json:"entity_id" db:"entity_id"`
	Details    json.RawMessage `json:"details" db:"details"`
	IPAddress  string          `json:"ip_address" db:"ip_address"`
	UserAgent  string          `json:"user_agent" db:"user_agent"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

// DashboardStats are the HR home screen counters
type DashboardStats struct {
	EmployeesTotal       int `json:"employees_total" db:"employees_total"`
	HiredLast30Days      int `json:"hired_last_30_days" db:"hired_last_30_days"`
	DismissedLast30Days  int `json:"dismissed_last_30_days" db:"dismissed_last_30_days"`
	Departments          int `json:"departments" db:"departments"`
	DocumentsAwaitingSig int `json:"documents_awaiting_signature" db:"documents_awaiting_signature"`
	InternshipsOverdue   int `json:"internships_overdue" db:"internships_overdue"`
	InternshipsDueSoon   int `json:"internships_due_soon" db:"internships_due_soon"`
}
