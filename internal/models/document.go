package models

import "time"

// Document is a personnel order and its lifecycle state
type Document struct {
	ID          int64           `json:"id" db:"id"`
	Type        DocumentType    `json:"type" db:"type"`
	EmployeeID  int64           `json:"employee_id" db:"employee_id"`
	Status      DocumentStatus  `json:"status" db:"status"`
	Title       string          `json:"title" db:"title"`
	OrderNumber string          `json:"order_number" db:"order_number"`
	Context     DocumentContext `json:"context" db:"context"`
	FilePath    string          `json:"file_path" db:"file_path"`
	CreatedBy   NullInt64       `json:"created_by" db:"created_by"`
	SignedBy    NullInt64       `json:"signed_by" db:"signed_by"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	SentAt      NullTime        `json:"sent_at" db:"sent_at"`
	SignedAt    NullTime        `json:"signed_at" db:"signed_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// DocumentListItem is a document row with the employee name
type DocumentListItem struct {
	Document
	EmployeeFullName string `json:"employee_full_name" db:"employee_full_name"`
}

// DocumentFilter narrows document listings
type DocumentFilter struct {
	Statuses   []DocumentStatus
	Type       DocumentType
	EmployeeID int64
	Search     string
	Limit      int
}

// VacationInterval is a parsed vacation period of a signed order
type VacationInterval struct {
	DocumentID  int64     `json:"document_id"`
	OrderNumber string    `json:"order_number"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Days        int       `json:"days"`
}
