package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// DocumentType identifies the kind of personnel order.
type DocumentType string

const (
	DocumentTypeHire               DocumentType = "HIRE"
	DocumentTypeDismissal          DocumentType = "DISMISSAL"
	DocumentTypeVacation           DocumentType = "VACATION"
	DocumentTypeTraining           DocumentType = "TRAINING"
	DocumentTypeInternshipReferral DocumentType = "INTERNSHIP_REFERRAL"
)

// DocumentTypes lists every supported type.
var DocumentTypes = []DocumentType{
	DocumentTypeHire,
	DocumentTypeDismissal,
	DocumentTypeVacation,
	DocumentTypeTraining,
	DocumentTypeInternshipReferral,
}

// legacy codes used by older records (P-1 / P-4 order forms)
var documentTypeAliases = map[string]DocumentType{
	"P1":            DocumentTypeHire,
	"HIRE_ORDER_P1": DocumentTypeHire,
	"P4":            DocumentTypeDismissal,
}

// IsValid reports whether t is a known document type.
func (t DocumentType) IsValid() bool {
	for _, v := range DocumentTypes {
		if t == v {
			return true
		}
	}
	return false
}

// ParseDocumentType parses a type code, accepting legacy aliases.
func ParseDocumentType(s string) (DocumentType, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if alias, ok := documentTypeAliases[s]; ok {
		return alias, nil
	}
	t := DocumentType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("unknown document type %q", s)
	}
	return t, nil
}

// UnmarshalText rejects unknown values at the JSON boundary.
func (t *DocumentType) UnmarshalText(b []byte) error {
	v, err := ParseDocumentType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Scan implements sql.Scanner
func (t *DocumentType) Scan(src interface{}) error {
	s, err := scanString(src)
	if err != nil {
		return err
	}
	return t.UnmarshalText([]byte(s))
}

// Value implements driver.Valuer
func (t DocumentType) Value() (driver.Value, error) { return string(t), nil }

// DocumentStatus is the lifecycle state of a document.
type DocumentStatus string

const (
	DocumentStatusDraft    DocumentStatus = "draft"
	DocumentStatusSent     DocumentStatus = "sent"
	DocumentStatusSigned   DocumentStatus = "signed"
	DocumentStatusArchived DocumentStatus = "archived"
)

var documentTransitions = map[DocumentStatus][]DocumentStatus{
	DocumentStatusDraft:    {DocumentStatusSent, DocumentStatusArchived},
	DocumentStatusSent:     {DocumentStatusSigned, DocumentStatusArchived},
	DocumentStatusSigned:   {DocumentStatusArchived},
	DocumentStatusArchived: nil,
}

// AllDocumentStatuses lists the statuses in lifecycle order.
func AllDocumentStatuses() []DocumentStatus {
	return []DocumentStatus{DocumentStatusDraft, DocumentStatusSent, DocumentStatusSigned, DocumentStatusArchived}
}

// IsValid reports whether s is a known status.
func (s DocumentStatus) IsValid() bool {
	_, ok := documentTransitions[s]
	return ok
}

// CanTransitionTo reports whether s -> next is allowed.
func (s DocumentStatus) CanTransitionTo(next DocumentStatus) bool {
	for _, v := range documentTransitions[s] {
		if v == next {
			return true
		}
	}
	return false
}

// ParseDocumentStatus parses a status value.
func ParseDocumentStatus(s string) (DocumentStatus, error) {
	v := DocumentStatus(strings.ToLower(strings.TrimSpace(s)))
	if !v.IsValid() {
		return "", fmt.Errorf("unknown document status %q", s)
	}
	return v, nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *DocumentStatus) UnmarshalText(b []byte) error {
	v, err := ParseDocumentStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Scan implements sql.Scanner
func (s *DocumentStatus) Scan(src interface{}) error {
	str, err := scanString(src)
	if err != nil {
		return err
	}
	return s.UnmarshalText([]byte(str))
}

// Value implements driver.Valuer
func (s DocumentStatus) Value() (driver.Value, error) { return string(s), nil }

// EmploymentStatus is the employee's state in the organisation.
type EmploymentStatus string

const (
	EmploymentStatusActive    EmploymentStatus = "active"
	EmploymentStatusOnLeave   EmploymentStatus = "on_leave"
	EmploymentStatusDismissed EmploymentStatus = "dismissed"
	EmploymentStatusSuspended EmploymentStatus = "suspended"
)

var employmentLabels = map[EmploymentStatus]string{
	EmploymentStatusActive:    "активний",
	EmploymentStatusOnLeave:   "відпустка",
	EmploymentStatusDismissed: "звільнений",
	EmploymentStatusSuspended: "призупинено",
}

// IsValid reports whether s is a known status.
func (s EmploymentStatus) IsValid() bool {
	_, ok := employmentLabels[s]
	return ok
}

// Label returns the Ukrainian display label.
func (s EmploymentStatus) Label() string {
	return employmentLabels[s]
}

// ParseEmploymentStatus accepts codes and Ukrainian labels.
func ParseEmploymentStatus(s string) (EmploymentStatus, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for code, label := range employmentLabels {
		if s == string(code) || s == label {
			return code, nil
		}
	}
	return "", fmt.Errorf("unknown employment status %q", s)
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *EmploymentStatus) UnmarshalText(b []byte) error {
	v, err := ParseEmploymentStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Scan implements sql.Scanner
func (s *EmploymentStatus) Scan(src interface{}) error {
	str, err := scanString(src)
	if err != nil {
		return err
	}
	return s.UnmarshalText([]byte(str))
}

// Value implements driver.Valuer
func (s EmploymentStatus) Value() (driver.Value, error) { return string(s), nil }

// InternshipStatus is the state of an internship.
type InternshipStatus string

const (
	InternshipStatusActive    InternshipStatus = "active"
	InternshipStatusCompleted InternshipStatus = "completed"
	InternshipStatusFailed    InternshipStatus = "failed"
)

var internshipTransitions = map[InternshipStatus][]InternshipStatus{
	InternshipStatusActive:    {InternshipStatusCompleted, InternshipStatusFailed},
	InternshipStatusCompleted: nil,
	InternshipStatusFailed:    nil,
}

// IsValid reports whether s is a known status.
func (s InternshipStatus) IsValid() bool {
	_, ok := internshipTransitions[s]
	return ok
}

// CanTransitionTo reports whether s -> next is allowed.
func (s InternshipStatus) CanTransitionTo(next InternshipStatus) bool {
	for _, v := range internshipTransitions[s] {
		if v == next {
			return true
		}
	}
	return false
}

// ParseInternshipStatus parses a status value.
func ParseInternshipStatus(s string) (InternshipStatus, error) {
	v := InternshipStatus(strings.ToLower(strings.TrimSpace(s)))
	if !v.IsValid() {
		return "", fmt.Errorf("unknown internship status %q", s)
	}
	return v, nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *InternshipStatus) UnmarshalText(b []byte) error {
	v, err := ParseInternshipStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Scan implements sql.Scanner
func (s *InternshipStatus) Scan(src interface{}) error {
	str, err := scanString(src)
	if err != nil {
		return err
	}
	return s.UnmarshalText([]byte(str))
}

// Value implements driver.Valuer
func (s InternshipStatus) Value() (driver.Value, error) { return string(s), nil }

// UserRole is the access role of an account.
type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleHR       UserRole = "hr"
	RoleEmployee UserRole = "employee"
)

// IsValid reports whether r is a known role.
func (r UserRole) IsValid() bool {
	return r == RoleAdmin || r == RoleHR || r == RoleEmployee
}

// ParseUserRole parses a role value.
func ParseUserRole(s string) (UserRole, error) {
	r := UserRole(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (r *UserRole) UnmarshalText(b []byte) error {
	v, err := ParseUserRole(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// Scan implements sql.Scanner
func (r *UserRole) Scan(src interface{}) error {
	str, err := scanString(src)
	if err != nil {
		return err
	}
	return r.UnmarshalText([]byte(str))
}

// Value implements driver.Valuer
func (r UserRole) Value() (driver.Value, error) { return string(r), nil }

func scanString(src interface{}) (string, error) {
	switch v := src.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case nil:
		return "", fmt.Errorf("unexpected NULL enum value")
	default:
		return "", fmt.Errorf("unsupported enum source %T", src)
	}
}
