package models

import (
	"strings"
	"time"
)

// Employee represents a person on staff
type Employee struct {
	ID               int64            `json:"id" db:"id"`
	LastName         string           `json:"last_name" db:"last_name"`
	FirstName        string           `json:"first_name" db:"first_name"`
	MiddleName       string           `json:"middle_name" db:"middle_name"`
	BirthDate        NullDate         `json:"birth_date" db:"birth_date"`
	Email            NullString       `json:"email" db:"email"`
	Phone            NullString       `json:"phone" db:"phone"`
	DepartmentID     NullInt64        `json:"department_id" db:"department_id"`
	PositionID       NullInt64        `json:"position_id" db:"position_id"`
	HireDate         NullDate         `json:"hire_date" db:"hire_date"`
	DismissalDate    NullDate         `json:"dismissal_date" db:"dismissal_date"`
	EmploymentStatus EmploymentStatus `json:"employment_status" db:"employment_status"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at" db:"updated_at"`
}

// FullName returns "Last First Middle".
func (e *Employee) FullName() string {
	return JoinName(e.LastName, e.FirstName, e.MiddleName)
}

// JoinName joins non-empty name parts with single spaces.
func JoinName(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}

// EmployeeListItem is an employee row joined with directory names
type EmployeeListItem struct {
	Employee
	DepartmentName NullString `json:"department_name" db:"department_name"`
	PositionName   NullString `json:"position_name" db:"position_name"`
}

// EmployeeInput carries fields for creating or updating an employee
type EmployeeInput struct {
	LastName         string           `json:"last_name"`
	FirstName        string           `json:"first_name"`
	MiddleName       string           `json:"middle_name"`
	BirthDate        NullDate         `json:"birth_date"`
	Email            string           `json:"email"`
	Phone            string           `json:"phone"`
	DepartmentID     NullInt64        `json:"department_id"`
	PositionID       NullInt64        `json:"position_id"`
	HireDate         NullDate         `json:"hire_date"`
	EmploymentStatus EmploymentStatus `json:"employment_status"`
}

// EmployeeFilter narrows employee listings
type EmployeeFilter struct {
	Search       string
	DepartmentID int64
	Status       EmploymentStatus
	ActiveOnly   bool
}
