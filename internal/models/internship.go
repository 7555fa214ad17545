package models

import "time"

// Internship is the onboarding period of a new hire
type Internship struct {
	ID               int64            `json:"id" db:"id"`
	EmployeeID       int64            `json:"employee_id" db:"employee_id"`
	MentorEmployeeID NullInt64        `json:"mentor_employee_id" db:"mentor_employee_id"`
	DocumentID       NullInt64        `json:"document_id" db:"document_id"`
	StartDate        time.Time        `json:"start_date" db:"start_date"`
	Months           int              `json:"months" db:"months"`
	PlannedEndDate   time.Time        `json:"planned_end_date" db:"planned_end_date"`
	Status           InternshipStatus `json:"status" db:"status"`
	Notes            string           `json:"notes" db:"notes"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at" db:"updated_at"`
}

// InternshipListItem adds employee and mentor details
type InternshipListItem struct {
	Internship
	FullName             string     `json:"full_name" db:"full_name"`
	DepartmentName       NullString `json:"department_name" db:"department_name"`
	PositionName         NullString `json:"position_name" db:"position_name"`
	MentorFullName       NullString `json:"mentor_full_name" db:"mentor_full_name"`
	MentorDepartmentName NullString `json:"mentor_department_name" db:"mentor_department_name"`
	MentorPositionName   NullString `json:"mentor_position_name" db:"mentor_position_name"`
}

// InternshipFilter narrows internship listings
type InternshipFilter struct {
	Status InternshipStatus
	Search string
}

// InternshipCounters feed the HR dashboard
type InternshipCounters struct {
	Overdue int `json:"overdue" db:"overdue"`
	DueSoon int `json:"due_soon" db:"due_soon"`
}

// InternshipActionRequest is the body for extend/complete/fail
type InternshipActionRequest struct {
	Months int    `json:"months"`
	Note   string `json:"note"`
}
