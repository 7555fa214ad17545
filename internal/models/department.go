package models

import "time"

// Department is an organisational unit
type Department struct {
	ID            int64     `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	EmployeeCount int       `json:"employee_count" db:"employee_count"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// Position is a job title
type Position struct {
	ID            int64     `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	EmployeeCount int       `json:"employee_count" db:"employee_count"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// NameRequest is the body for create/rename operations
type NameRequest struct {
	Name string `json:"name" binding:"required"`
}
