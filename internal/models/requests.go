package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// DocumentRequest carries the fields shared by every document creation request
type DocumentRequest struct {
	EmployeeID       int64  `json:"employee_id"`
	OrderNumber      string `json:"order_number"`
	OrderDate        string `json:"order_date"`
	DirectorFullName string `json:"director_full_name"`
	Title            string `json:"title"`
	Draft            bool   `json:"draft"`
}

// HireRequest creates a P-1 order, optionally together with a new employee
type HireRequest struct {
	DocumentRequest
	HireTerms
	NewEmployee             *EmployeeInput `json:"new_employee"`
	InitialPassword         string         `json:"initial_password"`
	IssueInternshipReferral bool           `json:"issue_internship_referral"`
}

// DismissalRequest creates a P-4 order
type DismissalRequest struct {
	DocumentRequest
	DismissalTerms
}

// VacationRequest creates a vacation order
type VacationRequest struct {
	DocumentRequest
	VacationType     VacationType `json:"vacation_type"`
	StartDate        string       `json:"start_date"`
	EndDate          string       `json:"end_date"`
	MaterialAid      bool         `json:"material_aid"`
	BasisText        string       `json:"basis_text"`
	ConfirmOverLimit bool         `json:"confirm_over_limit"`
}

// TrainingRequest creates a training referral
type TrainingRequest struct {
	DocumentRequest
	CourseTitle   string         `json:"course_title"`
	Provider      string         `json:"provider"`
	Format        TrainingFormat `json:"format"`
	Place         string         `json:"place"`
	Mode          TrainingMode   `json:"mode"`
	StartDate     string         `json:"start_date"`
	EndDate       string         `json:"end_date"`
	Hours         DecimalText    `json:"hours"`
	Funding       string         `json:"funding"`
	EstimatedCost string         `json:"estimated_cost"`
	BasisText     string         `json:"basis_text"`
}

// InternshipReferralRequest issues an assignment order for an existing internship
type InternshipReferralRequest struct {
	DocumentRequest
	InternshipID int64 `json:"internship_id"`
}

// DecimalText holds a number typed by a person: either a JSON number or a
// string that may use a decimal comma.
type DecimalText string

// UnmarshalJSON accepts numbers, strings and null
func (d *DecimalText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*d = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*d = DecimalText(s)
	default:
		*d = DecimalText(data)
	}
	return nil
}

// Float parses the value, accepting "36,5" as well as "36.5".
func (d DecimalText) Float() (float64, error) {
	s := strings.ReplaceAll(strings.TrimSpace(string(d)), ",", ".")
	return strconv.ParseFloat(s, 64)
}
