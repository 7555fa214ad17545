package models

import "time"

// Setting keys used by the document services
const (
	SettingDirectorFullName   = "DIRECTOR_FULL_NAME"
	SettingDirectorEmployeeID = "director_employee_id"
	SettingCompanyName        = "COMPANY_NAME"
)

// AppSetting is a key-value configuration entry stored in the database
type AppSetting struct {
	Key         string    `json:"key" db:"key"`
	Value       string    `json:"value" db:"value"`
	Description string    `json:"description" db:"description"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// UpdateAppSettingRequest is the body for updating a setting
type UpdateAppSettingRequest struct {
	Value string `json:"value"`
}
