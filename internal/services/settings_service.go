package services

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"github.com/hrdocs/personnel-backend/internal/database"
	"github.com/hrdocs/personnel-backend/internal/models"
)

// SettingsProvider supplies organisation-wide values printed on documents
type SettingsProvider interface {
	DirectorName(ctx context.Context) (string, error)
	CompanyName(ctx context.Context) (string, error)
}

// DBSettings reads settings from app_settings.
type DBSettings struct {
	settings  *database.AppSettingRepository
	employees *database.EmployeeRepository
}

// NewDBSettings creates a settings provider backed by the database
func NewDBSettings(settings *database.AppSettingRepository, employees *database.EmployeeRepository) *DBSettings {
	return &DBSettings{settings: settings, employees: employees}
}

// DirectorName returns DIRECTOR_FULL_NAME, falling back to the full name of
// the employee referenced by director_employee_id. Empty when neither is set.
func (s *DBSettings) DirectorName(ctx context.Context) (string, error) {
	name, err := s.settings.GetValue(ctx, models.SettingDirectorFullName)
	if err != nil || name != "" {
		return name, err
	}

	raw, err := s.settings.GetValue(ctx, models.SettingDirectorEmployeeID)
	if err != nil || raw == "" {
		return "", err
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return "", nil
	}
	emp, err := s.employees.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return emp.FullName(), nil
}

// CompanyName returns COMPANY_NAME
func (s *DBSettings) CompanyName(ctx context.Context) (string, error) {
	return s.settings.GetValue(ctx, models.SettingCompanyName)
}

// StaticSettings is a fixed SettingsProvider
type StaticSettings struct {
	Director string
	Company  string
}

func (s StaticSettings) DirectorName(context.Context) (string, error) { return s.Director, nil }
func (s StaticSettings) CompanyName(context.Context) (string, error)  { return s.Company, nil }
