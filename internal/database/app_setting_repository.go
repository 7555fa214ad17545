package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hrdocs/personnel-backend/internal/models"
)

// AppSettingRepository handles database operations for the app_settings table
type AppSettingRepository struct {
	db DB
}

// NewAppSettingRepository creates a new AppSettingRepository
func NewAppSettingRepository(db DB) *AppSettingRepository {
	return &AppSettingRepository{db: db}
}

// GetAll retrieves all settings
func (r *AppSettingRepository) GetAll(ctx context.Context) ([]models.AppSetting, error) {
	settings := []models.AppSetting{}
	query := `SELECT key, value, description, updated_at FROM app_settings ORDER BY key`
	if err := conn(ctx, r.db).SelectContext(ctx, &settings, query); err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	return settings, nil
}

// GetByKey retrieves a setting by its key
func (r *AppSettingRepository) GetByKey(ctx context.Context, key string) (*models.AppSetting, error) {
	var setting models.AppSetting
	query := `SELECT key, value, description, updated_at FROM app_settings WHERE key = $1`
	if err := conn(ctx, r.db).GetContext(ctx, &setting, query, key); err != nil {
		return nil, err
	}
	return &setting, nil
}

// GetValue returns the trimmed value of a key, "" when missing.
func (r *AppSettingRepository) GetValue(ctx context.Context, key string) (string, error) {
	setting, err := r.GetByKey(ctx, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return strings.TrimSpace(setting.Value), nil
}

// GetIntValue retrieves a setting as an integer
func (r *AppSettingRepository) GetIntValue(ctx context.Context, key string, defaultValue int) int {
	value, err := r.GetValue(ctx, key)
	if err != nil || value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

// Upsert creates or updates a setting value
func (r *AppSettingRepository) Upsert(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO app_settings (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`
	if _, err := conn(ctx, r.db).ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to save setting %s: %w", key, err)
	}
	return nil
}
