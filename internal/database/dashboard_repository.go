package database

import (
	"context"
	"fmt"
	"time"

	"github.com/hrdocs/personnel-backend/internal/models"
)

// DashboardRepository computes the HR home screen counters
type DashboardRepository struct {
	db DB
}

// NewDashboardRepository creates a new DashboardRepository
func NewDashboardRepository(db DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

// Stats returns the KPI counters relative to today
func (r *DashboardRepository) Stats(ctx context.Context, today time.Time) (*models.DashboardStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM employees) AS employees_total,
			(SELECT COUNT(*) FROM employees WHERE hire_date >= $1) AS hired_last_30_days,
			(SELECT COUNT(*) FROM employees WHERE dismissal_date >= $1) AS dismissed_last_30_days,
			(SELECT COUNT(*) FROM departments) AS departments,
			(SELECT COUNT(*) FROM documents WHERE status = 'sent') AS documents_awaiting_signature,
			(SELECT COUNT(*) FROM internships WHERE status = 'active' AND planned_end_date < $2) AS internships_overdue,
			(SELECT COUNT(*) FROM internships WHERE status = 'active' AND planned_end_date BETWEEN $2 AND $3) AS internships_due_soon
	`
	var stats models.DashboardStats
	err := conn(ctx, r.db).GetContext(ctx, &stats, query, today.AddDate(0, 0, -30), today, today.AddDate(0, 0, 14))
	if err != nil {
		return nil, fmt.Errorf("failed to load dashboard stats: %w", err)
	}
	return &stats, nil
}
