package services

import (
	"context"
	"time"

	"github.com/hrdocs/personnel-backend/internal/database"
	"github.com/hrdocs/personnel-backend/internal/models"
	"github.com/hrdocs/personnel-backend/pkg/dates"
)

// DashboardService returns the HR home screen counters
type DashboardService struct {
	dashboard *database.DashboardRepository
	now       func() time.Time
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(dashboard *database.DashboardRepository) *DashboardService {
	return &DashboardService{dashboard: dashboard, now: time.Now}
}

// Stats returns the KPI counters for today
func (s *DashboardService) Stats(ctx context.Context) (*models.DashboardStats, error) {
	return s.dashboard.Stats(ctx, dates.Today(s.now()))
}
