package services

import (
	"context"
	"fmt"
	"time"

	"github.com/hrdocs/personnel-backend/internal/config"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const jobTimeout = 5 * time.Minute

// CronService manages scheduled background jobs
type CronService struct {
	cron        *cron.Cron
	cfg         config.CronConfig
	internships *InternshipService
	audit       *AuditService
	logger      *logrus.Logger
}

// NewCronService creates a new CronService
func NewCronService(cfg config.CronConfig, internships *InternshipService, audit *AuditService, logger *logrus.Logger) *CronService {
	return &CronService{
		cron:        cron.New(cron.WithSeconds()),
		cfg:         cfg,
		internships: internships,
		audit:       audit,
		logger:      logger,
	}
}

// Start schedules the jobs and starts the scheduler
func (s *CronService) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.InternshipSweepSchedule, s.sweepInternshipsJob); err != nil {
		return fmt.Errorf("failed to schedule internship sweep: %w", err)
	}
	s.logger.WithField("schedule", s.cfg.InternshipSweepSchedule).Info("Scheduled internship sweep")

	if s.cfg.AuditRetentionDays > 0 {
		if _, err := s.cron.AddFunc(s.cfg.AuditCleanupSchedule, s.cleanupAuditJob); err != nil {
			return fmt.Errorf("failed to schedule audit cleanup: %w", err)
		}
		s.logger.WithFields(logrus.Fields{
			"schedule":       s.cfg.AuditCleanupSchedule,
			"retention_days": s.cfg.AuditRetentionDays,
		}).Info("Scheduled audit log cleanup")
	}

	s.cron.Start()
	s.logger.Info("Cron service started")
	return nil
}

// Stop waits for running jobs and stops the scheduler
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Cron service stopped")
}

func (s *CronService) sweepInternshipsJob() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	n, err := s.internships.SweepOverdue(ctx)
	if err != nil {
		s.logger.WithError(err).Error("[CRON] Internship sweep failed")
		return
	}
	s.audit.Record(ctx, AuditEvent{
		Action:     AuditInternshipsSwept,
		EntityType: "internship",
		Details:    map[string]interface{}{"completed": n, "source": "cron"},
	})
	s.logger.WithFields(logrus.Fields{"completed": n, "duration": time.Since(start).String()}).Info("[CRON] Internship sweep finished")
}

func (s *CronService) cleanupAuditJob() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	retention := time.Duration(s.cfg.AuditRetentionDays) * 24 * time.Hour
	n, err := s.audit.CleanupOldAuditLogs(ctx, retention)
	if err != nil {
		s.logger.WithError(err).Error("[CRON] Audit cleanup failed")
		return
	}
	s.logger.WithField("deleted", n).Info("[CRON] Audit cleanup finished")
}

// RunInternshipSweepNow runs the sweep job immediately
func (s *CronService) RunInternshipSweepNow() {
	s.sweepInternshipsJob()
}
