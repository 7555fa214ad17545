package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hrdocs/personnel-backend/internal/config"
	"github.com/hrdocs/personnel-backend/internal/database"
	"github.com/hrdocs/personnel-backend/internal/models"
	"github.com/hrdocs/personnel-backend/pkg/dates"
	"github.com/sirupsen/logrus"
)

// InternshipService tracks onboarding internships
type InternshipService struct {
	tx          *database.Transactor
	internships *database.InternshipRepository
	policy      config.PolicyConfig
	logger      *logrus.Logger
	now         func() time.Time
}

// NewInternshipService creates a new internship service
func NewInternshipService(tx *database.Transactor, internships *database.InternshipRepository, policy config.PolicyConfig, logger *logrus.Logger) *InternshipService {
	return &InternshipService{
		tx:          tx,
		internships: internships,
		policy:      policy,
		logger:      logger,
		now:         time.Now,
	}
}

// SweepOverdue completes every active internship whose planned end date has passed
func (s *InternshipService) SweepOverdue(ctx context.Context) (int64, error) {
	n, err := s.internships.CompleteOverdue(ctx, dates.Today(s.now()))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.WithField("count", n).Info("Completed overdue internships")
	}
	return n, nil
}

// List sweeps overdue internships and returns the filtered list
func (s *InternshipService) List(ctx context.Context, f models.InternshipFilter) ([]models.InternshipListItem, error) {
	if f.Status != "" && !f.Status.IsValid() {
		return nil, invalid("status", "unknown internship status %q", f.Status)
	}
	if _, err := s.SweepOverdue(ctx); err != nil {
		return nil, err
	}
	return s.internships.List(ctx, f)
}

// Get returns an internship with mentor details
func (s *InternshipService) Get(ctx context.Context, id int64) (*models.InternshipListItem, error) {
	in, err := s.internships.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "internship", id)
	}
	return in, nil
}

// ForEmployee returns the latest internship of an employee, nil when there is none
func (s *InternshipService) ForEmployee(ctx context.Context, employeeID int64) (*models.InternshipListItem, error) {
	if _, err := s.SweepOverdue(ctx); err != nil {
		return nil, err
	}
	return s.internships.GetLatestForEmployee(ctx, employeeID)
}

// Counters returns the overdue and due-soon counts
func (s *InternshipService) Counters(ctx context.Context) (*models.InternshipCounters, error) {
	return s.internships.Counters(ctx, dates.Today(s.now()))
}

// Extend adds months to an active internship
func (s *InternshipService) Extend(ctx context.Context, id int64, months int, note string) (*models.InternshipListItem, error) {
	if months < 1 || months > s.policy.InternshipMaxExtensionMonths {
		return nil, invalid("months", "must be between 1 and %d", s.policy.InternshipMaxExtensionMonths)
	}
	return s.update(ctx, id, "extend", func(in *models.Internship) {
		in.Months += months
		in.PlannedEndDate = dates.AddMonths(in.PlannedEndDate, months)
		in.Notes = appendNote(in.Notes, note)
	})
}

// CompleteNow finishes an active internship ahead of schedule
func (s *InternshipService) CompleteNow(ctx context.Context, id int64, note string) (*models.InternshipListItem, error) {
	return s.finish(ctx, id, models.InternshipStatusCompleted, note)
}

// MarkFailed ends an active internship as failed
func (s *InternshipService) MarkFailed(ctx context.Context, id int64, note string) (*models.InternshipListItem, error) {
	return s.finish(ctx, id, models.InternshipStatusFailed, note)
}

func (s *InternshipService) finish(ctx context.Context, id int64, to models.InternshipStatus, note string) (*models.InternshipListItem, error) {
	return s.update(ctx, id, string(to), func(in *models.Internship) {
		in.Status = to
		in.Notes = appendNote(in.Notes, note)
	})
}

// update locks an active internship, applies change and writes it back.
// Internships that are no longer active are left untouched.
func (s *InternshipService) update(ctx context.Context, id int64, action string, change func(*models.Internship)) (*models.InternshipListItem, error) {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		in, err := s.internships.GetForUpdate(ctx, id)
		if err != nil {
			return notFound(err, "internship", id)
		}
		if in.Status != models.InternshipStatusActive {
			return &InvalidStateError{Message: fmt.Sprintf("internship %d is %s; only active internships can %s", id, in.Status, action)}
		}
		change(in)
		if err := s.internships.UpdateActive(ctx, in); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return &InvalidStateError{Message: fmt.Sprintf("internship %d is no longer active", id)}
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{"internship_id": id, "action": action}).Info("Internship updated")
	return s.Get(ctx, id)
}

func appendNote(notes, note string) string {
	note = strings.TrimSpace(note)
	if note == "" {
		return notes
	}
	return strings.TrimSpace(notes + "\n" + note)
}
