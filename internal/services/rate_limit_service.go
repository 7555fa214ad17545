package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hrdocs/personnel-backend/internal/config"
	"github.com/hrdocs/personnel-backend/internal/database"
)

// RateLimitService throttles password guessing. Failed attempts are the
// login_failed audit entries, so throttling is inactive while audit logging is off.
type RateLimitService struct {
	logs *database.AuditLogRepository
	cfg  config.RateLimitConfig
	now  func() time.Time
}

// NewRateLimitService creates a new rate limit service
func NewRateLimitService(logs *database.AuditLogRepository, cfg config.RateLimitConfig) *RateLimitService {
	return &RateLimitService{logs: logs, cfg: cfg, now: time.Now}
}

// RateLimitError represents a rate limit exceeded error
type RateLimitError struct {
	Message    string
	RetryAfter time.Time
	Type       string // "username" or "ip"
}

func (e *RateLimitError) Error() string {
	return e.Message
}

// CheckLogin reports a RateLimitError when the username or the client IP has
// too many recent failed logins. A nil service never limits.
func (s *RateLimitService) CheckLogin(ctx context.Context, username, ip string) error {
	if s == nil || !s.cfg.Enabled {
		return nil
	}
	now := s.now()

	if username = strings.TrimSpace(username); username != "" && s.cfg.MaxUserFailures > 0 {
		count, last, err := s.logs.CountFailedLogins(ctx, username, now.Add(-s.cfg.UserWindow))
		if err != nil {
			return fmt.Errorf("failed to check username rate limit: %w", err)
		}
		if count >= s.cfg.MaxUserFailures {
			retryAfter := last.Add(s.cfg.UserWindow)
			return &RateLimitError{
				Message:    fmt.Sprintf("Too many failed logins for this account. Please try again after %s", retryAfter.Format("15:04:05")),
				RetryAfter: retryAfter,
				Type:       "username",
			}
		}
	}

	if ip != "" && s.cfg.MaxIPFailures > 0 {
		count, last, err := s.logs.CountFailedLoginsFromIP(ctx, ip, now.Add(-s.cfg.IPWindow))
		if err != nil {
			return fmt.Errorf("failed to check IP rate limit: %w", err)
		}
		if count >= s.cfg.MaxIPFailures {
			retryAfter := last.Add(s.cfg.IPWindow)
			return &RateLimitError{
				Message:    fmt.Sprintf("Too many failed logins from this IP address. Please try again after %s", retryAfter.Format("15:04:05")),
				RetryAfter: retryAfter,
				Type:       "ip",
			}
		}
	}

	return nil
}
