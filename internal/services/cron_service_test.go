package services

import (
	"testing"

	"github.com/hrdocs/personnel-backend/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestCronStart_InvalidSchedule(t *testing.T) {
	svc := NewCronService(config.CronConfig{InternshipSweepSchedule: "every night"}, nil, nil, quietLogger())
	assert.Error(t, svc.Start())
}

func TestCronStart_StopsCleanly(t *testing.T) {
	svc := NewCronService(config.CronConfig{
		InternshipSweepSchedule: "0 5 0 * * *",
		AuditCleanupSchedule:    "0 0 3 * * 0",
		AuditRetentionDays:      30,
	}, nil, nil, quietLogger())
	assert.NoError(t, svc.Start())
	svc.Stop()
}
