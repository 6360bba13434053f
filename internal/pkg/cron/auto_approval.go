package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/timecard-backend-go/internal/domain/timecard"
)

// AutoApprover is the part of the timecard service a sweep needs.
type AutoApprover interface {
	RunAutoApproval(ctx context.Context, tenantID string, now time.Time) (timecard.AutoApprovalResult, error)
}

type AutoApprovalJobs struct {
	settingsRepo timecard.ApprovalSettingsRepository
	approver     AutoApprover
	now          func() time.Time
}

func NewAutoApprovalJobs(settingsRepo timecard.ApprovalSettingsRepository, approver AutoApprover) *AutoApprovalJobs {
	return &AutoApprovalJobs{
		settingsRepo: settingsRepo,
		approver:     approver,
		now:          time.Now,
	}
}

// RegisterJobs adds the sweep to scheduler. There is no default cadence:
// callers pass the interval they were configured with.
func (j *AutoApprovalJobs) RegisterJobs(scheduler *Scheduler, interval time.Duration) {
	scheduler.AddJob("auto_approve_time_entries", interval, func(ctx context.Context) error {
		_, err := j.Sweep(ctx)
		return err
	})
}

// Sweep runs auto-approval for every tenant that enables it, all at the same
// instant. A failing tenant does not stop the others; their errors are joined.
func (j *AutoApprovalJobs) Sweep(ctx context.Context) ([]timecard.AutoApprovalResult, error) {
	tenants, err := j.settingsRepo.ListAutoApprovalTenants(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list auto approval tenants: %w", err)
	}

	now := j.now().UTC()
	slog.Info("Cron: Starting auto-approval sweep", "tenants", len(tenants), "at", now)

	results := make([]timecard.AutoApprovalResult, 0, len(tenants))
	var errs []error
	for _, tenantID := range tenants {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		result, err := j.approver.RunAutoApproval(ctx, tenantID, now)
		if err != nil {
			slog.Error("Cron: Auto-approval failed for tenant", "tenant_id", tenantID, "error", err)
			errs = append(errs, fmt.Errorf("tenant %s: %w", tenantID, err))
			continue
		}
		results = append(results, result)
	}

	return results, errors.Join(errs...)
}
