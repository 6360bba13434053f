package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/timecard-backend-go/internal/domain/timecard"
)

type stubSettings struct {
	timecard.ApprovalSettingsRepository
	tenants []string
	err     error
}

func (s *stubSettings) ListAutoApprovalTenants(ctx context.Context) ([]string, error) {
	return s.tenants, s.err
}

type recordingApprover struct {
	calls []string
	at    []time.Time
	fail  map[string]error
}

func (r *recordingApprover) RunAutoApproval(ctx context.Context, tenantID string, now time.Time) (timecard.AutoApprovalResult, error) {
	r.calls = append(r.calls, tenantID)
	r.at = append(r.at, now)
	if err := r.fail[tenantID]; err != nil {
		return timecard.AutoApprovalResult{TenantID: tenantID}, err
	}
	return timecard.AutoApprovalResult{TenantID: tenantID, Approved: 1}, nil
}

func TestAutoApprovalJobs_SweepEveryTenant(t *testing.T) {
	approver := &recordingApprover{fail: map[string]error{"t2": timecard.ErrSettingsMissing}}
	jobs := NewAutoApprovalJobs(&stubSettings{tenants: []string{"t1", "t2", "t3"}}, approver)
	fixed := time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)
	jobs.now = func() time.Time { return fixed }

	results, err := jobs.Sweep(context.Background())

	assert.ErrorIs(t, err, timecard.ErrSettingsMissing)
	assert.Equal(t, []string{"t1", "t2", "t3"}, approver.calls)
	require.Len(t, results, 2)
	assert.Equal(t, "t1", results[0].TenantID)
	assert.Equal(t, "t3", results[1].TenantID)
	for _, at := range approver.at {
		assert.True(t, at.Equal(fixed), "every tenant is swept at the same instant")
	}
}

func TestAutoApprovalJobs_ListFailure(t *testing.T) {
	boom := errors.New("connection refused")
	approver := &recordingApprover{}
	jobs := NewAutoApprovalJobs(&stubSettings{err: boom}, approver)

	_, err := jobs.Sweep(context.Background())

	assert.ErrorIs(t, err, boom)
	assert.Empty(t, approver.calls)
}

func TestAutoApprovalJobs_StopsOnCancel(t *testing.T) {
	approver := &recordingApprover{}
	jobs := NewAutoApprovalJobs(&stubSettings{tenants: []string{"t1"}}, approver)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := jobs.Sweep(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, approver.calls)
}

func TestScheduler_RunOnce(t *testing.T) {
	approver := &recordingApprover{}
	jobs := NewAutoApprovalJobs(&stubSettings{tenants: []string{"t1"}}, approver)
	scheduler := NewScheduler()
	jobs.RegisterJobs(scheduler, time.Minute)

	require.NoError(t, scheduler.RunOnce(context.Background()))

	assert.Equal(t, []string{"t1"}, approver.calls)
}

func TestScheduler_RunOnceJoinsErrors(t *testing.T) {
	approver := &recordingApprover{fail: map[string]error{"t1": timecard.ErrSettingsMissing}}
	jobs := NewAutoApprovalJobs(&stubSettings{tenants: []string{"t1"}}, approver)
	scheduler := NewScheduler()
	jobs.RegisterJobs(scheduler, time.Minute)
	scheduler.AddJob("second", time.Minute, func(ctx context.Context) error { return nil })

	err := scheduler.RunOnce(context.Background())

	assert.ErrorIs(t, err, timecard.ErrSettingsMissing)
	assert.Contains(t, err.Error(), "auto_approve_time_entries")
}

func TestScheduler_StartRunsImmediatelyAndStops(t *testing.T) {
	ran := make(chan struct{}, 1)
	scheduler := NewScheduler()
	scheduler.AddJob("tick", time.Hour, func(ctx context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	})

	require.NoError(t, scheduler.Start(context.Background()))
	assert.ErrorIs(t, scheduler.Start(context.Background()), ErrAlreadyStarted)

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("job did not run on start")
	}
	scheduler.Stop()
}

func TestScheduler_RejectsNonPositiveInterval(t *testing.T) {
	scheduler := NewScheduler()
	scheduler.AddJob("broken", 0, func(ctx context.Context) error { return nil })

	assert.Error(t, scheduler.Start(context.Background()))
	scheduler.Stop()
}
