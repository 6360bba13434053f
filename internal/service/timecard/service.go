package timecard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cmlabs-hris/timecard-backend-go/internal/domain/timecard"
	"github.com/cmlabs-hris/timecard-backend-go/internal/pkg/keylock"
	"github.com/cmlabs-hris/timecard-backend-go/internal/pkg/validator"
)

const (
	bulkApproveConcurrency = 4
	autoApprovalBatchSize  = 1000
)

type TimecardServiceImpl struct {
	entries   timecard.TimeEntryRepository
	history   timecard.ApprovalHistoryRepository
	schedules timecard.WorkScheduleRepository
	settings  timecard.ApprovalSettingsRepository
	groups    timecard.ApprovalGroupRepository
	tx        timecard.Transactor

	rules      Rules
	normalizer *Normalizer
	validator  *Validator
	calculator *HourCalculator
	gate       *ApprovalGate
	locks      *keylock.Locker
	now        func() time.Time
	batchSize  int
}

type Option func(*TimecardServiceImpl)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *TimecardServiceImpl) {
		s.now = now
	}
}

func NewTimecardService(
	entryRepo timecard.TimeEntryRepository,
	historyRepo timecard.ApprovalHistoryRepository,
	scheduleRepo timecard.WorkScheduleRepository,
	settingsRepo timecard.ApprovalSettingsRepository,
	groupRepo timecard.ApprovalGroupRepository,
	transactor timecard.Transactor,
	rules Rules,
	opts ...Option,
) timecard.TimecardService {
	s := &TimecardServiceImpl{
		entries:    entryRepo,
		history:    historyRepo,
		schedules:  scheduleRepo,
		settings:   settingsRepo,
		groups:     groupRepo,
		tx:         transactor,
		rules:      rules,
		normalizer: NewNormalizer(rules),
		validator:  NewValidator(rules),
		calculator: NewHourCalculator(rules),
		gate:       NewApprovalGate(),
		locks:      keylock.New(),
		now:        time.Now,
		batchSize:  autoApprovalBatchSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CheckIn implements timecard.TimecardService.
func (s *TimecardServiceImpl) CheckIn(ctx context.Context, req timecard.PunchRequest) (timecard.EntryResponse, error) {
	if err := req.Validate(); err != nil {
		return timecard.EntryResponse{}, err
	}
	now := s.now().UTC()
	punch := req.ToPunch(timecard.ActionCheckIn, now)

	unlock := s.locks.Lock(lockKey(req.TenantID, req.UserID))
	defer unlock()
	slog.Debug("Punch lock acquired", "tenant_id", req.TenantID, "user_id", req.UserID, "locked_users", s.locks.Len())

	open, err := s.entries.FindOpenEntries(ctx, req.UserID, req.TenantID)
	if err != nil {
		return timecard.EntryResponse{}, fmt.Errorf("failed to find open entries: %w", err)
	}

	normalized, err := s.normalizer.Apply(punch, open, now)
	if err != nil {
		return timecard.EntryResponse{}, err
	}

	created, err := s.entries.Create(ctx, normalized.Entry)
	if err != nil {
		if errors.Is(err, timecard.ErrDuplicateOpenEntry) {
			return timecard.EntryResponse{}, err
		}
		return timecard.EntryResponse{}, fmt.Errorf("failed to create time entry: %w", err)
	}

	slog.Info("Checked in", "entry_id", created.ID, "user_id", created.UserID, "tenant_id", created.TenantID, "manual", created.IsManualEntry)
	return s.describe(ctx, created, now)
}

// CheckOut implements timecard.TimecardService.
func (s *TimecardServiceImpl) CheckOut(ctx context.Context, req timecard.PunchRequest) (timecard.EntryResponse, error) {
	if err := req.Validate(); err != nil {
		return timecard.EntryResponse{}, err
	}
	now := s.now().UTC()
	punch := req.ToPunch(timecard.ActionCheckOut, now)

	unlock := s.locks.Lock(lockKey(req.TenantID, req.UserID))
	defer unlock()
	slog.Debug("Punch lock acquired", "tenant_id", req.TenantID, "user_id", req.UserID, "locked_users", s.locks.Len())

	open, err := s.entries.FindOpenEntries(ctx, req.UserID, req.TenantID)
	if err != nil {
		return timecard.EntryResponse{}, fmt.Errorf("failed to find open entries: %w", err)
	}

	normalized, err := s.normalizer.Apply(punch, open, now)
	if err != nil {
		return timecard.EntryResponse{}, err
	}

	schedule, err := s.scheduleFor(ctx, normalized.Entry)
	if err != nil {
		return timecard.EntryResponse{}, err
	}
	entry := normalized.Entry
	entry.TotalHours = s.calculator.Compute(normalized, schedule, now).TotalHours

	if err := s.entries.Close(ctx, entry); err != nil {
		if errors.Is(err, timecard.ErrConcurrentUpdate) {
			return timecard.EntryResponse{}, err
		}
		return timecard.EntryResponse{}, fmt.Errorf("failed to close time entry: %w", err)
	}

	slog.Info("Checked out", "entry_id", entry.ID, "user_id", entry.UserID, "tenant_id", entry.TenantID, "total_hours", entry.TotalHours.String())
	return s.describe(ctx, entry, now)
}

// GetEntry implements timecard.TimecardService.
func (s *TimecardServiceImpl) GetEntry(ctx context.Context, tenantID, id string) (timecard.EntryResponse, error) {
	entry, err := s.getEntry(ctx, tenantID, id)
	if err != nil {
		return timecard.EntryResponse{}, err
	}
	return s.describe(ctx, entry, s.now().UTC())
}

// ListEntries implements timecard.TimecardService.
func (s *TimecardServiceImpl) ListEntries(ctx context.Context, tenantID string, filter timecard.EntryFilter) (timecard.ListEntriesResponse, error) {
	if err := filter.Validate(); err != nil {
		return timecard.ListEntriesResponse{}, err
	}

	entries, total, err := s.entries.List(ctx, filter, tenantID)
	if err != nil {
		return timecard.ListEntriesResponse{}, fmt.Errorf("failed to list time entries: %w", err)
	}

	now := s.now().UTC()
	responses := make([]timecard.EntryResponse, 0, len(entries))
	for _, entry := range entries {
		resp, err := s.describe(ctx, entry, now)
		if err != nil {
			return timecard.ListEntriesResponse{}, err
		}
		responses = append(responses, resp)
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	showing := fmt.Sprintf("%d-%d of %d", (filter.Page-1)*filter.Limit+1, min(filter.Page*filter.Limit, int(total)), total)
	if total == 0 {
		showing = "0 of 0"
	}

	return timecard.ListEntriesResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
		Showing:    showing,
		Entries:    responses,
	}, nil
}

// ValidateEntry implements timecard.TimecardService.
func (s *TimecardServiceImpl) ValidateEntry(ctx context.Context, tenantID, id string) (timecard.ValidationResponse, error) {
	entry, err := s.getEntry(ctx, tenantID, id)
	if err != nil {
		return timecard.ValidationResponse{}, err
	}

	normalized, result := s.evaluate(entry)
	return timecard.ValidationResponse{
		EntryID:       entry.ID,
		IsConsistent:  result.IsConsistent,
		BreakInferred: normalized.BreakInferred,
		Issues:        result.Issues,
	}, nil
}

// CanApprove implements timecard.TimecardService.
func (s *TimecardServiceImpl) CanApprove(ctx context.Context, actor timecard.Actor, entryID string) (timecard.CanApproveResponse, error) {
	entry, err := s.getEntry(ctx, actor.TenantID, entryID)
	if err != nil {
		return timecard.CanApproveResponse{}, err
	}
	settings, members, err := s.approvalContext(ctx, actor.TenantID)
	if err != nil {
		return timecard.CanApproveResponse{}, err
	}
	return timecard.CanApproveResponse{
		EntryID:    entry.ID,
		CanApprove: s.gate.CanApprove(actor, entry, settings, members),
	}, nil
}

// Approve implements timecard.TimecardService.
func (s *TimecardServiceImpl) Approve(ctx context.Context, req timecard.ApproveRequest) (timecard.EntryResponse, error) {
	if err := req.Validate(); err != nil {
		return timecard.EntryResponse{}, err
	}
	settings, members, err := s.approvalContext(ctx, req.Actor.TenantID)
	if err != nil {
		return timecard.EntryResponse{}, err
	}

	now := s.now().UTC()
	updated, err := s.approveOne(ctx, req.Actor, req.EntryID, req.Comments, settings, members, now)
	if err != nil {
		return timecard.EntryResponse{}, err
	}
	return s.describe(ctx, updated, now)
}

// Reject implements timecard.TimecardService.
func (s *TimecardServiceImpl) Reject(ctx context.Context, req timecard.RejectRequest) (timecard.EntryResponse, error) {
	if validator.IsEmpty(req.Reason) {
		return timecard.EntryResponse{}, timecard.ErrMissingReason
	}
	if err := req.Validate(); err != nil {
		return timecard.EntryResponse{}, err
	}
	settings, members, err := s.approvalContext(ctx, req.Actor.TenantID)
	if err != nil {
		return timecard.EntryResponse{}, err
	}
	if settings == nil {
		return timecard.EntryResponse{}, timecard.ErrSettingsMissing
	}

	entry, err := s.getEntry(ctx, req.Actor.TenantID, req.EntryID)
	if err != nil {
		return timecard.EntryResponse{}, err
	}
	if !s.gate.CanApprove(req.Actor, entry, settings, members) {
		return timecard.EntryResponse{}, timecard.ErrUnauthorized
	}

	now := s.now().UTC()
	t, err := s.gate.Reject(entry, req.Actor, req.Reason, req.Comments, now)
	if err != nil {
		return timecard.EntryResponse{}, err
	}
	if err := s.commit(ctx, t); err != nil {
		return timecard.EntryResponse{}, err
	}

	slog.Info("Rejected time entry", "entry_id", entry.ID, "tenant_id", entry.TenantID, "rejected_by", req.Actor.ID)
	return s.describe(ctx, t.Entry, now)
}

// BulkApprove implements timecard.TimecardService. One failing id never
// stops the others; results keep the request order.
func (s *TimecardServiceImpl) BulkApprove(ctx context.Context, req timecard.BulkApproveRequest) (timecard.BulkApproveResponse, error) {
	if err := req.Validate(); err != nil {
		return timecard.BulkApproveResponse{}, err
	}
	settings, members, err := s.approvalContext(ctx, req.Actor.TenantID)
	if err != nil {
		return timecard.BulkApproveResponse{}, err
	}

	now := s.now().UTC()
	results := make([]timecard.BulkApproveResult, len(req.EntryIDs))

	var g errgroup.Group
	g.SetLimit(bulkApproveConcurrency)
	for i, id := range req.EntryIDs {
		g.Go(func() error {
			results[i] = timecard.BulkApproveResult{EntryID: id, Success: true}
			if _, err := s.approveOne(ctx, req.Actor, id, req.Comments, settings, members, now); err != nil {
				results[i] = timecard.BulkApproveResult{EntryID: id, Error: err.Error(), Err: err}
			}
			return nil
		})
	}
	_ = g.Wait()

	resp := timecard.BulkApproveResponse{Results: results}
	for _, r := range results {
		if r.Success {
			resp.SuccessCount++
		} else {
			resp.FailureCount++
		}
	}

	slog.Info("Bulk approval finished", "tenant_id", req.Actor.TenantID, "approver", req.Actor.ID, "succeeded", resp.SuccessCount, "failed", resp.FailureCount)
	return resp, nil
}

// RunAutoApproval implements timecard.TimecardService.
func (s *TimecardServiceImpl) RunAutoApproval(ctx context.Context, tenantID string, now time.Time) (timecard.AutoApprovalResult, error) {
	result := timecard.AutoApprovalResult{TenantID: tenantID, Approvals: []string{}}

	settings, err := s.settings.GetByTenant(ctx, tenantID)
	if err != nil {
		return result, fmt.Errorf("failed to get approval settings: %w", err)
	}
	if settings == nil {
		return result, timecard.ErrSettingsMissing
	}
	if !settings.AutoApprovalEnabled() {
		return result, nil
	}

	cutoff := now
	if settings.ApprovalType != timecard.ApprovalTypeAutomatic {
		// An entry is created before it is checked out, so nothing newer than
		// the waiting period can qualify.
		cutoff = now.Add(-time.Duration(settings.AutoApproveAfterHours) * time.Hour)
	}

	// Skipped entries stay pending, so the sweep walks the whole pending set
	// by keyset instead of rereading the oldest page.
	var cursor *timecard.PendingCursor
	for {
		pending, err := s.entries.ListPending(ctx, tenantID, cutoff, cursor, s.batchSize)
		if err != nil {
			return result, fmt.Errorf("failed to list pending entries: %w", err)
		}
		for _, entry := range pending {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			s.autoApproveOne(ctx, entry, settings, now, &result)
		}
		if len(pending) < s.batchSize {
			break
		}
		last := pending[len(pending)-1]
		cursor = &timecard.PendingCursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}

	slog.Info("Auto-approval sweep finished", "tenant_id", tenantID, "examined", result.Examined, "approved", result.Approved, "skipped", result.Skipped, "failed", result.Failed)
	return result, nil
}

// autoApproveOne evaluates and, when it qualifies, approves one entry,
// counting the outcome into result.
func (s *TimecardServiceImpl) autoApproveOne(ctx context.Context, entry timecard.TimeEntry, settings *timecard.ApprovalSettings, now time.Time, result *timecard.AutoApprovalResult) {
	result.Examined++

	normalized, validation := s.evaluate(entry)
	schedule, err := s.scheduleFor(ctx, entry)
	if err != nil {
		slog.Warn("Auto-approval skipped entry", "entry_id", entry.ID, "error", err)
		result.Failed++
		return
	}
	candidate := AutoApproval{
		Entry:      entry,
		Validation: validation,
		Hours:      s.calculator.Compute(normalized, schedule, now),
	}
	if !s.gate.IsAutoApprovable(candidate, settings, now) {
		result.Skipped++
		return
	}

	t, err := s.gate.AutoApprove(candidate, settings, now)
	if err == nil {
		err = s.commit(ctx, t)
	}
	if err != nil {
		slog.Warn("Auto-approval failed", "entry_id", entry.ID, "tenant_id", entry.TenantID, "error", err)
		result.Failed++
		return
	}
	result.Approved++
	result.Approvals = append(result.Approvals, entry.ID)
}

// GetHourBank implements timecard.TimecardService.
func (s *TimecardServiceImpl) GetHourBank(ctx context.Context, req timecard.HourBankRequest) (timecard.HourBankResponse, error) {
	if err := req.Validate(); err != nil {
		return timecard.HourBankResponse{}, err
	}
	start, end, err := hourBankPeriod(req, s.rules.location())
	if err != nil {
		return timecard.HourBankResponse{}, err
	}

	bank, err := s.HourBank(ctx, req.TenantID, req.UserID, start, end)
	if err != nil {
		return timecard.HourBankResponse{}, err
	}
	return timecard.HourBankResponse{
		TenantID:      bank.TenantID,
		UserID:        bank.UserID,
		PeriodStart:   bank.PeriodStart.Format(time.DateOnly),
		PeriodEnd:     bank.PeriodEnd.Format(time.DateOnly),
		WorkingDays:   bank.WorkingDays,
		WorkedHours:   bank.WorkedHours.StringFixed(2),
		ExpectedHours: bank.ExpectedHours.StringFixed(2),
		Balance:       bank.Balance.StringFixed(2),
	}, nil
}

// hourBankPeriod reads the request dates as midnights in loc.
func hourBankPeriod(req timecard.HourBankRequest, loc *time.Location) (time.Time, time.Time, error) {
	var errs validator.ValidationErrors
	start, ok := validator.IsValidDateIn(req.StartDate, loc)
	if !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be in YYYY-MM-DD format",
		})
	}
	end, ok := validator.IsValidDateIn(req.EndDate, loc)
	if !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be in YYYY-MM-DD format",
		})
	}
	if len(errs) > 0 {
		return time.Time{}, time.Time{}, errs
	}
	return start, end, nil
}

// HourBank computes the balance of [start, end] from stored entries and schedules.
func (s *TimecardServiceImpl) HourBank(ctx context.Context, tenantID, userID string, start, end time.Time) (timecard.HourBank, error) {
	entries, err := s.entries.FindEntriesInRange(ctx, userID, tenantID, start, end.AddDate(0, 0, 1))
	if err != nil {
		return timecard.HourBank{}, fmt.Errorf("failed to find entries in range: %w", err)
	}
	schedules, err := s.schedules.ListForRange(ctx, userID, tenantID, start, end)
	if err != nil {
		return timecard.HourBank{}, fmt.Errorf("failed to list work schedules: %w", err)
	}

	period := make([]PeriodEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.TenantID != tenantID || entry.UserID != userID {
			continue
		}
		normalized, err := s.normalizer.Normalize(entry)
		if err != nil {
			slog.Warn("Excluded entry from hour bank", "entry_id", entry.ID, "error", err)
			continue
		}
		date := s.rules.CalendarDate(entry.ReferenceTime())
		period = append(period, PeriodEntry{
			Entry:    normalized,
			Schedule: timecard.SelectActiveSchedule(schedules, date),
		})
	}

	totals := s.calculator.ComputePeriod(period, start, end, s.now().UTC())
	return timecard.HourBank{
		TenantID:      tenantID,
		UserID:        userID,
		PeriodStart:   start,
		PeriodEnd:     end,
		WorkingDays:   totals.WorkingDays,
		WorkedHours:   totals.TotalHours,
		ExpectedHours: totals.ExpectedHours,
		Balance:       totals.HourBankDelta,
	}, nil
}

// GetApprovalHistory implements timecard.TimecardService.
func (s *TimecardServiceImpl) GetApprovalHistory(ctx context.Context, tenantID, entryID string) ([]timecard.ApprovalHistoryResponse, error) {
	if _, err := s.getEntry(ctx, tenantID, entryID); err != nil {
		return nil, err
	}
	records, err := s.history.ListByEntry(ctx, entryID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list approval history: %w", err)
	}

	responses := make([]timecard.ApprovalHistoryResponse, 0, len(records))
	for _, r := range records {
		responses = append(responses, timecard.ApprovalHistoryResponse{
			ID:              r.ID,
			TimecardEntryID: r.TimecardEntryID,
			ApprovalStatus:  string(r.ApprovalStatus),
			ApprovedBy:      r.ApprovedBy,
			ApprovalDate:    r.ApprovalDate.Format(time.RFC3339),
			RejectionReason: r.RejectionReason,
			Comments:        r.Comments,
			ApprovalMethod:  string(r.ApprovalMethod),
		})
	}
	return responses, nil
}

func (s *TimecardServiceImpl) approveOne(ctx context.Context, actor timecard.Actor, entryID string, comments *string, settings *timecard.ApprovalSettings, members []string, now time.Time) (timecard.TimeEntry, error) {
	if settings == nil {
		return timecard.TimeEntry{}, timecard.ErrSettingsMissing
	}
	entry, err := s.getEntry(ctx, actor.TenantID, entryID)
	if err != nil {
		return timecard.TimeEntry{}, err
	}
	if !s.gate.CanApprove(actor, entry, settings, members) {
		return timecard.TimeEntry{}, timecard.ErrUnauthorized
	}

	t, err := s.gate.Approve(entry, actor, comments, now)
	if err != nil {
		return timecard.TimeEntry{}, err
	}
	if err := s.commit(ctx, t); err != nil {
		return timecard.TimeEntry{}, err
	}

	slog.Info("Approved time entry", "entry_id", entry.ID, "tenant_id", entry.TenantID, "approved_by", actor.ID)
	return t.Entry, nil
}

// commit stores a transition: the status compare-and-set and its history row
// land together or not at all.
func (s *TimecardServiceImpl) commit(ctx context.Context, t Transition) error {
	return s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.entries.UpdateStatus(txCtx, t.Entry, timecard.EntryStatusPending); err != nil {
			if errors.Is(err, timecard.ErrConcurrentUpdate) {
				return timecard.ErrNotPending
			}
			return fmt.Errorf("failed to update entry status: %w", err)
		}
		if _, err := s.history.Append(txCtx, t.History); err != nil {
			return fmt.Errorf("failed to append approval history: %w", err)
		}
		return nil
	})
}

func (s *TimecardServiceImpl) approvalContext(ctx context.Context, tenantID string) (*timecard.ApprovalSettings, []string, error) {
	settings, err := s.settings.GetByTenant(ctx, tenantID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get approval settings: %w", err)
	}
	if settings == nil || settings.ApprovalGroupID == nil {
		return settings, nil, nil
	}
	members, err := s.groups.GetGroupMembers(ctx, *settings.ApprovalGroupID, tenantID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get approval group members: %w", err)
	}
	return settings, members, nil
}

func (s *TimecardServiceImpl) getEntry(ctx context.Context, tenantID, id string) (timecard.TimeEntry, error) {
	if validator.IsEmpty(id) {
		return timecard.TimeEntry{}, timecard.ErrEntryNotFound
	}
	entry, err := s.entries.GetByID(ctx, id, tenantID)
	if err != nil {
		if errors.Is(err, timecard.ErrEntryNotFound) {
			return timecard.TimeEntry{}, err
		}
		return timecard.TimeEntry{}, fmt.Errorf("failed to get time entry: %w", err)
	}
	if entry.TenantID != tenantID {
		return timecard.TimeEntry{}, timecard.ErrEntryNotFound
	}
	return entry, nil
}

func (s *TimecardServiceImpl) scheduleFor(ctx context.Context, entry timecard.TimeEntry) (*timecard.WorkSchedule, error) {
	schedule, err := s.schedules.GetActiveSchedule(ctx, entry.UserID, entry.TenantID, s.rules.CalendarDate(entry.ReferenceTime()))
	if err != nil {
		return nil, fmt.Errorf("failed to get active schedule: %w", err)
	}
	return schedule, nil
}

// evaluate normalizes and validates an entry. A structural defect becomes a
// high severity issue instead of an error.
func (s *TimecardServiceImpl) evaluate(entry timecard.TimeEntry) (NormalizedEntry, ValidationResult) {
	normalized, err := s.normalizer.Normalize(entry)
	if err != nil {
		return normalized, NormalizationFailed(err)
	}
	return normalized, s.validator.Validate(normalized)
}

func (s *TimecardServiceImpl) describe(ctx context.Context, entry timecard.TimeEntry, now time.Time) (timecard.EntryResponse, error) {
	schedule, err := s.scheduleFor(ctx, entry)
	if err != nil {
		return timecard.EntryResponse{}, err
	}
	normalized, validation := s.evaluate(entry)
	hours := s.calculator.Compute(normalized, schedule, now)
	return ToEntryResponse(normalized, validation, hours, s.rules.location()), nil
}

// ToEntryResponse renders an evaluated entry. Dates are taken in loc.
func ToEntryResponse(n NormalizedEntry, v ValidationResult, h HourBreakdown, loc *time.Location) timecard.EntryResponse {
	e := n.Entry
	return timecard.EntryResponse{
		ID:              e.ID,
		TenantID:        e.TenantID,
		UserID:          e.UserID,
		Date:            e.ReferenceTime().In(loc).Format(time.DateOnly),
		CheckIn:         formatTime(e.CheckIn),
		CheckOut:        formatTime(e.CheckOut),
		BreakStart:      formatTime(n.BreakStart),
		BreakEnd:        formatTime(n.BreakEnd),
		BreakInferred:   n.BreakInferred,
		WorkedMinutes:   h.WorkedMinutes,
		BreakMinutes:    h.BreakMinutes,
		OvertimeMinutes: h.OvertimeMinutes,
		TotalHours:      h.TotalHours.StringFixed(2),
		InProgress:      h.InProgress,
		Status:          string(e.Status),
		IsManualEntry:   e.IsManualEntry,
		Notes:           e.Notes,
		Location:        e.Location,
		ApprovedBy:      e.ApprovedBy,
		ApprovedAt:      formatTime(e.ApprovedAt),
		IsConsistent:    v.IsConsistent,
		Issues:          v.Issues,
		CreatedAt:       e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       e.UpdatedAt.Format(time.RFC3339),
	}
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.Format(time.RFC3339)
	return &formatted
}

func lockKey(tenantID, userID string) string {
	return tenantID + "/" + userID
}
