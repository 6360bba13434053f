package timecard

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/timecard-backend-go/internal/domain/timecard"
	"github.com/cmlabs-hris/timecard-backend-go/internal/pkg/validator"
)

func punchReq() timecard.PunchRequest {
	return timecard.PunchRequest{TenantID: tenantA, UserID: userA}
}

func approver() timecard.Actor {
	return timecard.Actor{ID: approverID, TenantID: tenantA}
}

func storeWithSettings() *memoryStore {
	store := newMemoryStore()
	store.settings[tenantA] = *manualSettings()
	store.groups[tenantA+"/"+groupID] = []string{memberID}
	return store
}

func TestTimecardService_CheckInCheckOut(t *testing.T) {
	ctx := context.Background()
	store := storeWithSettings()
	clock := &fixedClock{now: at("08:00")}
	svc := newTestService(store, clock)

	in, err := svc.CheckIn(ctx, punchReq())
	require.NoError(t, err)
	assert.True(t, in.InProgress)
	assert.Equal(t, "pending", in.Status)
	assert.Contains(t, codesOf(in.Issues), timecard.IssueEntryInProgress)

	clock.Set(at("18:00"))
	out, err := svc.CheckOut(ctx, punchReq())
	require.NoError(t, err)

	assert.Equal(t, in.ID, out.ID)
	assert.Equal(t, "9.00", out.TotalHours)
	assert.Equal(t, 60, out.OvertimeMinutes)
	assert.True(t, out.BreakInferred)
	assert.True(t, out.IsConsistent)
	assert.False(t, out.InProgress)

	stored := store.get(in.ID)
	assert.Equal(t, "9.00", stored.TotalHours.StringFixed(2))
	assert.Nil(t, stored.BreakStart, "inferred break is not persisted")
	assert.Len(t, store.entries, 1)
}

func TestTimecardService_CheckOutWithoutOpenEntry(t *testing.T) {
	store := storeWithSettings()
	svc := newTestService(store, &fixedClock{now: at("17:00")})

	_, err := svc.CheckOut(context.Background(), punchReq())

	assert.ErrorIs(t, err, timecard.ErrNoActiveEntry)
	assert.Empty(t, store.entries)
}

func TestTimecardService_CheckOutRejectsBreakBeforeCheckIn(t *testing.T) {
	ctx := context.Background()
	store := storeWithSettings()
	clock := &fixedClock{now: at("08:00")}
	svc := newTestService(store, clock)

	in, err := svc.CheckIn(ctx, punchReq())
	require.NoError(t, err)

	clock.Set(at("17:00"))
	req := punchReq()
	req.BreakStart = ptr(at("06:00").Format(time.RFC3339))
	_, err = svc.CheckOut(ctx, req)
	assert.ErrorIs(t, err, timecard.ErrInvalidEntry)

	stored := store.get(in.ID)
	assert.Nil(t, stored.CheckOut, "entry stays open")
	assert.Nil(t, stored.BreakStart)
}

func TestTimecardService_DuplicateCheckIn(t *testing.T) {
	ctx := context.Background()
	store := storeWithSettings()
	svc := newTestService(store, &fixedClock{now: at("08:00")})

	_, err := svc.CheckIn(ctx, punchReq())
	require.NoError(t, err)
	_, err = svc.CheckIn(ctx, punchReq())

	assert.ErrorIs(t, err, timecard.ErrDuplicateOpenEntry)
	assert.Len(t, store.entries, 1)
}

func TestTimecardService_ConcurrentCheckInsSameUser(t *testing.T) {
	ctx := context.Background()
	store := storeWithSettings()
	svc := newTestService(store, &fixedClock{now: at("08:00")})

	const workers = 16
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.CheckIn(ctx, punchReq())
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, timecard.ErrDuplicateOpenEntry)
	}
	assert.Equal(t, 1, succeeded)
	assert.Len(t, store.entries, 1)
}

func TestTimecardService_DifferentUsersAreIndependent(t *testing.T) {
	ctx := context.Background()
	store := storeWithSettings()
	svc := newTestService(store, &fixedClock{now: at("08:00")})

	_, err := svc.CheckIn(ctx, punchReq())
	require.NoError(t, err)
	other := punchReq()
	other.UserID = userB
	_, err = svc.CheckIn(ctx, other)
	require.NoError(t, err)

	assert.Len(t, store.entries, 2)
}

func TestTimecardService_PunchValidation(t *testing.T) {
	svc := newTestService(storeWithSettings(), &fixedClock{now: at("08:00")})
	req := punchReq()
	req.UserID = ""
	req.Timestamp = ptr("yesterday")

	_, err := svc.CheckIn(context.Background(), req)

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "user_id")
	assert.Contains(t, verrs.ToMap(), "timestamp")
}

func TestTimecardService_ManualPunchTimestamp(t *testing.T) {
	ctx := context.Background()
	store := storeWithSettings()
	svc := newTestService(store, &fixedClock{now: at("20:00")})

	req := punchReq()
	req.Timestamp = ptr(at("08:00").Format("2006-01-02T15:04:05Z07:00"))
	in, err := svc.CheckIn(ctx, req)
	require.NoError(t, err)
	assert.True(t, in.IsManualEntry)

	req.Timestamp = ptr(at("07:00").Format("2006-01-02T15:04:05Z07:00"))
	_, err = svc.CheckOut(ctx, req)
	assert.ErrorIs(t, err, timecard.ErrInvalidSequence)
	assert.True(t, store.get(in.ID).IsOpen())
}

func seedClosed(store *memoryStore, in, out string) timecard.TimeEntry {
	e := entry(in, out)
	e.ID = ""
	return store.put(e)
}

func TestTimecardService_ApproveOnlyOnce(t *testing.T) {
	ctx := context.Background()
	store := storeWithSettings()
	svc := newTestService(store, &fixedClock{now: at("20:00")})
	e := seedClosed(store, "08:00", "17:00")

	resp, err := svc.Approve(ctx, timecard.ApproveRequest{Actor: approver(), EntryID: e.ID, Comments: ptr("fine")})
	require.NoError(t, err)
	assert.Equal(t, "approved", resp.Status)
	assert.Equal(t, approverID, *resp.ApprovedBy)

	_, err = svc.Approve(ctx, timecard.ApproveRequest{Actor: approver(), EntryID: e.ID})
	assert.ErrorIs(t, err, timecard.ErrNotPending)

	history := store.historyFor(e.ID)
	require.Len(t, history, 1)
	assert.Equal(t, timecard.ApprovalMethodManual, history[0].ApprovalMethod)
	assert.Equal(t, "fine", *history[0].Comments)
}

func TestTimecardService_ApproveByGroupMember(t *testing.T) {
	store := storeWithSettings()
	svc := newTestService(store, &fixedClock{now: at("20:00")})
	e := seedClosed(store, "08:00", "17:00")

	_, err := svc.Approve(context.Background(), timecard.ApproveRequest{
		Actor:   timecard.Actor{ID: memberID, TenantID: tenantA},
		EntryID: e.ID,
	})
	require.NoError(t, err)
}

func TestTimecardService_ApproveUnauthorized(t *testing.T) {
	store := storeWithSettings()
	svc := newTestService(store, &fixedClock{now: at("20:00")})
	e := seedClosed(store, "08:00", "17:00")

	_, err := svc.Approve(context.Background(), timecard.ApproveRequest{
		Actor:   timecard.Actor{ID: outsiderID, TenantID: tenantA},
		EntryID: e.ID,
	})

	assert.ErrorIs(t, err, timecard.ErrUnauthorized)
	assert.Equal(t, timecard.EntryStatusPending, store.get(e.ID).Status)
	assert.Empty(t, store.historyFor(e.ID))
}

func TestTimecardService_ApproveWithoutSettings(t *testing.T) {
	store := newMemoryStore()
	svc := newTestService(store, &fixedClock{now: at("20:00")})
	e := seedClosed(store, "08:00", "17:00")

	_, err := svc.Approve(context.Background(), timecard.ApproveRequest{Actor: approver(), EntryID: e.ID})
	assert.ErrorIs(t, err, timecard.ErrSettingsMissing)

	resp, err := svc.CanApprove(context.Background(), approver(), e.ID)
	require.NoError(t, err)
	assert.False(t, resp.CanApprove)
}

func TestTimecardService_RejectWithoutReason(t *testing.T) {
	store := storeWithSettings()
	svc := newTestService(store, &fixedClock{now: at("20:00")})
	e := seedClosed(store, "08:00", "17:00")

	_, err := svc.Reject(context.Background(), timecard.RejectRequest{Actor: approver(), EntryID: e.ID, Reason: ""})

	assert.ErrorIs(t, err, timecard.ErrMissingReason)
	assert.Empty(t, store.historyFor(e.ID))
	assert.Equal(t, timecard.EntryStatusPending, store.get(e.ID).Status)
}

func TestTimecardService_Reject(t *testing.T) {
	ctx := context.Background()
	store := storeWithSettings()
	svc := newTestService(store, &fixedClock{now: at("20:00")})
	e := seedClosed(store, "08:00", "17:00")

	resp, err := svc.Reject(ctx, timecard.RejectRequest{Actor: approver(), EntryID: e.ID, Reason: "wrong site"})
	require.NoError(t, err)
	assert.Equal(t, "rejected", resp.Status)

	_, err = svc.Reject(ctx, timecard.RejectRequest{Actor: approver(), EntryID: e.ID, Reason: "again"})
	assert.ErrorIs(t, err, timecard.ErrNotPending)

	history, err := svc.GetApprovalHistory(ctx, tenantA, e.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "rejected", history[0].ApprovalStatus)
	assert.Equal(t, "wrong site", *history[0].RejectionReason)
}

func TestTimecardService_BulkApprovePartialFailure(t *testing.T) {
	ctx := context.Background()
	store := storeWithSettings()
	svc := newTestService(store, &fixedClock{now: at("20:00")})

	first := seedClosed(store, "08:00", "12:00")
	done := entry("13:00", "17:00")
	done.ID = ""
	done.Status = timecard.EntryStatusApproved
	done = store.put(done)
	third := seedClosed(store, "18:00", "19:00")

	resp, err := svc.BulkApprove(ctx, timecard.BulkApproveRequest{
		Actor:    approver(),
		EntryIDs: []string{first.ID, done.ID, third.ID},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, resp.SuccessCount)
	assert.Equal(t, 1, resp.FailureCount)
	require.Len(t, resp.Results, 3)
	assert.True(t, resp.Results[0].Success)
	assert.False(t, resp.Results[1].Success)
	assert.ErrorIs(t, resp.Results[1].Err, timecard.ErrNotPending)
	assert.True(t, resp.Results[2].Success)
	assert.Equal(t, timecard.EntryStatusApproved, store.get(third.ID).Status)
}

func TestTimecardService_TenantIsolation(t *testing.T) {
	ctx := context.Background()
	store := storeWithSettings()
	svc := newTestService(store, &fixedClock{now: at("20:00")})
	e := seedClosed(store, "08:00", "17:00")

	_, err := svc.GetEntry(ctx, tenantB, e.ID)
	assert.ErrorIs(t, err, timecard.ErrEntryNotFound)

	_, err = svc.Approve(ctx, timecard.ApproveRequest{Actor: timecard.Actor{ID: approverID, TenantID: tenantB}, EntryID: e.ID})
	assert.Error(t, err)
	assert.Equal(t, timecard.EntryStatusPending, store.get(e.ID).Status)
}

func TestTimecardService_ValidateEntry(t *testing.T) {
	store := storeWithSettings()
	svc := newTestService(store, &fixedClock{now: at("20:00")})
	e := seedClosed(store, "09:00", "09:03")

	resp, err := svc.ValidateEntry(context.Background(), tenantA, e.ID)
	require.NoError(t, err)

	assert.False(t, resp.IsConsistent)
	assert.Contains(t, codesOf(resp.Issues), timecard.IssueExcessivelyShortShift)
}

func TestTimecardService_RunAutoApproval(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	store.settings[tenantA] = timecard.ApprovalSettings{
		TenantID:              tenantA,
		ApprovalType:          timecard.ApprovalTypeManual,
		AutoApproveComplete:   true,
		AutoApproveAfterHours: 12,
	}
	svc := newTestService(store, &fixedClock{now: at("20:00")})

	ok := seedClosed(store, "08:00", "16:00")
	short := seedClosed(store, "09:00", "09:03")
	open := entry("17:00", "")
	open.ID = ""
	open = store.put(open)

	res, err := svc.RunAutoApproval(ctx, tenantA, at("06:00", 1))
	require.NoError(t, err)

	assert.Equal(t, 1, res.Approved)
	assert.Equal(t, []string{ok.ID}, res.Approvals)
	assert.Equal(t, timecard.EntryStatusApproved, store.get(ok.ID).Status)
	assert.Equal(t, timecard.EntryStatusPending, store.get(short.ID).Status)
	assert.Equal(t, timecard.EntryStatusPending, store.get(open.ID).Status)

	history := store.historyFor(ok.ID)
	require.Len(t, history, 1)
	assert.Equal(t, timecard.ApprovalMethodAutomatic, history[0].ApprovalMethod)
	assert.Nil(t, history[0].ApprovedBy)

	again, err := svc.RunAutoApproval(ctx, tenantA, at("06:00", 1))
	require.NoError(t, err)
	assert.Zero(t, again.Approved)
}

func autoApprovalStore() *memoryStore {
	store := newMemoryStore()
	store.settings[tenantA] = timecard.ApprovalSettings{
		TenantID:              tenantA,
		ApprovalType:          timecard.ApprovalTypeManual,
		AutoApproveComplete:   true,
		AutoApproveAfterHours: 12,
	}
	return store
}

func TestTimecardService_RunAutoApprovalReachesPastSkippedBacklog(t *testing.T) {
	store := autoApprovalStore()
	svc := newTestService(store, &fixedClock{now: at("20:00")})

	for range autoApprovalBatchSize + 1 {
		seedClosed(store, "09:00", "09:03")
	}
	valid := seedClosed(store, "09:30", "17:30")

	res, err := svc.RunAutoApproval(context.Background(), tenantA, at("06:00", 1))
	require.NoError(t, err)

	assert.Equal(t, []string{valid.ID}, res.Approvals)
	assert.Equal(t, autoApprovalBatchSize+2, res.Examined)
	assert.Equal(t, autoApprovalBatchSize+1, res.Skipped)
	assert.Equal(t, timecard.EntryStatusApproved, store.get(valid.ID).Status)
}

func TestTimecardService_RunAutoApprovalPagesByCursor(t *testing.T) {
	store := autoApprovalStore()
	svc := newTestService(store, &fixedClock{now: at("20:00")})
	svc.batchSize = 2

	for range 5 {
		seedClosed(store, "09:00", "09:03")
	}
	valid := seedClosed(store, "09:30", "17:30")

	res, err := svc.RunAutoApproval(context.Background(), tenantA, at("06:00", 1))
	require.NoError(t, err)

	assert.Equal(t, 6, res.Examined)
	assert.Equal(t, 5, res.Skipped)
	assert.Equal(t, []string{valid.ID}, res.Approvals)
	assert.Equal(t, 4, store.pendingCalls, "three full pages and one empty page")
}

func TestTimecardService_RunAutoApprovalWithoutSettings(t *testing.T) {
	svc := newTestService(newMemoryStore(), &fixedClock{now: at("20:00")})

	_, err := svc.RunAutoApproval(context.Background(), tenantA, at("20:00"))
	assert.ErrorIs(t, err, timecard.ErrSettingsMissing)
}

func TestTimecardService_GetHourBank(t *testing.T) {
	store := storeWithSettings()
	store.schedules = []timecard.WorkSchedule{{
		TenantID:             tenantA,
		UserID:               userA,
		Type:                 timecard.ScheduleType5x2,
		StartTime:            mustTimeOfDay("09:00"),
		EndTime:              mustTimeOfDay("16:00"),
		BreakDurationMinutes: 60,
		EffectiveFrom:        day.AddDate(0, -1, 0),
	}}
	svc := newTestService(store, &fixedClock{now: at("20:00", 10)})

	mk := func(offset int, in, out string) {
		e := entry("", "")
		e.ID = ""
		e.CheckIn = ptr(at(in, offset))
		e.CheckOut = ptr(at(out, offset))
		e.CreatedAt = *e.CheckIn
		store.put(e)
	}
	mk(0, "08:00", "18:00") // 9h
	mk(1, "09:00", "13:00") // 4h
	mk(7, "09:00", "13:00") // next week

	resp, err := svc.GetHourBank(context.Background(), timecard.HourBankRequest{
		TenantID:  tenantA,
		UserID:    userA,
		StartDate: "2024-03-04",
		EndDate:   "2024-03-10",
	})
	require.NoError(t, err)

	assert.Equal(t, 2, resp.WorkingDays)
	assert.Equal(t, "13.00", resp.WorkedHours)
	assert.Equal(t, "12.00", resp.ExpectedHours)
	assert.Equal(t, "1.00", resp.Balance)
}

func TestHourBankPeriod_RejectsMalformedDates(t *testing.T) {
	_, _, err := hourBankPeriod(timecard.HourBankRequest{StartDate: "2024-13-01", EndDate: "10/03/2024"}, time.UTC)

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "start_date")
	assert.Contains(t, verrs.ToMap(), "end_date")
}

func TestHourBankPeriod_ParsesInLocation(t *testing.T) {
	loc := time.FixedZone("WIB", 7*60*60)

	start, end, err := hourBankPeriod(timecard.HourBankRequest{StartDate: "2024-03-04", EndDate: "2024-03-10"}, loc)
	require.NoError(t, err)

	assert.True(t, start.Equal(time.Date(2024, 3, 4, 0, 0, 0, 0, loc)))
	assert.True(t, end.Equal(time.Date(2024, 3, 10, 0, 0, 0, 0, loc)))
}

func TestTimecardService_GetHourBankRejectsMalformedDate(t *testing.T) {
	svc := newTestService(storeWithSettings(), &fixedClock{now: at("20:00")})

	_, err := svc.GetHourBank(context.Background(), timecard.HourBankRequest{
		TenantID:  tenantA,
		UserID:    userA,
		StartDate: "2024-03-04",
		EndDate:   "not-a-date",
	})

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "end_date")
}

func TestTimecardService_PunchReleasesUserLock(t *testing.T) {
	svc := newTestService(storeWithSettings(), &fixedClock{now: at("08:00")})

	_, err := svc.CheckIn(context.Background(), punchReq())
	require.NoError(t, err)

	assert.Equal(t, 0, svc.locks.Len())
}

func codesOf(issues []timecard.Issue) []timecard.IssueCode {
	out := make([]timecard.IssueCode, 0, len(issues))
	for _, issue := range issues {
		out = append(out, issue.Code)
	}
	return out
}
