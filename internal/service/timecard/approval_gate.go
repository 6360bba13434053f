package timecard

import (
	"slices"
	"strings"
	"time"

	"github.com/cmlabs-hris/timecard-backend-go/internal/domain/timecard"
)

// Transition is the result of one approval action: the entry to persist and
// the single history row that records it.
type Transition struct {
	Entry   timecard.TimeEntry
	History timecard.ApprovalHistory
}

// ApprovalGate is the pending -> approved | rejected state machine. It holds
// no state and performs no I/O.
type ApprovalGate struct{}

func NewApprovalGate() *ApprovalGate {
	return &ApprovalGate{}
}

// CanApprove is true iff the actor is a default approver of the tenant or a
// member of its approval group. Missing settings deny.
func (g *ApprovalGate) CanApprove(actor timecard.Actor, entry timecard.TimeEntry, settings *timecard.ApprovalSettings, groupMembers []string) bool {
	if settings == nil || actor.ID == "" {
		return false
	}
	if actor.TenantID != entry.TenantID || settings.TenantID != entry.TenantID {
		return false
	}
	if slices.Contains(settings.DefaultApprovers, actor.ID) {
		return true
	}
	return settings.ApprovalGroupID != nil && slices.Contains(groupMembers, actor.ID)
}

func (g *ApprovalGate) Approve(entry timecard.TimeEntry, actor timecard.Actor, comments *string, at time.Time) (Transition, error) {
	if actor.TenantID != entry.TenantID {
		return Transition{}, timecard.ErrTenantMismatch
	}
	approver := actor.ID
	return g.transition(entry, timecard.EntryStatusApproved, &approver, nil, comments, timecard.ApprovalMethodManual, at)
}

// Reject requires a non-blank reason. A missing reason fails before the
// pending check and writes nothing.
func (g *ApprovalGate) Reject(entry timecard.TimeEntry, actor timecard.Actor, reason string, comments *string, at time.Time) (Transition, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return Transition{}, timecard.ErrMissingReason
	}
	if actor.TenantID != entry.TenantID {
		return Transition{}, timecard.ErrTenantMismatch
	}
	approver := actor.ID
	return g.transition(entry, timecard.EntryStatusRejected, &approver, &reason, comments, timecard.ApprovalMethodManual, at)
}

// AutoApproval carries what the gate needs to judge one entry for automatic approval.
type AutoApproval struct {
	Entry      timecard.TimeEntry
	Validation ValidationResult
	Hours      HourBreakdown
}

// IsAutoApprovable applies the tenant's automatic approval rule at instant now.
// Open entries and entries in a category that requires approval never qualify.
func (g *ApprovalGate) IsAutoApprovable(in AutoApproval, settings *timecard.ApprovalSettings, now time.Time) bool {
	entry := in.Entry
	if settings == nil || settings.TenantID != entry.TenantID {
		return false
	}
	if entry.Status != timecard.EntryStatusPending || !entry.IsComplete() {
		return false
	}
	for _, category := range Categories(entry, in.Hours) {
		if settings.RequiresApproval(category) {
			return false
		}
	}

	if settings.ApprovalType == timecard.ApprovalTypeAutomatic {
		return true
	}
	if !settings.AutoApproveComplete || !in.Validation.IsConsistent {
		return false
	}
	age := now.Sub(*entry.CheckOut)
	return age >= time.Duration(settings.AutoApproveAfterHours)*time.Hour
}

// AutoApprove approves with method automatic and no approver.
func (g *ApprovalGate) AutoApprove(in AutoApproval, settings *timecard.ApprovalSettings, now time.Time) (Transition, error) {
	if in.Entry.Status != timecard.EntryStatusPending {
		return Transition{}, timecard.ErrNotPending
	}
	if !g.IsAutoApprovable(in, settings, now) {
		return Transition{}, timecard.ErrNotAutoApprovable
	}
	return g.transition(in.Entry, timecard.EntryStatusApproved, nil, nil, nil, timecard.ApprovalMethodAutomatic, now)
}

func (g *ApprovalGate) transition(entry timecard.TimeEntry, to timecard.EntryStatus, approvedBy, reason, comments *string, method timecard.ApprovalMethod, at time.Time) (Transition, error) {
	if entry.Status != timecard.EntryStatusPending {
		return Transition{}, timecard.ErrNotPending
	}
	history, err := timecard.NewApprovalHistory(entry, to, approvedBy, at, reason, comments, method)
	if err != nil {
		return Transition{}, err
	}

	updated := entry
	updated.Status = to
	updated.ApprovedBy = approvedBy
	approvedAt := at
	updated.ApprovedAt = &approvedAt
	updated.UpdatedAt = at
	return Transition{Entry: updated, History: history}, nil
}

// Categories classifies an entry for the requireApprovalFor setting.
func Categories(entry timecard.TimeEntry, hours HourBreakdown) []timecard.EntryCategory {
	var categories []timecard.EntryCategory
	if entry.IsManualEntry {
		categories = append(categories, timecard.EntryCategoryManual)
	}
	if hours.OvertimeMinutes > 0 {
		categories = append(categories, timecard.EntryCategoryOvertime)
	}
	if len(categories) == 0 {
		categories = append(categories, timecard.EntryCategoryRegular)
	}
	return categories
}
