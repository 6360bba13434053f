package timecard

import (
	"context"
	"time"
)

// TimecardService defines business logic for timecard operations.
type TimecardService interface {
	// CheckIn opens a new entry for the user. Fails with ErrDuplicateOpenEntry
	// while another entry is open.
	CheckIn(ctx context.Context, req PunchRequest) (EntryResponse, error)

	// CheckOut closes the user's open entry. Fails with ErrNoActiveEntry when
	// there is none.
	CheckOut(ctx context.Context, req PunchRequest) (EntryResponse, error)

	GetEntry(ctx context.Context, tenantID, id string) (EntryResponse, error)

	ListEntries(ctx context.Context, tenantID string, filter EntryFilter) (ListEntriesResponse, error)

	// ValidateEntry runs the consistency rules against a stored entry.
	ValidateEntry(ctx context.Context, tenantID, id string) (ValidationResponse, error)

	CanApprove(ctx context.Context, actor Actor, entryID string) (CanApproveResponse, error)

	Approve(ctx context.Context, req ApproveRequest) (EntryResponse, error)

	Reject(ctx context.Context, req RejectRequest) (EntryResponse, error)

	// BulkApprove approves each id independently and reports one result per id.
	BulkApprove(ctx context.Context, req BulkApproveRequest) (BulkApproveResponse, error)

	// RunAutoApproval approves every pending entry of the tenant that
	// qualifies under the tenant's settings at instant now.
	RunAutoApproval(ctx context.Context, tenantID string, now time.Time) (AutoApprovalResult, error)

	GetHourBank(ctx context.Context, req HourBankRequest) (HourBankResponse, error)

	GetApprovalHistory(ctx context.Context, tenantID, entryID string) ([]ApprovalHistoryResponse, error)
}
