package timecard

import (
	"context"
	"time"
)

// TimeEntryRepository defines data access for time entries.
// Every method takes tenantID so one tenant can never read another's rows.
type TimeEntryRepository interface {
	// Create inserts a new entry. Returns ErrDuplicateOpenEntry when the user
	// already has an open entry.
	Create(ctx context.Context, entry TimeEntry) (TimeEntry, error)

	GetByID(ctx context.Context, id string, tenantID string) (TimeEntry, error)

	// FindOpenEntries returns entries with check_in set and check_out unset,
	// oldest first by created_at.
	FindOpenEntries(ctx context.Context, userID string, tenantID string) ([]TimeEntry, error)

	// FindEntriesInRange returns entries whose check_in (or created_at when
	// check_in is missing) falls in [start, end), ordered by created_at.
	FindEntriesInRange(ctx context.Context, userID string, tenantID string, start, end time.Time) ([]TimeEntry, error)

	// Close persists check-out, breaks and total hours, but only while the row
	// is still open. Returns ErrConcurrentUpdate otherwise.
	Close(ctx context.Context, entry TimeEntry) error

	// UpdateStatus persists status and approver fields, but only while the
	// stored status equals expected. Returns ErrConcurrentUpdate otherwise.
	UpdateStatus(ctx context.Context, entry TimeEntry, expected EntryStatus) error

	// ListPending returns closed pending entries of a tenant created before
	// the cutoff, ordered by (created_at, id) and starting after the cursor
	// when one is given.
	ListPending(ctx context.Context, tenantID string, createdBefore time.Time, after *PendingCursor, limit int) ([]TimeEntry, error)

	List(ctx context.Context, filter EntryFilter, tenantID string) ([]TimeEntry, int64, error)
}

type ApprovalHistoryRepository interface {
	// Append writes one audit row. Rows are never updated or deleted.
	Append(ctx context.Context, record ApprovalHistory) (ApprovalHistory, error)

	ListByEntry(ctx context.Context, entryID string, tenantID string) ([]ApprovalHistory, error)
}

type WorkScheduleRepository interface {
	// GetActiveSchedule returns nil, nil when the user has no schedule on that date.
	GetActiveSchedule(ctx context.Context, userID string, tenantID string, onDate time.Time) (*WorkSchedule, error)

	// ListForRange returns every schedule overlapping [start, end].
	ListForRange(ctx context.Context, userID string, tenantID string, start, end time.Time) ([]WorkSchedule, error)
}

type ApprovalSettingsRepository interface {
	// GetByTenant returns nil, nil when the tenant has no settings row.
	GetByTenant(ctx context.Context, tenantID string) (*ApprovalSettings, error)

	// ListAutoApprovalTenants returns tenant ids whose settings allow automatic approval.
	ListAutoApprovalTenants(ctx context.Context) ([]string, error)
}

type ApprovalGroupRepository interface {
	GetGroupMembers(ctx context.Context, groupID string, tenantID string) ([]string, error)
}

// Transactor runs fn in one storage transaction carried by ctx.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// PendingCursor is the position of the last entry of a ListPending page.
type PendingCursor struct {
	CreatedAt time.Time
	ID        string
}
