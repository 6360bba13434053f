package timecard

import "errors"

// Timecard domain errors
var (
	// Punch errors
	ErrNoActiveEntry      = errors.New("no open time entry to check out")
	ErrDuplicateOpenEntry = errors.New("an open time entry already exists, check out first")
	ErrInvalidSequence    = errors.New("check-out must be after check-in")
	ErrInvalidAction      = errors.New("unknown punch action")
	ErrConcurrentUpdate   = errors.New("time entry was modified concurrently")

	// Approval errors
	ErrMissingReason     = errors.New("rejection reason is required")
	ErrNotPending        = errors.New("time entry is not pending approval")
	ErrUnauthorized      = errors.New("not allowed to approve this time entry")
	ErrSettingsMissing   = errors.New("approval settings are not configured for this tenant")
	ErrNotAutoApprovable = errors.New("time entry does not qualify for automatic approval")

	// General errors
	ErrEntryNotFound  = errors.New("time entry not found")
	ErrInvalidEntry   = errors.New("invalid time entry")
	ErrTenantMismatch = errors.New("time entry belongs to another tenant")
)
