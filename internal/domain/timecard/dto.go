package timecard

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/timecard-backend-go/internal/pkg/validator"
)

// ========================================
// PUNCH DTOs
// ========================================

type Action string

const (
	ActionCheckIn  Action = "check_in"
	ActionCheckOut Action = "check_out"
)

// PunchRequest is a check-in or check-out. TenantID and UserID come from the
// authenticated session, never from the body.
type PunchRequest struct {
	TenantID   string  `json:"-"`
	UserID     string  `json:"-"`
	Timestamp  *string `json:"timestamp,omitempty"` // RFC3339, manual punches only
	BreakStart *string `json:"break_start,omitempty"`
	BreakEnd   *string `json:"break_end,omitempty"`
	Notes      *string `json:"notes,omitempty"`
	Location   *string `json:"location,omitempty"`
}

func (r *PunchRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.TenantID) {
		errs = append(errs, validator.ValidationError{
			Field:   "tenant_id",
			Message: "tenant_id is required",
		})
	}

	if validator.IsEmpty(r.UserID) {
		errs = append(errs, validator.ValidationError{
			Field:   "user_id",
			Message: "user_id is required",
		})
	}

	for field, value := range map[string]*string{
		"timestamp":   r.Timestamp,
		"break_start": r.BreakStart,
		"break_end":   r.BreakEnd,
	} {
		if value == nil || *value == "" {
			continue
		}
		if _, valid := validator.IsValidDateTime(*value); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   field,
				Message: field + " must be an RFC3339 timestamp",
			})
		}
	}

	if r.Notes != nil && len(*r.Notes) > 1000 {
		errs = append(errs, validator.ValidationError{
			Field:   "notes",
			Message: "notes must not exceed 1000 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Punch is the parsed form of a PunchRequest.
type Punch struct {
	Action     Action
	TenantID   string
	UserID     string
	At         time.Time
	IsManual   bool
	BreakStart *time.Time
	BreakEnd   *time.Time
	Notes      *string
	Location   *string
}

// ToPunch parses the request. now is used when no timestamp was given.
func (r *PunchRequest) ToPunch(action Action, now time.Time) Punch {
	p := Punch{
		Action:   action,
		TenantID: r.TenantID,
		UserID:   r.UserID,
		At:       now,
		Notes:    r.Notes,
		Location: r.Location,
	}
	if t := parseOptionalTime(r.Timestamp); t != nil {
		p.At = *t
		p.IsManual = true
	}
	p.BreakStart = parseOptionalTime(r.BreakStart)
	p.BreakEnd = parseOptionalTime(r.BreakEnd)
	return p
}

func parseOptionalTime(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t, ok := validator.IsValidDateTime(*s)
	if !ok {
		return nil
	}
	return &t
}

// ========================================
// ENTRY DTOs
// ========================================

type EntryResponse struct {
	ID              string  `json:"id"`
	TenantID        string  `json:"tenant_id"`
	UserID          string  `json:"user_id"`
	Date            string  `json:"date"`
	CheckIn         *string `json:"check_in,omitempty"`
	CheckOut        *string `json:"check_out,omitempty"`
	BreakStart      *string `json:"break_start,omitempty"`
	BreakEnd        *string `json:"break_end,omitempty"`
	BreakInferred   bool    `json:"break_inferred"`
	WorkedMinutes   int     `json:"worked_minutes"`
	BreakMinutes    int     `json:"break_minutes"`
	OvertimeMinutes int     `json:"overtime_minutes"`
	TotalHours      string  `json:"total_hours"`
	InProgress      bool    `json:"in_progress"`
	Status          string  `json:"status"`
	IsManualEntry   bool    `json:"is_manual_entry"`
	Notes           *string `json:"notes,omitempty"`
	Location        *string `json:"location,omitempty"`
	ApprovedBy      *string `json:"approved_by,omitempty"`
	ApprovedAt      *string `json:"approved_at,omitempty"`
	IsConsistent    bool    `json:"is_consistent"`
	Issues          []Issue `json:"issues"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

type EntryFilter struct {
	UserID    *string `json:"user_id,omitempty"`
	StartDate *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate   *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	Status    *string `json:"status,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`

	// Sorting
	SortBy    string `json:"sort_by"`    // check_in, created_at, status
	SortOrder string `json:"sort_order"` // asc, desc
}

func (f *EntryFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1
	}

	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	if f.Status != nil && !validator.IsInSlice(*f.Status, EntryStatusValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: " + strings.Join(EntryStatusValues, ", "),
		})
	}

	if f.StartDate != nil && *f.StartDate != "" {
		if _, valid := validator.IsValidDate(*f.StartDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
	}

	if f.EndDate != nil && *f.EndDate != "" {
		if _, valid := validator.IsValidDate(*f.EndDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
	}

	if f.SortBy != "" {
		validSortFields := []string{"check_in", "created_at", "status"}
		if !validator.IsInSlice(f.SortBy, validSortFields) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_by",
				Message: "sort_by must be one of: check_in, created_at, status",
			})
		}
	} else {
		f.SortBy = "check_in"
	}

	if f.SortOrder != "" {
		if !validator.IsInSlice(strings.ToLower(f.SortOrder), []string{"asc", "desc"}) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_order",
				Message: "sort_order must be one of: asc, desc",
			})
		}
	} else {
		f.SortOrder = "desc"
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ListEntriesResponse struct {
	TotalCount int64           `json:"total_count"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
	Showing    string          `json:"showing"`
	Entries    []EntryResponse `json:"entries"`
}

type ValidationResponse struct {
	EntryID       string  `json:"entry_id"`
	IsConsistent  bool    `json:"is_consistent"`
	BreakInferred bool    `json:"break_inferred"`
	Issues        []Issue `json:"issues"`
}

// ========================================
// APPROVAL DTOs
// ========================================

type ApproveRequest struct {
	Actor    Actor   `json:"-"`
	EntryID  string  `json:"-"`
	Comments *string `json:"comments,omitempty"`
}

func (r *ApproveRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EntryID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "time entry id is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// RejectRequest requires a reason. An empty reason is reported as
// ErrMissingReason rather than a validation error so callers can tell it apart.
type RejectRequest struct {
	Actor    Actor   `json:"-"`
	EntryID  string  `json:"-"`
	Reason   string  `json:"reason"`
	Comments *string `json:"comments,omitempty"`
}

func (r *RejectRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EntryID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "time entry id is required",
		})
	}

	if len(r.Reason) > 500 {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason must not exceed 500 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type BulkApproveRequest struct {
	Actor    Actor    `json:"-"`
	EntryIDs []string `json:"entry_ids"`
	Comments *string  `json:"comments,omitempty"`
}

func (r *BulkApproveRequest) Validate() error {
	var errs validator.ValidationErrors

	if len(r.EntryIDs) == 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "entry_ids",
			Message: "at least one entry id is required",
		})
	}

	if len(r.EntryIDs) > 500 {
		errs = append(errs, validator.ValidationError{
			Field:   "entry_ids",
			Message: "at most 500 entries can be approved at once",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type BulkApproveResult struct {
	EntryID string `json:"entry_id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Err     error  `json:"-"`
}

type BulkApproveResponse struct {
	Results      []BulkApproveResult `json:"results"`
	SuccessCount int                 `json:"success_count"`
	FailureCount int                 `json:"failure_count"`
}

type CanApproveResponse struct {
	EntryID    string `json:"entry_id"`
	CanApprove bool   `json:"can_approve"`
}

type ApprovalHistoryResponse struct {
	ID              string  `json:"id"`
	TimecardEntryID string  `json:"timecard_entry_id"`
	ApprovalStatus  string  `json:"approval_status"`
	ApprovedBy      *string `json:"approved_by"`
	ApprovalDate    string  `json:"approval_date"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
	Comments        *string `json:"comments,omitempty"`
	ApprovalMethod  string  `json:"approval_method"`
}

type AutoApprovalResult struct {
	TenantID  string   `json:"tenant_id"`
	Examined  int      `json:"examined"`
	Approved  int      `json:"approved"`
	Skipped   int      `json:"skipped"`
	Failed    int      `json:"failed"`
	Approvals []string `json:"approvals"`
}

// ========================================
// HOUR BANK DTOs
// ========================================

type HourBankRequest struct {
	TenantID  string `json:"-"`
	UserID    string `json:"user_id"`
	StartDate string `json:"start_date"` // YYYY-MM-DD
	EndDate   string `json:"end_date"`   // YYYY-MM-DD
}

func (r *HourBankRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.TenantID) {
		errs = append(errs, validator.ValidationError{
			Field:   "tenant_id",
			Message: "tenant_id is required",
		})
	}

	if validator.IsEmpty(r.UserID) {
		errs = append(errs, validator.ValidationError{
			Field:   "user_id",
			Message: "user_id is required",
		})
	}

	start, startValid := validator.IsValidDate(r.StartDate)
	if !startValid {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be in YYYY-MM-DD format",
		})
	}

	end, endValid := validator.IsValidDate(r.EndDate)
	if !endValid {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be in YYYY-MM-DD format",
		})
	}

	if startValid && endValid && end.Before(start) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must not be before start_date",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type HourBankResponse struct {
	TenantID      string `json:"tenant_id"`
	UserID        string `json:"user_id"`
	PeriodStart   string `json:"period_start"`
	PeriodEnd     string `json:"period_end"`
	WorkingDays   int    `json:"working_days"`
	WorkedHours   string `json:"worked_hours"`
	ExpectedHours string `json:"expected_hours"`
	Balance       string `json:"balance"`
}
