package timecard

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type EntryStatus string

const (
	EntryStatusPending  EntryStatus = "pending"
	EntryStatusApproved EntryStatus = "approved"
	EntryStatusRejected EntryStatus = "rejected"
)

var EntryStatusValues = []string{
	string(EntryStatusPending),
	string(EntryStatusApproved),
	string(EntryStatusRejected),
}

func (s EntryStatus) IsTerminal() bool {
	return s == EntryStatusApproved || s == EntryStatusRejected
}

// TimeEntry is one punch pair of one user on one day.
type TimeEntry struct {
	ID            string
	TenantID      string
	UserID        string
	CheckIn       *time.Time
	CheckOut      *time.Time
	BreakStart    *time.Time
	BreakEnd      *time.Time
	TotalHours    decimal.Decimal
	Status        EntryStatus
	IsManualEntry bool
	Notes         *string
	Location      *string
	ApprovedBy    *string
	ApprovedAt    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewTimeEntry builds a pending entry and checks the structural invariants.
func NewTimeEntry(tenantID, userID string, checkIn time.Time, createdAt time.Time) (TimeEntry, error) {
	in := checkIn
	entry := TimeEntry{
		TenantID:   tenantID,
		UserID:     userID,
		CheckIn:    &in,
		TotalHours: decimal.Zero,
		Status:     EntryStatusPending,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
	if err := entry.CheckInvariants(); err != nil {
		return TimeEntry{}, err
	}
	return entry, nil
}

// CheckInvariants reports structural defects that make an entry unusable.
// Compliance rules (long shifts, exit before entry, ...) are not checked here.
func (e TimeEntry) CheckInvariants() error {
	var problems []string
	if strings.TrimSpace(e.TenantID) == "" {
		problems = append(problems, "tenant_id is required")
	}
	if strings.TrimSpace(e.UserID) == "" {
		problems = append(problems, "user_id is required")
	}
	if !slices.Contains(EntryStatusValues, string(e.Status)) {
		problems = append(problems, fmt.Sprintf("unknown status %q", e.Status))
	}
	if e.CheckOut != nil && e.CheckIn == nil {
		problems = append(problems, "check_out without check_in")
	}
	if e.BreakEnd != nil && e.BreakStart == nil {
		problems = append(problems, "break_end without break_start")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidEntry, strings.Join(problems, "; "))
	}
	return nil
}

// CheckBreakWindow enforces break ordering on entries about to be written:
// the break lies within [check_in, check_out], ends after it starts, and a
// closed entry carries either a whole break or none.
func (e TimeEntry) CheckBreakWindow() error {
	var problems []string
	if e.BreakStart != nil && e.CheckIn != nil && e.BreakStart.Before(*e.CheckIn) {
		problems = append(problems, "break_start before check_in")
	}
	if e.BreakStart != nil && e.BreakEnd != nil && !e.BreakEnd.After(*e.BreakStart) {
		problems = append(problems, "break_end must be after break_start")
	}
	if e.CheckOut != nil {
		if e.BreakStart != nil && e.BreakStart.After(*e.CheckOut) {
			problems = append(problems, "break_start after check_out")
		}
		if e.BreakEnd != nil && e.BreakEnd.After(*e.CheckOut) {
			problems = append(problems, "break_end after check_out")
		}
		if e.BreakStart != nil && e.BreakEnd == nil {
			problems = append(problems, "break_start without break_end on a closed entry")
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidEntry, strings.Join(problems, "; "))
	}
	return nil
}

// IsOpen reports whether the entry has a check-in and no check-out yet.
func (e TimeEntry) IsOpen() bool {
	return e.CheckIn != nil && e.CheckOut == nil
}

func (e TimeEntry) IsComplete() bool {
	return e.CheckIn != nil && e.CheckOut != nil
}

func (e TimeEntry) HasExplicitBreak() bool {
	return e.BreakStart != nil || e.BreakEnd != nil
}

// ReferenceTime is the instant used to place the entry on a calendar date.
func (e TimeEntry) ReferenceTime() time.Time {
	if e.CheckIn != nil {
		return *e.CheckIn
	}
	return e.CreatedAt
}

// EntryCategory classifies an entry for requireApprovalFor rules.
type EntryCategory string

const (
	EntryCategoryRegular  EntryCategory = "regular"
	EntryCategoryManual   EntryCategory = "manual"
	EntryCategoryOvertime EntryCategory = "overtime"
)

var EntryCategoryValues = []string{
	string(EntryCategoryRegular),
	string(EntryCategoryManual),
	string(EntryCategoryOvertime),
}

// ScheduleType is the contractual shift shape.
type ScheduleType string

const (
	ScheduleType5x2          ScheduleType = "5x2"
	ScheduleType6x1          ScheduleType = "6x1"
	ScheduleType12x36        ScheduleType = "12x36"
	ScheduleTypeShift        ScheduleType = "shift"
	ScheduleTypeFlexible     ScheduleType = "flexible"
	ScheduleTypeIntermittent ScheduleType = "intermittent"
)

var ScheduleTypeValues = []string{
	string(ScheduleType5x2),
	string(ScheduleType6x1),
	string(ScheduleType12x36),
	string(ScheduleTypeShift),
	string(ScheduleTypeFlexible),
	string(ScheduleTypeIntermittent),
}

// TimeOfDay is minutes since midnight.
type TimeOfDay int

func ParseTimeOfDay(s string) (TimeOfDay, error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return TimeOfDay(t.Hour()*60 + t.Minute()), nil
		}
	}
	return 0, fmt.Errorf("invalid time of day %q", s)
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

type WorkSchedule struct {
	ID                   string
	TenantID             string
	UserID               string
	Type                 ScheduleType
	WorkDays             []time.Weekday
	StartTime            TimeOfDay
	EndTime              TimeOfDay
	BreakDurationMinutes int
	EffectiveFrom        time.Time
	EffectiveTo          *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// DailyMinutes is the expected net work time of one scheduled day, or 0 when
// the schedule does not fix one.
func (w WorkSchedule) DailyMinutes() int {
	if w.Type == ScheduleTypeFlexible || w.Type == ScheduleTypeIntermittent {
		return 0
	}
	span := int(w.EndTime) - int(w.StartTime)
	if span <= 0 {
		span += 24 * 60
	}
	net := span - w.BreakDurationMinutes
	if net < 0 {
		return 0
	}
	return net
}

func (w WorkSchedule) IsWorkDay(day time.Weekday) bool {
	if len(w.WorkDays) == 0 {
		return true
	}
	return slices.Contains(w.WorkDays, day)
}

// Covers reports whether the schedule is in effect on the calendar date of d.
func (w WorkSchedule) Covers(d time.Time) bool {
	day := truncateDay(d)
	if day.Before(truncateDay(w.EffectiveFrom.In(d.Location()))) {
		return false
	}
	if w.EffectiveTo != nil && day.After(truncateDay(w.EffectiveTo.In(d.Location()))) {
		return false
	}
	return true
}

// SelectActiveSchedule returns the schedule covering date. When several
// overlap the one that started last wins.
func SelectActiveSchedule(schedules []WorkSchedule, date time.Time) *WorkSchedule {
	var active *WorkSchedule
	for i := range schedules {
		s := schedules[i]
		if !s.Covers(date) {
			continue
		}
		if active == nil || s.EffectiveFrom.After(active.EffectiveFrom) {
			active = &schedules[i]
		}
	}
	return active
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

type ApprovalType string

const (
	ApprovalTypeManual    ApprovalType = "manual"
	ApprovalTypeAutomatic ApprovalType = "automatic"
)

type ApprovalSettings struct {
	ID                    string
	TenantID              string
	ApprovalType          ApprovalType
	AutoApproveComplete   bool
	AutoApproveAfterHours int
	RequireApprovalFor    []EntryCategory
	DefaultApprovers      []string
	ApprovalGroupID       *string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (s ApprovalSettings) RequiresApproval(category EntryCategory) bool {
	return slices.Contains(s.RequireApprovalFor, category)
}

// AutoApprovalEnabled reports whether a sweep can ever approve anything.
func (s ApprovalSettings) AutoApprovalEnabled() bool {
	return s.ApprovalType == ApprovalTypeAutomatic || s.AutoApproveComplete
}

type ApprovalMethod string

const (
	ApprovalMethodManual    ApprovalMethod = "manual"
	ApprovalMethodAutomatic ApprovalMethod = "automatic"
)

// ApprovalHistory is the immutable audit record of one approve/reject action.
type ApprovalHistory struct {
	ID              string
	TenantID        string
	TimecardEntryID string
	ApprovalStatus  EntryStatus
	ApprovedBy      *string
	ApprovalDate    time.Time
	RejectionReason *string
	Comments        *string
	ApprovalMethod  ApprovalMethod
}

func NewApprovalHistory(entry TimeEntry, status EntryStatus, approvedBy *string, at time.Time, reason, comments *string, method ApprovalMethod) (ApprovalHistory, error) {
	if !status.IsTerminal() {
		return ApprovalHistory{}, fmt.Errorf("approval history requires a terminal status, got %q", status)
	}
	hasReason := reason != nil && strings.TrimSpace(*reason) != ""
	if status == EntryStatusRejected && !hasReason {
		return ApprovalHistory{}, ErrMissingReason
	}
	if status == EntryStatusApproved && reason != nil {
		return ApprovalHistory{}, errors.New("rejection reason is only allowed on rejections")
	}
	return ApprovalHistory{
		TenantID:        entry.TenantID,
		TimecardEntryID: entry.ID,
		ApprovalStatus:  status,
		ApprovedBy:      approvedBy,
		ApprovalDate:    at,
		RejectionReason: reason,
		Comments:        comments,
		ApprovalMethod:  method,
	}, nil
}

// HourBank is the worked-minus-expected balance of a period. Always derived.
type HourBank struct {
	TenantID      string
	UserID        string
	PeriodStart   time.Time
	PeriodEnd     time.Time
	WorkingDays   int
	WorkedHours   decimal.Decimal
	ExpectedHours decimal.Decimal
	Balance       decimal.Decimal
}

// Actor is the authenticated user performing an action.
type Actor struct {
	ID       string
	TenantID string
}

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityHigh    Severity = "high"
)

type IssueCode string

const (
	IssueNoEntryTime           IssueCode = "no_entry_time"
	IssueExitBeforeEntry       IssueCode = "exit_before_entry"
	IssueExcessivelyLongShift  IssueCode = "excessively_long_shift"
	IssueExcessivelyShortShift IssueCode = "excessively_short_shift"
	IssueInvalidBreakWindow    IssueCode = "invalid_break_window"
	IssueExcessiveBreak        IssueCode = "excessive_break"
	IssueMissingMandatoryBreak IssueCode = "missing_mandatory_break"
	IssueEntryInProgress       IssueCode = "entry_in_progress"
	IssueNormalizationFailed   IssueCode = "normalization_failed"
)

type Issue struct {
	Code     IssueCode `json:"code"`
	Severity Severity  `json:"severity"`
	Message  string    `json:"message"`
}
