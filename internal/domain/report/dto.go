package report

import (
	"slices"
	"strings"
	"time"

	"github.com/cmlabs-hris/timecard-backend-go/internal/domain/timecard"
	"github.com/cmlabs-hris/timecard-backend-go/internal/pkg/validator"
)

// maxPeriodDays bounds one report to a year, leap day included.
const maxPeriodDays = 366

type Kind string

const (
	KindAttendance Kind = "attendance"
	KindOvertime   Kind = "overtime"
	KindCompliance Kind = "compliance"
)

var KindValues = []string{
	string(KindAttendance),
	string(KindOvertime),
	string(KindCompliance),
}

// ========================================
// REQUEST
// ========================================

type ReportRequest struct {
	TenantID  string `json:"-"`
	UserID    string `json:"user_id"`
	StartDate string `json:"start_date"` // YYYY-MM-DD
	EndDate   string `json:"end_date"`   // YYYY-MM-DD
	Kind      Kind   `json:"kind"`
	Locale    string `json:"locale,omitempty"`

	// Timeout bounds generation. Zero means the service default.
	Timeout time.Duration `json:"-"`
}

func (r *ReportRequest) Validate() error {
	if !slices.Contains(KindValues, string(r.Kind)) {
		return ErrInvalidKind
	}

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

	if r.Locale != "" && !slices.Contains(LocaleValues, r.Locale) {
		errs = append(errs, validator.ValidationError{
			Field:   "locale",
			Message: "locale must be one of: " + strings.Join(LocaleValues, ", "),
		})
	}

	if len(errs) > 0 {
		return errs
	}

	if end.Before(start) {
		return ErrInvalidDateRange
	}
	if int(end.Sub(start).Hours()/24)+1 > maxPeriodDays {
		return ErrRangeTooLong
	}

	return nil
}

// ========================================
// REPORT
// ========================================

type Report struct {
	Kind        Kind   `json:"kind"`
	TenantID    string `json:"tenant_id"`
	UserID      string `json:"user_id"`
	PeriodStart string `json:"period_start"`
	PeriodEnd   string `json:"period_end"`
	GeneratedAt string `json:"generated_at"`
	Locale      string `json:"locale"`

	// Truncated is set when generation stopped before the end of the period.
	// TruncatedAt is then the first date that was not processed.
	Truncated   bool    `json:"truncated"`
	TruncatedAt *string `json:"truncated_at,omitempty"`

	HourBank HourBankSummary `json:"hour_bank"`

	Attendance []AttendanceRow    `json:"attendance,omitempty"`
	Overtime   *OvertimeSummary   `json:"overtime,omitempty"`
	Compliance *ComplianceSummary `json:"compliance,omitempty"`
}

type HourBankSummary struct {
	WorkingDays   int    `json:"working_days"`
	WorkedHours   string `json:"worked_hours"`
	ExpectedHours string `json:"expected_hours"`
	Balance       string `json:"balance"`
}

// ========================================
// ATTENDANCE
// ========================================

// AttendanceRow is one worked date. With a single entry the exits and entries
// around the break come from the break window; with two or more entries they
// come from the first two entries of the day.
type AttendanceRow struct {
	Date             string           `json:"date"`
	Weekday          string           `json:"weekday"`
	FirstEntry       *string          `json:"first_entry"`
	FirstExit        *string          `json:"first_exit"`
	SecondEntry      *string          `json:"second_entry"`
	SecondExit       *string          `json:"second_exit"`
	BreakInferred    bool             `json:"break_inferred"`
	TotalHours       string           `json:"total_hours"`
	Status           string           `json:"status"`
	IsConsistent     bool             `json:"is_consistent"`
	Observations     string           `json:"observations"`
	Issues           []timecard.Issue `json:"issues"`
	InferredOvertime string           `json:"inferred_overtime"`
	ScheduleType     string           `json:"schedule_type"`
}

// ========================================
// OVERTIME
// ========================================

type OvertimeRow struct {
	Date            string `json:"date"`
	Weekday         string `json:"weekday"`
	TotalHours      string `json:"total_hours"`
	OvertimeMinutes int    `json:"overtime_minutes"`
	OvertimeHours   string `json:"overtime_hours"`
}

type OvertimeSummary struct {
	Days                  []OvertimeRow `json:"days"`
	CalendarDays          int           `json:"calendar_days"`
	TotalOvertimeMinutes  int           `json:"total_overtime_minutes"`
	TotalOvertimeHours    string        `json:"total_overtime_hours"`
	AverageOvertimePerDay string        `json:"average_overtime_per_day"`
}

// ========================================
// COMPLIANCE
// ========================================

type ComplianceRow struct {
	Date         string           `json:"date"`
	EntryID      string           `json:"entry_id"`
	IsConsistent bool             `json:"is_consistent"`
	Issues       []timecard.Issue `json:"issues"`
}

type ComplianceSummary struct {
	Rows               []ComplianceRow `json:"rows"`
	TotalEntries       int             `json:"total_entries"`
	ConsistentEntries  int             `json:"consistent_entries"`
	ComplianceRate     string          `json:"compliance_rate"` // percent, two decimals
	IssuesBySeverity   map[string]int  `json:"issues_by_severity"`
	HighSeverityIssues int             `json:"high_severity_issues"`
}
