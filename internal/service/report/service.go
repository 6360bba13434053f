package report

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cmlabs-hris/timecard-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/timecard-backend-go/internal/domain/timecard"
	timecardService "github.com/cmlabs-hris/timecard-backend-go/internal/service/timecard"
)

// fetchWindowDays is how many dates are read from storage per query, so a
// deadline can stop a long period between windows.
const fetchWindowDays = 31

var hundred = decimal.NewFromInt(100)

type ReportServiceImpl struct {
	entries   report.EntryReader
	schedules report.ScheduleReader

	rules      timecardService.Rules
	normalizer *timecardService.Normalizer
	validator  *timecardService.Validator
	calculator *timecardService.HourCalculator

	defaultLocale  string
	defaultTimeout time.Duration
	now            func() time.Time
}

type Option func(*ReportServiceImpl)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *ReportServiceImpl) {
		s.now = now
	}
}

func WithDefaultLocale(locale string) Option {
	return func(s *ReportServiceImpl) {
		s.defaultLocale = locale
	}
}

// WithDefaultTimeout bounds requests that carry no timeout of their own.
func WithDefaultTimeout(d time.Duration) Option {
	return func(s *ReportServiceImpl) {
		s.defaultTimeout = d
	}
}

func NewReportService(entryReader report.EntryReader, scheduleReader report.ScheduleReader, rules timecardService.Rules, opts ...Option) report.ReportService {
	s := &ReportServiceImpl{
		entries:       entryReader,
		schedules:     scheduleReader,
		rules:         rules,
		normalizer:    timecardService.NewNormalizer(rules),
		validator:     timecardService.NewValidator(rules),
		calculator:    timecardService.NewHourCalculator(rules),
		defaultLocale: report.DefaultLocale,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// evaluatedEntry is one entry after normalization, validation and calculation.
// failed is set when normalization rejected the entry; its hours are then zero.
type evaluatedEntry struct {
	normalized timecardService.NormalizedEntry
	validation timecardService.ValidationResult
	hours      timecardService.HourBreakdown
	failed     bool
}

type evaluatedDay struct {
	date     time.Time
	schedule *timecard.WorkSchedule
	entries  []evaluatedEntry
	total    timecardService.DayTotal
}

// BuildReport implements report.ReportService.
func (s *ReportServiceImpl) BuildReport(ctx context.Context, req report.ReportRequest) (report.Report, error) {
	if err := req.Validate(); err != nil {
		return report.Report{}, err
	}

	loc := s.rules.TimeZone()
	start, err := time.ParseInLocation(time.DateOnly, req.StartDate, loc)
	if err != nil {
		return report.Report{}, fmt.Errorf("failed to parse start date: %w", err)
	}
	end, err := time.ParseInLocation(time.DateOnly, req.EndDate, loc)
	if err != nil {
		return report.Report{}, fmt.Errorf("failed to parse end date: %w", err)
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = s.defaultTimeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	locale := req.Locale
	if locale == "" {
		locale = s.defaultLocale
	}
	labels := report.LabelsFor(locale)
	now := s.now()

	rep := report.Report{
		Kind:        req.Kind,
		TenantID:    req.TenantID,
		UserID:      req.UserID,
		PeriodStart: start.Format(time.DateOnly),
		PeriodEnd:   end.Format(time.DateOnly),
		GeneratedAt: now.Format(time.RFC3339),
		Locale:      locale,
	}
	truncate := func(at time.Time) {
		rep.Truncated = true
		date := at.Format(time.DateOnly)
		rep.TruncatedAt = &date
	}

	var days []evaluatedDay
	schedules, err := s.schedules.ListForRange(ctx, req.UserID, req.TenantID, start, end)
	if err != nil {
		if ctx.Err() == nil {
			return report.Report{}, fmt.Errorf("failed to list work schedules: %w", err)
		}
		truncate(start)
	}

walk:
	for windowStart := start; !rep.Truncated && !windowStart.After(end); windowStart = windowStart.AddDate(0, 0, fetchWindowDays) {
		windowEnd := windowStart.AddDate(0, 0, fetchWindowDays-1)
		if windowEnd.After(end) {
			windowEnd = end
		}
		if ctx.Err() != nil {
			truncate(windowStart)
			break
		}

		entries, err := s.entries.FindEntriesInRange(ctx, req.UserID, req.TenantID, windowStart, windowEnd.AddDate(0, 0, 1))
		if err != nil {
			if ctx.Err() != nil {
				truncate(windowStart)
				break
			}
			return report.Report{}, fmt.Errorf("failed to find entries in range: %w", err)
		}
		byDate := s.groupByDate(entries, req.TenantID, req.UserID)

		for date := windowStart; !date.After(windowEnd); date = date.AddDate(0, 0, 1) {
			if ctx.Err() != nil {
				truncate(date)
				break walk
			}
			dayEntries := byDate[date.Format(time.DateOnly)]
			if len(dayEntries) == 0 {
				continue
			}
			days = append(days, s.evaluateDay(date, dayEntries, timecard.SelectActiveSchedule(schedules, date), now))
		}
	}

	rep.HourBank = s.hourBank(days, start, end, now)

	switch req.Kind {
	case report.KindAttendance:
		rep.Attendance = s.attendanceRows(days, labels, loc)
	case report.KindOvertime:
		rep.Overtime = s.overtimeSummary(days, labels, start, end)
	case report.KindCompliance:
		rep.Compliance = s.complianceSummary(days)
	}

	if rep.Truncated {
		slog.Warn("Report truncated", "kind", req.Kind, "tenant_id", req.TenantID, "user_id", req.UserID, "truncated_at", *rep.TruncatedAt, "error", context.Cause(ctx))
	}
	return rep, nil
}

// groupByDate buckets entries by the calendar date of their check-in. Entries
// of another tenant or user are dropped even though storage filtered them.
func (s *ReportServiceImpl) groupByDate(entries []timecard.TimeEntry, tenantID, userID string) map[string][]timecard.TimeEntry {
	byDate := make(map[string][]timecard.TimeEntry)
	for _, e := range entries {
		if e.TenantID != tenantID || e.UserID != userID {
			slog.Warn("Dropped foreign entry from report", "entry_id", e.ID, "tenant_id", tenantID, "user_id", userID)
			continue
		}
		key := s.rules.CalendarDate(e.ReferenceTime()).Format(time.DateOnly)
		byDate[key] = append(byDate[key], e)
	}
	for _, list := range byDate {
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].ReferenceTime().Before(list[j].ReferenceTime())
		})
	}
	return byDate
}

func (s *ReportServiceImpl) evaluateDay(date time.Time, entries []timecard.TimeEntry, schedule *timecard.WorkSchedule, now time.Time) evaluatedDay {
	day := evaluatedDay{date: date, schedule: schedule}
	period := make([]timecardService.PeriodEntry, 0, len(entries))

	for _, e := range entries {
		normalized, err := s.normalizer.Normalize(e)
		if err != nil {
			day.entries = append(day.entries, evaluatedEntry{
				normalized: normalized,
				validation: timecardService.NormalizationFailed(err),
				failed:     true,
			})
			continue
		}
		day.entries = append(day.entries, evaluatedEntry{
			normalized: normalized,
			validation: s.validator.Validate(normalized),
			hours:      s.calculator.Compute(normalized, schedule, now),
		})
		period = append(period, timecardService.PeriodEntry{Entry: normalized, Schedule: schedule})
	}

	totals := s.calculator.ComputePeriod(period, date, date, now)
	day.total = timecardService.DayTotal{Date: date, TotalHours: decimal.Zero, ExpectedHours: decimal.Zero}
	if len(totals.Days) > 0 {
		day.total = totals.Days[0]
	}
	return day
}

func (s *ReportServiceImpl) hourBank(days []evaluatedDay, start, end time.Time, now time.Time) report.HourBankSummary {
	var period []timecardService.PeriodEntry
	for _, day := range days {
		for _, e := range day.entries {
			if e.failed {
				continue
			}
			period = append(period, timecardService.PeriodEntry{Entry: e.normalized, Schedule: day.schedule})
		}
	}
	totals := s.calculator.ComputePeriod(period, start, end, now)
	return report.HourBankSummary{
		WorkingDays:   totals.WorkingDays,
		WorkedHours:   totals.TotalHours.StringFixed(2),
		ExpectedHours: totals.ExpectedHours.StringFixed(2),
		Balance:       totals.HourBankDelta.StringFixed(2),
	}
}

func (s *ReportServiceImpl) attendanceRows(days []evaluatedDay, labels report.Labels, loc *time.Location) []report.AttendanceRow {
	rows := make([]report.AttendanceRow, 0, len(days))
	for _, day := range days {
		row := report.AttendanceRow{
			Date:             day.date.Format(time.DateOnly),
			Weekday:          labels.Weekday(day.date.Weekday()),
			TotalHours:       day.total.TotalHours.StringFixed(2),
			Status:           labels.Status(dayStatus(day.entries)),
			IsConsistent:     true,
			Issues:           make([]timecard.Issue, 0),
			InferredOvertime: timecardService.MinutesToHours(day.total.OvertimeMinutes).StringFixed(2),
			ScheduleType:     labels.ScheduleType(day.schedule),
		}

		first := day.entries[0].normalized
		row.FirstEntry = clock(first.Entry.CheckIn, loc)
		if len(day.entries) == 1 {
			row.FirstExit = clock(first.BreakStart, loc)
			row.SecondEntry = clock(first.BreakEnd, loc)
			row.SecondExit = clock(first.Entry.CheckOut, loc)
			row.BreakInferred = first.BreakInferred
		} else {
			second := day.entries[1].normalized
			row.FirstExit = clock(first.Entry.CheckOut, loc)
			row.SecondEntry = clock(second.Entry.CheckIn, loc)
			row.SecondExit = clock(day.entries[len(day.entries)-1].normalized.Entry.CheckOut, loc)
		}

		observations := make([]string, 0)
		for _, e := range day.entries {
			if !e.validation.IsConsistent {
				row.IsConsistent = false
			}
			for _, issue := range e.validation.Issues {
				row.Issues = append(row.Issues, issue)
				observations = append(observations, issue.Message)
			}
		}
		row.Observations = strings.Join(observations, "; ")
		rows = append(rows, row)
	}
	return rows
}

func (s *ReportServiceImpl) overtimeSummary(days []evaluatedDay, labels report.Labels, start, end time.Time) *report.OvertimeSummary {
	summary := &report.OvertimeSummary{
		Days:         make([]report.OvertimeRow, 0, len(days)),
		CalendarDays: calendarDays(start, end),
	}
	for _, day := range days {
		summary.TotalOvertimeMinutes += day.total.OvertimeMinutes
		summary.Days = append(summary.Days, report.OvertimeRow{
			Date:            day.date.Format(time.DateOnly),
			Weekday:         labels.Weekday(day.date.Weekday()),
			TotalHours:      day.total.TotalHours.StringFixed(2),
			OvertimeMinutes: day.total.OvertimeMinutes,
			OvertimeHours:   timecardService.MinutesToHours(day.total.OvertimeMinutes).StringFixed(2),
		})
	}

	total := timecardService.MinutesToHours(summary.TotalOvertimeMinutes)
	summary.TotalOvertimeHours = total.StringFixed(2)
	summary.AverageOvertimePerDay = total.Div(decimal.NewFromInt(int64(summary.CalendarDays))).Round(2).StringFixed(2)
	return summary
}

func (s *ReportServiceImpl) complianceSummary(days []evaluatedDay) *report.ComplianceSummary {
	summary := &report.ComplianceSummary{
		Rows: make([]report.ComplianceRow, 0),
		IssuesBySeverity: map[string]int{
			string(timecard.SeverityInfo):    0,
			string(timecard.SeverityWarning): 0,
			string(timecard.SeverityHigh):    0,
		},
	}
	for _, day := range days {
		for _, e := range day.entries {
			summary.TotalEntries++
			if e.validation.IsConsistent {
				summary.ConsistentEntries++
			}
			for _, issue := range e.validation.Issues {
				summary.IssuesBySeverity[string(issue.Severity)]++
			}
			summary.Rows = append(summary.Rows, report.ComplianceRow{
				Date:         day.date.Format(time.DateOnly),
				EntryID:      e.normalized.Entry.ID,
				IsConsistent: e.validation.IsConsistent,
				Issues:       e.validation.Issues,
			})
		}
	}
	summary.HighSeverityIssues = summary.IssuesBySeverity[string(timecard.SeverityHigh)]

	rate := decimal.Zero
	if summary.TotalEntries > 0 {
		rate = decimal.NewFromInt(int64(summary.ConsistentEntries)).
			Mul(hundred).
			Div(decimal.NewFromInt(int64(summary.TotalEntries))).
			Round(2)
	}
	summary.ComplianceRate = rate.StringFixed(2)
	return summary
}

// dayStatus folds entry states into one label. An entry still open outranks
// everything, then a broken entry, then the least settled approval state.
func dayStatus(entries []evaluatedEntry) report.DayStatus {
	rank := map[report.DayStatus]int{
		report.DayStatusApproved:   0,
		report.DayStatusPending:    1,
		report.DayStatusRejected:   2,
		report.DayStatusInvalid:    3,
		report.DayStatusInProgress: 4,
	}
	status := report.DayStatusApproved
	for _, e := range entries {
		current := report.DayStatus(e.normalized.Entry.Status)
		switch {
		case e.failed:
			current = report.DayStatusInvalid
		case e.hours.InProgress:
			current = report.DayStatusInProgress
		}
		if rank[current] > rank[status] {
			status = current
		}
	}
	return status
}

func calendarDays(start, end time.Time) int {
	n := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		n++
	}
	return n
}

func clock(t *time.Time, loc *time.Location) *string {
	if t == nil {
		return nil
	}
	formatted := t.In(loc).Format("15:04")
	return &formatted
}
