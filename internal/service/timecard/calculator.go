package timecard

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cmlabs-hris/timecard-backend-go/internal/domain/timecard"
)

const minutesPerDay = 24 * 60

var sixty = decimal.NewFromInt(60)

type HourBreakdown struct {
	WorkedMinutes   int
	BreakMinutes    int
	TotalHours      decimal.Decimal
	OvertimeMinutes int
	// InProgress is set when now stood in for the missing check-out.
	InProgress bool
}

// NetMinutes is worked time minus break, never negative.
func (b HourBreakdown) NetMinutes() int {
	return max(0, b.WorkedMinutes-b.BreakMinutes)
}

type HourCalculator struct {
	rules Rules
}

func NewHourCalculator(rules Rules) *HourCalculator {
	return &HourCalculator{rules: rules}
}

// ShiftSpan is checkOut - checkIn, plus one day when negative.
func ShiftSpan(checkIn, checkOut time.Time) time.Duration {
	d := checkOut.Sub(checkIn)
	if d < 0 {
		d += 24 * time.Hour
	}
	return d
}

// Compute derives the hours of one entry. The result depends on now only when
// the entry has no check-out.
func (c *HourCalculator) Compute(n NormalizedEntry, schedule *timecard.WorkSchedule, now time.Time) HourBreakdown {
	entry := n.Entry
	out := HourBreakdown{TotalHours: decimal.Zero}
	if entry.CheckIn == nil {
		return out
	}

	if entry.CheckOut != nil {
		out.WorkedMinutes = minutesBetween(*entry.CheckIn, *entry.CheckOut)
		if out.WorkedMinutes < 0 {
			out.WorkedMinutes += minutesPerDay
		}
	} else {
		out.InProgress = true
		out.WorkedMinutes = max(0, minutesBetween(*entry.CheckIn, now))
	}
	out.WorkedMinutes = max(0, out.WorkedMinutes)

	if n.HasBreak() {
		out.BreakMinutes = max(0, minutesBetween(*n.BreakStart, *n.BreakEnd))
	}

	net := out.NetMinutes()
	out.TotalHours = MinutesToHours(net)
	out.OvertimeMinutes = max(0, net-c.OvertimeThreshold(schedule))
	return out
}

// OvertimeThreshold is the schedule's daily minutes when it fixes one,
// otherwise the standard day. It is also the expected work of one day.
func (c *HourCalculator) OvertimeThreshold(schedule *timecard.WorkSchedule) int {
	if schedule != nil {
		if daily := schedule.DailyMinutes(); daily > 0 {
			return daily
		}
	}
	return c.rules.StandardDayMinutes
}

// PeriodEntry is one entry of a period with the schedule active on its date.
type PeriodEntry struct {
	Entry    NormalizedEntry
	Schedule *timecard.WorkSchedule
}

type DayTotal struct {
	Date            time.Time
	NetMinutes      int
	TotalHours      decimal.Decimal
	ExpectedHours   decimal.Decimal
	OvertimeMinutes int

	threshold int
}

type PeriodTotals struct {
	TotalHours      decimal.Decimal
	WorkingDays     int
	ExpectedHours   decimal.Decimal
	HourBankDelta   decimal.Decimal
	OvertimeMinutes int
	Days            []DayTotal
}

// ComputePeriod folds the entries whose check-in falls on a date in
// [start, end] into period totals. Overtime is taken per date over the sum of
// that date's entries. Expected hours accrue only on dates with worked time.
func (c *HourCalculator) ComputePeriod(entries []PeriodEntry, start, end time.Time, now time.Time) PeriodTotals {
	first := c.rules.CalendarDate(start)
	last := c.rules.CalendarDate(end)

	days := make(map[time.Time]*DayTotal)
	for _, pe := range entries {
		if pe.Entry.Entry.CheckIn == nil {
			continue
		}
		date := c.rules.CalendarDate(*pe.Entry.Entry.CheckIn)
		if date.Before(first) || date.After(last) {
			continue
		}
		b := c.Compute(pe.Entry, pe.Schedule, now)
		day, ok := days[date]
		if !ok {
			threshold := c.OvertimeThreshold(pe.Schedule)
			day = &DayTotal{
				Date:          date,
				TotalHours:    decimal.Zero,
				ExpectedHours: MinutesToHours(threshold),
				threshold:     threshold,
			}
			days[date] = day
		}
		day.NetMinutes += b.NetMinutes()
		day.TotalHours = day.TotalHours.Add(b.TotalHours)
	}

	totals := PeriodTotals{
		TotalHours:    decimal.Zero,
		ExpectedHours: decimal.Zero,
		Days:          make([]DayTotal, 0, len(days)),
	}
	for _, day := range days {
		day.OvertimeMinutes = max(0, day.NetMinutes-day.threshold)
		totals.TotalHours = totals.TotalHours.Add(day.TotalHours)
		totals.OvertimeMinutes += day.OvertimeMinutes
		if day.TotalHours.IsPositive() {
			totals.WorkingDays++
			totals.ExpectedHours = totals.ExpectedHours.Add(day.ExpectedHours)
		} else {
			day.ExpectedHours = decimal.Zero
		}
		totals.Days = append(totals.Days, *day)
	}
	sort.Slice(totals.Days, func(i, j int) bool {
		return totals.Days[i].Date.Before(totals.Days[j].Date)
	})
	totals.HourBankDelta = totals.TotalHours.Sub(totals.ExpectedHours)
	return totals
}

// MinutesToHours converts minutes to hours rounded to two decimals.
func MinutesToHours(minutes int) decimal.Decimal {
	return decimal.NewFromInt(int64(minutes)).Div(sixty).Round(2)
}

func minutesBetween(from, to time.Time) int {
	return int(to.Sub(from) / time.Minute)
}
