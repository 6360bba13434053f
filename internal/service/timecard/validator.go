package timecard

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/timecard-backend-go/internal/domain/timecard"
)

type ValidationResult struct {
	IsConsistent bool
	Issues       []timecard.Issue
}

// Count returns the number of issues with the given severity.
func (r ValidationResult) Count(severity timecard.Severity) int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == severity {
			n++
		}
	}
	return n
}

// Validator checks one normalized entry against the compliance rules.
// It performs no I/O and never mutates the entry.
type Validator struct {
	rules Rules
}

func NewValidator(rules Rules) *Validator {
	return &Validator{rules: rules}
}

func (v *Validator) Validate(n NormalizedEntry) ValidationResult {
	entry := n.Entry
	issues := make([]timecard.Issue, 0)
	add := func(code timecard.IssueCode, severity timecard.Severity, msg string) {
		issues = append(issues, timecard.Issue{Code: code, Severity: severity, Message: msg})
	}

	if entry.CheckIn == nil {
		add(timecard.IssueNoEntryTime, timecard.SeverityHigh, "no entry time")
		return result(issues)
	}
	in := *entry.CheckIn

	var span time.Duration
	exitBeforeEntry := false
	if entry.CheckOut != nil {
		out := *entry.CheckOut
		if !out.After(in) && v.sameDay(in, out) {
			exitBeforeEntry = true
			add(timecard.IssueExitBeforeEntry, timecard.SeverityHigh, "exit before entry")
		} else {
			span = ShiftSpan(in, out)
			if span > v.rules.MaxShift {
				add(timecard.IssueExcessivelyLongShift, timecard.SeverityHigh,
					fmt.Sprintf("excessively long shift (%s)", formatDuration(span)))
			}
			if span < v.rules.MinShift {
				add(timecard.IssueExcessivelyShortShift, timecard.SeverityHigh,
					fmt.Sprintf("excessively short shift (%s)", formatDuration(span)))
			}
		}
	}

	if n.BreakStart != nil || n.BreakEnd != nil {
		if v.invalidBreakWindow(n) {
			add(timecard.IssueInvalidBreakWindow, timecard.SeverityHigh, "invalid break window")
		} else if n.HasBreak() {
			if d := n.BreakEnd.Sub(*n.BreakStart); d > v.rules.MaxBreak {
				add(timecard.IssueExcessiveBreak, timecard.SeverityHigh,
					fmt.Sprintf("excessive break (%s)", formatDuration(d)))
			}
		}
	}

	if entry.CheckOut != nil && !exitBeforeEntry && span > v.rules.MandatoryBreakAfter && !n.HasBreak() {
		add(timecard.IssueMissingMandatoryBreak, timecard.SeverityWarning, "long shift without mandatory break")
	}

	if entry.CheckOut == nil {
		add(timecard.IssueEntryInProgress, timecard.SeverityInfo, "entry in progress")
	}

	return result(issues)
}

// invalidBreakWindow reports a break that starts before check-in, ends after
// check-out, is reversed, or is half recorded on a closed entry. An open
// entry may carry a break that has started but not ended.
func (v *Validator) invalidBreakWindow(n NormalizedEntry) bool {
	entry := n.Entry
	if n.BreakStart == nil {
		return true
	}
	if n.BreakStart.Before(*entry.CheckIn) {
		return true
	}
	if n.BreakEnd == nil {
		return entry.CheckOut != nil
	}
	if entry.CheckOut != nil && n.BreakEnd.After(*entry.CheckOut) {
		return true
	}
	return !n.BreakStart.Before(*n.BreakEnd)
}

// NormalizationFailed is the result reported for an entry the normalizer
// rejected, so the defect shows up as an issue instead of an error.
func NormalizationFailed(err error) ValidationResult {
	return ValidationResult{
		IsConsistent: false,
		Issues: []timecard.Issue{{
			Code:     timecard.IssueNormalizationFailed,
			Severity: timecard.SeverityHigh,
			Message:  err.Error(),
		}},
	}
}

func (v *Validator) sameDay(a, b time.Time) bool {
	return v.rules.CalendarDate(a).Equal(v.rules.CalendarDate(b))
}

func result(issues []timecard.Issue) ValidationResult {
	consistent := true
	for _, issue := range issues {
		if issue.Severity == timecard.SeverityHigh {
			consistent = false
			break
		}
	}
	return ValidationResult{IsConsistent: consistent, Issues: issues}
}

func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
}
