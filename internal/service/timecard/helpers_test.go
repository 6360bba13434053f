package timecard

import (
	"time"

	"github.com/cmlabs-hris/timecard-backend-go/internal/domain/timecard"
)

const (
	tenantA = "01890a5d-ac96-774b-bcce-b302099a8057"
	tenantB = "01890a5d-ac96-774b-bcce-b302099a8058"
	userA   = "01890a5d-ac96-774b-bcce-b302099a8001"
	userB   = "01890a5d-ac96-774b-bcce-b302099a8002"
)

// day is a Monday.
var day = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

// at returns the instant hh:mm on day, shifted by dayOffset days.
func at(hhmm string, dayOffset ...int) time.Time {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		panic(err)
	}
	base := day
	if len(dayOffset) > 0 {
		base = base.AddDate(0, 0, dayOffset[0])
	}
	return base.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute)
}

func ptr[T any](v T) *T {
	return &v
}

func entry(in, out string) timecard.TimeEntry {
	e := timecard.TimeEntry{
		ID:        "entry-1",
		TenantID:  tenantA,
		UserID:    userA,
		Status:    timecard.EntryStatusPending,
		CreatedAt: day,
		UpdatedAt: day,
	}
	if in != "" {
		e.CheckIn = ptr(at(in))
		e.CreatedAt = at(in)
		e.UpdatedAt = at(in)
	}
	if out != "" {
		e.CheckOut = ptr(at(out))
	}
	return e
}

func withBreak(e timecard.TimeEntry, start, end string) timecard.TimeEntry {
	if start != "" {
		e.BreakStart = ptr(at(start))
	}
	if end != "" {
		e.BreakEnd = ptr(at(end))
	}
	return e
}

func codes(r ValidationResult) []timecard.IssueCode {
	out := make([]timecard.IssueCode, 0, len(r.Issues))
	for _, issue := range r.Issues {
		out = append(out, issue.Code)
	}
	return out
}
