package report

import (
	"context"
	"time"

	"github.com/cmlabs-hris/timecard-backend-go/internal/domain/timecard"
)

// EntryReader is the part of timecard storage the report aggregator reads.
type EntryReader interface {
	FindEntriesInRange(ctx context.Context, userID string, tenantID string, start, end time.Time) ([]timecard.TimeEntry, error)
}

// ScheduleReader lists the work schedules overlapping a period.
type ScheduleReader interface {
	ListForRange(ctx context.Context, userID string, tenantID string, start, end time.Time) ([]timecard.WorkSchedule, error)
}
