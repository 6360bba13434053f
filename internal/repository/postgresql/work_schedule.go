package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/timecard-backend-go/internal/domain/timecard"
	"github.com/cmlabs-hris/timecard-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const microsecondsPerMinute = int64(time.Minute / time.Microsecond)

type workScheduleRepositoryImpl struct {
	db *database.DB
}

func scanWorkSchedule(row pgx.Row) (timecard.WorkSchedule, error) {
	var (
		s          timecard.WorkSchedule
		workDays   []int16
		start, end pgtype.Time
	)
	err := row.Scan(
		&s.ID, &s.TenantID, &s.UserID, &s.Type, &workDays,
		&start, &end, &s.BreakDurationMinutes,
		&s.EffectiveFrom, &s.EffectiveTo, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return timecard.WorkSchedule{}, err
	}

	s.WorkDays = make([]time.Weekday, 0, len(workDays))
	for _, d := range workDays {
		// ISO day numbers: 1 is Monday, 7 is Sunday.
		s.WorkDays = append(s.WorkDays, time.Weekday(d%7))
	}
	s.StartTime = timecard.TimeOfDay(start.Microseconds / microsecondsPerMinute)
	s.EndTime = timecard.TimeOfDay(end.Microseconds / microsecondsPerMinute)
	return s, nil
}

// GetActiveSchedule implements timecard.WorkScheduleRepository.
func (w *workScheduleRepositoryImpl) GetActiveSchedule(ctx context.Context, userID string, tenantID string, onDate time.Time) (*timecard.WorkSchedule, error) {
	schedules, err := w.ListForRange(ctx, userID, tenantID, onDate, onDate)
	if err != nil {
		return nil, err
	}
	return timecard.SelectActiveSchedule(schedules, onDate), nil
}

// ListForRange implements timecard.WorkScheduleRepository.
func (w *workScheduleRepositoryImpl) ListForRange(ctx context.Context, userID string, tenantID string, start, end time.Time) ([]timecard.WorkSchedule, error) {
	q := GetQuerier(ctx, w.db)

	query := `
		SELECT id, tenant_id, user_id, type, work_days,
			   start_time, end_time, break_duration_minutes,
			   effective_from, effective_to, created_at, updated_at
		FROM work_schedules
		WHERE user_id = $1
		  AND tenant_id = $2
		  AND effective_from <= $4::date
		  AND (effective_to IS NULL OR effective_to >= $3::date)
		ORDER BY effective_from ASC
	`

	rows, err := q.Query(ctx, query, userID, tenantID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query work schedules: %w", err)
	}
	defer rows.Close()

	schedules := make([]timecard.WorkSchedule, 0)
	for rows.Next() {
		s, err := scanWorkSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan work schedule: %w", err)
		}
		schedules = append(schedules, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating work schedules: %w", err)
	}

	return schedules, nil
}

func NewWorkScheduleRepository(db *database.DB) timecard.WorkScheduleRepository {
	return &workScheduleRepositoryImpl{db: db}
}
