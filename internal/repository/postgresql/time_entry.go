package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/timecard-backend-go/internal/domain/timecard"
	"github.com/cmlabs-hris/timecard-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/timecard-backend-go/internal/pkg/validator"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// openEntryIndex is the partial unique index allowing one open entry per user.
const openEntryIndex = "time_entries_one_open_per_user"

const timeEntryColumns = `
	id, tenant_id, user_id, check_in, check_out, break_start, break_end,
	total_hours, status, is_manual_entry, notes, location,
	approved_by, approved_at, created_at, updated_at
`

type timeEntryRepository struct {
	db *database.DB
}

func scanTimeEntry(row pgx.Row) (timecard.TimeEntry, error) {
	var e timecard.TimeEntry
	err := row.Scan(
		&e.ID, &e.TenantID, &e.UserID, &e.CheckIn, &e.CheckOut, &e.BreakStart, &e.BreakEnd,
		&e.TotalHours, &e.Status, &e.IsManualEntry, &e.Notes, &e.Location,
		&e.ApprovedBy, &e.ApprovedAt, &e.CreatedAt, &e.UpdatedAt,
	)
	return e, err
}

func collectTimeEntries(rows pgx.Rows) ([]timecard.TimeEntry, error) {
	defer rows.Close()

	entries := make([]timecard.TimeEntry, 0)
	for rows.Next() {
		e, err := scanTimeEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan time entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating time entries: %w", err)
	}
	return entries, nil
}

// Create implements timecard.TimeEntryRepository.
func (r *timeEntryRepository) Create(ctx context.Context, entry timecard.TimeEntry) (timecard.TimeEntry, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return timecard.TimeEntry{}, fmt.Errorf("failed to generate entry id: %w", err)
	}
	entry.ID = id.String()

	query := `
		INSERT INTO time_entries (
			id, tenant_id, user_id, check_in, check_out, break_start, break_end,
			total_hours, status, is_manual_entry, notes, location,
			approved_by, approved_at, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16
		)
	`

	_, err = q.Exec(ctx, query,
		entry.ID,
		entry.TenantID,
		entry.UserID,
		entry.CheckIn,
		entry.CheckOut,
		entry.BreakStart,
		entry.BreakEnd,
		entry.TotalHours,
		entry.Status,
		entry.IsManualEntry,
		entry.Notes,
		entry.Location,
		entry.ApprovedBy,
		entry.ApprovedAt,
		entry.CreatedAt,
		entry.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == openEntryIndex {
			return timecard.TimeEntry{}, timecard.ErrDuplicateOpenEntry
		}
		return timecard.TimeEntry{}, fmt.Errorf("failed to create time entry: %w", err)
	}

	return entry, nil
}

// GetByID implements timecard.TimeEntryRepository.
func (r *timeEntryRepository) GetByID(ctx context.Context, id string, tenantID string) (timecard.TimeEntry, error) {
	// Entry ids are always UUIDv7; anything else cannot exist.
	if !validator.IsValidUUID(id) {
		return timecard.TimeEntry{}, timecard.ErrEntryNotFound
	}

	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + timeEntryColumns + ` FROM time_entries WHERE id = $1 AND tenant_id = $2`

	entry, err := scanTimeEntry(q.QueryRow(ctx, query, id, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return timecard.TimeEntry{}, timecard.ErrEntryNotFound
		}
		return timecard.TimeEntry{}, fmt.Errorf("failed to get time entry by id: %w", err)
	}
	return entry, nil
}

// FindOpenEntries implements timecard.TimeEntryRepository.
func (r *timeEntryRepository) FindOpenEntries(ctx context.Context, userID string, tenantID string) ([]timecard.TimeEntry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + timeEntryColumns + `
		FROM time_entries
		WHERE user_id = $1
		  AND tenant_id = $2
		  AND check_in IS NOT NULL
		  AND check_out IS NULL
		ORDER BY created_at ASC, id ASC
	`

	rows, err := q.Query(ctx, query, userID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query open entries: %w", err)
	}
	return collectTimeEntries(rows)
}

// FindEntriesInRange implements timecard.TimeEntryRepository.
func (r *timeEntryRepository) FindEntriesInRange(ctx context.Context, userID string, tenantID string, start, end time.Time) ([]timecard.TimeEntry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + timeEntryColumns + `
		FROM time_entries
		WHERE user_id = $1
		  AND tenant_id = $2
		  AND COALESCE(check_in, created_at) >= $3
		  AND COALESCE(check_in, created_at) < $4
		ORDER BY created_at ASC, id ASC
	`

	rows, err := q.Query(ctx, query, userID, tenantID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries in range: %w", err)
	}
	return collectTimeEntries(rows)
}

// Close implements timecard.TimeEntryRepository.
func (r *timeEntryRepository) Close(ctx context.Context, entry timecard.TimeEntry) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE time_entries
		SET check_out = $1,
			break_start = $2,
			break_end = $3,
			total_hours = $4,
			is_manual_entry = $5,
			notes = $6,
			location = $7,
			updated_at = $8
		WHERE id = $9
		  AND tenant_id = $10
		  AND check_out IS NULL
	`

	tag, err := q.Exec(ctx, query,
		entry.CheckOut,
		entry.BreakStart,
		entry.BreakEnd,
		entry.TotalHours,
		entry.IsManualEntry,
		entry.Notes,
		entry.Location,
		entry.UpdatedAt,
		entry.ID,
		entry.TenantID,
	)
	if err != nil {
		return fmt.Errorf("failed to close time entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return timecard.ErrConcurrentUpdate
	}
	return nil
}

// UpdateStatus implements timecard.TimeEntryRepository.
func (r *timeEntryRepository) UpdateStatus(ctx context.Context, entry timecard.TimeEntry, expected timecard.EntryStatus) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE time_entries
		SET status = $1,
			approved_by = $2,
			approved_at = $3,
			updated_at = $4
		WHERE id = $5
		  AND tenant_id = $6
		  AND status = $7
	`

	tag, err := q.Exec(ctx, query,
		entry.Status,
		entry.ApprovedBy,
		entry.ApprovedAt,
		entry.UpdatedAt,
		entry.ID,
		entry.TenantID,
		expected,
	)
	if err != nil {
		return fmt.Errorf("failed to update time entry status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return timecard.ErrConcurrentUpdate
	}
	return nil
}

// ListPending implements timecard.TimeEntryRepository. Open entries are
// left out since they can never be approved automatically.
func (r *timeEntryRepository) ListPending(ctx context.Context, tenantID string, createdBefore time.Time, after *timecard.PendingCursor, limit int) ([]timecard.TimeEntry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + timeEntryColumns + `
		FROM time_entries
		WHERE tenant_id = $1
		  AND status = 'pending'
		  AND check_out IS NOT NULL
		  AND created_at < $2
	`
	args := []any{tenantID, createdBefore}
	if after != nil {
		query += ` AND (created_at, id) > ($3::timestamptz, $4::uuid)`
		args = append(args, after.CreatedAt, after.ID)
	}
	query += fmt.Sprintf(` ORDER BY created_at ASC, id ASC LIMIT $%d`, len(args)+1)
	args = append(args, limit)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending entries: %w", err)
	}
	return collectTimeEntries(rows)
}

func (r *timeEntryRepository) List(ctx context.Context, filter timecard.EntryFilter, tenantID string) ([]timecard.TimeEntry, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseWhere := "tenant_id = $1"
	args := []interface{}{tenantID}
	argIdx := 2

	if filter.UserID != nil && *filter.UserID != "" {
		baseWhere += fmt.Sprintf(" AND user_id = $%d", argIdx)
		args = append(args, *filter.UserID)
		argIdx++
	}

	if filter.StartDate != nil && *filter.StartDate != "" {
		baseWhere += fmt.Sprintf(" AND COALESCE(check_in, created_at) >= $%d::date", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}

	if filter.EndDate != nil && *filter.EndDate != "" {
		baseWhere += fmt.Sprintf(" AND COALESCE(check_in, created_at) < $%d::date + 1", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}

	if filter.Status != nil && *filter.Status != "" {
		baseWhere += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	var total int64
	countQuery := "SELECT COUNT(*) FROM time_entries WHERE " + baseWhere
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count time entries: %w", err)
	}

	// Build ORDER BY
	orderByField := "check_in"
	switch filter.SortBy {
	case "created_at":
		orderByField = "created_at"
	case "status":
		orderByField = "status"
	}
	sortOrder := "DESC"
	if filter.SortOrder == "asc" {
		sortOrder = "ASC"
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	page := max(filter.Page, 1)
	offset := (page - 1) * limit

	selectQuery := fmt.Sprintf(`
		SELECT %s
		FROM time_entries
		WHERE %s
		ORDER BY %s %s NULLS LAST, id %s
		LIMIT $%d OFFSET $%d
	`, timeEntryColumns, baseWhere, orderByField, sortOrder, sortOrder, argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list time entries: %w", err)
	}
	entries, err := collectTimeEntries(rows)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func NewTimeEntryRepository(db *database.DB) timecard.TimeEntryRepository {
	return &timeEntryRepository{db: db}
}
