package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/timecard-backend-go/internal/domain/timecard"
	"github.com/cmlabs-hris/timecard-backend-go/internal/pkg/database"
	"github.com/google/uuid"
)

type approvalHistoryRepository struct {
	db *database.DB
}

// Append implements timecard.ApprovalHistoryRepository.
func (r *approvalHistoryRepository) Append(ctx context.Context, record timecard.ApprovalHistory) (timecard.ApprovalHistory, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return timecard.ApprovalHistory{}, fmt.Errorf("failed to generate history id: %w", err)
	}
	record.ID = id.String()

	query := `
		INSERT INTO approval_history (
			id, tenant_id, timecard_entry_id, approval_status, approved_by,
			approval_date, rejection_reason, comments, approval_method
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = q.Exec(ctx, query,
		record.ID,
		record.TenantID,
		record.TimecardEntryID,
		record.ApprovalStatus,
		record.ApprovedBy,
		record.ApprovalDate,
		record.RejectionReason,
		record.Comments,
		record.ApprovalMethod,
	)
	if err != nil {
		return timecard.ApprovalHistory{}, fmt.Errorf("failed to append approval history: %w", err)
	}

	return record, nil
}

// ListByEntry implements timecard.ApprovalHistoryRepository.
func (r *approvalHistoryRepository) ListByEntry(ctx context.Context, entryID string, tenantID string) ([]timecard.ApprovalHistory, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, tenant_id, timecard_entry_id, approval_status, approved_by,
			   approval_date, rejection_reason, comments, approval_method
		FROM approval_history
		WHERE timecard_entry_id = $1
		  AND tenant_id = $2
		ORDER BY approval_date ASC, id ASC
	`

	rows, err := q.Query(ctx, query, entryID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query approval history: %w", err)
	}
	defer rows.Close()

	records := make([]timecard.ApprovalHistory, 0)
	for rows.Next() {
		var h timecard.ApprovalHistory
		if err := rows.Scan(
			&h.ID, &h.TenantID, &h.TimecardEntryID, &h.ApprovalStatus, &h.ApprovedBy,
			&h.ApprovalDate, &h.RejectionReason, &h.Comments, &h.ApprovalMethod,
		); err != nil {
			return nil, fmt.Errorf("failed to scan approval history: %w", err)
		}
		records = append(records, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating approval history: %w", err)
	}

	return records, nil
}

func NewApprovalHistoryRepository(db *database.DB) timecard.ApprovalHistoryRepository {
	return &approvalHistoryRepository{db: db}
}
