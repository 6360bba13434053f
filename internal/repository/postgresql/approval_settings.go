package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/timecard-backend-go/internal/domain/timecard"
	"github.com/cmlabs-hris/timecard-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type approvalSettingsRepository struct {
	db *database.DB
}

// GetByTenant implements timecard.ApprovalSettingsRepository.
func (r *approvalSettingsRepository) GetByTenant(ctx context.Context, tenantID string) (*timecard.ApprovalSettings, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, tenant_id, approval_type, auto_approve_complete, auto_approve_after_hours,
			   require_approval_for, default_approvers, approval_group_id,
			   created_at, updated_at
		FROM approval_settings
		WHERE tenant_id = $1
	`

	var (
		s          timecard.ApprovalSettings
		categories []string
	)
	err := q.QueryRow(ctx, query, tenantID).Scan(
		&s.ID, &s.TenantID, &s.ApprovalType, &s.AutoApproveComplete, &s.AutoApproveAfterHours,
		&categories, &s.DefaultApprovers, &s.ApprovalGroupID,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get approval settings: %w", err)
	}

	s.RequireApprovalFor = make([]timecard.EntryCategory, 0, len(categories))
	for _, c := range categories {
		s.RequireApprovalFor = append(s.RequireApprovalFor, timecard.EntryCategory(c))
	}
	return &s, nil
}

// ListAutoApprovalTenants implements timecard.ApprovalSettingsRepository.
func (r *approvalSettingsRepository) ListAutoApprovalTenants(ctx context.Context) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT tenant_id
		FROM approval_settings
		WHERE approval_type = 'automatic'
		   OR auto_approve_complete
		ORDER BY tenant_id
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query auto approval tenants: %w", err)
	}

	tenants, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan auto approval tenants: %w", err)
	}
	return tenants, nil
}

func NewApprovalSettingsRepository(db *database.DB) timecard.ApprovalSettingsRepository {
	return &approvalSettingsRepository{db: db}
}
