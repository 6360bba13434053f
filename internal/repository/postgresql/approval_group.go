package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/timecard-backend-go/internal/domain/timecard"
	"github.com/cmlabs-hris/timecard-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type approvalGroupRepository struct {
	db *database.DB
}

// GetGroupMembers implements timecard.ApprovalGroupRepository.
func (r *approvalGroupRepository) GetGroupMembers(ctx context.Context, groupID string, tenantID string) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT m.user_id
		FROM approval_group_members m
		JOIN approval_groups g ON g.id = m.group_id
		WHERE m.group_id = $1
		  AND g.tenant_id = $2
		ORDER BY m.user_id
	`

	rows, err := q.Query(ctx, query, groupID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query approval group members: %w", err)
	}

	members, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan approval group members: %w", err)
	}
	return members, nil
}

func NewApprovalGroupRepository(db *database.DB) timecard.ApprovalGroupRepository {
	return &approvalGroupRepository{db: db}
}
