package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/WorldBankfinancials/ledger-api/internal/domain"
)

const adminActionColumns = `id, admin_id, action, target_type, target_id, notes, payload, created_at`

type AdminActionRepository struct {
	db *sql.DB
}

func NewAdminActionRepository(db *sql.DB) *AdminActionRepository {
	return &AdminActionRepository{db: db}
}

func (r *AdminActionRepository) Create(ctx context.Context, tx *sql.Tx, action *domain.AdminAction) error {
	exec := execer(tx, r.db)
	_, err := exec.ExecContext(ctx,
		`INSERT INTO admin_actions (
			id, admin_id, action, target_type, target_id, notes, payload, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		action.ID, action.AdminID, action.Action, action.TargetType,
		action.TargetID, action.Notes, action.Payload, action.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *AdminActionRepository) GetByTargetID(ctx context.Context, targetID uuid.UUID) ([]domain.AdminAction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+adminActionColumns+` FROM admin_actions
		WHERE target_id = $1 ORDER BY created_at`, targetID,
	)
	if err != nil {
		return nil, fmt.Errorf("GetByTargetID: %w", err)
	}
	defer rows.Close()

	var actions []domain.AdminAction
	for rows.Next() {
		var a domain.AdminAction
		var payload *[]byte
		err := rows.Scan(
			&a.ID, &a.AdminID, &a.Action, &a.TargetType, &a.TargetID,
			&a.Notes, &payload, &a.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("GetByTargetID: scan: %w", err)
		}
		if payload != nil {
			a.Payload = *payload
		}
		actions = append(actions, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetByTargetID: rows: %w", err)
	}
	return actions, nil
}
