package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/WorldBankfinancials/ledger-api/internal/domain"
)

const transactionColumns = `id, reference, user_id, source_account_id, type, method,
	status, amount, fee, total, currency, purpose, description,
	recipient_name, recipient_account, recipient_bank, recipient_country,
	recipient_address, swift_code, routing_number, card_number, mobile_provider,
	admin_id, admin_notes, created_at, updated_at, completed_at`

type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, tx *sql.Tx, txn *domain.Transaction) error {
	exec := execer(tx, r.db)
	_, err := exec.ExecContext(ctx,
		`INSERT INTO transactions (
			id, reference, user_id, source_account_id, type, method,
			status, amount, fee, total, currency, purpose, description,
			recipient_name, recipient_account, recipient_bank, recipient_country,
			recipient_address, swift_code, routing_number, card_number, mobile_provider,
			admin_id, admin_notes, created_at, updated_at, completed_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27
		)`,
		txn.ID, txn.Reference, txn.UserID, txn.SourceAccountID, txn.Type, txn.Method,
		txn.Status, txn.Amount, txn.Fee, txn.Total, txn.Currency, txn.Purpose, txn.Description,
		txn.RecipientName, txn.RecipientAccount, txn.RecipientBank, txn.RecipientCountry,
		txn.RecipientAddress, txn.SwiftCode, txn.RoutingNumber, txn.CardNumber, txn.MobileProvider,
		txn.AdminID, txn.AdminNotes, txn.CreatedAt, txn.UpdatedAt, txn.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id,
	)
	t, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return t, nil
}

// GetForUpdate locks the transaction row so a concurrent approval of the
// same id blocks until this tx finishes, then sees the terminal status.
func (r *TransactionRepository) GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.Transaction, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = $1 FOR UPDATE`, id,
	)
	t, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetForUpdate: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetForUpdate: %w", err)
	}
	return t, nil
}

func (r *TransactionRepository) ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Transaction, int, error) {
	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE user_id = $1`, userID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("ListByUserID: count: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("ListByUserID: %w", err)
	}
	defer rows.Close()

	txns, err := collectTransactions(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("ListByUserID: %w", err)
	}
	return txns, total, nil
}

func (r *TransactionRepository) ListByStatus(ctx context.Context, status domain.TransactionStatus, limit, offset int) ([]domain.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		WHERE status = $1 ORDER BY created_at LIMIT $2 OFFSET $3`,
		status, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("ListByStatus: %w", err)
	}
	defer rows.Close()

	txns, err := collectTransactions(rows)
	if err != nil {
		return nil, fmt.Errorf("ListByStatus: %w", err)
	}
	return txns, nil
}

func (r *TransactionRepository) UpdateStatus(ctx context.Context, tx *sql.Tx, id uuid.UUID, status domain.TransactionStatus, adminID *uuid.UUID, adminNotes *string, completedAt *time.Time) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE transactions
		SET status = $1, admin_id = $2, admin_notes = $3, completed_at = $4, updated_at = now()
		WHERE id = $5`,
		status, adminID, adminNotes, completedAt, id,
	)
	if err != nil {
		return fmt.Errorf("UpdateStatus: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("UpdateStatus: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("UpdateStatus: %w", domain.ErrNotFound)
	}
	return nil
}

type sqlExecer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func execer(tx *sql.Tx, db *sql.DB) sqlExecer {
	if tx != nil {
		return tx
	}
	return db
}

func collectTransactions(rows *sql.Rows) ([]domain.Transaction, error) {
	var txns []domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		txns = append(txns, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return txns, nil
}

func scanTransaction(s scanner) (*domain.Transaction, error) {
	var t domain.Transaction
	var method *string
	var adminID uuid.NullUUID

	err := s.Scan(
		&t.ID, &t.Reference, &t.UserID, &t.SourceAccountID, &t.Type, &method,
		&t.Status, &t.Amount, &t.Fee, &t.Total, &t.Currency, &t.Purpose, &t.Description,
		&t.RecipientName, &t.RecipientAccount, &t.RecipientBank, &t.RecipientCountry,
		&t.RecipientAddress, &t.SwiftCode, &t.RoutingNumber, &t.CardNumber, &t.MobileProvider,
		&adminID, &t.AdminNotes, &t.CreatedAt, &t.UpdatedAt, &t.CompletedAt,
	)
	if err != nil {
		return nil, err
	}

	if method != nil {
		m := domain.TransferMethod(*method)
		t.Method = &m
	}
	if adminID.Valid {
		t.AdminID = &adminID.UUID
	}

	return &t, nil
}
