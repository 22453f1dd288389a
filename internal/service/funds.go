package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/WorldBankfinancials/ledger-api/internal/domain"
	"github.com/WorldBankfinancials/ledger-api/internal/logging"
)

type transactionCreator interface {
	Create(ctx context.Context, tx *sql.Tx, txn *domain.Transaction) error
}

// FundsService applies direct admin credits and debits to an account.
// Every adjustment produces a completed transaction, a ledger entry and
// an audit row, committed atomically with the balance write.
type FundsService struct {
	transactions transactionCreator
	accounts     accountRepo
	ledger       ledgerRepo
	audit        adminActionRepo
	db           *sql.DB
}

func NewFundsService(transactions transactionCreator, accounts accountRepo, ledger ledgerRepo, audit adminActionRepo, db *sql.DB) *FundsService {
	return &FundsService{
		transactions: transactions,
		accounts:     accounts,
		ledger:       ledger,
		audit:        audit,
		db:           db,
	}
}

// AdjustBalance credits the account when amount is positive and debits it
// when negative. A debit may not take the balance below the account's
// minimum.
func (s *FundsService) AdjustBalance(ctx context.Context, accountID, adminID uuid.UUID, amount int64, description string) (*domain.Account, *domain.Transaction, error) {
	if amount == 0 {
		return nil, nil, fmt.Errorf("AdjustBalance: %w", domain.ErrInvalidAmount)
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, nil, fmt.Errorf("AdjustBalance: %w", domain.ErrNotesRequired)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("AdjustBalance: begin tx: %w", err)
	}
	defer tx.Rollback()

	acct, err := s.accounts.GetForUpdate(ctx, tx, accountID)
	if err != nil {
		return nil, nil, fmt.Errorf("AdjustBalance: %w", err)
	}
	if !acct.IsActive {
		return nil, nil, fmt.Errorf("AdjustBalance: %w", domain.ErrAccountInactive)
	}

	newBalance := acct.Balance + amount
	if newBalance < acct.MinimumBalance {
		return nil, nil, fmt.Errorf("AdjustBalance: %w", domain.ErrInsufficientFunds)
	}

	txnType := domain.TransactionTypeCredit
	entryType := domain.EntryTypeCredit
	magnitude := amount
	if amount < 0 {
		txnType = domain.TransactionTypeDebit
		entryType = domain.EntryTypeDebit
		magnitude = -amount
	}

	ref, err := generateAdjustmentReference()
	if err != nil {
		return nil, nil, fmt.Errorf("AdjustBalance: %w", err)
	}

	now := time.Now().UTC()
	txn := &domain.Transaction{
		ID:              uuid.New(),
		Reference:       ref,
		UserID:          acct.UserID,
		SourceAccountID: acct.ID,
		Type:            txnType,
		Status:          domain.TransactionStatusCompleted,
		Amount:          magnitude,
		Fee:             0,
		Total:           magnitude,
		Currency:        acct.Currency,
		Purpose:         "balance_adjustment",
		Description:     &description,
		AdminID:         &adminID,
		CreatedAt:       now,
		UpdatedAt:       now,
		CompletedAt:     &now,
	}
	if err := s.transactions.Create(ctx, tx, txn); err != nil {
		return nil, nil, fmt.Errorf("AdjustBalance: create transaction: %w", err)
	}

	if err := s.ledger.Create(ctx, tx, &domain.LedgerEntry{
		ID:            uuid.New(),
		TransactionID: txn.ID,
		AccountID:     acct.ID,
		EntryType:     entryType,
		Amount:        magnitude,
		Currency:      acct.Currency,
		BalanceBefore: acct.Balance,
		BalanceAfter:  newBalance,
		CreatedAt:     now,
	}); err != nil {
		return nil, nil, fmt.Errorf("AdjustBalance: ledger: %w", err)
	}

	if err := s.accounts.UpdateBalance(ctx, tx, acct.ID, newBalance, acct.Version+1); err != nil {
		return nil, nil, fmt.Errorf("AdjustBalance: update balance: %w", err)
	}

	payload, err := json.Marshal(map[string]any{"amount": amount, "balance_after": newBalance})
	if err != nil {
		return nil, nil, fmt.Errorf("AdjustBalance: payload: %w", err)
	}
	if err := s.audit.Create(ctx, tx, &domain.AdminAction{
		ID:         uuid.New(),
		AdminID:    adminID,
		Action:     domain.AdminActionBalanceAdjustment,
		TargetType: "account",
		TargetID:   acct.ID,
		Notes:      &description,
		Payload:    payload,
		CreatedAt:  now,
	}); err != nil {
		return nil, nil, fmt.Errorf("AdjustBalance: audit: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("AdjustBalance: commit: %w", err)
	}

	acct.Balance = newBalance
	acct.Version++

	logging.FromContext(ctx).Info("balance adjusted",
		"account_id", acct.ID,
		"admin_id", adminID,
		"amount", amount,
		"balance", newBalance,
	)
	return acct, txn, nil
}
