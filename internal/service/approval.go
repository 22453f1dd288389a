package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/WorldBankfinancials/ledger-api/internal/domain"
	"github.com/WorldBankfinancials/ledger-api/internal/logging"
)

type transactionRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.Transaction, error)
	ListByStatus(ctx context.Context, status domain.TransactionStatus, limit, offset int) ([]domain.Transaction, error)
	UpdateStatus(ctx context.Context, tx *sql.Tx, id uuid.UUID, status domain.TransactionStatus, adminID *uuid.UUID, adminNotes *string, completedAt *time.Time) error
}

type accountRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetSystemAccount(ctx context.Context, accountType domain.AccountType, currency domain.Currency) (*domain.Account, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.Account, error)
	UpdateBalance(ctx context.Context, tx *sql.Tx, id uuid.UUID, newBalance int64, newVersion int64) error
}

type ledgerRepo interface {
	Create(ctx context.Context, tx *sql.Tx, entry *domain.LedgerEntry) error
}

type adminActionRepo interface {
	Create(ctx context.Context, tx *sql.Tx, action *domain.AdminAction) error
}

type pendingCache interface {
	GetPending(ctx context.Context) (txns []domain.Transaction, complete, ok bool)
	SetPending(ctx context.Context, txns []domain.Transaction, complete bool)
	InvalidatePending(ctx context.Context)
}

// ApprovalService moves a pending_approval transfer to its terminal
// state. Funds only move on approval, and they move in the same database
// transaction that flips the status, so a crash can never leave a
// completed transfer without its balance mutation or ledger rows.
type ApprovalService struct {
	transactions transactionRepo
	accounts     accountRepo
	ledger       ledgerRepo
	audit        adminActionRepo
	cache        pendingCache
	db           *sql.DB
}

func NewApprovalService(transactions transactionRepo, accounts accountRepo, ledger ledgerRepo, audit adminActionRepo, cache pendingCache, db *sql.DB) *ApprovalService {
	return &ApprovalService{
		transactions: transactions,
		accounts:     accounts,
		ledger:       ledger,
		audit:        audit,
		cache:        cache,
		db:           db,
	}
}

// ListPending returns transfers awaiting review, oldest first. The first
// page is served from cache when available; approval and rejection
// invalidate it.
func (s *ApprovalService) ListPending(ctx context.Context, limit, offset int) ([]domain.Transaction, error) {
	cacheable := offset == 0
	if cacheable {
		// A complete snapshot answers any first-page request; a truncated
		// one only answers requests it fully covers.
		if txns, complete, ok := s.cache.GetPending(ctx); ok && (complete || len(txns) >= limit) {
			if len(txns) > limit {
				txns = txns[:limit]
			}
			return txns, nil
		}
	}

	txns, err := s.transactions.ListByStatus(ctx, domain.TransactionStatusPendingApproval, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("ListPending: %w", err)
	}

	if cacheable {
		s.cache.SetPending(ctx, txns, len(txns) < limit)
	}
	return txns, nil
}

// Approve executes a parked transfer: debits the sender, credits the
// settlement and fee accounts, books the ledger rows and marks the
// transaction completed, all under row locks in one database transaction.
// Approving an already-completed transfer returns it unchanged.
func (s *ApprovalService) Approve(ctx context.Context, transactionID, adminID uuid.UUID, notes string) (*domain.Transaction, error) {
	txn, err := s.transactions.GetByID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("Approve: %w", err)
	}

	// Fast path without locks. The locked re-check below is authoritative.
	if txn.Status == domain.TransactionStatusCompleted {
		return txn, nil
	}
	if txn.Status != domain.TransactionStatusPendingApproval {
		return nil, fmt.Errorf("Approve: transfer is %s: %w", txn.Status, domain.ErrInvalidState)
	}

	settlement, err := s.accounts.GetSystemAccount(ctx, domain.AccountTypeSettlement, txn.Currency)
	if err != nil {
		return nil, fmt.Errorf("Approve: settlement account: %w", err)
	}
	feeAccount, err := s.accounts.GetSystemAccount(ctx, domain.AccountTypeFeeIncome, txn.Currency)
	if err != nil {
		return nil, fmt.Errorf("Approve: fee account: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("Approve: begin tx: %w", err)
	}
	defer tx.Rollback()

	// Lock the transaction row first; a racing approval of the same id
	// blocks here and then sees the terminal status.
	txn, err = s.transactions.GetForUpdate(ctx, tx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("Approve: %w", err)
	}
	if txn.Status == domain.TransactionStatusCompleted {
		return txn, nil
	}
	if txn.Status != domain.TransactionStatusPendingApproval {
		return nil, fmt.Errorf("Approve: transfer is %s: %w", txn.Status, domain.ErrInvalidState)
	}

	locked, err := lockAccountsInOrder(ctx, tx, s.accounts, txn.SourceAccountID, settlement.ID, feeAccount.ID)
	if err != nil {
		return nil, fmt.Errorf("Approve: %w", err)
	}
	sender := locked[txn.SourceAccountID]
	settleAcct := locked[settlement.ID]
	feeAcct := locked[feeAccount.ID]

	if !sender.IsActive {
		return nil, fmt.Errorf("Approve: %w", domain.ErrAccountInactive)
	}
	if sender.Balance-txn.Total < sender.MinimumBalance {
		return nil, fmt.Errorf("Approve: %w", domain.ErrInsufficientFunds)
	}

	now := time.Now().UTC()
	var adminNotes *string
	if trimmed := strings.TrimSpace(notes); trimmed != "" {
		adminNotes = &trimmed
	}

	if err := s.transactions.UpdateStatus(ctx, tx, txn.ID, domain.TransactionStatusCompleted, &adminID, adminNotes, &now); err != nil {
		return nil, fmt.Errorf("Approve: %w", err)
	}

	if err := writeApprovalLedger(ctx, tx, s.ledger, txn, sender, settleAcct, feeAcct, now); err != nil {
		return nil, fmt.Errorf("Approve: %w", err)
	}

	if err := s.accounts.UpdateBalance(ctx, tx, sender.ID, sender.Balance-txn.Total, sender.Version+1); err != nil {
		return nil, fmt.Errorf("Approve: update sender: %w", err)
	}
	if err := s.accounts.UpdateBalance(ctx, tx, settleAcct.ID, settleAcct.Balance+txn.Amount, settleAcct.Version+1); err != nil {
		return nil, fmt.Errorf("Approve: update settlement: %w", err)
	}
	if err := s.accounts.UpdateBalance(ctx, tx, feeAcct.ID, feeAcct.Balance+txn.Fee, feeAcct.Version+1); err != nil {
		return nil, fmt.Errorf("Approve: update fee account: %w", err)
	}

	if err := s.audit.Create(ctx, tx, &domain.AdminAction{
		ID:         uuid.New(),
		AdminID:    adminID,
		Action:     domain.AdminActionApproveTransfer,
		TargetType: "transaction",
		TargetID:   txn.ID,
		Notes:      adminNotes,
		CreatedAt:  now,
	}); err != nil {
		return nil, fmt.Errorf("Approve: audit: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("Approve: commit: %w", err)
	}

	s.cache.InvalidatePending(ctx)

	txn.Status = domain.TransactionStatusCompleted
	txn.AdminID = &adminID
	txn.AdminNotes = adminNotes
	txn.CompletedAt = &now
	txn.UpdatedAt = now

	logging.FromContext(ctx).Info("transfer approved",
		"transaction_id", txn.ID,
		"reference", txn.Reference,
		"admin_id", adminID,
		"amount", txn.Amount,
		"fee", txn.Fee,
	)
	return txn, nil
}

// Reject marks a parked transfer rejected without touching any balance.
// Notes are mandatory so the customer-facing record explains the decision.
func (s *ApprovalService) Reject(ctx context.Context, transactionID, adminID uuid.UUID, notes string) (*domain.Transaction, error) {
	trimmed := strings.TrimSpace(notes)
	if trimmed == "" {
		return nil, fmt.Errorf("Reject: %w", domain.ErrNotesRequired)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("Reject: begin tx: %w", err)
	}
	defer tx.Rollback()

	txn, err := s.transactions.GetForUpdate(ctx, tx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("Reject: %w", err)
	}
	if txn.Status != domain.TransactionStatusPendingApproval {
		return nil, fmt.Errorf("Reject: transfer is %s: %w", txn.Status, domain.ErrInvalidState)
	}

	now := time.Now().UTC()
	if err := s.transactions.UpdateStatus(ctx, tx, txn.ID, domain.TransactionStatusRejected, &adminID, &trimmed, nil); err != nil {
		return nil, fmt.Errorf("Reject: %w", err)
	}

	if err := s.audit.Create(ctx, tx, &domain.AdminAction{
		ID:         uuid.New(),
		AdminID:    adminID,
		Action:     domain.AdminActionRejectTransfer,
		TargetType: "transaction",
		TargetID:   txn.ID,
		Notes:      &trimmed,
		CreatedAt:  now,
	}); err != nil {
		return nil, fmt.Errorf("Reject: audit: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("Reject: commit: %w", err)
	}

	s.cache.InvalidatePending(ctx)

	txn.Status = domain.TransactionStatusRejected
	txn.AdminID = &adminID
	txn.AdminNotes = &trimmed
	txn.UpdatedAt = now

	logging.FromContext(ctx).Info("transfer rejected",
		"transaction_id", txn.ID,
		"reference", txn.Reference,
		"admin_id", adminID,
	)
	return txn, nil
}

func lockAccountsInOrder(ctx context.Context, tx *sql.Tx, accounts accountRepo, ids ...uuid.UUID) (map[uuid.UUID]*domain.Account, error) {
	sorted := make([]uuid.UUID, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].String() < sorted[j].String()
	})

	result := make(map[uuid.UUID]*domain.Account, len(ids))
	for _, id := range sorted {
		acct, err := accounts.GetForUpdate(ctx, tx, id)
		if err != nil {
			return nil, fmt.Errorf("lockAccountsInOrder: %w", err)
		}
		result[id] = acct
	}
	return result, nil
}

func writeApprovalLedger(ctx context.Context, tx *sql.Tx, ledger ledgerRepo, txn *domain.Transaction, sender, settlement, feeAccount *domain.Account, at time.Time) error {
	debit := &domain.LedgerEntry{
		ID:            uuid.New(),
		TransactionID: txn.ID,
		AccountID:     sender.ID,
		EntryType:     domain.EntryTypeDebit,
		Amount:        txn.Total,
		Currency:      txn.Currency,
		BalanceBefore: sender.Balance,
		BalanceAfter:  sender.Balance - txn.Total,
		CreatedAt:     at,
	}
	if err := ledger.Create(ctx, tx, debit); err != nil {
		return fmt.Errorf("writeApprovalLedger: debit: %w", err)
	}

	principal := &domain.LedgerEntry{
		ID:            uuid.New(),
		TransactionID: txn.ID,
		AccountID:     settlement.ID,
		EntryType:     domain.EntryTypeCredit,
		Amount:        txn.Amount,
		Currency:      txn.Currency,
		BalanceBefore: settlement.Balance,
		BalanceAfter:  settlement.Balance + txn.Amount,
		CreatedAt:     at,
	}
	if err := ledger.Create(ctx, tx, principal); err != nil {
		return fmt.Errorf("writeApprovalLedger: settlement credit: %w", err)
	}

	if txn.Fee > 0 {
		feeEntry := &domain.LedgerEntry{
			ID:            uuid.New(),
			TransactionID: txn.ID,
			AccountID:     feeAccount.ID,
			EntryType:     domain.EntryTypeCredit,
			Amount:        txn.Fee,
			Currency:      txn.Currency,
			BalanceBefore: feeAccount.Balance,
			BalanceAfter:  feeAccount.Balance + txn.Fee,
			CreatedAt:     at,
		}
		if err := ledger.Create(ctx, tx, feeEntry); err != nil {
			return fmt.Errorf("writeApprovalLedger: fee credit: %w", err)
		}
	}

	return nil
}
