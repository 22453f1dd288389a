package transfer

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/WorldBankfinancials/ledger-api/internal/domain"
)

// lockAccountsInOrder acquires FOR UPDATE locks in a stable id order so
// two transfers touching the same accounts can't deadlock.
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

// writeTransferLedger books a completed transfer: one debit of the full
// total against the sender, a credit of the principal to settlement and a
// credit of the fee to fee income. The three rows sum to zero across
// accounts, which is what keeps the conservation property checkable.
func writeTransferLedger(ctx context.Context, tx *sql.Tx, ledger ledgerRepo, txn *domain.Transaction, sender, settlement, feeAccount *domain.Account) error {
	debit := &domain.LedgerEntry{
		ID:            uuid.New(),
		TransactionID: txn.ID,
		AccountID:     sender.ID,
		EntryType:     domain.EntryTypeDebit,
		Amount:        txn.Total,
		Currency:      txn.Currency,
		BalanceBefore: sender.Balance,
		BalanceAfter:  sender.Balance - txn.Total,
		CreatedAt:     txn.UpdatedAt,
	}
	if err := ledger.Create(ctx, tx, debit); err != nil {
		return fmt.Errorf("writeTransferLedger: debit: %w", err)
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
		CreatedAt:     txn.UpdatedAt,
	}
	if err := ledger.Create(ctx, tx, principal); err != nil {
		return fmt.Errorf("writeTransferLedger: settlement credit: %w", err)
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
			CreatedAt:     txn.UpdatedAt,
		}
		if err := ledger.Create(ctx, tx, feeEntry); err != nil {
			return fmt.Errorf("writeTransferLedger: fee credit: %w", err)
		}
	}

	return nil
}
