package service_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WorldBankfinancials/ledger-api/internal/domain"
	"github.com/WorldBankfinancials/ledger-api/internal/repository"
	"github.com/WorldBankfinancials/ledger-api/internal/service"
	"github.com/WorldBankfinancials/ledger-api/internal/testutil"
)

func setupFundsService(db *sql.DB) *service.FundsService {
	return service.NewFundsService(
		repository.NewTransactionRepository(db),
		repository.NewAccountRepository(db),
		repository.NewLedgerRepository(db),
		repository.NewAdminActionRepository(db),
		db,
	)
}

func TestAdjustBalance_Credit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupFundsService(db)
	ctx := context.Background()

	user := testutil.SeedTestUser(t, db, "credit@test.com", "Credit", domain.UserRoleCustomer)
	admin := testutil.SeedTestUser(t, db, "fadmin@test.com", "Admin", domain.UserRoleAdmin)
	acct := testutil.SeedTestAccount(t, db, user.ID, "USD", 10_000)

	updated, txn, err := svc.AdjustBalance(ctx, acct.ID, admin.ID, 25_000, "promo credit")
	require.NoError(t, err)

	assert.Equal(t, int64(35_000), updated.Balance)
	assert.Equal(t, int64(35_000), testutil.GetAccountBalance(t, db, acct.ID))
	assert.Equal(t, domain.TransactionTypeCredit, txn.Type)
	assert.Equal(t, domain.TransactionStatusCompleted, txn.Status)
	assert.Equal(t, int64(25_000), txn.Amount)
	assert.Equal(t, "balance_adjustment", txn.Purpose)
	assert.Equal(t, 1, testutil.CountLedgerEntries(t, db, txn.ID))

	actions, err := repository.NewAdminActionRepository(db).GetByTargetID(ctx, acct.ID)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, domain.AdminActionBalanceAdjustment, actions[0].Action)
	assert.JSONEq(t, `{"amount": 25000, "balance_after": 35000}`, string(actions[0].Payload))
}

func TestAdjustBalance_Debit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupFundsService(db)
	ctx := context.Background()

	user := testutil.SeedTestUser(t, db, "debit@test.com", "Debit", domain.UserRoleCustomer)
	admin := testutil.SeedTestUser(t, db, "fadmin2@test.com", "Admin", domain.UserRoleAdmin)
	acct := testutil.SeedTestAccount(t, db, user.ID, "USD", 10_000)

	updated, txn, err := svc.AdjustBalance(ctx, acct.ID, admin.ID, -4_000, "chargeback reversal")
	require.NoError(t, err)

	assert.Equal(t, int64(6_000), updated.Balance)
	assert.Equal(t, domain.TransactionTypeDebit, txn.Type)
	// Transaction amounts are stored as magnitudes; the type carries the sign.
	assert.Equal(t, int64(4_000), txn.Amount)
}

func TestAdjustBalance_DebitBelowMinimumFails(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupFundsService(db)
	ctx := context.Background()

	user := testutil.SeedTestUser(t, db, "floor@test.com", "Floor", domain.UserRoleCustomer)
	admin := testutil.SeedTestUser(t, db, "fadmin3@test.com", "Admin", domain.UserRoleAdmin)
	acct := testutil.SeedTestAccount(t, db, user.ID, "USD", 10_000)

	_, _, err := svc.AdjustBalance(ctx, acct.ID, admin.ID, -10_001, "overdraw")
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)
	assert.Equal(t, int64(10_000), testutil.GetAccountBalance(t, db, acct.ID))
}

func TestAdjustBalance_Invalid(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupFundsService(db)
	ctx := context.Background()

	user := testutil.SeedTestUser(t, db, "invalid@test.com", "Invalid", domain.UserRoleCustomer)
	admin := testutil.SeedTestUser(t, db, "fadmin4@test.com", "Admin", domain.UserRoleAdmin)
	acct := testutil.SeedTestAccount(t, db, user.ID, "USD", 10_000)

	_, _, err := svc.AdjustBalance(ctx, acct.ID, admin.ID, 0, "no-op")
	require.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, _, err = svc.AdjustBalance(ctx, acct.ID, admin.ID, 1_000, "   ")
	require.ErrorIs(t, err, domain.ErrNotesRequired)
}
