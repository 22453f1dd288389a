package transfer_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/WorldBankfinancials/ledger-api/internal/config"
	"github.com/WorldBankfinancials/ledger-api/internal/domain"
	"github.com/WorldBankfinancials/ledger-api/internal/repository"
	"github.com/WorldBankfinancials/ledger-api/internal/service"
	"github.com/WorldBankfinancials/ledger-api/internal/service/transfer"
	"github.com/WorldBankfinancials/ledger-api/internal/testutil"
)

func testConfig() *config.Config {
	return &config.Config{
		ApprovalThreshold: 1_000_000,
		FeeIntlPct:        0.01,
		FeeIntlMin:        2500,
		FeeIntlMax:        5000,
		FeeDomestic:       500,
		FeeCardPct:        0.015,
		FeeCardMax:        2000,
		FeeMobile:         200,
	}
}

func setupTransferService(t *testing.T, db *sql.DB) *transfer.Service {
	t.Helper()

	userRepo := repository.NewUserRepository(db)
	return transfer.NewService(
		repository.NewTransactionRepository(db),
		repository.NewAccountRepository(db),
		repository.NewLedgerRepository(db),
		service.NewPinService(userRepo, bcrypt.MinCost),
		db,
		testConfig(),
	)
}

func seedWorld(t *testing.T, db *sql.DB) {
	t.Helper()
	bankID := testutil.SeedBankUser(t, db)
	testutil.SeedSystemAccounts(t, db, bankID)
}

func domesticRequest(user *domain.User, acct *domain.Account, amount int64) transfer.Request {
	return transfer.Request{
		UserID:           user.ID,
		SourceAccountID:  acct.ID,
		Method:           domain.TransferMethodDomestic,
		Amount:           amount,
		Currency:         domain.CurrencyUSD,
		Purpose:          "rent",
		TransferPin:      testutil.TestPin,
		RecipientName:    "Jane Roe",
		RecipientAccount: "000123456789",
		RoutingNumber:    "021000021",
	}
}

func TestCreateTransfer_ImmediateExecution(t *testing.T) {
	db := testutil.SetupTestDB(t)
	seedWorld(t, db)
	svc := setupTransferService(t, db)
	ctx := context.Background()

	user := testutil.SeedTestUser(t, db, "sender@test.com", "Sender", domain.UserRoleCustomer)
	acct := testutil.SeedTestAccount(t, db, user.ID, "USD", 100_000)

	before := testutil.SumBalances(t, db, "USD")

	txn, err := svc.CreateTransfer(ctx, domesticRequest(user, acct, 50_000))
	require.NoError(t, err)

	assert.Equal(t, domain.TransactionStatusCompleted, txn.Status)
	assert.Equal(t, int64(50_000), txn.Amount)
	assert.Equal(t, int64(500), txn.Fee)
	assert.Equal(t, int64(50_500), txn.Total)
	assert.NotNil(t, txn.CompletedAt)

	assert.Equal(t, int64(49_500), testutil.GetAccountBalance(t, db, acct.ID))
	assert.Equal(t, int64(50_000), testutil.GetAccountBalance(t, db, testutil.SettlementUSDID))
	assert.Equal(t, int64(500), testutil.GetAccountBalance(t, db, testutil.FeeIncomeUSDID))
	assert.Equal(t, 3, testutil.CountLedgerEntries(t, db, txn.ID))

	assert.Equal(t, before, testutil.SumBalances(t, db, "USD"))
}

func TestCreateTransfer_ParksAboveThreshold(t *testing.T) {
	db := testutil.SetupTestDB(t)
	seedWorld(t, db)
	svc := setupTransferService(t, db)
	ctx := context.Background()

	user := testutil.SeedTestUser(t, db, "bigsender@test.com", "Big Sender", domain.UserRoleCustomer)
	acct := testutil.SeedTestAccount(t, db, user.ID, "USD", 2_000_000)

	req := transfer.Request{
		UserID:           user.ID,
		SourceAccountID:  acct.ID,
		Method:           domain.TransferMethodInternational,
		Amount:           1_500_000,
		Currency:         domain.CurrencyUSD,
		TransferPin:      testutil.TestPin,
		RecipientName:    "Jane Roe",
		RecipientAccount: "DE89370400440532013000",
		RecipientBank:    "Deutsche Bank",
		RecipientCountry: "DE",
		RecipientAddress: "Taunusanlage 12, Frankfurt",
		SwiftCode:        "DEUTDEFF",
	}

	txn, err := svc.CreateTransfer(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, domain.TransactionStatusPendingApproval, txn.Status)
	assert.Equal(t, int64(5000), txn.Fee)
	assert.Equal(t, int64(1_505_000), txn.Total)
	assert.Nil(t, txn.CompletedAt)

	// No funds move until an admin approves.
	assert.Equal(t, int64(2_000_000), testutil.GetAccountBalance(t, db, acct.ID))
	assert.Equal(t, int64(0), testutil.GetAccountBalance(t, db, testutil.SettlementUSDID))
	assert.Equal(t, 0, testutil.CountLedgerEntries(t, db, txn.ID))

	// A request without a purpose persists and reads back as the empty string.
	reloaded, err := svc.GetTransferForUser(ctx, txn.ID, user.ID)
	require.NoError(t, err)
	assert.Empty(t, reloaded.Purpose)
}

func TestCreateTransfer_ExactlyAtThresholdParks(t *testing.T) {
	db := testutil.SetupTestDB(t)
	seedWorld(t, db)
	svc := setupTransferService(t, db)
	ctx := context.Background()

	user := testutil.SeedTestUser(t, db, "edge@test.com", "Edge", domain.UserRoleCustomer)
	acct := testutil.SeedTestAccount(t, db, user.ID, "USD", 2_000_000)

	txn, err := svc.CreateTransfer(ctx, domesticRequest(user, acct, 1_000_000))
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusPendingApproval, txn.Status)
}

func TestCreateTransfer_InsufficientFunds(t *testing.T) {
	db := testutil.SetupTestDB(t)
	seedWorld(t, db)
	svc := setupTransferService(t, db)
	ctx := context.Background()

	user := testutil.SeedTestUser(t, db, "broke@test.com", "Broke", domain.UserRoleCustomer)
	acct := testutil.SeedTestAccount(t, db, user.ID, "USD", 10_000)

	_, err := svc.CreateTransfer(ctx, domesticRequest(user, acct, 10_000))
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)

	assert.Equal(t, int64(10_000), testutil.GetAccountBalance(t, db, acct.ID))

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM transactions WHERE user_id = $1`, user.ID).Scan(&count))
	assert.Equal(t, 0, count)
}

func TestCreateTransfer_WrongPin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	seedWorld(t, db)
	svc := setupTransferService(t, db)
	ctx := context.Background()

	user := testutil.SeedTestUser(t, db, "pin@test.com", "Pin User", domain.UserRoleCustomer)
	acct := testutil.SeedTestAccount(t, db, user.ID, "USD", 100_000)

	req := domesticRequest(user, acct, 10_000)
	req.TransferPin = "9999"

	_, err := svc.CreateTransfer(ctx, req)
	require.ErrorIs(t, err, domain.ErrPinMismatch)
	assert.Equal(t, int64(100_000), testutil.GetAccountBalance(t, db, acct.ID))
}

func TestCreateTransfer_ForeignAccountLooksMissing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	seedWorld(t, db)
	svc := setupTransferService(t, db)
	ctx := context.Background()

	owner := testutil.SeedTestUser(t, db, "owner@test.com", "Owner", domain.UserRoleCustomer)
	other := testutil.SeedTestUser(t, db, "other@test.com", "Other", domain.UserRoleCustomer)
	acct := testutil.SeedTestAccount(t, db, owner.ID, "USD", 100_000)

	req := domesticRequest(other, acct, 10_000)
	req.UserID = other.ID

	_, err := svc.CreateTransfer(ctx, req)
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestCreateTransfer_CurrencyMismatch(t *testing.T) {
	db := testutil.SetupTestDB(t)
	seedWorld(t, db)
	svc := setupTransferService(t, db)
	ctx := context.Background()

	user := testutil.SeedTestUser(t, db, "eur@test.com", "EUR User", domain.UserRoleCustomer)
	acct := testutil.SeedTestAccount(t, db, user.ID, "EUR", 100_000)

	req := domesticRequest(user, acct, 10_000)

	_, err := svc.CreateTransfer(ctx, req)
	require.ErrorIs(t, err, domain.ErrInvalidCurrency)
}

func TestCreateTransfer_ConcurrentOverdraft(t *testing.T) {
	db := testutil.SetupTestDB(t)
	seedWorld(t, db)
	svc := setupTransferService(t, db)
	ctx := context.Background()

	user := testutil.SeedTestUser(t, db, "race@test.com", "Race", domain.UserRoleCustomer)
	acct := testutil.SeedTestAccount(t, db, user.ID, "USD", 60_000)

	// Two 50k+fee transfers against a 60k balance: exactly one must win.
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.CreateTransfer(ctx, domesticRequest(user, acct, 50_000))
		}(i)
	}
	wg.Wait()

	var succeeded, overdrafted int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case assert.ErrorIs(t, err, domain.ErrInsufficientFunds):
			overdrafted++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, overdrafted)
	assert.Equal(t, int64(9_500), testutil.GetAccountBalance(t, db, acct.ID))
}
