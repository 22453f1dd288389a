package testutil

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/WorldBankfinancials/ledger-api/internal/domain"
)

var (
	BankUserID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

	SettlementUSDID = uuid.MustParse("00000000-0000-0000-0001-000000000001")
	SettlementEURID = uuid.MustParse("00000000-0000-0000-0001-000000000002")
	SettlementGBPID = uuid.MustParse("00000000-0000-0000-0001-000000000003")
	FeeIncomeUSDID  = uuid.MustParse("00000000-0000-0000-0002-000000000001")
	FeeIncomeEURID  = uuid.MustParse("00000000-0000-0000-0002-000000000002")
	FeeIncomeGBPID  = uuid.MustParse("00000000-0000-0000-0002-000000000003")
)

const (
	TestPassword = "password123"
	TestPin      = "1234"
)

// SeedBankUser creates the internal user that owns the settlement and
// fee income accounts.
func SeedBankUser(t *testing.T, db *sql.DB) uuid.UUID {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	_, err = db.Exec(
		`INSERT INTO users (id, email, full_name, password_hash, role, is_verified, is_active)
		 VALUES ($1, $2, $3, $4, 'admin', true, true)
		 ON CONFLICT (id) DO NOTHING`,
		BankUserID, "system@worldbank.internal", "System", string(hash),
	)
	if err != nil {
		t.Fatalf("seed bank user: %v", err)
	}
	return BankUserID
}

// SeedSystemAccounts creates the per-currency settlement and fee income
// accounts that transfers book against.
func SeedSystemAccounts(t *testing.T, db *sql.DB, bankUserID uuid.UUID) {
	t.Helper()

	systemAccounts := []struct {
		id          uuid.UUID
		accountType string
		currency    string
	}{
		{SettlementUSDID, "settlement", "USD"},
		{SettlementEURID, "settlement", "EUR"},
		{SettlementGBPID, "settlement", "GBP"},
		{FeeIncomeUSDID, "fee_income", "USD"},
		{FeeIncomeEURID, "fee_income", "EUR"},
		{FeeIncomeGBPID, "fee_income", "GBP"},
	}

	for _, a := range systemAccounts {
		_, err := db.Exec(
			`INSERT INTO accounts (id, user_id, account_number, account_type, currency, balance, is_active)
			 VALUES ($1, $2, $3, $4, $5, 0, true)
			 ON CONFLICT (id) DO NOTHING`,
			a.id, bankUserID, fmt.Sprintf("SYS-%s-%s", a.accountType, a.currency), a.accountType, a.currency,
		)
		if err != nil {
			t.Fatalf("seed %s %s: %v", a.accountType, a.currency, err)
		}
	}
}

func SeedTestUser(t *testing.T, db *sql.DB, email, fullName string, role domain.UserRole) *domain.User {
	t.Helper()

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	pinHash, err := bcrypt.GenerateFromPassword([]byte(TestPin), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash pin: %v", err)
	}

	pin := string(pinHash)
	u := &domain.User{
		ID:              uuid.New(),
		Email:           email,
		FullName:        fullName,
		PasswordHash:    string(passwordHash),
		TransferPinHash: &pin,
		Role:            role,
		IsVerified:      true,
		IsActive:        true,
		CreatedAt:       time.Now().UTC(),
	}

	_, err = db.Exec(
		`INSERT INTO users (id, email, full_name, password_hash, transfer_pin_hash, role, is_verified, is_active, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		u.ID, u.Email, u.FullName, u.PasswordHash, u.TransferPinHash, u.Role, u.IsVerified, u.IsActive, u.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed test user %s: %v", email, err)
	}
	return u
}

func SeedTestAccount(t *testing.T, db *sql.DB, userID uuid.UUID, currency string, balance int64) *domain.Account {
	t.Helper()

	a := &domain.Account{
		ID:            uuid.New(),
		UserID:        userID,
		AccountNumber: fmt.Sprintf("4789-%s", uuid.New().String()[:8]),
		AccountType:   domain.AccountTypeChecking,
		Currency:      domain.Currency(currency),
		Balance:       balance,
		Version:       0,
		IsActive:      true,
		CreatedAt:     time.Now().UTC(),
	}

	_, err := db.Exec(
		`INSERT INTO accounts (id, user_id, account_number, account_type, currency, balance, version, is_active, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.ID, a.UserID, a.AccountNumber, a.AccountType, a.Currency, a.Balance, a.Version, a.IsActive, a.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed test account %s/%s: %v", userID, currency, err)
	}
	return a
}

func GetAccountBalance(t *testing.T, db *sql.DB, accountID uuid.UUID) int64 {
	t.Helper()

	var balance int64
	err := db.QueryRow(`SELECT balance FROM accounts WHERE id = $1`, accountID).Scan(&balance)
	if err != nil {
		t.Fatalf("get account balance %s: %v", accountID, err)
	}
	return balance
}

func GetTransactionStatus(t *testing.T, db *sql.DB, transactionID uuid.UUID) string {
	t.Helper()

	var status string
	err := db.QueryRow(`SELECT status FROM transactions WHERE id = $1`, transactionID).Scan(&status)
	if err != nil {
		t.Fatalf("get transaction status %s: %v", transactionID, err)
	}
	return status
}

func CountLedgerEntries(t *testing.T, db *sql.DB, transactionID uuid.UUID) int {
	t.Helper()

	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM ledger_entries WHERE transaction_id = $1`, transactionID).Scan(&count)
	if err != nil {
		t.Fatalf("count ledger entries for transaction %s: %v", transactionID, err)
	}
	return count
}

// SumBalances totals every account balance in a currency. A transfer must
// never change this number; fees just move value to fee income.
func SumBalances(t *testing.T, db *sql.DB, currency string) int64 {
	t.Helper()

	var sum int64
	err := db.QueryRow(`SELECT COALESCE(SUM(balance), 0) FROM accounts WHERE currency = $1`, currency).Scan(&sum)
	if err != nil {
		t.Fatalf("sum balances for %s: %v", currency, err)
	}
	return sum
}
