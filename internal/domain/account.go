package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
)

func (c Currency) IsValid() bool {
	switch c {
	case CurrencyUSD, CurrencyEUR, CurrencyGBP:
		return true
	}
	return false
}

type AccountType string

const (
	AccountTypeChecking   AccountType = "checking"
	AccountTypeSavings    AccountType = "savings"
	AccountTypeInvestment AccountType = "investment"

	// System-owned accounts. Approved transfer principal lands on
	// settlement, fees land on fee_income, so the sum of all balances
	// is conserved by every approval.
	AccountTypeSettlement AccountType = "settlement"
	AccountTypeFeeIncome  AccountType = "fee_income"
)

// Account balances are int64 minor units (cents). Account.Balance is the
// single source of truth for a customer's funds; it changes only through
// the funds service inside a row-locked transaction.
type Account struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	AccountNumber  string
	AccountType    AccountType
	Currency       Currency
	Balance        int64
	MinimumBalance int64
	Version        int64
	InterestRate   *decimal.Decimal
	IsActive       bool
	CreatedAt      time.Time
}
