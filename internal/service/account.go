package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/WorldBankfinancials/ledger-api/internal/domain"
	"github.com/WorldBankfinancials/ledger-api/internal/logging"
)

type accountStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Account, error)
	Create(ctx context.Context, account *domain.Account) error
}

type ledgerReader interface {
	GetByAccountID(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]domain.LedgerEntry, int, error)
}

type AccountService struct {
	accounts accountStore
	ledger   ledgerReader
}

func NewAccountService(accounts accountStore, ledger ledgerReader) *AccountService {
	return &AccountService{accounts: accounts, ledger: ledger}
}

func (s *AccountService) CreateAccount(ctx context.Context, userID uuid.UUID, accountType domain.AccountType, currency domain.Currency) (*domain.Account, error) {
	switch accountType {
	case domain.AccountTypeChecking, domain.AccountTypeSavings, domain.AccountTypeInvestment:
	default:
		return nil, fmt.Errorf("CreateAccount: account type %q: %w", accountType, domain.ErrInvalidRequest)
	}
	if !currency.IsValid() {
		return nil, fmt.Errorf("CreateAccount: %w", domain.ErrInvalidCurrency)
	}

	number, err := generateAccountNumber()
	if err != nil {
		return nil, fmt.Errorf("CreateAccount: %w", err)
	}

	acct := &domain.Account{
		ID:            uuid.New(),
		UserID:        userID,
		AccountNumber: number,
		AccountType:   accountType,
		Currency:      currency,
		Balance:       0,
		IsActive:      true,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.accounts.Create(ctx, acct); err != nil {
		return nil, fmt.Errorf("CreateAccount: %w", err)
	}

	logging.FromContext(ctx).Info("account created",
		"account_id", acct.ID,
		"user_id", userID,
		"type", accountType,
		"currency", currency,
	)
	return acct, nil
}

func (s *AccountService) GetUserAccounts(ctx context.Context, userID uuid.UUID) ([]domain.Account, error) {
	accounts, err := s.accounts.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("GetUserAccounts: %w", err)
	}
	return accounts, nil
}

// GetAccountForUser fetches an account and verifies ownership. A foreign
// account id comes back as not-found rather than forbidden, so ids can't
// be probed.
func (s *AccountService) GetAccountForUser(ctx context.Context, accountID, userID uuid.UUID) (*domain.Account, error) {
	acct, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("GetAccountForUser: %w", err)
	}
	if acct.UserID != userID {
		return nil, fmt.Errorf("GetAccountForUser: %w", domain.ErrNotFound)
	}
	return acct, nil
}

// GetStatement returns the ledger entries for an account the caller owns.
func (s *AccountService) GetStatement(ctx context.Context, accountID, userID uuid.UUID, limit, offset int) ([]domain.LedgerEntry, int, error) {
	if _, err := s.GetAccountForUser(ctx, accountID, userID); err != nil {
		return nil, 0, fmt.Errorf("GetStatement: %w", err)
	}

	entries, total, err := s.ledger.GetByAccountID(ctx, accountID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("GetStatement: %w", err)
	}
	return entries, total, nil
}

func generateAccountNumber() (string, error) {
	digits := make([]byte, 10)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("generateAccountNumber: %w", err)
		}
		digits[i] = byte('0' + n.Int64())
	}
	return "4789-" + string(digits[:4]) + "-" + string(digits[4:]), nil
}

func generateAdjustmentReference() (string, error) {
	digits := make([]byte, 12)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("generateAdjustmentReference: %w", err)
		}
		digits[i] = byte('0' + n.Int64())
	}
	return "ADJ-" + string(digits), nil
}
