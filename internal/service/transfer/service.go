package transfer

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/WorldBankfinancials/ledger-api/internal/config"
	"github.com/WorldBankfinancials/ledger-api/internal/domain"
)

type transactionRepo interface {
	Create(ctx context.Context, tx *sql.Tx, txn *domain.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Transaction, int, error)
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

type pinVerifier interface {
	VerifyTransferPin(ctx context.Context, userID uuid.UUID, pin string) error
}

type Service struct {
	transactions transactionRepo
	accounts     accountRepo
	ledger       ledgerRepo
	pins         pinVerifier
	db           *sql.DB
	config       *config.Config
}

func NewService(
	transactions transactionRepo,
	accounts accountRepo,
	ledger ledgerRepo,
	pins pinVerifier,
	db *sql.DB,
	cfg *config.Config,
) *Service {
	return &Service{
		transactions: transactions,
		accounts:     accounts,
		ledger:       ledger,
		pins:         pins,
		db:           db,
		config:       cfg,
	}
}

func (s *Service) GetTransferForUser(ctx context.Context, transferID, userID uuid.UUID) (*domain.Transaction, error) {
	t, err := s.transactions.GetByID(ctx, transferID)
	if err != nil {
		return nil, fmt.Errorf("GetTransferForUser: %w", err)
	}
	if t.UserID != userID {
		return nil, fmt.Errorf("GetTransferForUser: %w", domain.ErrNotFound)
	}
	return t, nil
}

func (s *Service) ListTransfersForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Transaction, int, error) {
	txns, total, err := s.transactions.ListByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("ListTransfersForUser: %w", err)
	}
	return txns, total, nil
}
