package transfer

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/WorldBankfinancials/ledger-api/internal/domain"
	"github.com/WorldBankfinancials/ledger-api/internal/logging"
)

type Request struct {
	UserID          uuid.UUID
	SourceAccountID uuid.UUID
	Method          domain.TransferMethod
	Amount          int64
	Currency        domain.Currency
	Purpose         string
	TransferPin     string

	RecipientName    string
	RecipientAccount string
	RecipientBank    string
	RecipientCountry string
	RecipientAddress string
	SwiftCode        string
	RoutingNumber    string
	CardNumber       string
	MobileProvider   string
}

// CreateTransfer validates and persists an outgoing transfer. The caller's
// PIN must verify before anything is written. Transfers at or above the
// approval threshold park at pending_approval with no funds moved; smaller
// transfers execute immediately and atomically.
func (s *Service) CreateTransfer(ctx context.Context, req Request) (*domain.Transaction, error) {
	log := logging.FromContext(ctx)

	source, err := s.resolveSourceAccount(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("CreateTransfer: %w", err)
	}

	if err := s.pins.VerifyTransferPin(ctx, req.UserID, req.TransferPin); err != nil {
		return nil, fmt.Errorf("CreateTransfer: %w", err)
	}

	if err := validateRequest(req); err != nil {
		return nil, fmt.Errorf("CreateTransfer: %w", err)
	}

	fee := s.FeeFor(req.Method, req.Amount)
	total := req.Amount + fee

	var txn *domain.Transaction
	if req.Amount >= s.config.ApprovalThreshold {
		txn, err = s.parkForApproval(ctx, req, source, fee, total)
	} else {
		txn, err = s.executeImmediate(ctx, req, source, fee, total)
	}
	if err != nil {
		return nil, fmt.Errorf("CreateTransfer: %w", err)
	}

	log.Info("transfer created",
		"transaction_id", txn.ID,
		"reference", txn.Reference,
		"status", txn.Status,
		"method", req.Method,
		"amount", req.Amount,
		"fee", fee,
		"currency", req.Currency,
	)

	return txn, nil
}

func (s *Service) resolveSourceAccount(ctx context.Context, req Request) (*domain.Account, error) {
	source, err := s.accounts.GetByID(ctx, req.SourceAccountID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("resolveSourceAccount: %w", domain.ErrAccountNotFound)
		}
		return nil, fmt.Errorf("resolveSourceAccount: %w", err)
	}

	if source.UserID != req.UserID {
		return nil, fmt.Errorf("resolveSourceAccount: %w", domain.ErrAccountNotFound)
	}
	if !source.IsActive {
		return nil, fmt.Errorf("resolveSourceAccount: %w", domain.ErrAccountInactive)
	}
	if source.Currency != req.Currency {
		return nil, fmt.Errorf("resolveSourceAccount: %w", domain.ErrInvalidCurrency)
	}

	return source, nil
}

// validateRequest enforces the per-method required fields: international
// transfers need full bank routing details, domestic need routing and
// account numbers, card needs the card number, mobile needs the number
// and provider.
func validateRequest(req Request) error {
	if req.Amount <= 0 {
		return fmt.Errorf("validateRequest: %w", domain.ErrInvalidAmount)
	}
	if !req.Currency.IsValid() {
		return fmt.Errorf("validateRequest: %w", domain.ErrInvalidCurrency)
	}
	if !req.Method.IsValid() {
		return fmt.Errorf("validateRequest: method: %w", domain.ErrInvalidRequest)
	}
	if req.RecipientName == "" {
		return fmt.Errorf("validateRequest: recipient name required: %w", domain.ErrInvalidRequest)
	}

	switch req.Method {
	case domain.TransferMethodInternational:
		if req.RecipientCountry == "" || req.RecipientAddress == "" ||
			req.RecipientBank == "" || req.SwiftCode == "" || req.RecipientAccount == "" {
			return fmt.Errorf("validateRequest: international transfer details incomplete: %w", domain.ErrInvalidRequest)
		}
	case domain.TransferMethodDomestic:
		if req.RoutingNumber == "" || req.RecipientAccount == "" {
			return fmt.Errorf("validateRequest: domestic transfer details incomplete: %w", domain.ErrInvalidRequest)
		}
	case domain.TransferMethodCard:
		if req.CardNumber == "" {
			return fmt.Errorf("validateRequest: card number required: %w", domain.ErrInvalidRequest)
		}
	case domain.TransferMethodMobile:
		if req.RecipientAccount == "" || req.MobileProvider == "" {
			return fmt.Errorf("validateRequest: mobile transfer details incomplete: %w", domain.ErrInvalidRequest)
		}
	}

	return nil
}

// parkForApproval records the transfer without moving funds. The balance
// check here is advisory; the authoritative check happens under the row
// lock at approval time.
func (s *Service) parkForApproval(ctx context.Context, req Request, source *domain.Account, fee, total int64) (*domain.Transaction, error) {
	if source.Balance < total {
		return nil, fmt.Errorf("parkForApproval: %w", domain.ErrInsufficientFunds)
	}

	txn, err := buildTransaction(req, fee, total, domain.TransactionStatusPendingApproval)
	if err != nil {
		return nil, fmt.Errorf("parkForApproval: %w", err)
	}

	if err := s.transactions.Create(ctx, nil, txn); err != nil {
		return nil, fmt.Errorf("parkForApproval: %w", err)
	}
	return txn, nil
}

func (s *Service) executeImmediate(ctx context.Context, req Request, source *domain.Account, fee, total int64) (*domain.Transaction, error) {
	settlement, err := s.accounts.GetSystemAccount(ctx, domain.AccountTypeSettlement, req.Currency)
	if err != nil {
		return nil, fmt.Errorf("executeImmediate: settlement account: %w", err)
	}
	feeAccount, err := s.accounts.GetSystemAccount(ctx, domain.AccountTypeFeeIncome, req.Currency)
	if err != nil {
		return nil, fmt.Errorf("executeImmediate: fee account: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("executeImmediate: begin tx: %w", err)
	}
	defer tx.Rollback()

	locked, err := lockAccountsInOrder(ctx, tx, s.accounts, source.ID, settlement.ID, feeAccount.ID)
	if err != nil {
		return nil, fmt.Errorf("executeImmediate: %w", err)
	}

	sender := locked[source.ID]
	settleAcct := locked[settlement.ID]
	feeAcct := locked[feeAccount.ID]

	if !sender.IsActive {
		return nil, fmt.Errorf("executeImmediate: %w", domain.ErrAccountInactive)
	}
	if sender.Balance-total < sender.MinimumBalance {
		return nil, fmt.Errorf("executeImmediate: %w", domain.ErrInsufficientFunds)
	}

	txn, err := buildTransaction(req, fee, total, domain.TransactionStatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("executeImmediate: %w", err)
	}
	now := txn.CreatedAt
	txn.CompletedAt = &now

	if err := s.transactions.Create(ctx, tx, txn); err != nil {
		return nil, fmt.Errorf("executeImmediate: create transaction: %w", err)
	}

	if err := writeTransferLedger(ctx, tx, s.ledger, txn, sender, settleAcct, feeAcct); err != nil {
		return nil, fmt.Errorf("executeImmediate: %w", err)
	}

	if err := s.accounts.UpdateBalance(ctx, tx, sender.ID, sender.Balance-total, sender.Version+1); err != nil {
		return nil, fmt.Errorf("executeImmediate: update sender: %w", err)
	}
	if err := s.accounts.UpdateBalance(ctx, tx, settleAcct.ID, settleAcct.Balance+txn.Amount, settleAcct.Version+1); err != nil {
		return nil, fmt.Errorf("executeImmediate: update settlement: %w", err)
	}
	if err := s.accounts.UpdateBalance(ctx, tx, feeAcct.ID, feeAcct.Balance+txn.Fee, feeAcct.Version+1); err != nil {
		return nil, fmt.Errorf("executeImmediate: update fee account: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("executeImmediate: commit: %w", err)
	}

	return txn, nil
}

func buildTransaction(req Request, fee, total int64, status domain.TransactionStatus) (*domain.Transaction, error) {
	ref, err := generateReference()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	method := req.Method
	txn := &domain.Transaction{
		ID:              uuid.New(),
		Reference:       ref,
		UserID:          req.UserID,
		SourceAccountID: req.SourceAccountID,
		Type:            domain.TransactionTypeTransfer,
		Method:          &method,
		Status:          status,
		Amount:          req.Amount,
		Fee:             fee,
		Total:           total,
		Currency:        req.Currency,
		Purpose:         req.Purpose,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	setIfNotEmpty(&txn.RecipientName, req.RecipientName)
	setIfNotEmpty(&txn.RecipientAccount, req.RecipientAccount)
	setIfNotEmpty(&txn.RecipientBank, req.RecipientBank)
	setIfNotEmpty(&txn.RecipientCountry, req.RecipientCountry)
	setIfNotEmpty(&txn.RecipientAddress, req.RecipientAddress)
	setIfNotEmpty(&txn.SwiftCode, req.SwiftCode)
	setIfNotEmpty(&txn.RoutingNumber, req.RoutingNumber)
	setIfNotEmpty(&txn.CardNumber, req.CardNumber)
	setIfNotEmpty(&txn.MobileProvider, req.MobileProvider)

	return txn, nil
}

func setIfNotEmpty(dst **string, v string) {
	if v != "" {
		*dst = &v
	}
}

func generateReference() (string, error) {
	digits := make([]byte, 12)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("generateReference: %w", err)
		}
		digits[i] = '0' + byte(n.Int64())
	}
	return "WB-" + string(digits), nil
}
