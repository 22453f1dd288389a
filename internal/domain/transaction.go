package domain

import (
	"time"

	"github.com/google/uuid"
)

type TransactionType string

const (
	TransactionTypeCredit   TransactionType = "credit"
	TransactionTypeDebit    TransactionType = "debit"
	TransactionTypeTransfer TransactionType = "transfer"
)

type TransactionStatus string

const (
	TransactionStatusPending         TransactionStatus = "pending"
	TransactionStatusPendingApproval TransactionStatus = "pending_approval"
	TransactionStatusCompleted       TransactionStatus = "completed"
	TransactionStatusRejected        TransactionStatus = "rejected"
	TransactionStatusFailed          TransactionStatus = "failed"
)

// IsTerminal reports whether a transaction can no longer change. A
// transaction's effect on balances is applied at most once, on the
// transition into completed.
func (s TransactionStatus) IsTerminal() bool {
	switch s {
	case TransactionStatusCompleted, TransactionStatusRejected, TransactionStatusFailed:
		return true
	}
	return false
}

type TransferMethod string

const (
	TransferMethodInternational TransferMethod = "international"
	TransferMethodDomestic      TransferMethod = "domestic"
	TransferMethodCard          TransferMethod = "card"
	TransferMethodMobile        TransferMethod = "mobile"
)

func (m TransferMethod) IsValid() bool {
	switch m {
	case TransferMethodInternational, TransferMethodDomestic, TransferMethodCard, TransferMethodMobile:
		return true
	}
	return false
}

type Transaction struct {
	ID              uuid.UUID
	Reference       string
	UserID          uuid.UUID
	SourceAccountID uuid.UUID
	Type            TransactionType
	Method          *TransferMethod
	Status          TransactionStatus
	Amount          int64
	Fee             int64
	Total           int64
	Currency        Currency
	Purpose         string
	Description     *string

	RecipientName    *string
	RecipientAccount *string
	RecipientBank    *string
	RecipientCountry *string
	RecipientAddress *string
	SwiftCode        *string
	RoutingNumber    *string
	CardNumber       *string
	MobileProvider   *string

	AdminID     *uuid.UUID
	AdminNotes  *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}
