package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type AdminActionType string

const (
	AdminActionApproveTransfer   AdminActionType = "approve_transfer"
	AdminActionRejectTransfer    AdminActionType = "reject_transfer"
	AdminActionBalanceAdjustment AdminActionType = "balance_adjustment"
	AdminActionVerifyCustomer    AdminActionType = "verify_customer"
	AdminActionUpdateTicket      AdminActionType = "update_ticket"
)

// AdminAction is the audit trail row written alongside every
// admin-initiated mutation, in the same database transaction.
type AdminAction struct {
	ID         uuid.UUID
	AdminID    uuid.UUID
	Action     AdminActionType
	TargetType string
	TargetID   uuid.UUID
	Notes      *string
	Payload    json.RawMessage
	CreatedAt  time.Time
}
