package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/WorldBankfinancials/ledger-api/internal/domain"
	"github.com/WorldBankfinancials/ledger-api/internal/logging"
)

type pinUserRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	SetTransferPinHash(ctx context.Context, id uuid.UUID, pinHash string) error
}

// PinService guards sensitive actions behind the customer's 4-digit
// transfer PIN. The PIN is stored only as a bcrypt hash; verification
// failures are reported with a single generic error so a caller can't
// learn anything beyond pass/fail.
type PinService struct {
	users      pinUserRepo
	bcryptCost int
}

func NewPinService(users pinUserRepo, bcryptCost int) *PinService {
	return &PinService{users: users, bcryptCost: bcryptCost}
}

func validPinFormat(pin string) bool {
	if len(pin) != 4 {
		return false
	}
	for _, c := range pin {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// SetTransferPin sets or rotates the PIN. The account password must be
// presented so a hijacked session can't silently change the PIN.
func (s *PinService) SetTransferPin(ctx context.Context, userID uuid.UUID, password, pin string) error {
	if !validPinFormat(pin) {
		return fmt.Errorf("SetTransferPin: %w", domain.ErrInvalidPin)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("SetTransferPin: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return fmt.Errorf("SetTransferPin: %w", domain.ErrPinMismatch)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pin), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("SetTransferPin: hash: %w", err)
	}

	if err := s.users.SetTransferPinHash(ctx, userID, string(hash)); err != nil {
		return fmt.Errorf("SetTransferPin: %w", err)
	}

	logging.FromContext(ctx).Info("transfer pin updated", "user_id", userID)
	return nil
}

// VerifyTransferPin compares the supplied PIN against the stored hash.
// bcrypt's comparison is constant-time over the hash, and every failure
// path after the user lookup collapses to ErrPinMismatch.
func (s *PinService) VerifyTransferPin(ctx context.Context, userID uuid.UUID, pin string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("VerifyTransferPin: %w", domain.ErrPinMismatch)
		}
		return fmt.Errorf("VerifyTransferPin: %w", err)
	}

	if !user.IsActive {
		return fmt.Errorf("VerifyTransferPin: %w", domain.ErrUserInactive)
	}
	if user.TransferPinHash == nil {
		return fmt.Errorf("VerifyTransferPin: %w", domain.ErrPinNotSet)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*user.TransferPinHash), []byte(pin)); err != nil {
		return fmt.Errorf("VerifyTransferPin: %w", domain.ErrPinMismatch)
	}

	return nil
}
