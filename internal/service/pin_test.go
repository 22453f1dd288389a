package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/WorldBankfinancials/ledger-api/internal/domain"
)

type fakePinUserRepo struct {
	users map[uuid.UUID]*domain.User
}

func (f *fakePinUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (f *fakePinUserRepo) SetTransferPinHash(_ context.Context, id uuid.UUID, pinHash string) error {
	u, ok := f.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.TransferPinHash = &pinHash
	return nil
}

func newPinFixture(t *testing.T) (*PinService, *domain.User) {
	t.Helper()

	pw, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &domain.User{
		ID:           uuid.New(),
		Email:        "pin@test.com",
		PasswordHash: string(pw),
		Role:         domain.UserRoleCustomer,
		IsActive:     true,
	}
	repo := &fakePinUserRepo{users: map[uuid.UUID]*domain.User{user.ID: user}}
	return NewPinService(repo, bcrypt.MinCost), user
}

func TestSetTransferPin(t *testing.T) {
	svc, user := newPinFixture(t)
	ctx := context.Background()

	err := svc.SetTransferPin(ctx, user.ID, "password123", "4321")
	require.NoError(t, err)
	require.NotNil(t, user.TransferPinHash)

	assert.NoError(t, svc.VerifyTransferPin(ctx, user.ID, "4321"))
}

func TestSetTransferPin_RejectsBadFormat(t *testing.T) {
	svc, user := newPinFixture(t)
	ctx := context.Background()

	for _, pin := range []string{"", "123", "12345", "12a4", "١٢٣٤"} {
		err := svc.SetTransferPin(ctx, user.ID, "password123", pin)
		assert.ErrorIs(t, err, domain.ErrInvalidPin, "pin %q", pin)
	}
	assert.Nil(t, user.TransferPinHash)
}

func TestSetTransferPin_RequiresPassword(t *testing.T) {
	svc, user := newPinFixture(t)

	err := svc.SetTransferPin(context.Background(), user.ID, "wrong-password", "4321")
	require.ErrorIs(t, err, domain.ErrPinMismatch)
	assert.Nil(t, user.TransferPinHash)
}

func TestVerifyTransferPin(t *testing.T) {
	svc, user := newPinFixture(t)
	ctx := context.Background()

	t.Run("not set", func(t *testing.T) {
		err := svc.VerifyTransferPin(ctx, user.ID, "1234")
		assert.ErrorIs(t, err, domain.ErrPinNotSet)
	})

	require.NoError(t, svc.SetTransferPin(ctx, user.ID, "password123", "1234"))

	t.Run("correct", func(t *testing.T) {
		assert.NoError(t, svc.VerifyTransferPin(ctx, user.ID, "1234"))
	})

	t.Run("wrong pin", func(t *testing.T) {
		err := svc.VerifyTransferPin(ctx, user.ID, "9999")
		assert.ErrorIs(t, err, domain.ErrPinMismatch)
	})

	t.Run("unknown user collapses to mismatch", func(t *testing.T) {
		err := svc.VerifyTransferPin(ctx, uuid.New(), "1234")
		assert.ErrorIs(t, err, domain.ErrPinMismatch)
	})

	t.Run("inactive user", func(t *testing.T) {
		user.IsActive = false
		defer func() { user.IsActive = true }()

		err := svc.VerifyTransferPin(ctx, user.ID, "1234")
		assert.ErrorIs(t, err, domain.ErrUserInactive)
	})
}
