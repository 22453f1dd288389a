package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WorldBankfinancials/ledger-api/internal/domain"
)

func setupTransferCache(t *testing.T) *TransferCache {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return &TransferCache{client: client}
}

func TestTransferCache_RoundTrip(t *testing.T) {
	c := setupTransferCache(t)
	ctx := context.Background()

	_, _, ok := c.GetPending(ctx)
	assert.False(t, ok, "empty cache should miss")

	txns := []domain.Transaction{
		{ID: uuid.New(), Status: domain.TransactionStatusPendingApproval, Amount: 1_500_000, Currency: "USD"},
		{ID: uuid.New(), Status: domain.TransactionStatusPendingApproval, Amount: 1_200_000, Currency: "EUR"},
	}
	c.SetPending(ctx, txns, true)

	got, complete, ok := c.GetPending(ctx)
	require.True(t, ok)
	assert.True(t, complete)
	require.Len(t, got, 2)
	assert.Equal(t, txns[0].ID, got[0].ID)
	assert.Equal(t, txns[1].Amount, got[1].Amount)

	c.SetPending(ctx, txns, false)
	_, complete, ok = c.GetPending(ctx)
	require.True(t, ok)
	assert.False(t, complete, "truncated pages keep their marker")
}

func TestTransferCache_Invalidate(t *testing.T) {
	c := setupTransferCache(t)
	ctx := context.Background()

	c.SetPending(ctx, []domain.Transaction{{ID: uuid.New()}}, true)
	_, _, ok := c.GetPending(ctx)
	require.True(t, ok)

	c.InvalidatePending(ctx)

	_, _, ok = c.GetPending(ctx)
	assert.False(t, ok)
}

func TestTransferCache_Expiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	c := &TransferCache{client: client}
	ctx := context.Background()

	c.SetPending(ctx, []domain.Transaction{{ID: uuid.New()}}, true)
	mr.FastForward(pendingTTL + 1)

	_, _, ok := c.GetPending(ctx)
	assert.False(t, ok, "entry should expire at TTL")
}

// A nil cache is what main wires when REDIS_URL is unset; every method
// must be a safe no-op.
func TestTransferCache_NilIsNoOp(t *testing.T) {
	var c *TransferCache
	ctx := context.Background()

	_, _, ok := c.GetPending(ctx)
	assert.False(t, ok)
	c.SetPending(ctx, []domain.Transaction{{ID: uuid.New()}}, true)
	c.InvalidatePending(ctx)
	assert.NoError(t, c.Close())
}
