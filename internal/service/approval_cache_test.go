package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WorldBankfinancials/ledger-api/internal/domain"
)

type fakePendingCache struct {
	txns     []domain.Transaction
	complete bool
	stored   bool
	sets     int
}

func (f *fakePendingCache) GetPending(_ context.Context) ([]domain.Transaction, bool, bool) {
	return f.txns, f.complete, f.stored
}

func (f *fakePendingCache) SetPending(_ context.Context, txns []domain.Transaction, complete bool) {
	f.txns = txns
	f.complete = complete
	f.stored = true
	f.sets++
}

func (f *fakePendingCache) InvalidatePending(_ context.Context) {
	f.txns = nil
	f.stored = false
}

type fakePendingRepo struct {
	pending []domain.Transaction
	queries int
}

func (f *fakePendingRepo) GetByID(_ context.Context, _ uuid.UUID) (*domain.Transaction, error) {
	return nil, domain.ErrNotFound
}

func (f *fakePendingRepo) GetForUpdate(_ context.Context, _ *sql.Tx, _ uuid.UUID) (*domain.Transaction, error) {
	return nil, domain.ErrNotFound
}

func (f *fakePendingRepo) ListByStatus(_ context.Context, _ domain.TransactionStatus, limit, offset int) ([]domain.Transaction, error) {
	f.queries++
	if offset >= len(f.pending) {
		return nil, nil
	}
	end := min(offset+limit, len(f.pending))
	return f.pending[offset:end], nil
}

func (f *fakePendingRepo) UpdateStatus(_ context.Context, _ *sql.Tx, _ uuid.UUID, _ domain.TransactionStatus, _ *uuid.UUID, _ *string, _ *time.Time) error {
	return nil
}

func pendingTransactions(n int) []domain.Transaction {
	txns := make([]domain.Transaction, n)
	for i := range txns {
		txns[i] = domain.Transaction{ID: uuid.New(), Status: domain.TransactionStatusPendingApproval}
	}
	return txns
}

func TestListPending_ShortQueueServedFromCache(t *testing.T) {
	repo := &fakePendingRepo{pending: pendingTransactions(3)}
	cache := &fakePendingCache{}
	svc := NewApprovalService(repo, nil, nil, nil, cache, nil)
	ctx := context.Background()

	first, err := svc.ListPending(ctx, 20, 0)
	require.NoError(t, err)
	require.Len(t, first, 3)
	assert.Equal(t, 1, repo.queries)
	assert.True(t, cache.complete, "a page shorter than the limit is a complete snapshot")

	// The usual admin poll: fewer pending transfers than the page size.
	second, err := svc.ListPending(ctx, 20, 0)
	require.NoError(t, err)
	assert.Len(t, second, 3)
	assert.Equal(t, 1, repo.queries, "repeat poll must hit the cache")
	assert.Equal(t, 1, cache.sets)
}

func TestListPending_CompleteSnapshotTrimsToSmallerLimit(t *testing.T) {
	repo := &fakePendingRepo{pending: pendingTransactions(5)}
	cache := &fakePendingCache{}
	svc := NewApprovalService(repo, nil, nil, nil, cache, nil)
	ctx := context.Background()

	_, err := svc.ListPending(ctx, 20, 0)
	require.NoError(t, err)

	page, err := svc.ListPending(ctx, 2, 0)
	require.NoError(t, err)
	assert.Len(t, page, 2)
	assert.Equal(t, 1, repo.queries)
}

func TestListPending_TruncatedPageMissesOnLargerLimit(t *testing.T) {
	repo := &fakePendingRepo{pending: pendingTransactions(10)}
	cache := &fakePendingCache{}
	svc := NewApprovalService(repo, nil, nil, nil, cache, nil)
	ctx := context.Background()

	first, err := svc.ListPending(ctx, 5, 0)
	require.NoError(t, err)
	require.Len(t, first, 5)
	assert.False(t, cache.complete)

	// More rows exist than the cached page holds; a wider request must
	// go back to the database.
	wider, err := svc.ListPending(ctx, 8, 0)
	require.NoError(t, err)
	assert.Len(t, wider, 8)
	assert.Equal(t, 2, repo.queries)
}

func TestListPending_OffsetBypassesCache(t *testing.T) {
	repo := &fakePendingRepo{pending: pendingTransactions(3)}
	cache := &fakePendingCache{}
	svc := NewApprovalService(repo, nil, nil, nil, cache, nil)
	ctx := context.Background()

	_, err := svc.ListPending(ctx, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.queries)
	assert.Zero(t, cache.sets, "later pages are never cached")
}
