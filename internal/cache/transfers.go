package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/WorldBankfinancials/ledger-api/internal/domain"
	"github.com/WorldBankfinancials/ledger-api/internal/logging"
)

const (
	pendingTransfersKey = "transfers:pending_approval"
	pendingTTL          = 30 * time.Second
)

// TransferCache holds the admin console's pending-approval list so the
// dashboard poll doesn't hit postgres on every refresh. Every approve or
// reject invalidates it. A nil *TransferCache is a no-op, so the cache is
// optional at runtime.
type TransferCache struct {
	client *redis.Client
}

func NewTransferCache(redisURL string) (*TransferCache, error) {
	if redisURL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("NewTransferCache: parse url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("NewTransferCache: ping: %w", err)
	}

	return &TransferCache{client: client}, nil
}

// pendingPage wraps the cached slice with whether it held every pending
// transfer at fetch time, so short queues can still be served from cache
// regardless of the caller's page size.
type pendingPage struct {
	Transfers []domain.Transaction `json:"transfers"`
	Complete  bool                 `json:"complete"`
}

func (c *TransferCache) GetPending(ctx context.Context) (txns []domain.Transaction, complete, ok bool) {
	if c == nil {
		return nil, false, false
	}

	data, err := c.client.Get(ctx, pendingTransfersKey).Bytes()
	if err != nil {
		return nil, false, false
	}

	var page pendingPage
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, false, false
	}
	return page.Transfers, page.Complete, true
}

func (c *TransferCache) SetPending(ctx context.Context, txns []domain.Transaction, complete bool) {
	if c == nil {
		return
	}

	data, err := json.Marshal(pendingPage{Transfers: txns, Complete: complete})
	if err != nil {
		logging.FromContext(ctx).Warn("transfer cache marshal failed", "error", err)
		return
	}
	if err := c.client.Set(ctx, pendingTransfersKey, data, pendingTTL).Err(); err != nil {
		logging.FromContext(ctx).Warn("transfer cache write failed", "error", err)
	}
}

// InvalidatePending drops the cached list. Cache errors are logged, never
// surfaced: a stale list self-heals at TTL and must not fail an approval.
func (c *TransferCache) InvalidatePending(ctx context.Context) {
	if c == nil {
		return
	}

	if err := c.client.Del(ctx, pendingTransfersKey).Err(); err != nil {
		logging.FromContext(ctx).Warn("transfer cache invalidation failed", "error", err)
	}
}

func (c *TransferCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
