package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/tomiwa-ade/demicredit/internal/money"
)

// BalanceCache keeps a short-lived copy of an account balance for the
// user-details endpoint. Strictly read-path; transfers always go to the
// locked row in the store.
type BalanceCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewBalanceCache(rdb *redis.Client, ttl time.Duration) *BalanceCache {
	return &BalanceCache{rdb: rdb, ttl: ttl}
}

func balanceKey(userID uuid.UUID) string {
	return "account-balance:" + userID.String()
}

func (c *BalanceCache) Get(ctx context.Context, userID uuid.UUID) (money.Money, bool, error) {
	s, err := c.rdb.Get(ctx, balanceKey(userID)).Result()
	if err == redis.Nil {
		return money.Money{}, false, nil
	}
	if err != nil {
		return money.Money{}, false, fmt.Errorf("Get: %w", err)
	}
	m, err := money.Parse(s)
	if err != nil {
		return money.Money{}, false, fmt.Errorf("Get: %w", err)
	}
	return m, true, nil
}

func (c *BalanceCache) Set(ctx context.Context, userID uuid.UUID, balance money.Money) error {
	if err := c.rdb.Set(ctx, balanceKey(userID), balance.String(), c.ttl).Err(); err != nil {
		return fmt.Errorf("Set: %w", err)
	}
	return nil
}

// Invalidate drops the cached balance; called after a committed transfer
// so the next read does not serve a stale value for the full TTL.
func (c *BalanceCache) Invalidate(ctx context.Context, userIDs ...uuid.UUID) error {
	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = balanceKey(id)
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("Invalidate: %w", err)
	}
	return nil
}
