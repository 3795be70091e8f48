package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginLimiter counts failed login attempts per email. The counter is
// bumped with an atomic INCR, not a read-modify-write, so concurrent
// failures cannot lose updates.
type LoginLimiter struct {
	rdb *redis.Client
	max int
	ttl time.Duration
}

func NewLoginLimiter(rdb *redis.Client, maxAttempts int, ttl time.Duration) *LoginLimiter {
	return &LoginLimiter{rdb: rdb, max: maxAttempts, ttl: ttl}
}

func loginKey(email string) string {
	return "login-retry:" + email
}

// Fail records one failed attempt and reports how many attempts remain
// before lockout. The TTL is attached on first failure only, so the
// window does not slide on every retry.
func (l *LoginLimiter) Fail(ctx context.Context, email string) (remaining int, locked bool, err error) {
	key := loginKey(email)

	pipe := l.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, l.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, false, fmt.Errorf("Fail: %w", err)
	}

	attempts := int(incr.Val())
	remaining = l.max - attempts
	if remaining < 0 {
		remaining = 0
	}
	return remaining, attempts >= l.max, nil
}

// Locked reports whether the email has reached the lockout threshold.
func (l *LoginLimiter) Locked(ctx context.Context, email string) (bool, error) {
	attempts, err := l.rdb.Get(ctx, loginKey(email)).Int()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("Locked: %w", err)
	}
	return attempts >= l.max, nil
}

// Reset clears the counter after a successful login.
func (l *LoginLimiter) Reset(ctx context.Context, email string) error {
	if err := l.rdb.Del(ctx, loginKey(email)).Err(); err != nil {
		return fmt.Errorf("Reset: %w", err)
	}
	return nil
}
