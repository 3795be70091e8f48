package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/tomiwa-ade/demicredit/internal/money"
)

// TransferGuard suppresses duplicate in-flight transfers. Acquisition is
// a single SET NX against the shared cache, never a get followed by a
// set, which would leave a window where two identical requests both read
// "absent" and both proceed. The guard is best-effort duplicate
// suppression only; balance correctness is enforced by the row lock in
// the account store.
type TransferGuard struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewTransferGuard(rdb *redis.Client, ttl time.Duration) *TransferGuard {
	return &TransferGuard{rdb: rdb, ttl: ttl}
}

// TransferFingerprint derives the guard key for a transfer. When the
// caller supplies an idempotency key it is folded in, so two transfers a
// user genuinely intends to send twice can be distinguished; without one
// the fingerprint degrades to (sender, receiver, amount).
func TransferFingerprint(senderID, receiverID uuid.UUID, amount money.Money, idempotencyKey string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s|%s", senderID, receiverID, amount.String(), idempotencyKey)
	return "transfer:" + hex.EncodeToString(h.Sum(nil))
}

// TryAcquire atomically checks-and-sets the marker. It returns false when
// a transfer with the same fingerprint is already in flight.
func (g *TransferGuard) TryAcquire(ctx context.Context, fingerprint string) (bool, error) {
	acquired, err := g.rdb.SetNX(ctx, fingerprint, "1", g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("TryAcquire: %w", err)
	}
	return acquired, nil
}

// Release clears the marker so a retried identical transfer is admitted
// once the first has finished. The TTL covers the case where a crashed
// orchestrator never gets here.
func (g *TransferGuard) Release(ctx context.Context, fingerprint string) error {
	if err := g.rdb.Del(ctx, fingerprint).Err(); err != nil {
		return fmt.Errorf("Release: %w", err)
	}
	return nil
}
