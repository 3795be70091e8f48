package cache

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomiwa-ade/demicredit/internal/money"
)

func TestTransferFingerprint(t *testing.T) {
	sender := uuid.New()
	receiver := uuid.New()
	amount := money.FromUnits(25000)

	fp := TransferFingerprint(sender, receiver, amount, "")
	assert.Equal(t, fp, TransferFingerprint(sender, receiver, amount, ""))

	// any change to the parameters yields a different key
	assert.NotEqual(t, fp, TransferFingerprint(receiver, sender, amount, ""))
	assert.NotEqual(t, fp, TransferFingerprint(sender, receiver, money.FromUnits(25001), ""))

	// a caller-supplied idempotency key distinguishes two transfers that
	// are otherwise identical
	withKey := TransferFingerprint(sender, receiver, amount, "order-81")
	assert.NotEqual(t, fp, withKey)
	assert.NotEqual(t, withKey, TransferFingerprint(sender, receiver, amount, "order-82"))

	require.Contains(t, fp, "transfer:")
}
