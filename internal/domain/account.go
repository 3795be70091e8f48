package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/tomiwa-ade/demicredit/internal/money"
)

// Account holds one user's balance. Each user owns exactly one account,
// created together with the user at signup. The balance never goes
// negative at any committed state; debits are guarded both by the
// orchestrator's locked read and by the store's own check.
type Account struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Balance   money.Money
	CreatedAt time.Time
	UpdatedAt *time.Time
}
