package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID
	Email        string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

// UserAccount pairs a user with the id of their single account, as
// resolved from a username lookup during a transfer.
type UserAccount struct {
	UserID    uuid.UUID
	Username  string
	AccountID uuid.UUID
}
