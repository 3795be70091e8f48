package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/tomiwa-ade/demicredit/internal/money"
)

type TransactionType string

const (
	TransactionTypeDebit  TransactionType = "debit"
	TransactionTypeCredit TransactionType = "credit"
)

func (t TransactionType) IsValid() bool {
	return t == TransactionTypeDebit || t == TransactionTypeCredit
}

type TransactionStatus string

const (
	TransactionStatusPending    TransactionStatus = "pending"
	TransactionStatusSuccessful TransactionStatus = "successful"
	TransactionStatusFailed     TransactionStatus = "failed"
)

func (s TransactionStatus) IsValid() bool {
	switch s {
	case TransactionStatusPending, TransactionStatusSuccessful, TransactionStatusFailed:
		return true
	}
	return false
}

// Transaction is one side of a transfer in the append-only ledger. Every
// completed transfer produces exactly two rows sharing the same amount
// and sender/receiver account pair: a debit for the sender and a credit
// for the receiver, each recording that account's balance before and
// after the move. Rows are immutable once written.
type Transaction struct {
	ID                uuid.UUID
	UserID            uuid.UUID
	SenderAccountID   uuid.UUID
	ReceiverAccountID uuid.UUID
	Type              TransactionType
	Status            TransactionStatus
	Reference         string
	Amount            money.Money
	BalanceBefore     money.Money
	BalanceAfter      money.Money
	Note              *string
	Metadata          *string
	CreatedAt         time.Time
	UpdatedAt         *time.Time
}
