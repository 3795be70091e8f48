// Package transfer orchestrates moving funds between two user accounts:
// validation, duplicate suppression, the locked balance check, both
// balance mutations and both ledger rows, all inside one database
// transaction.
package transfer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/tomiwa-ade/demicredit/internal/auth"
	"github.com/tomiwa-ade/demicredit/internal/cache"
	"github.com/tomiwa-ade/demicredit/internal/domain"
	"github.com/tomiwa-ade/demicredit/internal/logging"
	"github.com/tomiwa-ade/demicredit/internal/money"
	"github.com/tomiwa-ade/demicredit/internal/pagination"
	"github.com/tomiwa-ade/demicredit/internal/repository"
)

type userRepo interface {
	GetAccountByUsername(ctx context.Context, username string) (*domain.UserAccount, error)
}

type accountRepo interface {
	GetForUpdate(ctx context.Context, tx *sql.Tx, userID uuid.UUID) (*domain.Account, error)
	Debit(ctx context.Context, tx *sql.Tx, accountID uuid.UUID, amount money.Money) (money.Money, error)
	Credit(ctx context.Context, tx *sql.Tx, accountID uuid.UUID, amount money.Money) (money.Money, error)
}

type ledgerRepo interface {
	Create(ctx context.Context, tx *sql.Tx, entry *domain.Transaction) error
	History(ctx context.Context, userID uuid.UUID, filter repository.HistoryFilter) (*pagination.Result[domain.Transaction], error)
}

type guard interface {
	TryAcquire(ctx context.Context, fingerprint string) (bool, error)
	Release(ctx context.Context, fingerprint string) error
}

type balanceInvalidator interface {
	Invalidate(ctx context.Context, userIDs ...uuid.UUID) error
}

type Service struct {
	users    userRepo
	accounts accountRepo
	ledger   ledgerRepo
	guard    guard
	balances balanceInvalidator
	db       *sql.DB
}

// NewService wires the orchestrator. balances may be nil when no balance
// cache is in play.
func NewService(users userRepo, accounts accountRepo, ledger ledgerRepo, g guard, balances balanceInvalidator, db *sql.DB) *Service {
	return &Service{
		users:    users,
		accounts: accounts,
		ledger:   ledger,
		guard:    g,
		balances: balances,
		db:       db,
	}
}

// Request is a transfer as it arrives from the boundary. The optional
// IdempotencyKey lets a caller distinguish two transfers it genuinely
// means to send twice.
type Request struct {
	ReceiverUsername string
	Amount           money.Money
	Note             *string
	IdempotencyKey   string
}

// Transfer moves funds from the authenticated sender to the named
// receiver. Business rejections come back as a tagged Outcome; only
// transport failures (storage or cache down) are returned as errors,
// wrapped in domain.ErrStorageUnavailable or domain.ErrCacheUnavailable.
func (s *Service) Transfer(ctx context.Context, sender auth.Identity, req Request) (*Outcome, error) {
	log := logging.FromContext(ctx)

	if !req.Amount.IsPositive() {
		return reject(StatusBadRequest, CodeInvalidAmount, "Amount must be greater than zero"), nil
	}
	if req.ReceiverUsername == sender.Username {
		return reject(StatusBadRequest, CodeSelfTransfer, "You cannot transfer funds to yourself"), nil
	}

	receiver, err := s.users.GetAccountByUsername(ctx, req.ReceiverUsername)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return reject(StatusNotFound, CodeReceiverNotFound, "Please enter a valid receiver username"), nil
		}
		return nil, fmt.Errorf("Transfer: resolve receiver: %w: %w", domain.ErrStorageUnavailable, err)
	}

	fingerprint := cache.TransferFingerprint(sender.UserID, receiver.UserID, req.Amount, req.IdempotencyKey)
	acquired, err := s.guard.TryAcquire(ctx, fingerprint)
	if err != nil {
		// fail closed: without the guard, a caller retry could double-spend
		return nil, fmt.Errorf("Transfer: %w: %w", domain.ErrCacheUnavailable, err)
	}
	if !acquired {
		return reject(StatusConflict, CodeTransferInProgress, "Transfer already in progress"), nil
	}
	defer func() {
		if err := s.guard.Release(ctx, fingerprint); err != nil {
			log.Warn("failed to release transfer guard", "fingerprint", fingerprint, "error", err)
		}
	}()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("Transfer: begin tx: %w: %w", domain.ErrStorageUnavailable, err)
	}
	defer tx.Rollback()

	senderAccount, err := s.accounts.GetForUpdate(ctx, tx, sender.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return reject(StatusNotFound, CodeAccountNotFound, "Sender account not found"), nil
		}
		return nil, fmt.Errorf("Transfer: lock sender account: %w: %w", domain.ErrStorageUnavailable, err)
	}

	if senderAccount.Balance.LessThan(req.Amount) {
		return reject(StatusBadRequest, CodeInsufficientFunds, "Insufficient funds"), nil
	}

	senderBalance, err := s.accounts.Debit(ctx, tx, senderAccount.ID, req.Amount)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientFunds) {
			return reject(StatusBadRequest, CodeInsufficientFunds, "Insufficient funds"), nil
		}
		return nil, fmt.Errorf("Transfer: debit sender: %w: %w", domain.ErrStorageUnavailable, err)
	}

	receiverBalance, err := s.accounts.Credit(ctx, tx, receiver.AccountID, req.Amount)
	if err != nil {
		return nil, fmt.Errorf("Transfer: credit receiver: %w: %w", domain.ErrStorageUnavailable, err)
	}
	receiverBefore, err := receiverBalance.Sub(req.Amount)
	if err != nil {
		return nil, fmt.Errorf("Transfer: %w", err)
	}

	credit := &domain.Transaction{
		UserID:            receiver.UserID,
		SenderAccountID:   senderAccount.ID,
		ReceiverAccountID: receiver.AccountID,
		Type:              domain.TransactionTypeCredit,
		Status:            domain.TransactionStatusSuccessful,
		Amount:            req.Amount,
		BalanceBefore:     receiverBefore,
		BalanceAfter:      receiverBalance,
		Note:              req.Note,
	}
	if err := s.ledger.Create(ctx, tx, credit); err != nil {
		return nil, fmt.Errorf("Transfer: record credit: %w: %w", domain.ErrStorageUnavailable, err)
	}

	debit := &domain.Transaction{
		UserID:            sender.UserID,
		SenderAccountID:   senderAccount.ID,
		ReceiverAccountID: receiver.AccountID,
		Type:              domain.TransactionTypeDebit,
		Status:            domain.TransactionStatusSuccessful,
		Amount:            req.Amount,
		BalanceBefore:     senderAccount.Balance,
		BalanceAfter:      senderBalance,
		Note:              req.Note,
	}
	if err := s.ledger.Create(ctx, tx, debit); err != nil {
		return nil, fmt.Errorf("Transfer: record debit: %w: %w", domain.ErrStorageUnavailable, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("Transfer: commit: %w: %w", domain.ErrStorageUnavailable, err)
	}

	if s.balances != nil {
		if err := s.balances.Invalidate(ctx, sender.UserID, receiver.UserID); err != nil {
			log.Warn("failed to invalidate cached balances", "error", err)
		}
	}

	log.Info("transfer completed",
		"sender_account", senderAccount.ID,
		"receiver_account", receiver.AccountID,
		"amount", req.Amount.String(),
		"reference", debit.Reference,
	)

	return &Outcome{
		Status:  StatusSuccessful,
		Message: "Transfer completed successfully",
		Entry:   debit,
	}, nil
}

// History returns one page of the owner's ledger. An empty result is
// still a success at the orchestration level.
func (s *Service) History(ctx context.Context, ownerID uuid.UUID, filter repository.HistoryFilter) (*pagination.Result[domain.Transaction], error) {
	page, err := s.ledger.History(ctx, ownerID, filter)
	if err != nil {
		return nil, fmt.Errorf("History: %w: %w", domain.ErrStorageUnavailable, err)
	}
	return page, nil
}
