package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/tomiwa-ade/demicredit/internal/domain"
	"github.com/tomiwa-ade/demicredit/internal/money"
)

const accountColumns = `id, user_id, balance, created_at, updated_at`

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create opens a zero-balance account inside the caller's transaction.
// A second account for the same owner fails with ErrDuplicateAccount.
func (r *AccountRepository) Create(ctx context.Context, tx *sql.Tx, account *domain.Account) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO accounts (id, user_id, balance, created_at)
		VALUES ($1, $2, $3, $4)`,
		account.ID, account.UserID, account.Balance, account.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "accounts_user_id_key") {
			return fmt.Errorf("Create: %w", domain.ErrDuplicateAccount)
		}
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

// GetByUserID is a plain snapshot read; it takes no lock and must not be
// used to decide a debit.
func (r *AccountRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE user_id = $1`, userID,
	)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByUserID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByUserID: %w", err)
	}
	return a, nil
}

// GetForUpdate reads the owner's account under a pessimistic row lock.
// The lock is held until the enclosing transaction ends, so no other
// transfer can read or change this balance in between.
func (r *AccountRepository) GetForUpdate(ctx context.Context, tx *sql.Tx, userID uuid.UUID) (*domain.Account, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE user_id = $1 FOR UPDATE`, userID,
	)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetForUpdate: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetForUpdate: %w", err)
	}
	return a, nil
}

// Debit subtracts amount and returns the new balance. The predicate
// re-checks the balance so the store upholds the non-negative invariant
// even if a caller skipped the locked read.
func (r *AccountRepository) Debit(ctx context.Context, tx *sql.Tx, accountID uuid.UUID, amount money.Money) (money.Money, error) {
	var balance money.Money
	err := tx.QueryRowContext(ctx,
		`UPDATE accounts SET balance = balance - $1, updated_at = now()
		WHERE id = $2 AND balance >= $1
		RETURNING balance`,
		amount, accountID,
	).Scan(&balance)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return money.Money{}, fmt.Errorf("Debit: %w", err)
	}

	// no row matched: either the account is missing or the balance check failed
	var exists bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)`, accountID,
	).Scan(&exists); err != nil {
		return money.Money{}, fmt.Errorf("Debit: %w", err)
	}
	if !exists {
		return money.Money{}, fmt.Errorf("Debit: %w", domain.ErrAccountNotFound)
	}
	return money.Money{}, fmt.Errorf("Debit: %w", domain.ErrInsufficientFunds)
}

// Credit adds amount and returns the new balance.
func (r *AccountRepository) Credit(ctx context.Context, tx *sql.Tx, accountID uuid.UUID, amount money.Money) (money.Money, error) {
	var balance money.Money
	err := tx.QueryRowContext(ctx,
		`UPDATE accounts SET balance = balance + $1, updated_at = now()
		WHERE id = $2
		RETURNING balance`,
		amount, accountID,
	).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return money.Money{}, fmt.Errorf("Credit: %w", domain.ErrAccountNotFound)
		}
		return money.Money{}, fmt.Errorf("Credit: %w", err)
	}
	return balance, nil
}

func scanAccount(s scanner) (*domain.Account, error) {
	var a domain.Account
	err := s.Scan(
		&a.ID, &a.UserID, &a.Balance, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
