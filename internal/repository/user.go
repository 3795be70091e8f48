package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/tomiwa-ade/demicredit/internal/domain"
)

const userColumns = `id, email, username, password_hash, created_at, updated_at`

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts the user inside the caller's transaction; signup creates
// the user and their account as one atomic unit.
func (r *UserRepository) Create(ctx context.Context, tx *sql.Tx, user *domain.User) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO users (id, email, username, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		user.ID, user.Email, user.Username, user.PasswordHash, user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "users_email_key") {
			return fmt.Errorf("Create: %w", domain.ErrEmailTaken)
		}
		if isUniqueViolation(err, "users_username_key") {
			return fmt.Errorf("Create: %w", domain.ErrUsernameTaken)
		}
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id,
	)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email,
	)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByEmail: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByEmail: %w", err)
	}
	return u, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username,
	)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByUsername: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByUsername: %w", err)
	}
	return u, nil
}

// GetAccountByUsername resolves a transfer receiver: the user plus the id
// of their single account.
func (r *UserRepository) GetAccountByUsername(ctx context.Context, username string) (*domain.UserAccount, error) {
	var ua domain.UserAccount
	err := r.db.QueryRowContext(ctx,
		`SELECT u.id, u.username, a.id
		FROM users u
		JOIN accounts a ON a.user_id = u.id
		WHERE u.username = $1`,
		username,
	).Scan(&ua.UserID, &ua.Username, &ua.AccountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetAccountByUsername: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetAccountByUsername: %w", err)
	}
	return &ua, nil
}

func scanUser(s scanner) (*domain.User, error) {
	var u domain.User
	err := s.Scan(
		&u.ID, &u.Email, &u.Username, &u.PasswordHash,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
