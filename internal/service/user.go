package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tomiwa-ade/demicredit/internal/auth"
	"github.com/tomiwa-ade/demicredit/internal/domain"
	"github.com/tomiwa-ade/demicredit/internal/logging"
	"github.com/tomiwa-ade/demicredit/internal/money"
)

type userRepository interface {
	Create(ctx context.Context, tx *sql.Tx, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

type accountRepository interface {
	Create(ctx context.Context, tx *sql.Tx, account *domain.Account) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Account, error)
}

type balanceCache interface {
	Get(ctx context.Context, userID uuid.UUID) (money.Money, bool, error)
	Set(ctx context.Context, userID uuid.UUID, balance money.Money) error
}

type UserService struct {
	users     userRepository
	accounts  accountRepository
	balances  balanceCache
	db        *sql.DB
	jwtSecret string
	jwtExpiry time.Duration
}

func NewUserService(users userRepository, accounts accountRepository, balances balanceCache, db *sql.DB, jwtSecret string, jwtExpiry time.Duration) *UserService {
	return &UserService{
		users:     users,
		accounts:  accounts,
		balances:  balances,
		db:        db,
		jwtSecret: jwtSecret,
		jwtExpiry: jwtExpiry,
	}
}

type SignupRequest struct {
	Email    string
	Username string
	Password string
}

type AuthResult struct {
	User  *domain.User
	Token string
}

// Signup creates the user and their zero-balance account in one
// transaction: an account can never exist without its owner, nor a user
// without an account.
func (s *UserService) Signup(ctx context.Context, req SignupRequest) (*AuthResult, error) {
	log := logging.FromContext(ctx)

	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("Signup: %w", domain.ErrEmailTaken)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("Signup: check email: %w", err)
	}

	if _, err := s.users.GetByUsername(ctx, req.Username); err == nil {
		return nil, fmt.Errorf("Signup: %w", domain.ErrUsernameTaken)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("Signup: check username: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("Signup: hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New(),
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: string(hash),
		CreatedAt:    now,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("Signup: begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := s.users.Create(ctx, tx, user); err != nil {
		return nil, fmt.Errorf("Signup: %w", err)
	}

	account := &domain.Account{
		ID:        uuid.New(),
		UserID:    user.ID,
		Balance:   money.Money{},
		CreatedAt: now,
	}
	if err := s.accounts.Create(ctx, tx, account); err != nil {
		return nil, fmt.Errorf("Signup: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("Signup: commit: %w", err)
	}

	token, err := auth.GenerateToken(user.ID, user.Username, s.jwtSecret, s.jwtExpiry)
	if err != nil {
		return nil, fmt.Errorf("Signup: %w", err)
	}

	log.Info("user signed up", "user_id", user.ID, "account_id", account.ID)

	return &AuthResult{User: user, Token: token}, nil
}

// Token issues a JWT for an already-authenticated user.
func (s *UserService) Token(user *domain.User) (string, error) {
	token, err := auth.GenerateToken(user.ID, user.Username, s.jwtSecret, s.jwtExpiry)
	if err != nil {
		return "", fmt.Errorf("Token: %w", err)
	}
	return token, nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("GetByEmail: %w", err)
	}
	return user, nil
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("GetByUsername: %w", err)
	}
	return user, nil
}

type UserDetails struct {
	User    *domain.User
	Balance money.Money
}

// DetailsWithBalance returns the caller's profile and balance. The
// balance is served from the short-lived cache when possible; a cache
// outage only costs the read-through.
func (s *UserService) DetailsWithBalance(ctx context.Context, userID uuid.UUID) (*UserDetails, error) {
	log := logging.FromContext(ctx)

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("DetailsWithBalance: %w", err)
	}

	balance, hit, err := s.balances.Get(ctx, userID)
	if err != nil {
		log.Warn("balance cache read failed", "error", err)
	}
	if !hit {
		account, err := s.accounts.GetByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("DetailsWithBalance: %w", domain.ErrAccountNotFound)
			}
			return nil, fmt.Errorf("DetailsWithBalance: %w", err)
		}
		balance = account.Balance
		if err := s.balances.Set(ctx, userID, balance); err != nil {
			log.Warn("balance cache write failed", "error", err)
		}
	}

	return &UserDetails{User: user, Balance: balance}, nil
}
