package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tomiwa-ade/demicredit/internal/domain"
	"github.com/tomiwa-ade/demicredit/internal/money"
)

func SeedTestUser(t *testing.T, db *sql.DB, email, username string) *domain.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	_, err = db.Exec(
		`INSERT INTO users (id, email, username, password_hash, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		u.ID, u.Email, u.Username, u.PasswordHash, u.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed test user %s: %v", email, err)
	}
	return u
}

func SeedTestAccount(t *testing.T, db *sql.DB, userID uuid.UUID, balanceUnits int64) *domain.Account {
	t.Helper()

	a := &domain.Account{
		ID:        uuid.New(),
		UserID:    userID,
		Balance:   money.FromUnits(balanceUnits),
		CreatedAt: time.Now().UTC(),
	}

	_, err := db.Exec(
		`INSERT INTO accounts (id, user_id, balance, created_at)
		 VALUES ($1, $2, $3, $4)`,
		a.ID, a.UserID, balanceUnits, a.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed test account %s: %v", userID, err)
	}
	return a
}

func GetAccountBalance(t *testing.T, db *sql.DB, accountID uuid.UUID) int64 {
	t.Helper()

	var balance int64
	err := db.QueryRow(`SELECT balance FROM accounts WHERE id = $1`, accountID).Scan(&balance)
	if err != nil {
		t.Fatalf("get account balance %s: %v", accountID, err)
	}
	return balance
}

func CountLedgerEntries(t *testing.T, db *sql.DB, userID uuid.UUID) int {
	t.Helper()

	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM transactions WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		t.Fatalf("count ledger entries for user %s: %v", userID, err)
	}
	return count
}
