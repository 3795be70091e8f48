package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tomiwa-ade/demicredit/internal/auth"
	"github.com/tomiwa-ade/demicredit/internal/domain"
	"github.com/tomiwa-ade/demicredit/internal/money"
	"github.com/tomiwa-ade/demicredit/internal/repository"
	"github.com/tomiwa-ade/demicredit/internal/service"
	"github.com/tomiwa-ade/demicredit/internal/testutil"
)

// memoryBalances stands in for the redis balance cache.
type memoryBalances struct {
	mu     sync.Mutex
	values map[uuid.UUID]money.Money
}

func newMemoryBalances() *memoryBalances {
	return &memoryBalances{values: make(map[uuid.UUID]money.Money)}
}

func (c *memoryBalances) Get(ctx context.Context, userID uuid.UUID) (money.Money, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.values[userID]
	return m, ok, nil
}

func (c *memoryBalances) Set(ctx context.Context, userID uuid.UUID, balance money.Money) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[userID] = balance
	return nil
}

const testSecret = "test-secret"

func TestSignup_CreatesUserAndAccount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := service.NewUserService(
		repository.NewUserRepository(db),
		repository.NewAccountRepository(db),
		newMemoryBalances(),
		db, testSecret, time.Hour,
	)
	ctx := context.Background()

	result, err := svc.Signup(ctx, service.SignupRequest{
		Email:    "alice@test.com",
		Username: "alice",
		Password: "password123",
	})

	require.NoError(t, err)
	assert.Equal(t, "alice@test.com", result.User.Email)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(result.User.PasswordHash), []byte("password123")))

	identity, err := auth.ValidateToken(result.Token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, identity.UserID)
	assert.Equal(t, "alice", identity.Username)

	var balance int64
	err = db.QueryRow(`SELECT balance FROM accounts WHERE user_id = $1`, result.User.ID).Scan(&balance)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)
}

func TestSignup_RejectsDuplicates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := service.NewUserService(
		repository.NewUserRepository(db),
		repository.NewAccountRepository(db),
		newMemoryBalances(),
		db, testSecret, time.Hour,
	)
	ctx := context.Background()

	_, err := svc.Signup(ctx, service.SignupRequest{
		Email:    "alice@test.com",
		Username: "alice",
		Password: "password123",
	})
	require.NoError(t, err)

	_, err = svc.Signup(ctx, service.SignupRequest{
		Email:    "alice@test.com",
		Username: "alice2",
		Password: "password123",
	})
	require.ErrorIs(t, err, domain.ErrEmailTaken)

	_, err = svc.Signup(ctx, service.SignupRequest{
		Email:    "alice2@test.com",
		Username: "alice",
		Password: "password123",
	})
	require.ErrorIs(t, err, domain.ErrUsernameTaken)
}

func TestDetailsWithBalance_ReadThroughCache(t *testing.T) {
	db := testutil.SetupTestDB(t)
	balances := newMemoryBalances()
	svc := service.NewUserService(
		repository.NewUserRepository(db),
		repository.NewAccountRepository(db),
		balances,
		db, testSecret, time.Hour,
	)
	ctx := context.Background()

	user := testutil.SeedTestUser(t, db, "bob@test.com", "bob")
	testutil.SeedTestAccount(t, db, user.ID, 12_345)

	details, err := svc.DetailsWithBalance(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "123.45", details.Balance.String())

	// cached copy is served even after the row changes
	_, err = db.Exec(`UPDATE accounts SET balance = 99 WHERE user_id = $1`, user.ID)
	require.NoError(t, err)

	details, err = svc.DetailsWithBalance(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "123.45", details.Balance.String())
}
