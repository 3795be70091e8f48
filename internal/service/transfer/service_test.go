package transfer

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomiwa-ade/demicredit/internal/auth"
	"github.com/tomiwa-ade/demicredit/internal/domain"
	"github.com/tomiwa-ade/demicredit/internal/money"
)

type stubUsers struct {
	account *domain.UserAccount
	err     error
}

func (s *stubUsers) GetAccountByUsername(ctx context.Context, username string) (*domain.UserAccount, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.account, nil
}

type stubGuard struct {
	acquired bool
	err      error

	acquireCalls int
	releaseCalls int
}

func (s *stubGuard) TryAcquire(ctx context.Context, fingerprint string) (bool, error) {
	s.acquireCalls++
	return s.acquired, s.err
}

func (s *stubGuard) Release(ctx context.Context, fingerprint string) error {
	s.releaseCalls++
	return nil
}

func mustMoney(t *testing.T, s string) money.Money {
	t.Helper()
	m, err := money.Parse(s)
	require.NoError(t, err)
	return m
}

func TestTransfer_RejectsBeforeTouchingStorage(t *testing.T) {
	sender := auth.Identity{UserID: uuid.New(), Username: "alice"}
	receiver := &domain.UserAccount{UserID: uuid.New(), Username: "bob", AccountID: uuid.New()}

	tests := []struct {
		name       string
		users      *stubUsers
		guard      *stubGuard
		req        Request
		wantStatus Status
		wantCode   string
	}{
		{
			name:       "zero amount",
			users:      &stubUsers{account: receiver},
			guard:      &stubGuard{acquired: true},
			req:        Request{ReceiverUsername: "bob", Amount: money.Money{}},
			wantStatus: StatusBadRequest,
			wantCode:   CodeInvalidAmount,
		},
		{
			name:       "self transfer",
			users:      &stubUsers{account: receiver},
			guard:      &stubGuard{acquired: true},
			req:        Request{ReceiverUsername: "alice", Amount: mustMoney(t, "10.00")},
			wantStatus: StatusBadRequest,
			wantCode:   CodeSelfTransfer,
		},
		{
			name:       "receiver not found",
			users:      &stubUsers{err: domain.ErrNotFound},
			guard:      &stubGuard{acquired: true},
			req:        Request{ReceiverUsername: "ghost", Amount: mustMoney(t, "10.00")},
			wantStatus: StatusNotFound,
			wantCode:   CodeReceiverNotFound,
		},
		{
			name:       "duplicate in flight",
			users:      &stubUsers{account: receiver},
			guard:      &stubGuard{acquired: false},
			req:        Request{ReceiverUsername: "bob", Amount: mustMoney(t, "10.00")},
			wantStatus: StatusConflict,
			wantCode:   CodeTransferInProgress,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewService(tc.users, nil, nil, tc.guard, nil, nil)

			outcome, err := svc.Transfer(context.Background(), sender, tc.req)

			require.NoError(t, err)
			assert.Equal(t, tc.wantStatus, outcome.Status)
			assert.Equal(t, tc.wantCode, outcome.Code)
			assert.False(t, outcome.Committed())
			assert.Nil(t, outcome.Entry)
		})
	}
}

func TestTransfer_GuardNeverReleasedWhenNotAcquired(t *testing.T) {
	sender := auth.Identity{UserID: uuid.New(), Username: "alice"}
	receiver := &domain.UserAccount{UserID: uuid.New(), Username: "bob", AccountID: uuid.New()}
	g := &stubGuard{acquired: false}
	svc := NewService(&stubUsers{account: receiver}, nil, nil, g, nil, nil)

	outcome, err := svc.Transfer(context.Background(), sender, Request{
		ReceiverUsername: "bob",
		Amount:           mustMoney(t, "5.00"),
	})

	require.NoError(t, err)
	assert.Equal(t, StatusConflict, outcome.Status)
	assert.Equal(t, 1, g.acquireCalls)
	assert.Equal(t, 0, g.releaseCalls, "a losing attempt must not release the winner's guard")
}

func TestTransfer_GuardOutageFailsClosed(t *testing.T) {
	sender := auth.Identity{UserID: uuid.New(), Username: "alice"}
	receiver := &domain.UserAccount{UserID: uuid.New(), Username: "bob", AccountID: uuid.New()}
	g := &stubGuard{err: errors.New("redis: connection refused")}
	svc := NewService(&stubUsers{account: receiver}, nil, nil, g, nil, nil)

	outcome, err := svc.Transfer(context.Background(), sender, Request{
		ReceiverUsername: "bob",
		Amount:           mustMoney(t, "5.00"),
	})

	require.Nil(t, outcome)
	require.ErrorIs(t, err, domain.ErrCacheUnavailable)
}

func TestTransfer_ReceiverLookupFailureIsStorageError(t *testing.T) {
	sender := auth.Identity{UserID: uuid.New(), Username: "alice"}
	svc := NewService(&stubUsers{err: errors.New("connection reset")}, nil, nil, &stubGuard{acquired: true}, nil, nil)

	outcome, err := svc.Transfer(context.Background(), sender, Request{
		ReceiverUsername: "bob",
		Amount:           mustMoney(t, "5.00"),
	})

	require.Nil(t, outcome)
	require.ErrorIs(t, err, domain.ErrStorageUnavailable)
}
