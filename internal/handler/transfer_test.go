package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomiwa-ade/demicredit/internal/auth"
	"github.com/tomiwa-ade/demicredit/internal/domain"
	"github.com/tomiwa-ade/demicredit/internal/money"
	"github.com/tomiwa-ade/demicredit/internal/pagination"
	"github.com/tomiwa-ade/demicredit/internal/repository"
	"github.com/tomiwa-ade/demicredit/internal/service/transfer"
)

type fakeTransfers struct {
	outcome *transfer.Outcome
	err     error

	history    *pagination.Result[domain.Transaction]
	historyErr error

	gotFilter repository.HistoryFilter
}

func (f *fakeTransfers) Transfer(ctx context.Context, sender auth.Identity, req transfer.Request) (*transfer.Outcome, error) {
	return f.outcome, f.err
}

func (f *fakeTransfers) History(ctx context.Context, ownerID uuid.UUID, filter repository.HistoryFilter) (*pagination.Result[domain.Transaction], error) {
	f.gotFilter = filter
	return f.history, f.historyErr
}

func authedRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	identity := auth.Identity{UserID: uuid.New(), Username: "alice"}
	return req.WithContext(auth.ContextWithIdentity(req.Context(), identity))
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestTransferCreate_OutcomeMapping(t *testing.T) {
	body := `{"receiver_username": "bob", "amount": "25.00"}`

	tests := []struct {
		name       string
		outcome    *transfer.Outcome
		wantStatus int
		wantCode   string
	}{
		{
			name:       "invalid amount",
			outcome:    &transfer.Outcome{Status: transfer.StatusBadRequest, Code: transfer.CodeInvalidAmount},
			wantStatus: http.StatusBadRequest,
			wantCode:   transfer.CodeInvalidAmount,
		},
		{
			name:       "insufficient funds",
			outcome:    &transfer.Outcome{Status: transfer.StatusBadRequest, Code: transfer.CodeInsufficientFunds},
			wantStatus: http.StatusBadRequest,
			wantCode:   transfer.CodeInsufficientFunds,
		},
		{
			name:       "receiver not found",
			outcome:    &transfer.Outcome{Status: transfer.StatusNotFound, Code: transfer.CodeReceiverNotFound},
			wantStatus: http.StatusNotFound,
			wantCode:   transfer.CodeReceiverNotFound,
		},
		{
			name:       "duplicate in flight",
			outcome:    &transfer.Outcome{Status: transfer.StatusConflict, Code: transfer.CodeTransferInProgress},
			wantStatus: http.StatusConflict,
			wantCode:   transfer.CodeTransferInProgress,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := NewTransferHandler(&fakeTransfers{outcome: tc.outcome})
			rec := httptest.NewRecorder()

			h.Create(rec, authedRequest(http.MethodPost, "/api/v1/transfers", body))

			assert.Equal(t, tc.wantStatus, rec.Code)
			resp := decodeResponse(t, rec)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tc.wantCode, resp.Error.Code)
		})
	}
}

func TestTransferCreate_Success(t *testing.T) {
	amount, err := money.Parse("25.00")
	require.NoError(t, err)

	entry := &domain.Transaction{
		ID:                uuid.New(),
		Reference:         uuid.NewString(),
		Type:              domain.TransactionTypeDebit,
		Status:            domain.TransactionStatusSuccessful,
		Amount:            amount,
		BalanceBefore:     amount,
		BalanceAfter:      money.Money{},
		SenderAccountID:   uuid.New(),
		ReceiverAccountID: uuid.New(),
		CreatedAt:         time.Now().UTC(),
	}
	h := NewTransferHandler(&fakeTransfers{outcome: &transfer.Outcome{
		Status:  transfer.StatusSuccessful,
		Message: "Transfer completed successfully",
		Entry:   entry,
	}})
	rec := httptest.NewRecorder()

	h.Create(rec, authedRequest(http.MethodPost, "/api/v1/transfers", `{"receiver_username": "bob", "amount": "25.00"}`))

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
}

func TestTransferCreate_TransportFailure(t *testing.T) {
	h := NewTransferHandler(&fakeTransfers{
		err: fmt.Errorf("Transfer: %w: boom", domain.ErrCacheUnavailable),
	})
	rec := httptest.NewRecorder()

	h.Create(rec, authedRequest(http.MethodPost, "/api/v1/transfers", `{"receiver_username": "bob", "amount": "25.00"}`))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "SERVICE_UNAVAILABLE", resp.Error.Code)
}

func TestTransferCreate_RejectsMalformedAmount(t *testing.T) {
	h := NewTransferHandler(&fakeTransfers{})

	for _, amount := range []string{"", "abc", "10.123", "1e3.5"} {
		rec := httptest.NewRecorder()
		body := fmt.Sprintf(`{"receiver_username": "bob", "amount": %q}`, amount)

		h.Create(rec, authedRequest(http.MethodPost, "/api/v1/transfers", body))

		assert.Equal(t, http.StatusBadRequest, rec.Code, "amount %q", amount)
		resp := decodeResponse(t, rec)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "VALIDATION_FAILED", resp.Error.Code)
	}
}

func TestTransferCreate_RequiresIdentity(t *testing.T) {
	h := NewTransferHandler(&fakeTransfers{})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transfers", strings.NewReader(`{}`))

	h.Create(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTransferList_QueryValidation(t *testing.T) {
	fake := &fakeTransfers{history: pagination.NewResult[domain.Transaction](nil, pagination.Params{}, 0)}
	h := NewTransferHandler(fake)

	rec := httptest.NewRecorder()
	h.List(rec, authedRequest(http.MethodGet, "/api/v1/transfers?status=bogus&type=sideways", ""))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.List(rec, authedRequest(http.MethodGet, "/api/v1/transfers?status=successful&type=debit&sortBy=amount&sortOrder=ASC&page=2&limit=5", ""))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.TransactionStatusSuccessful, fake.gotFilter.Status)
	assert.Equal(t, domain.TransactionTypeDebit, fake.gotFilter.Type)
	assert.Equal(t, "amount", fake.gotFilter.SortBy)
	assert.Equal(t, "asc", fake.gotFilter.SortOrder)
	assert.Equal(t, 2, fake.gotFilter.Page)
	assert.Equal(t, 5, fake.gotFilter.Limit)
}
