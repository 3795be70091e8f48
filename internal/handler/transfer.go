package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tomiwa-ade/demicredit/internal/auth"
	"github.com/tomiwa-ade/demicredit/internal/domain"
	"github.com/tomiwa-ade/demicredit/internal/logging"
	"github.com/tomiwa-ade/demicredit/internal/metrics"
	"github.com/tomiwa-ade/demicredit/internal/money"
	"github.com/tomiwa-ade/demicredit/internal/pagination"
	"github.com/tomiwa-ade/demicredit/internal/repository"
	"github.com/tomiwa-ade/demicredit/internal/service/transfer"
)

type transferService interface {
	Transfer(ctx context.Context, sender auth.Identity, req transfer.Request) (*transfer.Outcome, error)
	History(ctx context.Context, ownerID uuid.UUID, filter repository.HistoryFilter) (*pagination.Result[domain.Transaction], error)
}

type TransferHandler struct {
	transfers transferService
}

func NewTransferHandler(transfers transferService) *TransferHandler {
	return &TransferHandler{transfers: transfers}
}

type transferRequest struct {
	ReceiverUsername string  `json:"receiver_username"`
	Amount           string  `json:"amount"`
	Note             *string `json:"note"`
}

type transactionDTO struct {
	ID                uuid.UUID `json:"id"`
	Reference         string    `json:"reference"`
	Type              string    `json:"type"`
	Status            string    `json:"status"`
	Amount            string    `json:"amount"`
	BalanceBefore     string    `json:"balance_before"`
	BalanceAfter      string    `json:"balance_after"`
	SenderAccountID   uuid.UUID `json:"sender_account_id"`
	ReceiverAccountID uuid.UUID `json:"receiver_account_id"`
	Note              *string   `json:"note"`
	CreatedAt         time.Time `json:"created_at"`
}

func toTransactionDTO(t *domain.Transaction) transactionDTO {
	return transactionDTO{
		ID:                t.ID,
		Reference:         t.Reference,
		Type:              string(t.Type),
		Status:            string(t.Status),
		Amount:            t.Amount.String(),
		BalanceBefore:     t.BalanceBefore.String(),
		BalanceAfter:      t.BalanceAfter.String(),
		SenderAccountID:   t.SenderAccountID,
		ReceiverAccountID: t.ReceiverAccountID,
		Note:              t.Note,
		CreatedAt:         t.CreatedAt,
	}
}

func (h *TransferHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	var fields []FieldError
	if strings.TrimSpace(req.ReceiverUsername) == "" {
		fields = append(fields, FieldError{Field: "receiver_username", Message: "required"})
	}
	amount, err := money.Parse(req.Amount)
	if err != nil {
		fields = append(fields, FieldError{Field: "amount", Message: "must be a decimal amount with at most 2 decimal places"})
	}
	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	outcome, err := h.transfers.Transfer(r.Context(), identity, transfer.Request{
		ReceiverUsername: strings.TrimSpace(req.ReceiverUsername),
		Amount:           amount,
		Note:             req.Note,
		IdempotencyKey:   r.Header.Get("Idempotency-Key"),
	})
	if err != nil {
		metrics.TransfersTotal.WithLabelValues("error").Inc()
		logging.FromContext(r.Context()).Error("transfer failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	metrics.TransfersTotal.WithLabelValues(string(outcome.Status)).Inc()

	if !outcome.Committed() {
		RespondAppError(w, &AppError{
			Status:  outcomeHTTPStatus(outcome.Status),
			Code:    outcome.Code,
			Message: outcome.Message,
		}, nil)
		return
	}

	entry := toTransactionDTO(outcome.Entry)
	RespondSuccess(w, http.StatusOK, map[string]any{
		"message":     outcome.Message,
		"transaction": entry,
	})
}

func (h *TransferHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	filter, fields := historyFilterFromQuery(r)
	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	page, err := h.transfers.History(r.Context(), identity.UserID, filter)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to load history", "error", err)
		RespondDomainError(w, err)
		return
	}

	entries := make([]transactionDTO, 0, len(page.Data))
	for i := range page.Data {
		entries = append(entries, toTransactionDTO(&page.Data[i]))
	}

	RespondSuccess(w, http.StatusOK, pagination.Result[transactionDTO]{
		Data:       entries,
		Page:       page.Page,
		Limit:      page.Limit,
		TotalItems: page.TotalItems,
		TotalPages: page.TotalPages,
	})
}

func historyFilterFromQuery(r *http.Request) (repository.HistoryFilter, []FieldError) {
	q := r.URL.Query()
	var filter repository.HistoryFilter
	var fields []FieldError

	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			fields = append(fields, FieldError{Field: "page", Message: "must be a positive integer"})
		} else {
			filter.Page = page
		}
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			fields = append(fields, FieldError{Field: "limit", Message: "must be a positive integer"})
		} else {
			filter.Limit = limit
		}
	}

	if status := q.Get("status"); status != "" {
		s := domain.TransactionStatus(status)
		if !s.IsValid() {
			fields = append(fields, FieldError{Field: "status", Message: "must be one of pending, successful, failed"})
		} else {
			filter.Status = s
		}
	}
	if kind := q.Get("type"); kind != "" {
		t := domain.TransactionType(kind)
		if t != domain.TransactionTypeDebit && t != domain.TransactionTypeCredit {
			fields = append(fields, FieldError{Field: "type", Message: "must be debit or credit"})
		} else {
			filter.Type = t
		}
	}

	if sortBy := q.Get("sortBy"); sortBy != "" {
		if sortBy != "date" && sortBy != "amount" {
			fields = append(fields, FieldError{Field: "sortBy", Message: "must be date or amount"})
		} else {
			filter.SortBy = sortBy
		}
	}
	if sortOrder := q.Get("sortOrder"); sortOrder != "" {
		if !strings.EqualFold(sortOrder, "asc") && !strings.EqualFold(sortOrder, "desc") {
			fields = append(fields, FieldError{Field: "sortOrder", Message: "must be asc or desc"})
		} else {
			filter.SortOrder = strings.ToLower(sortOrder)
		}
	}

	return filter, fields
}
