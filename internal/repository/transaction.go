package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tomiwa-ade/demicredit/internal/domain"
	"github.com/tomiwa-ade/demicredit/internal/pagination"
)

const transactionColumns = `id, user_id, sender_account_id, receiver_account_id,
	type, status, reference, amount, balance_before, balance_after,
	note, metadata, created_at, updated_at`

type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Create appends one ledger row inside the caller's transaction. The id,
// reference and creation time are system-generated; rows are never
// updated or deleted afterwards.
func (r *TransactionRepository) Create(ctx context.Context, tx *sql.Tx, entry *domain.Transaction) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.Reference == "" {
		entry.Reference = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := tx.ExecContext(ctx,
		`INSERT INTO transactions (
			id, user_id, sender_account_id, receiver_account_id,
			type, status, reference, amount, balance_before, balance_after,
			note, metadata, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		entry.ID, entry.UserID, entry.SenderAccountID, entry.ReceiverAccountID,
		entry.Type, entry.Status, entry.Reference,
		entry.Amount, entry.BalanceBefore, entry.BalanceAfter,
		entry.Note, entry.Metadata, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

// HistoryFilter narrows and orders a ledger history query.
type HistoryFilter struct {
	Status domain.TransactionStatus
	Type   domain.TransactionType
	pagination.Params
}

// History returns one page of the owner's ledger. The count and the data
// page run over the same predicate, so totals always agree with the rows
// returned.
func (r *TransactionRepository) History(ctx context.Context, userID uuid.UUID, filter HistoryFilter) (*pagination.Result[domain.Transaction], error) {
	where := []string{"user_id = $1"}
	args := []any{userID}

	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		where = append(where, fmt.Sprintf("type = $%d", len(args)))
	}
	predicate := strings.Join(where, " AND ")

	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE `+predicate, args...,
	).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("History: count: %w", err)
	}

	limit, offset := filter.Window()
	query := fmt.Sprintf(
		`SELECT %s FROM transactions WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		transactionColumns, predicate, historyOrder(filter.Params), len(args)+1, len(args)+2,
	)
	rows, err := r.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, fmt.Errorf("History: %w", err)
	}
	defer rows.Close()

	var entries []domain.Transaction
	for rows.Next() {
		e, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("History: scan: %w", err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("History: rows: %w", err)
	}

	return pagination.NewResult(entries, filter.Params, total), nil
}

// historyOrder maps the filter's sort request onto whitelisted columns.
// Ties always break on id ascending so paging is deterministic.
func historyOrder(p pagination.Params) string {
	column := ""
	switch p.SortBy {
	case "date":
		column = "created_at"
	case "amount":
		column = "amount"
	default:
		return "created_at DESC, id ASC"
	}

	direction := "DESC"
	if strings.EqualFold(p.SortOrder, "asc") {
		direction = "ASC"
	}
	return column + " " + direction + ", id ASC"
}

func scanTransaction(s scanner) (*domain.Transaction, error) {
	var e domain.Transaction
	err := s.Scan(
		&e.ID, &e.UserID, &e.SenderAccountID, &e.ReceiverAccountID,
		&e.Type, &e.Status, &e.Reference,
		&e.Amount, &e.BalanceBefore, &e.BalanceAfter,
		&e.Note, &e.Metadata, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
