package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"saldo/internal/amqp"
	"saldo/internal/core"
	"saldo/internal/storage"
)

// MaxRecurrenceCount is the default limit on occurrences per recurring entry.
const MaxRecurrenceCount = 120

// LedgerStore is the storage needed to write transactions.
type LedgerStore interface {
	storage.CategoryStore
	storage.TransactionStore
}

// TransactionService creates, lists and deletes ledger rows.
type TransactionService struct {
	store         LedgerStore
	publisher     EventPublisher
	maxRecurrence int
}

// NewTransactionService wires the service. publisher may be nil and
// maxRecurrence <= 0 selects MaxRecurrenceCount.
func NewTransactionService(store LedgerStore, publisher EventPublisher, maxRecurrence int) *TransactionService {
	if maxRecurrence <= 0 {
		maxRecurrence = MaxRecurrenceCount
	}
	return &TransactionService{
		store:         store,
		publisher:     publisher,
		maxRecurrence: maxRecurrence,
	}
}

// Create stores the entry described by in. A recurring entry is expanded
// into monthly occurrences written as one batch: either all rows exist
// afterwards or none do.
func (s *TransactionService) Create(ctx context.Context, ownerID string, in core.NewTransaction) ([]core.Transaction, error) {
	base, err := in.Normalize()
	if err != nil {
		return nil, err
	}
	base.OwnerID = ownerID

	var categoryName string
	if base.CategoryID != "" {
		categoryName, err = s.categoryName(ctx, ownerID, base.CategoryID)
		if err != nil {
			return nil, err
		}
	}

	var rows []core.Transaction
	if in.IsRecurring {
		if in.RecurrenceCount > s.maxRecurrence {
			return nil, fmt.Errorf("%w: recurrence count %d exceeds %d", core.ErrInvalidInput, in.RecurrenceCount, s.maxRecurrence)
		}
		rows = core.Expand(base, in.RecurrenceCount)
	} else {
		base.ID = uuid.NewString()
		rows = []core.Transaction{base}
	}

	if err := s.store.InsertTransactions(ctx, rows); err != nil {
		if errors.Is(err, storage.ErrInvalidReference) {
			return nil, fmt.Errorf("%w: category no longer exists", core.ErrInvalidInput)
		}
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transactions created",
		"count", len(rows),
		"kind", base.Kind,
		"amount", core.FormatAmount(base.Amount),
		"date", base.Date.String(),
		"group_id", rows[0].RecurrenceGroupID)

	publish(ctx, s.publisher, amqp.NewTransactionsCreated(ownerID, rows, categoryName))
	return rows, nil
}

func (s *TransactionService) categoryName(ctx context.Context, ownerID, categoryID string) (string, error) {
	cats, err := s.store.ListCategories(ctx, ownerID)
	if err != nil {
		return "", fmt.Errorf("list categories: %w", err)
	}
	for _, c := range cats {
		if c.ID == categoryID {
			return c.Name, nil
		}
	}
	return "", fmt.Errorf("%w: unknown category %q", core.ErrInvalidInput, categoryID)
}

// List returns the owner's rows inside f.Window, newest first.
func (s *TransactionService) List(ctx context.Context, ownerID string, f core.TransactionFilter) ([]core.Transaction, error) {
	if f.Window.Start.IsZero() || !f.Window.Start.Before(f.Window.End) {
		return nil, fmt.Errorf("%w: empty date window", core.ErrInvalidInput)
	}
	txs, err := s.store.QueryTransactions(ctx, ownerID, f)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

// Delete removes one row. A row that does not exist, or belongs to another
// owner, is treated as already deleted.
func (s *TransactionService) Delete(ctx context.Context, ownerID, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: transaction id is required", core.ErrInvalidInput)
	}
	removed, err := s.store.DeleteTransaction(ctx, ownerID, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if !removed {
		slog.DebugContext(ctx, "Transaction already absent", "transaction_id", id)
		return nil
	}

	slog.InfoContext(ctx, "Transaction deleted", "transaction_id", id)
	publish(ctx, s.publisher, amqp.NewTransactionDeleted(ownerID, id))
	return nil
}

// DeleteGroup removes every occurrence of a recurring series and reports
// how many rows were removed. An unknown group removes nothing.
func (s *TransactionService) DeleteGroup(ctx context.Context, ownerID, groupID string) (int64, error) {
	groupID = strings.TrimSpace(groupID)
	if groupID == "" {
		return 0, fmt.Errorf("%w: group id is required", core.ErrInvalidInput)
	}
	n, err := s.store.DeleteTransactionGroup(ctx, ownerID, groupID)
	if err != nil {
		return 0, fmt.Errorf("delete transaction group: %w", err)
	}
	if n == 0 {
		return 0, nil
	}

	slog.InfoContext(ctx, "Recurrence group deleted", "group_id", groupID, "count", n)
	publish(ctx, s.publisher, amqp.NewGroupDeleted(ownerID, groupID))
	return n, nil
}
