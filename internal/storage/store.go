// Package storage persists owners, categories and transactions.
package storage

import (
	"context"
	"errors"

	"saldo/internal/core"
)

var (
	// ErrDuplicateKey is returned when a unique constraint rejects a write.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidReference is returned when a write points at a row that does
	// not exist, such as a category deleted in the meantime.
	ErrInvalidReference = errors.New("invalid reference")
)

// OwnerStore reads and creates owners by their natural key.
type OwnerStore interface {
	FindOwnerByEmail(ctx context.Context, email string) (core.Owner, error)
	InsertOwner(ctx context.Context, o core.Owner) error
}

// CategoryStore manages the categories of one owner.
type CategoryStore interface {
	ListCategories(ctx context.Context, ownerID string) ([]core.Category, error)
	InsertCategory(ctx context.Context, c core.Category) error
	// DeleteCategory removes the category and clears it from every transaction
	// that referenced it. Deleting an unknown category is not an error.
	DeleteCategory(ctx context.Context, ownerID, id string) error
}

// TransactionStore manages ledger rows.
type TransactionStore interface {
	// InsertTransactions writes all rows or none.
	InsertTransactions(ctx context.Context, txs []core.Transaction) error
	// QueryTransactions returns the owner's rows matching f, newest first.
	QueryTransactions(ctx context.Context, ownerID string, f core.TransactionFilter) ([]core.Transaction, error)
	DeleteTransaction(ctx context.Context, ownerID, id string) (bool, error)
	DeleteTransactionGroup(ctx context.Context, ownerID, groupID string) (int64, error)
}

// Store is the full persistence surface used by the services.
type Store interface {
	OwnerStore
	CategoryStore
	TransactionStore
	Ping(ctx context.Context) error
	Close() error
}
