package backend

import (
	"context"

	"saldo/internal/services"
	"saldo/internal/storage"
)

// Ledger bundles the services an adapter needs, wired to one store.
type Ledger struct {
	Store        storage.Store
	Owners       *services.Provisioner
	Categories   *services.CategoryService
	Transactions *services.TransactionService
	Dashboard    *services.DashboardService

	// OwnerEmail identifies the single owner every request acts for.
	OwnerEmail string
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the backend instance and its cleanup function
type BackendResult struct {
	Ledger  *Ledger
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	SQLiteDBPath string
	DatabaseURL  string

	// AMQP is optional; an empty URL disables event publishing.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	OwnerEmail         string
	MaxRecurrenceCount int
}

// BackendType represents the type of backend
type BackendType string

const (
	MemoryBackend   BackendType = "memory"
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend, PostgresBackend:
		return true
	default:
		return false
	}
}
