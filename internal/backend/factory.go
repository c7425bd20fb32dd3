package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"saldo/internal/amqp"
	"saldo/internal/cache"
	"saldo/internal/services"
	"saldo/internal/storage"
	"saldo/internal/storage/memory"
)

const cacheCleanupInterval = 10 * time.Minute

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend opens the configured store, connects the optional event
// publisher and wires the ledger services on top of them.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	store, err := f.openStore(config)
	if err != nil {
		return nil, err
	}

	var (
		publisher  services.EventPublisher
		amqpClient *amqp.Client
	)
	if config.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without events", "error", err)
		} else {
			publisher = amqpClient
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	owners := services.NewProvisioner(store)
	caches := cache.NewManager()
	caches.Register(owners.Cache())
	caches.StartCleanup(cacheCleanupInterval)

	ledger := &Ledger{
		Store:        store,
		Owners:       owners,
		Categories:   services.NewCategoryService(store),
		Transactions: services.NewTransactionService(store, publisher, config.MaxRecurrenceCount),
		Dashboard:    services.NewDashboardService(store),
		OwnerEmail:   config.OwnerEmail,
	}

	f.logger.InfoContext(ctx, "Initialized backend",
		"backend", config.Type.String(),
		"amqp_enabled", publisher != nil)

	cleanup := func() error {
		caches.Stop()
		var errs []error
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close amqp client: %w", err))
			}
		}
		if err := store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
		return errors.Join(errs...)
	}

	return &BackendResult{
		Ledger:  ledger,
		Cleanup: cleanup,
	}, nil
}

func (f *DefaultFactory) openStore(config Config) (storage.Store, error) {
	switch config.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.Info("Opened SQLite store", "db_path", config.SQLiteDBPath)
		return repo, nil
	case PostgresBackend:
		repo, err := storage.NewPostgresRepository(config.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres repository: %w", err)
		}
		f.logger.Info("Opened Postgres store")
		return repo, nil
	case MemoryBackend:
		f.logger.Info("Opened memory store")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}
