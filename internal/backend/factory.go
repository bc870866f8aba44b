// Package backend selects and wires the ledger store the application runs on.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"finsmart/internal/amqp"
	"finsmart/internal/ledger"
	"finsmart/internal/storage"
)

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

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		store   ledger.Store
		cleanup CleanupFunc
	)

	switch config.Type {
	case FileBackend:
		fileStore, err := ledger.NewFileStore(config.LedgerPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize file ledger: %w", err)
		}
		store = fileStore
		f.logger.Info("Initialized file backend", "path", config.LedgerPath)

	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		store = repo
		cleanup = repo.Close
		f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	case MemoryBackend:
		store = ledger.NewMemoryStore()
		f.logger.Info("Initialized memory backend")

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}

	// AMQP is optional on every backend; the ledger works without it.
	var amqpClient *amqp.Client
	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
		} else {
			amqpClient = client
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	return &Result{
		Store:   store,
		AMQP:    amqpClient,
		Cleanup: cleanup,
	}, nil
}
