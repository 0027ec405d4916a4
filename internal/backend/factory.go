package backend

import (
	"context"
	"fmt"
	"log/slog"

	"jornada/internal/amqp"
	"jornada/internal/storage"
	"jornada/internal/storage/memory"
)

// Factory creates backends based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// DefaultFactory implements the Factory interface.
type DefaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend.
func (f *DefaultFactory) CreateBackend(_ context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case MemoryBackend:
		return f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*Result, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	publisher := f.connectAMQP(config)

	f.logger.Info("Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"amqp_enabled", publisher != nil)

	return &Result{
		Store:     repo,
		Publisher: publisher,
		Cleanup:   cleanup(repo.Close, publisher),
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*Result, error) {
	store := memory.New()
	publisher := f.connectAMQP(config)

	f.logger.Info("Initialized memory backend", "amqp_enabled", publisher != nil)

	return &Result{
		Store:     store,
		Publisher: publisher,
		Cleanup:   cleanup(store.Close, publisher),
	}, nil
}

// connectAMQP is best-effort: the app degrades to in-process reconciliation
// when the broker is unreachable.
func (f *DefaultFactory) connectAMQP(config Config) *amqp.Client {
	if config.AMQPURL == "" {
		return nil
	}

	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	if err != nil {
		f.logger.Warn("Failed to initialize AMQP client, continuing without worker handoff", "error", err)
		return nil
	}

	f.logger.Info("Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)
	return client
}

func cleanup(closeStore func() error, publisher *amqp.Client) CleanupFunc {
	return func() error {
		if publisher != nil {
			if err := publisher.Close(); err != nil {
				slog.Warn("Failed to close AMQP client", "error", err)
			}
		}
		return closeStore()
	}
}
