package backend

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"kharcha/internal/amqp"
	"kharcha/internal/backup"
	"kharcha/internal/log"
	"kharcha/internal/storage"
	"kharcha/internal/storage/memory"
)

// DefaultFactory implements Factory.
type DefaultFactory struct {
	logger *log.Logger
	// dial opens the broker connection; swapped in tests.
	dial func(url, exchange, queue, reminderQueue string) (*amqp.Client, error)
}

func NewFactory(logger *log.Logger) *DefaultFactory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
		dial:   amqp.NewClient,
	}
}

// CreateBackend opens the configured store. A broker that cannot be reached
// is logged and skipped; the ledger keeps working without events.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var res *Result
	var err error
	switch config.Type {
	case SQLite:
		res, err = f.createSQLiteBackend(config)
	case Memory:
		res, err = f.createMemoryBackend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	if config.AMQPURL != "" {
		client, err := f.dial(config.AMQPURL, config.AMQPExchange, config.AMQPQueue, config.ReminderQueue)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without events", "error", err)
		} else {
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
			res.Publisher = client
			storeCleanup := res.Cleanup
			res.Cleanup = func() error {
				return errors.Join(client.Close(), storeCleanup())
			}
		}
	}
	return res, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*Result, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}
	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	return &Result{Store: repo, Cleanup: repo.Close}, nil
}

func (f *DefaultFactory) createMemoryBackend(ctx context.Context, config Config) (*Result, error) {
	store := memory.New()
	res := &Result{Store: store, Cleanup: func() error { return nil }}

	if !config.SeedFromBackup || config.SeedPath == "" {
		f.logger.InfoContext(ctx, "Initialized memory backend", "seeded", false)
		return res, nil
	}

	file, err := os.Open(config.SeedPath)
	if errors.Is(err, fs.ErrNotExist) {
		f.logger.InfoContext(ctx, "Initialized memory backend", "seeded", false, "seed_path", config.SeedPath)
		return res, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open seed backup: %w", err)
	}
	defer file.Close()

	imported, err := backup.Import(ctx, store, file)
	if err != nil {
		return nil, fmt.Errorf("seed memory store from %s: %w", config.SeedPath, err)
	}
	f.logger.InfoContext(ctx, "Initialized memory backend",
		"seeded", true,
		"seed_path", config.SeedPath,
		"contracts", imported.Contracts,
		"loans", imported.Loans)
	return res, nil
}
