package bootstrap

import (
	"fmt"

	coreconfig "github.com/konflic/purchase-bot/core/config"
	"github.com/konflic/purchase-bot/core/logger"
	"github.com/konflic/purchase-bot/core/storage"
)

// Options control the bootstrap pipeline.
type Options struct {
	Config *coreconfig.Config

	LoggerInit func(*coreconfig.Config) error
	OpenStore  func(*coreconfig.Config) (storage.Store, error)
}

// Result exposes infrastructure initialized by the bootstrap pipeline.
type Result struct {
	Store storage.Store
}

// Run initializes the logger and opens the configured list store.
// The Postgres backend also gets its schema migrated before use.
func Run(opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}

	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.InitLogger
	}
	if err := loggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	openStore := opts.OpenStore
	if openStore == nil {
		openStore = OpenStore
	}
	store, err := openStore(opts.Config)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: store initialization failed: %w", err)
	}

	return &Result{Store: store}, nil
}

// OpenStore builds the store selected by storage.backend.
func OpenStore(cfg *coreconfig.Config) (storage.Store, error) {
	switch cfg.Storage.Backend {
	case coreconfig.StorageBackendPostgres:
		db, err := storage.Connect(cfg.Storage.Postgres)
		if err != nil {
			return nil, err
		}
		if err := storage.RunMigrations(cfg.Storage.Postgres); err != nil {
			_ = db.Close()
			return nil, err
		}
		return storage.NewPostgresStore(db), nil
	case coreconfig.StorageBackendFile, "":
		return storage.NewFileStore(cfg.Storage.Root)
	default:
		return nil, fmt.Errorf("bootstrap: unknown storage backend %q", cfg.Storage.Backend)
	}
}
