package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"

	"procurement-tracker/internal/config"
	"procurement-tracker/internal/db"
	"procurement-tracker/internal/observability"
	"procurement-tracker/internal/store"
)

// OpenStore builds the record store selected by cfg.Store.Backend and wraps it
// with logging and metrics. The returned cleanup func releases backend resources.
func OpenStore(ctx context.Context, cfg *config.Config, metrics *observability.Metrics, log *zap.Logger) (store.Store, func(), error) {
	if log == nil {
		log = zap.NewNop()
	}
	cleanup := func() {}

	var st store.Store
	switch cfg.Store.Backend {
	case config.BackendCSV:
		st = store.NewCSVStore(cfg.Store.CSV.Dir,
			store.WithEncoding(cfg.Store.CSV.Encoding),
			store.WithDelimiter(cfg.Store.CSV.Delimiter()),
			store.WithFileNames(cfg.Store.Tables),
			store.WithLogger(log.Named("csv")),
		)
	case config.BackendSheets:
		var opts []option.ClientOption
		if cfg.Store.Sheets.CredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.Store.Sheets.CredentialsFile))
		}
		sh, err := store.NewSheetsStore(ctx, cfg.Store.Sheets.SpreadsheetID, cfg.Store.Tables, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("open sheets store: %w", err)
		}
		st = sh
	case config.BackendPostgres:
		pool, err := db.NewPool(ctx, cfg.Database.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres store: %w", err)
		}
		st = store.NewPostgresStore(pool)
		cleanup = pool.Close
	case config.BackendMemory:
		st = store.NewMemoryStore()
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	log.Info("record store opened", zap.String("backend", cfg.Store.Backend))
	return store.Instrument(st, metrics, log.Named("store")), cleanup, nil
}
