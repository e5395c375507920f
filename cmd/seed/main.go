package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"procurement-tracker/internal/app"
	"procurement-tracker/internal/config"
	"procurement-tracker/internal/logger"
	"procurement-tracker/internal/observability"
	"procurement-tracker/internal/store"
)

const usage = "Usage: seed <from-backend> <to-backend>   (csv | sheets | postgres)"

// seed copies every panel table between two configured backends, e.g. a
// legacy CSV export into Postgres.
func main() {
	if len(os.Args) != 3 {
		log.Fatal(usage)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	zl, err := logger.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if err := run(context.Background(), cfg, os.Args[1], os.Args[2], zl); err != nil {
		zl.Fatal("seed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, from, to string, zl *zap.Logger) error {
	if from == to {
		return fmt.Errorf("source and destination are both %q", from)
	}
	metrics := observability.NewMetrics(nil)

	src, closeSrc, err := openBackend(ctx, *cfg, from, metrics, zl)
	if err != nil {
		return fmt.Errorf("open %s: %w", from, err)
	}
	defer closeSrc()
	dst, closeDst, err := openBackend(ctx, *cfg, to, metrics, zl)
	if err != nil {
		return fmt.Errorf("open %s: %w", to, err)
	}
	defer closeDst()

	failed := 0
	for _, rep := range app.CopyTables(ctx, src, dst, zl) {
		if rep.Err != nil {
			failed++
			fmt.Printf("%-14s FAILED  %v\n", rep.Table, rep.Err)
			continue
		}
		fmt.Printf("%-14s %6d rows\n", rep.Table, rep.Rows)
	}
	if failed > 0 {
		return fmt.Errorf("%d table(s) failed to copy", failed)
	}
	return nil
}

func openBackend(ctx context.Context, cfg config.Config, backend string, metrics *observability.Metrics, zl *zap.Logger) (store.Store, func(), error) {
	cfg.Store.Backend = backend
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return app.OpenStore(ctx, &cfg, metrics, zl)
}
