package store

import (
	"context"
	"time"

	"go.uber.org/zap"

	"procurement-tracker/internal/observability"
)

type instrumented struct {
	next    Store
	metrics *observability.Metrics
	log     *zap.Logger
}

// Instrument wraps s so every load and save is logged and counted. Failures
// are returned as *OpError.
func Instrument(s Store, metrics *observability.Metrics, log *zap.Logger) Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &instrumented{next: s, metrics: metrics, log: log}
}

func (i *instrumented) LoadTable(ctx context.Context, name string) (*Table, error) {
	start := time.Now()
	t, err := i.next.LoadTable(ctx, name)
	elapsed := time.Since(start)
	i.metrics.ObserveStoreOperation(name, "load", err, elapsed)
	if err != nil {
		i.log.Warn("table load failed", zap.String("table", name), zap.Duration("elapsed", elapsed), zap.Error(err))
		return nil, &OpError{Table: name, Op: "load", Err: err}
	}
	i.log.Debug("table loaded", zap.String("table", name), zap.Int("rows", len(t.Rows)), zap.Duration("elapsed", elapsed))
	return t, nil
}

func (i *instrumented) SaveTable(ctx context.Context, t *Table) error {
	start := time.Now()
	err := i.next.SaveTable(ctx, t)
	elapsed := time.Since(start)
	i.metrics.ObserveStoreOperation(t.Name, "save", err, elapsed)
	if err != nil {
		i.log.Warn("table save failed", zap.String("table", t.Name), zap.Duration("elapsed", elapsed), zap.Error(err))
		return &OpError{Table: t.Name, Op: "save", Err: err}
	}
	i.log.Info("table saved", zap.String("table", t.Name), zap.Int("rows", len(t.Rows)), zap.Duration("elapsed", elapsed))
	return nil
}
