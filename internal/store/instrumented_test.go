package store

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"procurement-tracker/internal/observability"
)

func TestInstrumentLogsAndCounts(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zap.DebugLevel)
	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	mem := NewMemoryStore()
	mem.FailLoad = map[string]error{TableInvoices: errors.New("credentials expired")}
	s := Instrument(mem, metrics, zap.New(core))

	require.NoError(t, s.SaveTable(ctx, &Table{Name: TableOrders}))
	_, err := s.LoadTable(ctx, TableOrders)
	require.NoError(t, err)
	_, err = s.LoadTable(ctx, TableInvoices)
	var opErr *OpError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, TableInvoices, opErr.Table)
	assert.Equal(t, "load", opErr.Op)
	assert.EqualError(t, err, "load fiscal: credentials expired")

	assert.Equal(t, 1, logs.FilterMessage("table load failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("table saved").Len())

	count, err := testutil.GatherAndCount(registry, "panel_store_operations_total")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}
