package observability

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveStoreOperation(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)

	m.ObserveStoreOperation("pedidos", "load", nil, 10*time.Millisecond)
	m.ObserveStoreOperation("pedidos", "load", nil, 20*time.Millisecond)
	m.ObserveStoreOperation("pedidos", "save", errors.New("quota exceeded"), time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.storeOps.WithLabelValues("pedidos", "load", ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.storeOps.WithLabelValues("pedidos", "save", ResultError)))
	assert.Equal(t, 2, testutil.CollectAndCount(m.storeDuration))
}

func TestRecordReceiptAndTransitions(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)

	m.RecordReceipt(true)
	m.RecordReceipt(false)
	m.RecordReceipt(false)
	m.RecordStageTransition("PO_ISSUED", "DELIVERED")
	m.RecordStageTransition("DELIVERED", "DELIVERED")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.receipts.WithLabelValues("true")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.receipts.WithLabelValues("false")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.stageTransitions))
}

func TestNewMetricsReusesRegisteredCollectors(t *testing.T) {
	registry := prometheus.NewRegistry()
	first := NewMetrics(registry)
	second := NewMetrics(registry)

	first.RecordHTTPRequest("GET", "/api/orders", 200)
	second.RecordHTTPRequest("GET", "/api/orders", 200)

	assert.Equal(t, 2.0, testutil.ToFloat64(first.httpRequests.WithLabelValues("GET", "/api/orders", "200")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveStoreOperation("fiscal", "save", nil, time.Millisecond)
	m.RecordReceipt(true)
	m.RecordStageTransition("a", "b")
	m.RecordHTTPRequest("GET", "/", 200)
}
