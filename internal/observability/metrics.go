package observability

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Metrics holds the prometheus collectors for store access, receiving and order lifecycle.
type Metrics struct {
	storeOps         *prometheus.CounterVec
	storeDuration    *prometheus.HistogramVec
	receipts         *prometheus.CounterVec
	stageTransitions *prometheus.CounterVec
	httpRequests     *prometheus.CounterVec
}

// NewMetrics registers the collectors on registerer (prometheus.DefaultRegisterer when nil).
// Collectors already registered under the same name are reused.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	storeOps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "panel_store_operations_total",
		Help: "Record store table loads and saves by table, operation and result.",
	}, []string{"table", "op", "result"})
	storeDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "panel_store_operation_duration_seconds",
		Help:    "Record store operation latency.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"table", "op"})
	receipts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "panel_receipts_registered_total",
		Help: "Warehouse receipts registered, split by whether a purchase order matched.",
	}, []string{"linked"})
	stageTransitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "panel_order_stage_transitions_total",
		Help: "Order lifecycle stage changes observed on save.",
	}, []string{"from", "to"})
	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "panel_http_requests_total",
		Help: "HTTP API requests by method, route pattern and status.",
	}, []string{"method", "route", "status"})

	return &Metrics{
		storeOps:         register(registerer, storeOps),
		storeDuration:    register(registerer, storeDuration),
		receipts:         register(registerer, receipts),
		stageTransitions: register(registerer, stageTransitions),
		httpRequests:     register(registerer, httpRequests),
	}
}

func register[T prometheus.Collector](registerer prometheus.Registerer, c T) T {
	if err := registerer.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(T); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

// ObserveStoreOperation counts a table load/save and records its latency.
func (m *Metrics) ObserveStoreOperation(table, op string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	table = strings.TrimSpace(table)
	m.storeOps.WithLabelValues(table, op, result).Inc()
	m.storeDuration.WithLabelValues(table, op).Observe(elapsed.Seconds())
}

// RecordReceipt counts a registered receipt.
func (m *Metrics) RecordReceipt(linked bool) {
	if m == nil {
		return
	}
	m.receipts.WithLabelValues(strconv.FormatBool(linked)).Inc()
}

// RecordStageTransition counts an order moving between lifecycle stages.
func (m *Metrics) RecordStageTransition(from, to string) {
	if m == nil || from == to {
		return
	}
	m.stageTransitions.WithLabelValues(from, to).Inc()
}

// RecordHTTPRequest counts a served API request.
func (m *Metrics) RecordHTTPRequest(method, route string, status int) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}
