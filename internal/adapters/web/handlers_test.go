package web_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"procurement-tracker/internal/adapters/web"
	"procurement-tracker/internal/ai"
	"procurement-tracker/internal/app"
	"procurement-tracker/internal/core"
	"procurement-tracker/internal/observability"
	"procurement-tracker/internal/store"
)

type stubParser struct{ draft ai.ReceiptDraft }

func (p stubParser) ParseReceiptNote(context.Context, string, []core.Order) (*ai.ReceiptDraft, error) {
	d := p.draft
	return &d, nil
}

type fixture struct {
	srv *httptest.Server
	mem *store.MemoryStore
}

func newFixture(t *testing.T, policy core.Policy, parser ai.NoteParser) *fixture {
	t.Helper()
	mem := store.NewMemoryStore(
		core.OrdersToTable([]core.Order{
			{RequisitionNumber: "R1", Requester: "Ana", Material: "Toner", Quantity: decimal.NewFromInt(1),
				RequestDate: core.NewDate(2024, 3, 1), DeliveryStatus: core.DeliveryPending},
		}),
		core.RequestersToTable([]core.Requester{{Name: "Ana", Department: "TI", Email: "ana@example.com", Branch: "Matriz"}}),
	)
	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)
	log := zaptest.NewLogger(t)

	st := store.Instrument(mem, metrics, log)
	svc := app.NewAppService(st, policy, metrics, parser, log)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	h := web.NewHandler(ctx, svc, web.Options{
		AllowedOrigins: "http://localhost:3000",
		Logger:         log,
		Metrics:        metrics,
		Gatherer:       registry,
	})
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return &fixture{srv: srv, mem: mem}
}

func (f *fixture) do(t *testing.T, method, path, body string) (*http.Response, map[string]any) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, f.srv.URL+path, rd)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp, out
}

func TestHealth(t *testing.T) {
	f := newFixture(t, core.DefaultPolicy(), nil)

	resp, body := f.do(t, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestOrderLifecycle(t *testing.T) {
	f := newFixture(t, core.DefaultPolicy(), nil)

	resp, body := f.do(t, http.MethodPost, "/api/orders",
		`{"requester":"Ana","material":"Papel A4","quantity":10,"order_type":"LOCAL"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	assert.Equal(t, "TI", body["department"])

	resp, body = f.do(t, http.MethodPost, "/api/orders/0/assign",
		`{"order_number":"oc9","supplier":"ACME","item_value":"99.90","approval_date":"04/03/2024"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "OC9", body["order_number"])

	resp, body = f.do(t, http.MethodPost, "/api/receipts",
		`{"supplier":"ACME","invoice_number":"77","order_number":"OC9","invoice_total_value":"99.90","open_invoice":true}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	assert.NotNil(t, body["invoice"])

	resp, body = f.do(t, http.MethodGet, "/api/orders/oc9", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	lines := body["lines"].([]any)
	require.Len(t, lines, 1)
	assert.Equal(t, "INVOICED_IN_PROGRESS", lines[0].(map[string]any)["stage"])

	resp, body = f.do(t, http.MethodPatch, "/api/invoices/77", `{"financial_status":"FINALIZADO"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "FINALIZADO", body["financial_status"])

	resp, _ = f.do(t, http.MethodGet, "/api/invoices?status=FINALIZADO", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestErrorMapping(t *testing.T) {
	f := newFixture(t, core.DefaultPolicy(), nil)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   string
	}{
		{"validation", http.MethodPost, "/api/orders", `{"requester":"Ana","material":"x","quantity":0}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"malformed json", http.MethodPost, "/api/orders", `{`, http.StatusBadRequest, "BAD_REQUEST"},
		{"unknown order", http.MethodGet, "/api/orders/OC404", "", http.StatusNotFound, "NOT_FOUND"},
		{"bad row", http.MethodPost, "/api/orders/abc/assign", `{}`, http.StatusBadRequest, "BAD_REQUEST"},
		{"bad rate", http.MethodGet, "/api/invoices/1/interest?rate=x", "", http.StatusBadRequest, "BAD_REQUEST"},
		{"bad month", http.MethodGet, "/api/orders?month=13", "", http.StatusBadRequest, "BAD_REQUEST"},
		{"unknown dashboard", http.MethodGet, "/api/dashboards/weather", "", http.StatusNotFound, "NOT_FOUND"},
		{"ai unavailable", http.MethodPost, "/api/receipt-notes", `{"note":"chegou NF 1"}`, http.StatusServiceUnavailable, "AI_UNAVAILABLE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := f.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.code, body["code"])
			assert.NotEmpty(t, body["request_id"])
		})
	}
}

func TestIllegalTransitionIsConflict(t *testing.T) {
	strict := core.DefaultPolicy()
	strict.StrictTransitions = true
	f := newFixture(t, strict, nil)

	resp, body := f.do(t, http.MethodPut, "/api/orders",
		`[{"requisition_number":"R1","requester":"Ana","material":"Toner","quantity":1,"request_date":"01/03/2024","order_number":"OC1","delivery_status":"ENTREGUE","row":0}]`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "ILLEGAL_TRANSITION", body["code"])
}

func TestReplaceOrdersIgnoresExtraShadowingKnownColumns(t *testing.T) {
	f := newFixture(t, core.DefaultPolicy(), nil)

	resp, _ := f.do(t, http.MethodPut, "/api/orders",
		`[{"requisition_number":"R1","requester":"Ana","material":"Toner","quantity":1,"request_date":"01/03/2024","order_number":"OC1","row":0,"extra":{"ORDEM_COMPRA":"OC-OUTRA","OBS":"x"}}]`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	tbl, err := f.mem.LoadTable(context.Background(), store.TableOrders)
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, "OC1", tbl.Rows[0]["ORDEM_COMPRA"])
	assert.Equal(t, "x", tbl.Rows[0]["OBS"])
}

func TestStoreFailureIsBadGateway(t *testing.T) {
	f := newFixture(t, core.DefaultPolicy(), nil)
	f.mem.FailLoad = map[string]error{store.TableOrders: errors.New("sheets quota exceeded")}

	resp, body := f.do(t, http.MethodGet, "/api/orders", "")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, body["error"], "sheets quota exceeded")

	resp, body = f.do(t, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "degraded", body["status"])
}

func TestReceiptNotes(t *testing.T) {
	parser := stubParser{draft: ai.ReceiptDraft{
		OrderNumber: "OC1", Supplier: "ACME", InvoiceNumber: "5", InvoiceTotal: "10.00", Volume: 1,
	}}
	f := newFixture(t, core.DefaultPolicy(), parser)

	resp, body := f.do(t, http.MethodPost, "/api/receipt-notes", `{"note":"chegou NF 5 da ACME, OC1"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)

	commit := `{"token":"` + token + `","open_invoice":false}`
	resp, body = f.do(t, http.MethodPost, "/api/receipt-notes/commit", commit)
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	assert.Contains(t, body["warnings"], "OC OC1 not found in orders; receipt stored unlinked")

	resp, _ = f.do(t, http.MethodPost, "/api/receipt-notes/commit", commit)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRegistryRoutes(t *testing.T) {
	f := newFixture(t, core.DefaultPolicy(), nil)

	resp, _ := f.do(t, http.MethodPost, "/api/reimbursements", `{"name":"Ana","value":"12.50","justification":"uber"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := f.do(t, http.MethodPatch, "/api/reimbursements/0", `{"status":"APROVADO"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "APROVADO", body["status"])

	resp, body = f.do(t, http.MethodGet, "/api/requesters", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["requesters"], 1)

	resp, _ = f.do(t, http.MethodGet, "/api/dashboards/reimbursements", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServiceRoutes(t *testing.T) {
	f := newFixture(t, core.DefaultPolicy(), nil)

	resp, body := f.do(t, http.MethodPost, "/api/services",
		`{"supplier":"Limpa Tudo","requester":"Ana","description":"Limpeza","start":"04/03/2024"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	assert.Equal(t, "11/03/2024", body["planned_end"])

	resp, body = f.do(t, http.MethodPost, "/api/services/0/complete", `{"rating":9}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)

	resp, body = f.do(t, http.MethodPost, "/api/services/0/complete", `{"rating":4,"comment":"ok"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, core.ServiceCompleted, body["status"])

	resp, body = f.do(t, http.MethodPost, "/api/services/0/complete", `{"rating":5}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "ILLEGAL_TRANSITION", body["code"])

	resp, body = f.do(t, http.MethodGet, "/api/services?status=concluido", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["services"], 1)

	resp, body = f.do(t, http.MethodGet, "/api/dashboards/servicos", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["completed"])
}

func TestMetricsAndCORS(t *testing.T) {
	f := newFixture(t, core.DefaultPolicy(), nil)
	f.do(t, http.MethodGet, "/api/orders", "")

	req, err := http.NewRequest(http.MethodOptions, f.srv.URL+"/api/orders", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))

	resp, err = http.Get(f.srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `panel_http_requests_total{method="GET",route="/api/orders",status="200"} 1`)
	assert.Contains(t, string(raw), "panel_store_operations_total")
}

func TestBrowserPanel(t *testing.T) {
	f := newFixture(t, core.DefaultPolicy(), nil)

	resp, err := http.Get(f.srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "Painel de Compras")

	resp, _ = f.do(t, http.MethodGet, "/panel.js", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
