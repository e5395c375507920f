package web

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"procurement-tracker/internal/app"
	"procurement-tracker/internal/core"
	"procurement-tracker/internal/observability"
	assets "procurement-tracker/web"
)

// maxBodyBytes caps JSON request bodies. A full orders-table replace is the largest.
const maxBodyBytes = 8 << 20

// Options configures NewHandler.
type Options struct {
	// AllowedOrigins is a comma-separated CORS allow list. Empty disables CORS.
	AllowedOrigins string
	Logger         *zap.Logger
	Metrics        *observability.Metrics
	// Gatherer serves /metrics. Defaults to prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
}

// Handler holds the ApplicationService, the chi router, and the pending draft store.
type Handler struct {
	svc     app.ApplicationService
	router  chi.Router
	pending *pendingStore
	log     *zap.Logger
}

// NewHandler creates and wires the chi router with all routes. The pending
// draft purge loop stops when ctx is cancelled.
func NewHandler(ctx context.Context, svc app.ApplicationService, opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}

	h := &Handler{
		svc:     svc,
		pending: newPendingStore(),
		log:     opts.Logger,
	}
	h.pending.startPurge(ctx)

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(opts.Logger))
	r.Use(Metrics(opts.Metrics))
	r.Use(Recoverer)
	r.Use(CORS(opts.AllowedOrigins))
	r.Use(RequestBodyLimit(maxBodyBytes))

	// ── Health / metrics ──────────────────────────────────────────────────────
	r.Get("/api/health", h.health)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))

	// ── Workspace ─────────────────────────────────────────────────────────────
	r.Get("/api/workspace", h.apiWorkspace)
	r.Post("/api/recompute", h.apiRecompute)

	// ── Purchasing ────────────────────────────────────────────────────────────
	r.Get("/api/orders", h.apiListOrders)
	r.Post("/api/orders", h.apiCreateRequisition)
	r.Put("/api/orders", h.apiReplaceOrders)
	r.Post("/api/orders/reconcile", h.apiReconcile)
	r.Get("/api/orders/{ref}", h.apiGetOrder)
	r.Post("/api/orders/{ref}/assign", h.apiAssignPurchaseOrder)

	// ── Warehouse ─────────────────────────────────────────────────────────────
	r.Get("/api/receipts", h.apiListReceipts)
	r.Post("/api/receipts", h.apiRegisterReceipt)

	// ── Fiscal ────────────────────────────────────────────────────────────────
	r.Get("/api/invoices", h.apiListInvoices)
	r.Post("/api/invoices", h.apiRegisterInvoice)
	r.Post("/api/invoices/interest", h.apiApplyInterest)
	r.Patch("/api/invoices/{nf}", h.apiUpdateInvoice)
	r.Get("/api/invoices/{nf}/interest", h.apiEstimateInterest)

	// ── Reports ───────────────────────────────────────────────────────────────
	r.Get("/api/dashboards/{name}", h.apiDashboard)

	// ── Registry ──────────────────────────────────────────────────────────────
	r.Get("/api/requesters", h.apiListRequesters)
	r.Post("/api/requesters", h.apiRegisterRequester)
	r.Get("/api/reimbursements", h.apiListReimbursements)
	r.Post("/api/reimbursements", h.apiSubmitReimbursement)
	r.Patch("/api/reimbursements/{index}", h.apiUpdateReimbursement)

	// ── Contracted services ───────────────────────────────────────────────────
	r.Get("/api/services", h.apiListServiceJobs)
	r.Post("/api/services", h.apiRegisterServiceJob)
	r.Post("/api/services/{index}/complete", h.apiCompleteServiceJob)

	// ── Delivery notes (AI) ───────────────────────────────────────────────────
	r.Post("/api/receipt-notes", h.apiInterpretNote)
	r.Post("/api/receipt-notes/commit", h.apiCommitNote)

	// ── Browser panel ─────────────────────────────────────────────────────────
	static, err := fs.Sub(assets.Static, "static")
	if err != nil {
		panic("web: static assets not embedded: " + err.Error())
	}
	r.Handle("/*", http.FileServer(http.FS(static)))

	h.router = r
	return r
}

// health returns service status and per-table load failures.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status      string   `json:"status"`
		TableErrors []string `json:"table_errors,omitempty"`
	}
	ws := h.svc.LoadWorkspace(r.Context())
	status := "ok"
	if len(ws.TableErrors) > 0 {
		status = "degraded"
	}
	writeJSON(w, http.StatusOK, response{Status: status, TableErrors: ws.TableErrors})
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}

// queryPeriod reads ?year=&month=. Absent values mean "all".
func queryPeriod(r *http.Request) (core.Period, error) {
	var p core.Period
	q := r.URL.Query()
	if v := q.Get("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return p, errors.New("year must be a number")
		}
		p.Year = year
	}
	if v := q.Get("month"); v != "" {
		month, err := strconv.Atoi(v)
		if err != nil || month < 1 || month > 12 {
			return p, errors.New("month must be 1-12")
		}
		p.Month = month
	}
	return p, nil
}

// intParam reads a numeric URL parameter, writing a 400 on failure.
func intParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		writeError(w, r, name+" must be a number", "BAD_REQUEST", http.StatusBadRequest)
		return 0, false
	}
	return n, true
}
