package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"procurement-tracker/internal/app"
	"procurement-tracker/internal/core"
)

// ── Warehouse ─────────────────────────────────────────────────────────────────

// apiListReceipts handles GET /api/receipts?year=&month=&supplier=&order=.
func (h *Handler) apiListReceipts(w http.ResponseWriter, r *http.Request) {
	period, err := queryPeriod(r)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	q := r.URL.Query()
	result, err := h.svc.ListReceipts(r.Context(), core.ReceiptFilter{
		Period:      period,
		Supplier:    q.Get("supplier"),
		OrderNumber: q.Get("order"),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// apiRegisterReceipt handles POST /api/receipts.
func (h *Handler) apiRegisterReceipt(w http.ResponseWriter, r *http.Request) {
	var req app.ReceiveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	reg, err := h.svc.RegisterReceipt(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, reg)
}

// ── Fiscal ────────────────────────────────────────────────────────────────────

// apiListInvoices handles GET /api/invoices.
// Query: nf, order, supplier, status (comma-separated), from, to (DD/MM/YYYY).
func (h *Handler) apiListInvoices(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := h.svc.ListInvoices(r.Context(), core.InvoiceQuery{
		InvoiceNumberContains: q.Get("nf"),
		OrderNumberContains:   q.Get("order"),
		Supplier:              q.Get("supplier"),
		Statuses:              splitList(q.Get("status")),
		From:                  core.ParseDate(q.Get("from")),
		To:                    core.ParseDate(q.Get("to")),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// apiRegisterInvoice handles POST /api/invoices.
func (h *Handler) apiRegisterInvoice(w http.ResponseWriter, r *http.Request) {
	var in core.NewInvoice
	if !decodeJSON(w, r, &in) {
		return
	}
	reg, err := h.svc.RegisterInvoice(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, reg)
}

// apiUpdateInvoice handles PATCH /api/invoices/{nf}.
func (h *Handler) apiUpdateInvoice(w http.ResponseWriter, r *http.Request) {
	var u core.InvoiceUpdate
	if !decodeJSON(w, r, &u) {
		return
	}
	inv, err := h.svc.UpdateInvoice(r.Context(), chi.URLParam(r, "nf"), u)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

// apiEstimateInterest handles GET /api/invoices/{nf}/interest?rate=&as_of=.
func (h *Handler) apiEstimateInterest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rate, err := decimal.NewFromString(q.Get("rate"))
	if err != nil {
		writeError(w, r, "rate must be a decimal daily percentage", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	est, err := h.svc.EstimateInterest(r.Context(), chi.URLParam(r, "nf"), rate, core.ParseDate(q.Get("as_of")))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, est)
}

// apiApplyInterest handles POST /api/invoices/interest.
func (h *Handler) apiApplyInterest(w http.ResponseWriter, r *http.Request) {
	var req app.ApplyInterestRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.ApplyInterest(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
