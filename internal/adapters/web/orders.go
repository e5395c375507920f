package web

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"procurement-tracker/internal/app"
	"procurement-tracker/internal/core"
)

// apiWorkspace handles GET /api/workspace.
func (h *Handler) apiWorkspace(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.LoadWorkspace(r.Context()))
}

// apiRecompute handles POST /api/recompute?as_of=DD/MM/YYYY.
func (h *Handler) apiRecompute(w http.ResponseWriter, r *http.Request) {
	asOf := core.ParseDate(r.URL.Query().Get("as_of"))
	writeJSON(w, http.StatusOK, h.svc.Recompute(r.Context(), asOf))
}

// apiListOrders handles GET /api/orders.
// Query: year, month, requester, department, supplier, status, q (requisition substring), without_po.
func (h *Handler) apiListOrders(w http.ResponseWriter, r *http.Request) {
	period, err := queryPeriod(r)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	q := r.URL.Query()
	filter := core.OrderFilter{
		Period:              period,
		Requester:           q.Get("requester"),
		Department:          q.Get("department"),
		Supplier:            q.Get("supplier"),
		DeliveryStatus:      q.Get("status"),
		RequisitionContains: q.Get("q"),
		OnlyWithoutPO:       q.Get("without_po") == "true",
	}
	result, err := h.svc.ListOrders(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// apiCreateRequisition handles POST /api/orders.
func (h *Handler) apiCreateRequisition(w http.ResponseWriter, r *http.Request) {
	var req core.NewRequisition
	if !decodeJSON(w, r, &req) {
		return
	}
	order, err := h.svc.CreateRequisition(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

// apiReplaceOrders handles PUT /api/orders with the full edited table.
func (h *Handler) apiReplaceOrders(w http.ResponseWriter, r *http.Request) {
	var orders []core.Order
	if !decodeJSON(w, r, &orders) {
		return
	}
	result, err := h.svc.ReplaceOrders(r.Context(), orders)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// apiReconcile handles POST /api/orders/reconcile.
func (h *Handler) apiReconcile(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ReconcileDeliveries(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// apiGetOrder handles GET /api/orders/{ref} where ref is a purchase-order number.
func (h *Handler) apiGetOrder(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetOrder(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// apiAssignPurchaseOrder handles POST /api/orders/{ref}/assign where ref is the table row.
func (h *Handler) apiAssignPurchaseOrder(w http.ResponseWriter, r *http.Request) {
	row, ok := intParam(w, r, "ref")
	if !ok {
		return
	}
	var a core.AssignPO
	if !decodeJSON(w, r, &a) {
		return
	}
	order, err := h.svc.AssignPurchaseOrder(r.Context(), app.AssignPORequest{Row: row, AssignPO: a})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// apiDashboard handles GET /api/dashboards/{name}?year=&month=.
func (h *Handler) apiDashboard(w http.ResponseWriter, r *http.Request) {
	period, err := queryPeriod(r)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	report, err := app.Dashboard(r.Context(), h.svc, chi.URLParam(r, "name"), period)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return splitAndTrim(strings.ReplaceAll(s, ";", ","))
}
