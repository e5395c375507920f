package web

import (
	"net/http"

	"procurement-tracker/internal/core"
)

// apiListRequesters handles GET /api/requesters.
func (h *Handler) apiListRequesters(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListRequesters(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"requesters": list})
}

// apiRegisterRequester handles POST /api/requesters.
func (h *Handler) apiRegisterRequester(w http.ResponseWriter, r *http.Request) {
	var req core.Requester
	if !decodeJSON(w, r, &req) {
		return
	}
	added, err := h.svc.RegisterRequester(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

// apiListReimbursements handles GET /api/reimbursements?status=.
func (h *Handler) apiListReimbursements(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListReimbursements(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reimbursements": list})
}

// apiSubmitReimbursement handles POST /api/reimbursements.
func (h *Handler) apiSubmitReimbursement(w http.ResponseWriter, r *http.Request) {
	var req core.NewReimbursement
	if !decodeJSON(w, r, &req) {
		return
	}
	added, err := h.svc.SubmitReimbursement(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

// apiUpdateReimbursement handles PATCH /api/reimbursements/{index} with {"status": "..."}.
func (h *Handler) apiUpdateReimbursement(w http.ResponseWriter, r *http.Request) {
	row, ok := intParam(w, r, "index")
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	updated, err := h.svc.UpdateReimbursementStatus(r.Context(), row, req.Status)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
