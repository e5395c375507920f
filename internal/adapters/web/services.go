package web

import (
	"net/http"

	"procurement-tracker/internal/core"
)

// apiListServiceJobs handles GET /api/services?status=.
func (h *Handler) apiListServiceJobs(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListServiceJobs(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"services": list})
}

// apiRegisterServiceJob handles POST /api/services.
func (h *Handler) apiRegisterServiceJob(w http.ResponseWriter, r *http.Request) {
	var req core.NewServiceJob
	if !decodeJSON(w, r, &req) {
		return
	}
	added, err := h.svc.RegisterServiceJob(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

// apiCompleteServiceJob handles POST /api/services/{index}/complete with {"rating": 1-5, "comment": "..."}.
func (h *Handler) apiCompleteServiceJob(w http.ResponseWriter, r *http.Request) {
	row, ok := intParam(w, r, "index")
	if !ok {
		return
	}
	var req core.ServiceRating
	if !decodeJSON(w, r, &req) {
		return
	}
	done, err := h.svc.CompleteServiceJob(r.Context(), row, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, done)
}
