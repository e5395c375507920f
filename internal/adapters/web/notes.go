package web

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"procurement-tracker/internal/ai"
)

type interpretNoteRequest struct {
	Note string `json:"note"`
}

type interpretNoteResponse struct {
	// Token is empty when the draft still needs clarification.
	Token string          `json:"token,omitempty"`
	Draft ai.ReceiptDraft `json:"draft"`
}

type commitNoteRequest struct {
	Token string `json:"token"`
	// Draft, when set, replaces the stored draft with the user's edited version.
	Draft       *ai.ReceiptDraft `json:"draft,omitempty"`
	OpenInvoice bool             `json:"open_invoice"`
}

// apiInterpretNote handles POST /api/receipt-notes. The draft is held under a
// token until committed or expired.
func (h *Handler) apiInterpretNote(w http.ResponseWriter, r *http.Request) {
	var req interpretNoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Note) == "" {
		writeError(w, r, "note is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	draft, err := h.svc.InterpretReceiptNote(r.Context(), req.Note)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := interpretNoteResponse{Draft: *draft}
	if !draft.IsClarification {
		resp.Token = uuid.NewString()
		h.pending.put(resp.Token, *draft)
	}
	writeJSON(w, http.StatusOK, resp)
}

// apiCommitNote handles POST /api/receipt-notes/commit.
func (h *Handler) apiCommitNote(w http.ResponseWriter, r *http.Request) {
	var req commitNoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	draft, ok := h.pending.take(req.Token)
	if !ok {
		writeError(w, r, "draft not found or expired", "NOT_FOUND", http.StatusNotFound)
		return
	}
	if req.Draft != nil {
		draft = *req.Draft
	}

	reg, err := h.svc.CommitReceiptDraft(r.Context(), draft, req.OpenInvoice)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, reg)
}
