package httpx

import (
	"net/http"

	"github.com/draftforge/discovery-engine/internal/domain/model"
	"github.com/draftforge/discovery-engine/internal/service"
)

// SessionHandlers provides HTTP handlers for session save and resume.
type SessionHandlers struct {
	Svc *service.ResumeService
}

// SaveSession handles HTTP requests to save a client session snapshot.
// The snapshot lands in the draft store immediately; the durable write is
// debounced, so a success here means "accepted", not "persisted".
func (h *SessionHandlers) SaveSession(w http.ResponseWriter, r *http.Request) {
	var snap model.SessionSnapshot
	if !DecodeJSON(w, r, &snap) {
		return
	}

	if err := h.Svc.SaveSession(r.Context(), ownerID(r), r.PathValue("id"), &snap); err != nil {
		WriteAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// Resume handles HTTP requests to resume a session, merging any recovered
// client draft into the job's stage data.
func (h *SessionHandlers) Resume(w http.ResponseWriter, r *http.Request) {
	result, err := h.Svc.Resume(r.Context(), ownerID(r), r.PathValue("id"))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}
