package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/curiohq/curio/server/internal/api/respond"
	"github.com/curiohq/curio/server/internal/services"
)

type NoteHandler struct {
	svc *services.NoteService
}

func NewNoteHandler(svc *services.NoteService) *NoteHandler {
	return &NoteHandler{svc: svc}
}

// Create POST /api/notes
func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON body")
		return
	}

	note, err := h.svc.CreateNote(r.Context(), actorID(r), req.Title, req.Content)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, note)
}

// List GET /api/notes
func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	notes, err := h.svc.ListNotes(r.Context(), actorID(r))
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"notes": notes,
		"count": len(notes),
	})
}

// Get GET /api/notes/{noteId}
func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	note, err := h.svc.GetNote(r.Context(), actorID(r), mux.Vars(r)["noteId"])
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, note)
}

// Update PATCH /api/notes/{noteId}
func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title   *string `json:"title"`
		Content *string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON body")
		return
	}

	note, err := h.svc.UpdateNote(r.Context(), actorID(r), mux.Vars(r)["noteId"], req.Title, req.Content)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, note)
}

// Delete DELETE /api/notes/{noteId}
func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteNote(r.Context(), actorID(r), mux.Vars(r)["noteId"]); err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
