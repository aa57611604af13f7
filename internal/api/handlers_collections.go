package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/curiohq/curio/server/internal/api/respond"
	"github.com/curiohq/curio/server/internal/api/validate"
	"github.com/curiohq/curio/server/internal/services"
)

type CollectionHandler struct {
	svc *services.CollectionService
}

func NewCollectionHandler(svc *services.CollectionService) *CollectionHandler {
	return &CollectionHandler{svc: svc}
}

// Create POST /api/collections
func (h *CollectionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON body")
		return
	}
	if err := validate.CollectionName(req.Name); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	col, err := h.svc.CreateCollection(r.Context(), actorID(r), req.Name)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, col)
}

// List GET /api/collections
func (h *CollectionHandler) List(w http.ResponseWriter, r *http.Request) {
	cols, err := h.svc.ListCollections(r.Context(), actorID(r))
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"collections": cols,
		"count":       len(cols),
	})
}

// Get GET /api/collections/{collectionId}
func (h *CollectionHandler) Get(w http.ResponseWriter, r *http.Request) {
	col, err := h.svc.GetCollection(r.Context(), actorID(r), mux.Vars(r)["collectionId"])
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, col)
}

// Rename PATCH /api/collections/{collectionId}
func (h *CollectionHandler) Rename(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON body")
		return
	}
	if err := validate.CollectionName(req.Name); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	col, err := h.svc.RenameCollection(r.Context(), actorID(r), mux.Vars(r)["collectionId"], req.Name)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, col)
}

// Delete DELETE /api/collections/{collectionId}
func (h *CollectionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteCollection(r.Context(), actorID(r), mux.Vars(r)["collectionId"]); err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveItem DELETE /api/collections/{collectionId}/item/{itemId}
func (h *CollectionHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	col, err := h.svc.RemoveItem(r.Context(), actorID(r), vars["collectionId"], vars["itemId"])
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, col)
}
