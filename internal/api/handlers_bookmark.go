package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/curiohq/curio/server/internal/api/respond"
	"github.com/curiohq/curio/server/internal/bookmark"
	"github.com/curiohq/curio/server/internal/model"
)

// BookmarkHandler exposes the collection add tool endpoint.
type BookmarkHandler struct {
	svc *bookmark.Service
}

func NewBookmarkHandler(svc *bookmark.Service) *BookmarkHandler {
	return &BookmarkHandler{svc: svc}
}

// failure mirrors the success shape so tool callers can always read the same
// fields.
func bookmarkFailure(w http.ResponseWriter, status int, message string) {
	respond.WriteJSON(w, status, bookmark.AddResult{
		Success:      false,
		CollectionID: "",
		ItemsAdded:   0,
		Message:      message,
	})
}

// Add POST /api/tools/collection/add
func (h *BookmarkHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req bookmark.AddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		bookmarkFailure(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	res, err := h.svc.Add(r.Context(), actorID(r), &req)
	if err != nil {
		if errors.Is(err, model.ErrValidation) {
			bookmarkFailure(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Error().Err(err).Msg("bookmark add failed")
		bookmarkFailure(w, http.StatusInternalServerError, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, res)
}
