package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/curiohq/curio/server/internal/api/respond"
	"github.com/curiohq/curio/server/internal/api/validate"
	"github.com/curiohq/curio/server/internal/model"
	"github.com/curiohq/curio/server/internal/services"
)

// SearchHandler exposes live search and search-session endpoints.
type SearchHandler struct {
	svc *services.SessionService
}

func NewSearchHandler(svc *services.SessionService) *SearchHandler {
	return &SearchHandler{svc: svc}
}

// Search POST /api/search
// Runs a live search and records the results as a session.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query  string `json:"query"`
		Source string `json:"source"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON body")
		return
	}

	session, err := h.svc.Search(r.Context(), actorID(r), req.Query, req.Source)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"sessionId": session.SessionID,
		"query":     session.Query,
		"source":    session.Source,
		"results":   session.Results,
		"createdAt": session.CreationTime.Format(time.RFC3339Nano),
	})
}

// RecordSession POST /api/search-sessions
// Stores results a client obtained on its own, so later bookmark calls
// resolve against exactly what the user saw.
func (h *SearchHandler) RecordSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query   string            `json:"query"`
		Source  string            `json:"source"`
		Results []model.RawResult `json:"results"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON body")
		return
	}

	session, err := h.svc.Record(r.Context(), actorID(r), req.Query, req.Source, req.Results)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"sessionId": session.SessionID,
		"createdAt": session.CreationTime.Format(time.RFC3339Nano),
	})
}

// LatestSession GET /api/search-sessions?query=...&source=...
// Returns the most recent session for the query. An absent session is not an
// error; clients treat it as an empty result set.
func (h *SearchHandler) LatestSession(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	source := r.URL.Query().Get("source")
	if query == "" {
		respond.WriteBadRequest(w, "query parameter is required")
		return
	}

	session, err := h.svc.Latest(r.Context(), actorID(r), query, source)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	if session == nil {
		respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"results":   []model.RawResult{},
			"sessionId": nil,
		})
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"results":   session.Results,
		"sessionId": session.SessionID,
		"query":     session.Query,
		"source":    session.Source,
		"createdAt": session.CreationTime.Format(time.RFC3339Nano),
	})
}

// ListSessions GET /api/search-sessions/recent?limit=...
func (h *SearchHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	limit, err := validate.Limit(r.URL.Query().Get("limit"), 20, 100)
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	sessions, err := h.svc.ListSessions(r.Context(), actorID(r), limit)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": sessions,
		"count":    len(sessions),
	})
}
