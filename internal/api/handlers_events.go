package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/curiohq/curio/server/internal/api/respond"
	"github.com/curiohq/curio/server/internal/model"
	"github.com/curiohq/curio/server/internal/services"
)

type EventHandler struct {
	svc *services.EventService
}

func NewEventHandler(svc *services.EventService) *EventHandler {
	return &EventHandler{svc: svc}
}

type eventRequest struct {
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	StartTime   time.Time  `json:"startTime"`
	EndTime     *time.Time `json:"endTime"`
}

// Create POST /api/calendar
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON body")
		return
	}

	ev, err := h.svc.CreateEvent(r.Context(), &model.CalendarEvent{
		UserID:      actorID(r),
		Title:       req.Title,
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
	})
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, ev)
}

// List GET /api/calendar
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.ListEvents(r.Context(), actorID(r))
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"events": events,
		"count":  len(events),
	})
}

// Update PATCH /api/calendar/{eventId}
func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON body")
		return
	}

	ev, err := h.svc.UpdateEvent(r.Context(), actorID(r), &model.CalendarEvent{
		EventID:     mux.Vars(r)["eventId"],
		Title:       req.Title,
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
	})
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, ev)
}

// Delete DELETE /api/calendar/{eventId}
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteEvent(r.Context(), actorID(r), mux.Vars(r)["eventId"]); err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
