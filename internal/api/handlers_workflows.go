package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/curiohq/curio/server/internal/api/respond"
	"github.com/curiohq/curio/server/internal/services"
)

type WorkflowHandler struct {
	svc *services.WorkflowService
}

func NewWorkflowHandler(svc *services.WorkflowService) *WorkflowHandler {
	return &WorkflowHandler{svc: svc}
}

// Create POST /api/workflows
// Persists the workflow and starts its background run.
func (h *WorkflowHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req services.CreateWorkflowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON body")
		return
	}

	wf, err := h.svc.StartWorkflow(r.Context(), actorID(r), &req)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusAccepted, wf)
}

// List GET /api/workflows
func (h *WorkflowHandler) List(w http.ResponseWriter, r *http.Request) {
	wfs, err := h.svc.ListWorkflows(r.Context(), actorID(r))
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"workflows": wfs,
		"count":     len(wfs),
	})
}

// Get GET /api/workflows/{workflowId}
func (h *WorkflowHandler) Get(w http.ResponseWriter, r *http.Request) {
	wf, err := h.svc.GetWorkflow(r.Context(), actorID(r), mux.Vars(r)["workflowId"])
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, wf)
}

// Cancel POST /api/workflows/{workflowId}/cancel
func (h *WorkflowHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.CancelWorkflow(r.Context(), actorID(r), mux.Vars(r)["workflowId"]); err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Workflow cancelled",
	})
}

// Delete DELETE /api/workflows/{workflowId}
func (h *WorkflowHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteWorkflow(r.Context(), actorID(r), mux.Vars(r)["workflowId"]); err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Workflow deleted",
	})
}
