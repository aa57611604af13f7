package api

import (
	"encoding/json"
	"net/http"

	"github.com/curiohq/curio/server/internal/api/respond"
	"github.com/curiohq/curio/server/internal/github"
)

type GitHubHandler struct {
	client *github.Client
}

func NewGitHubHandler(client *github.Client) *GitHubHandler {
	return &GitHubHandler{client: client}
}

// Analyze POST /api/github/analyze
// Builds an inferred architecture graph for a repository.
func (h *GitHubHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Owner string `json:"owner"`
		Repo  string `json:"repo"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON body")
		return
	}
	if req.Owner == "" || req.Repo == "" {
		respond.WriteBadRequest(w, "owner and repo are required")
		return
	}

	analysis, err := h.client.AnalyzeRepository(r.Context(), req.Owner, req.Repo)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, analysis)
}
