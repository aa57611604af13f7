package api

import (
	"github.com/gorilla/mux"

	"github.com/curiohq/curio/server/internal/auth"
	"github.com/curiohq/curio/server/internal/bookmark"
	"github.com/curiohq/curio/server/internal/github"
	"github.com/curiohq/curio/server/internal/health"
	"github.com/curiohq/curio/server/internal/api/recovery"
	"github.com/curiohq/curio/server/internal/services"
)

// Deps carries everything the router needs. Fields left nil disable the
// matching routes, which keeps tests free to wire only what they exercise.
type Deps struct {
	Authorizer  auth.Authorizer
	Users       *services.UserService
	Sessions    *services.SessionService
	Collections *services.CollectionService
	Notes       *services.NoteService
	Events      *services.EventService
	Reports     *services.ReportService
	Workflows   *services.WorkflowService
	Bookmarks   *bookmark.Service
	GitHub      *github.Client
	Health      *health.ServiceHealthChecker
}

// NewRouter wires every HTTP route. The health endpoint is served without
// authentication; everything else under /api requires a bearer API key.
func NewRouter(deps Deps) *mux.Router {
	root := mux.NewRouter()
	root.Use(recovery.Middleware)

	if deps.Health != nil {
		root.HandleFunc("/api/health", NewHealthHandler(deps.Health).CheckHealth).Methods("GET")
	}

	authed := root.PathPrefix("/api").Subrouter()
	authed.Use(AuthMiddleware(deps.Authorizer, deps.Users))

	if deps.Bookmarks != nil {
		h := NewBookmarkHandler(deps.Bookmarks)
		authed.HandleFunc("/tools/collection/add", h.Add).Methods("POST")
	}

	if deps.Sessions != nil {
		h := NewSearchHandler(deps.Sessions)
		authed.HandleFunc("/search", h.Search).Methods("POST")
		authed.HandleFunc("/search-sessions", h.RecordSession).Methods("POST")
		authed.HandleFunc("/search-sessions", h.LatestSession).Methods("GET")
		authed.HandleFunc("/search-sessions/recent", h.ListSessions).Methods("GET")
	}

	if deps.Collections != nil {
		h := NewCollectionHandler(deps.Collections)
		authed.HandleFunc("/collections", h.Create).Methods("POST")
		authed.HandleFunc("/collections", h.List).Methods("GET")
		authed.HandleFunc("/collections/{collectionId}", h.Get).Methods("GET")
		authed.HandleFunc("/collections/{collectionId}", h.Rename).Methods("PATCH")
		authed.HandleFunc("/collections/{collectionId}", h.Delete).Methods("DELETE")
		authed.HandleFunc("/collections/{collectionId}/item/{itemId}", h.RemoveItem).Methods("DELETE")
	}

	if deps.Notes != nil {
		h := NewNoteHandler(deps.Notes)
		authed.HandleFunc("/notes", h.Create).Methods("POST")
		authed.HandleFunc("/notes", h.List).Methods("GET")
		authed.HandleFunc("/notes/{noteId}", h.Get).Methods("GET")
		authed.HandleFunc("/notes/{noteId}", h.Update).Methods("PATCH")
		authed.HandleFunc("/notes/{noteId}", h.Delete).Methods("DELETE")
	}

	if deps.Events != nil {
		h := NewEventHandler(deps.Events)
		authed.HandleFunc("/calendar", h.Create).Methods("POST")
		authed.HandleFunc("/calendar", h.List).Methods("GET")
		authed.HandleFunc("/calendar/{eventId}", h.Update).Methods("PATCH")
		authed.HandleFunc("/calendar/{eventId}", h.Delete).Methods("DELETE")
	}

	if deps.Reports != nil {
		h := NewReportHandler(deps.Reports)
		authed.HandleFunc("/reports", h.List).Methods("GET")
		authed.HandleFunc("/reports/{reportId}", h.Get).Methods("GET")
		authed.HandleFunc("/reports/{reportId}", h.Delete).Methods("DELETE")
	}

	if deps.Workflows != nil {
		h := NewWorkflowHandler(deps.Workflows)
		authed.HandleFunc("/workflows", h.Create).Methods("POST")
		authed.HandleFunc("/workflows", h.List).Methods("GET")
		authed.HandleFunc("/workflows/{workflowId}", h.Get).Methods("GET")
		authed.HandleFunc("/workflows/{workflowId}", h.Delete).Methods("DELETE")
		authed.HandleFunc("/workflows/{workflowId}/cancel", h.Cancel).Methods("POST")
	}

	if deps.GitHub != nil {
		h := NewGitHubHandler(deps.GitHub)
		authed.HandleFunc("/github/analyze", h.Analyze).Methods("POST")
	}

	return root
}
