package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rs/zerolog"

	"github.com/curiohq/curio/server/internal/ai"
	"github.com/curiohq/curio/server/internal/auth"
	"github.com/curiohq/curio/server/internal/bookmark"
	"github.com/curiohq/curio/server/internal/github"
	"github.com/curiohq/curio/server/internal/health"
	"github.com/curiohq/curio/server/internal/model"
	"github.com/curiohq/curio/server/internal/search"
	"github.com/curiohq/curio/server/internal/services"
	"github.com/curiohq/curio/server/internal/store"
	"github.com/curiohq/curio/server/internal/store/sqlite"
	"github.com/curiohq/curio/server/internal/workflows"
)

type fakeProvider struct {
	name    string
	results []model.RawResult
	calls   int
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Search(ctx context.Context, query string, limit int) ([]model.RawResult, error) {
	f.calls++
	return f.results, nil
}

type fakeSummarizer struct{}

func (fakeSummarizer) ComposeReport(ctx context.Context, query string, material []string, format string) (*ai.ReportDraft, error) {
	return &ai.ReportDraft{
		Title:   "Report: " + query,
		Summary: "overview",
		Sections: []model.ReportSection{
			{Title: "Findings", Content: "findings body"},
		},
	}, nil
}

type testEnv struct {
	store    store.Store
	registry *search.Registry
	runner   *workflows.Runner
	github   *github.Client
	srv      *httptest.Server
	provider *fakeProvider
}

func newTestEnv(t *testing.T, githubBaseURL string) *testEnv {
	t.Helper()

	st, err := sqlite.New(filepath.Join(t.TempDir(), "curio.db"))
	require.NoError(t, err)

	provider := &fakeProvider{name: "google", results: []model.RawResult{
		{"title": "Go", "url": "https://go.dev", "snippet": "the language", "thumbnail": "https://go.dev/t.png"},
		{"title": "Gophers", "url": "https://go.dev/blog", "snippet": "the blog"},
	}}
	registry := search.NewRegistry(provider)

	log := zerolog.Nop()
	runner := workflows.NewRunner(st, registry, fakeSummarizer{}, log)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = runner.Shutdown(ctx)
	})

	gh := github.NewClient(githubBaseURL, "")

	users := services.NewUserService(st)
	deps := Deps{
		Authorizer:  auth.NewStaticAuthorizer(),
		Users:       users,
		Sessions:    services.NewSessionService(st, registry, 10),
		Collections: services.NewCollectionService(st),
		Notes:       services.NewNoteService(st),
		Events:      services.NewEventService(st),
		Reports:     services.NewReportService(st),
		Workflows:   services.NewWorkflowService(st, runner),
		Bookmarks:   bookmark.NewService(st, registry, 10, log),
		GitHub:      gh,
	}
	srv := httptest.NewServer(NewRouter(deps))
	t.Cleanup(srv.Close)

	return &testEnv{store: st, registry: registry, runner: runner, github: gh, srv: srv, provider: provider}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, out interface{}) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, e.srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+auth.LocalDevAPIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestRouterRejectsMissingAndInvalidKeys(t *testing.T) {
	env := newTestEnv(t, "")

	resp, err := http.Get(env.srv.URL + "/api/collections")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, env.srv.URL+"/api/collections", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer not-a-key")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHealthEndpointIsUnauthenticated(t *testing.T) {
	st, err := sqlite.New(filepath.Join(t.TempDir(), "curio.db"))
	require.NoError(t, err)

	checker := health.NewServiceHealthChecker(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go checker.Start(ctx, 10*time.Millisecond)

	srv := httptest.NewServer(NewRouter(Deps{
		Authorizer: auth.NewStaticAuthorizer(),
		Users:      services.NewUserService(st),
		Health:     checker,
	}))
	defer srv.Close()

	deadline := time.Now().Add(time.Second)
	for {
		resp, err := http.Get(srv.URL + "/api/health")
		require.NoError(t, err)
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		_ = resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			assert.Equal(t, "UP", body["status"])
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("health never reported UP, last body %v", body)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestBookmarkDirectAddThroughRouter(t *testing.T) {
	env := newTestEnv(t, "")

	var res bookmark.AddResult
	status := env.do(t, http.MethodPost, "/api/tools/collection/add", map[string]interface{}{
		"collectionName": "Reading List",
		"items": []map[string]string{
			{"url": "https://go.dev", "title": "Go"},
			{"url": "https://pkg.go.dev"},
		},
	}, &res)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, res.Success)
	assert.Equal(t, 2, res.ItemsAdded)
	assert.NotEmpty(t, res.CollectionID)

	var col model.Collection
	status = env.do(t, http.MethodGet, "/api/collections/"+res.CollectionID, nil, &col)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Reading List", col.Name)
	require.Len(t, col.Items, 2)
	assert.Equal(t, "Untitled", col.Items[1].Title)
}

func TestBookmarkValidationKeepsToolResultShape(t *testing.T) {
	env := newTestEnv(t, "")

	var res bookmark.AddResult
	status := env.do(t, http.MethodPost, "/api/tools/collection/add", map[string]interface{}{
		"collectionName": "",
	}, &res)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, res.Success)
	assert.Zero(t, res.ItemsAdded)
	assert.NotEmpty(t, res.Message)
}

func TestSearchThenBookmarkUsesRecordedSession(t *testing.T) {
	env := newTestEnv(t, "")

	var searchRes map[string]interface{}
	status := env.do(t, http.MethodPost, "/api/search", map[string]string{
		"query":  "golang",
		"source": "google",
	}, &searchRes)
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, searchRes["sessionId"])
	require.Equal(t, 1, env.provider.calls)

	var res bookmark.AddResult
	status = env.do(t, http.MethodPost, "/api/tools/collection/add", map[string]interface{}{
		"collectionName": "Research",
		"searchQuery":    "golang",
		"searchType":     "web",
		"indices":        []int{1},
	}, &res)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, res.Success)
	assert.Equal(t, 1, res.ItemsAdded)
	// Resolved from the recorded session, not a fresh upstream call.
	assert.Equal(t, 1, env.provider.calls)

	var col model.Collection
	env.do(t, http.MethodGet, "/api/collections/"+res.CollectionID, nil, &col)
	require.Len(t, col.Items, 1)
	assert.Equal(t, "Gophers", col.Items[0].Title)
	assert.Equal(t, "https://go.dev/blog", col.Items[0].URL)
}

func TestCollectionLifecycleThroughRouter(t *testing.T) {
	env := newTestEnv(t, "")

	var col model.Collection
	status := env.do(t, http.MethodPost, "/api/collections", map[string]string{"name": "Papers"}, &col)
	require.Equal(t, http.StatusCreated, status)

	status = env.do(t, http.MethodPost, "/api/collections", map[string]string{"name": "Papers"}, nil)
	assert.Equal(t, http.StatusConflict, status)

	var renamed model.Collection
	status = env.do(t, http.MethodPatch, "/api/collections/"+col.CollectionID, map[string]string{"name": "Articles"}, &renamed)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Articles", renamed.Name)

	status = env.do(t, http.MethodDelete, "/api/collections/"+col.CollectionID, nil, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status = env.do(t, http.MethodGet, "/api/collections/"+col.CollectionID, nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestWorkflowLifecycleThroughRouter(t *testing.T) {
	env := newTestEnv(t, "")

	var wf model.Workflow
	status := env.do(t, http.MethodPost, "/api/workflows", map[string]interface{}{
		"title":   "Go research",
		"query":   "golang concurrency",
		"sources": []string{"web"},
		"depth":   "quick",
	}, &wf)
	require.Equal(t, http.StatusAccepted, status)
	require.NotEmpty(t, wf.WorkflowID)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, env.runner.Shutdown(ctx))

	var done model.Workflow
	status = env.do(t, http.MethodGet, "/api/workflows/"+wf.WorkflowID, nil, &done)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, model.WorkflowCompleted, done.Status)
	require.NotNil(t, done.ReportID)

	var report model.Report
	status = env.do(t, http.MethodGet, "/api/reports/"+*done.ReportID, nil, &report)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Report: golang concurrency", report.Title)

	// Terminal workflows cannot be cancelled.
	status = env.do(t, http.MethodPost, "/api/workflows/"+wf.WorkflowID+"/cancel", nil, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	var del map[string]interface{}
	status = env.do(t, http.MethodDelete, "/api/workflows/"+wf.WorkflowID, nil, &del)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, del["success"])
}

func TestGitHubAnalyzeThroughRouter(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/acme/widget":
			fmt.Fprint(w, `{"id":1,"name":"widget","full_name":"acme/widget","language":"Go","default_branch":"main","owner":{"login":"acme","avatar_url":"https://example.com/a.png"}}`)
		case "/repos/acme/widget/contents/":
			fmt.Fprint(w, `[{"name":"cmd","path":"cmd","type":"dir"},{"name":"go.mod","path":"go.mod","type":"file"},{"name":"main.go","path":"main.go","type":"file"}]`)
		case "/repos/acme/widget/contents/src":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer upstream.Close()

	env := newTestEnv(t, upstream.URL)

	var analysis github.Analysis
	status := env.do(t, http.MethodPost, "/api/github/analyze", map[string]string{
		"owner": "acme", "repo": "widget",
	}, &analysis)
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, analysis.Nodes)

	status = env.do(t, http.MethodPost, "/api/github/analyze", map[string]string{"owner": "acme"}, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status = env.do(t, http.MethodPost, "/api/github/analyze", map[string]string{
		"owner": "acme", "repo": "gone",
	}, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestNotesAndCalendarThroughRouter(t *testing.T) {
	env := newTestEnv(t, "")

	var note model.Note
	status := env.do(t, http.MethodPost, "/api/notes", map[string]string{
		"title": "Ideas", "content": "first",
	}, &note)
	require.Equal(t, http.StatusCreated, status)

	var updated model.Note
	status = env.do(t, http.MethodPatch, "/api/notes/"+note.NoteID, map[string]string{"content": "second"}, &updated)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Ideas", updated.Title)
	assert.Equal(t, "second", updated.Content)

	var event model.CalendarEvent
	status = env.do(t, http.MethodPost, "/api/calendar", map[string]string{
		"title":     "Kickoff",
		"startTime": time.Now().Add(time.Hour).Format(time.RFC3339),
	}, &event)
	require.Equal(t, http.StatusCreated, status)

	status = env.do(t, http.MethodDelete, "/api/calendar/"+event.EventID, nil, nil)
	assert.Equal(t, http.StatusNoContent, status)
}

type failingSessions struct {
	store.Sessions
}

func (failingSessions) FindLatest(ctx context.Context, userID, query, source string) (*model.SearchSession, error) {
	return nil, errors.New("connection reset by peer")
}

func (failingSessions) List(ctx context.Context, userID string, limit int) ([]*model.SearchSession, error) {
	return nil, errors.New("connection reset by peer")
}

type failingSessionStore struct {
	store.Store
}

func (s failingSessionStore) Sessions() store.Sessions { return failingSessions{s.Store.Sessions()} }

func TestLatestSessionLookupFailureRendersEmptyState(t *testing.T) {
	st, err := sqlite.New(filepath.Join(t.TempDir(), "curio.db"))
	require.NoError(t, err)

	registry := search.NewRegistry(&fakeProvider{name: "google"})
	deps := Deps{
		Authorizer: auth.NewStaticAuthorizer(),
		Users:      services.NewUserService(st),
		Sessions:   services.NewSessionService(failingSessionStore{Store: st}, registry, 10),
	}
	srv := httptest.NewServer(NewRouter(deps))
	defer srv.Close()

	for _, path := range []string{
		"/api/search-sessions?query=gophers&source=google",
		"/api/search-sessions?query=gophers",
	} {
		req, err := http.NewRequest(http.MethodGet, srv.URL+path, nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+auth.LocalDevAPIKey)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)

		var out struct {
			Results   []model.RawResult `json:"results"`
			SessionID *string           `json:"sessionId"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		_ = resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Empty(t, out.Results, path)
		assert.Nil(t, out.SessionID, path)
	}
}

func TestRouterWithoutUserServiceServesAuthedRoutes(t *testing.T) {
	st, err := sqlite.New(filepath.Join(t.TempDir(), "curio.db"))
	require.NoError(t, err)

	deps := Deps{
		Authorizer: auth.NewStaticAuthorizer(),
		Notes:      services.NewNoteService(st),
	}
	srv := httptest.NewServer(NewRouter(deps))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/notes", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+auth.LocalDevAPIKey)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
