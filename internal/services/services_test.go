package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curiohq/curio/server/internal/ai"
	"github.com/curiohq/curio/server/internal/model"
	"github.com/curiohq/curio/server/internal/search"
	"github.com/curiohq/curio/server/internal/store"
	"github.com/curiohq/curio/server/internal/store/sqlite"
	"github.com/curiohq/curio/server/internal/workflows"
)

type fakeProvider struct {
	name    string
	results []model.RawResult
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Search(ctx context.Context, query string, limit int) ([]model.RawResult, error) {
	return f.results, nil
}

type fakeSummarizer struct{}

func (fakeSummarizer) ComposeReport(ctx context.Context, query string, material []string, format string) (*ai.ReportDraft, error) {
	return &ai.ReportDraft{
		Title:    "report for " + query,
		Summary:  "summary",
		Sections: []model.ReportSection{{Title: "Overview", Content: "content"}},
	}, nil
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	s, err := sqlite.New(filepath.Join(t.TempDir(), "services.db"))
	require.NoError(t, err)
	for _, id := range []string{"alice", "bob"} {
		_, err = s.Users().Create(context.Background(), &model.User{UserID: id, Email: id + "@example.test", TimeZone: "UTC"})
		require.NoError(t, err)
	}
	return s
}

func TestUserServiceEnsureUserIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	svc := NewUserService(s)
	ctx := context.Background()

	u1, err := svc.EnsureUser(ctx, "carol")
	require.NoError(t, err)
	u2, err := svc.EnsureUser(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, u1.UserID, u2.UserID)
}

func TestCollectionServiceOwnership(t *testing.T) {
	s := newTestStore(t)
	svc := NewCollectionService(s)
	ctx := context.Background()

	col, err := svc.CreateCollection(ctx, "alice", "Reading")
	require.NoError(t, err)

	_, err = svc.GetCollection(ctx, "bob", col.CollectionID)
	assert.ErrorIs(t, err, model.ErrForbidden, "other user's collection is forbidden")

	_, err = svc.GetCollection(ctx, "alice", "no-such-collection")
	assert.ErrorIs(t, err, model.ErrNotFound)

	err = svc.DeleteCollection(ctx, "bob", col.CollectionID)
	assert.ErrorIs(t, err, model.ErrForbidden)

	_, err = svc.CreateCollection(ctx, "alice", "Reading")
	assert.ErrorIs(t, err, model.ErrConflict, "duplicate name conflicts")

	renamed, err := svc.RenameCollection(ctx, "alice", col.CollectionID, "Archive")
	require.NoError(t, err)
	assert.Equal(t, "Archive", renamed.Name)
}

func TestNoteServicePartialUpdate(t *testing.T) {
	s := newTestStore(t)
	svc := NewNoteService(s)
	ctx := context.Background()

	note, err := svc.CreateNote(ctx, "alice", "draft", "v1")
	require.NoError(t, err)

	content := "v2"
	upd, err := svc.UpdateNote(ctx, "alice", note.NoteID, nil, &content)
	require.NoError(t, err)
	assert.Equal(t, "draft", upd.Title)
	assert.Equal(t, "v2", upd.Content)

	_, err = svc.UpdateNote(ctx, "alice", note.NoteID, nil, nil)
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = svc.UpdateNote(ctx, "bob", note.NoteID, nil, &content)
	assert.ErrorIs(t, err, model.ErrForbidden)
}

func TestEventServiceValidatesTimes(t *testing.T) {
	s := newTestStore(t)
	svc := NewEventService(s)
	ctx := context.Background()

	start := time.Now().UTC()
	end := start.Add(-time.Hour)
	_, err := svc.CreateEvent(ctx, &model.CalendarEvent{
		UserID: "alice", Title: "standup", StartTime: start, EndTime: &end,
	})
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = svc.CreateEvent(ctx, &model.CalendarEvent{UserID: "alice", Title: "standup", StartTime: start})
	require.NoError(t, err)
}

func TestSessionServiceSearchRecordsSession(t *testing.T) {
	s := newTestStore(t)
	registry := search.NewRegistry(&fakeProvider{name: "google", results: []model.RawResult{
		{"title": "A", "url": "https://a"},
	}})
	svc := NewSessionService(s, registry, 20)
	ctx := context.Background()

	sess, err := svc.Search(ctx, "alice", "rust async", "google")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.SessionID)

	found, err := s.Sessions().FindLatest(ctx, "alice", "rust async", "google")
	require.NoError(t, err)
	assert.Equal(t, sess.SessionID, found.SessionID)

	_, err = svc.Search(ctx, "alice", "q", "bing")
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestWorkflowServiceLifecycle(t *testing.T) {
	s := newTestStore(t)
	registry := search.NewRegistry(&fakeProvider{name: "google", results: []model.RawResult{
		{"title": "A", "snippet": "s", "url": "https://a"},
	}})
	runner := workflows.NewRunner(s, registry, fakeSummarizer{}, zerolog.Nop())
	svc := NewWorkflowService(s, runner)
	ctx := context.Background()

	_, err := svc.StartWorkflow(ctx, "alice", &CreateWorkflowRequest{Query: "q", Sources: []string{"bing"}})
	assert.ErrorIs(t, err, model.ErrValidation, "unknown source rejected up front")

	wf, err := svc.StartWorkflow(ctx, "alice", &CreateWorkflowRequest{
		Query:   "rust async",
		Sources: []string{"web"},
	})
	require.NoError(t, err)
	assert.Equal(t, "rust async", wf.Title, "title defaults to the query")
	assert.Equal(t, "standard", wf.Depth)
	assert.Equal(t, "markdown", wf.OutputFormat)

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, runner.Shutdown(shutdownCtx))

	done, err := svc.GetWorkflow(ctx, "alice", wf.WorkflowID)
	require.NoError(t, err)
	assert.Equal(t, model.WorkflowCompleted, done.Status)

	_, err = svc.GetWorkflow(ctx, "bob", wf.WorkflowID)
	assert.ErrorIs(t, err, model.ErrForbidden)

	err = svc.CancelWorkflow(ctx, "alice", wf.WorkflowID)
	assert.ErrorIs(t, err, model.ErrValidation, "completed workflow cannot be cancelled")

	require.NoError(t, svc.DeleteWorkflow(ctx, "alice", wf.WorkflowID))
	_, err = svc.GetWorkflow(ctx, "alice", wf.WorkflowID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestWorkflowServiceCancelRecordsFailure(t *testing.T) {
	s := newTestStore(t)
	runner := workflows.NewRunner(s, search.NewRegistry(), fakeSummarizer{}, zerolog.Nop())
	svc := NewWorkflowService(s, runner)
	ctx := context.Background()

	// create directly in pending state without starting a run
	wf, err := s.Workflows().Create(ctx, &model.Workflow{
		UserID: "alice", Title: "t", Query: "q", TotalSteps: workflows.TotalSteps,
		Sources: []string{"web"}, Depth: "standard", OutputFormat: "markdown",
	})
	require.NoError(t, err)

	require.NoError(t, svc.CancelWorkflow(ctx, "alice", wf.WorkflowID))

	got, err := svc.GetWorkflow(ctx, "alice", wf.WorkflowID)
	require.NoError(t, err)
	assert.Equal(t, model.WorkflowFailed, got.Status)
	require.NotNil(t, got.ErrorMessage)
	assert.Equal(t, "Cancelled by user", *got.ErrorMessage)
	require.NotNil(t, got.FailedStep)
}

func TestReportServiceOwnership(t *testing.T) {
	s := newTestStore(t)
	svc := NewReportService(s)
	ctx := context.Background()

	rep, err := s.Reports().Create(ctx, &model.Report{
		UserID: "alice", Title: "r", Summary: "s", Format: "markdown",
		Sections: []model.ReportSection{{Title: "Overview", Content: "c"}},
	})
	require.NoError(t, err)

	_, err = svc.GetReport(ctx, "bob", rep.ReportID)
	assert.ErrorIs(t, err, model.ErrForbidden)

	require.NoError(t, svc.DeleteReport(ctx, "alice", rep.ReportID))
	_, err = svc.GetReport(ctx, "alice", rep.ReportID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}
