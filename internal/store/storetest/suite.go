package storetest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/curiohq/curio/server/internal/model"
	"github.com/curiohq/curio/server/internal/store"
)

// Run exercises a compliance suite against a store.Store implementation.
// Implementations should provide a clean, isolated store from makeStore.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()

	userID := "u-" + uuid.New().String()
	email := userID + "@example.test"

	// Users
	if _, err := s.Users().Create(ctx, &model.User{UserID: userID, Email: email, TimeZone: "UTC"}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if got, err := s.Users().Get(ctx, userID); err != nil || got == nil || got.UserID != userID {
		t.Fatalf("GetUser: got=%v err=%v", got, err)
	}
	if _, err := s.Users().Get(ctx, "no-such-user"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("GetUser missing: want ErrNotFound, got %v", err)
	}

	// Sessions: latest-wins lookup on the exact triple
	older := []model.RawResult{{"title": "old"}}
	newer := []model.RawResult{{"title": "new"}, {"title": "also new"}}
	if _, err := s.Sessions().Create(ctx, &model.SearchSession{UserID: userID, Query: "rust async", Source: "google", Results: older}); err != nil {
		t.Fatalf("CreateSession older: %v", err)
	}
	time.Sleep(5 * time.Millisecond) // ensure monotonic creation time ordering
	if _, err := s.Sessions().Create(ctx, &model.SearchSession{UserID: userID, Query: "rust async", Source: "google", Results: newer}); err != nil {
		t.Fatalf("CreateSession newer: %v", err)
	}
	latest, err := s.Sessions().FindLatest(ctx, userID, "rust async", "google")
	if err != nil {
		t.Fatalf("FindLatest: %v", err)
	}
	if len(latest.Results) != 2 || latest.Results[0]["title"] != "new" {
		t.Fatalf("FindLatest returned wrong session: %+v", latest.Results)
	}
	if _, err := s.Sessions().FindLatest(ctx, userID, "rust async", "github"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("FindLatest wrong source: want ErrNotFound, got %v", err)
	}
	if _, err := s.Sessions().FindLatest(ctx, userID, "Rust Async", "google"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("FindLatest is exact-match; normalized query must miss, got %v", err)
	}
	if lst, err := s.Sessions().List(ctx, userID, 10); err != nil || len(lst) != 2 {
		t.Fatalf("ListSessions: n=%d err=%v", len(lst), err)
	}

	// Collections: find-or-create converges on one row
	col, err := s.Collections().FindOrCreate(ctx, userID, "Reading")
	if err != nil {
		t.Fatalf("FindOrCreate: %v", err)
	}
	if col.CollectionID == "" || len(col.Items) != 0 {
		t.Fatalf("FindOrCreate: unexpected collection %+v", col)
	}
	again, err := s.Collections().FindOrCreate(ctx, userID, "Reading")
	if err != nil {
		t.Fatalf("FindOrCreate again: %v", err)
	}
	if again.CollectionID != col.CollectionID {
		t.Fatalf("FindOrCreate must reuse the row: %s vs %s", again.CollectionID, col.CollectionID)
	}

	// Strict create conflicts on a taken name
	if _, err := s.Collections().Create(ctx, &model.Collection{UserID: userID, Name: "Reading"}); !errors.Is(err, model.ErrConflict) {
		t.Fatalf("Create duplicate: want ErrConflict, got %v", err)
	}

	// Appends land after existing items, in order
	first := []model.CollectionItem{{ID: uuid.New().String(), Type: model.ItemTypeArticle, URL: "http://a", Title: "A"}}
	if _, err := s.Collections().AppendItems(ctx, col.CollectionID, first); err != nil {
		t.Fatalf("AppendItems: %v", err)
	}
	second := []model.CollectionItem{{ID: uuid.New().String(), Type: model.ItemTypeArticle, URL: "http://b", Title: "B"}}
	updated, err := s.Collections().AppendItems(ctx, col.CollectionID, second)
	if err != nil {
		t.Fatalf("AppendItems second: %v", err)
	}
	if len(updated.Items) != 2 || updated.Items[0].Title != "A" || updated.Items[1].Title != "B" {
		t.Fatalf("AppendItems order: %+v", updated.Items)
	}

	// Concurrent appends must not lose updates
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Collections().AppendItems(ctx, col.CollectionID, []model.CollectionItem{
				{ID: uuid.New().String(), Type: model.ItemTypePin, URL: "http://c", Title: "C"},
			})
		}()
	}
	wg.Wait()
	got, err := s.Collections().GetByID(ctx, col.CollectionID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(got.Items) != 10 {
		t.Fatalf("concurrent appends lost updates: want 10 items, got %d", len(got.Items))
	}

	// RemoveItem
	trimmed, err := s.Collections().RemoveItem(ctx, col.CollectionID, first[0].ID)
	if err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if len(trimmed.Items) != 9 {
		t.Fatalf("RemoveItem: want 9 items, got %d", len(trimmed.Items))
	}

	// Rename and delete
	if renamed, err := s.Collections().Rename(ctx, col.CollectionID, "Archive"); err != nil || renamed.Name != "Archive" {
		t.Fatalf("Rename: got=%v err=%v", renamed, err)
	}
	if err := s.Collections().Delete(ctx, col.CollectionID); err != nil {
		t.Fatalf("DeleteCollection: %v", err)
	}
	if err := s.Collections().Delete(ctx, col.CollectionID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("DeleteCollection twice: want ErrNotFound, got %v", err)
	}

	// Notes
	note, err := s.Notes().Create(ctx, &model.Note{UserID: userID, Title: "draft", Content: "body"})
	if err != nil {
		t.Fatalf("CreateNote: %v", err)
	}
	newContent := "revised"
	if upd, err := s.Notes().Update(ctx, note.NoteID, nil, &newContent); err != nil || upd.Content != "revised" || upd.Title != "draft" {
		t.Fatalf("UpdateNote: got=%v err=%v", upd, err)
	}
	if lst, err := s.Notes().List(ctx, userID); err != nil || len(lst) != 1 {
		t.Fatalf("ListNotes: n=%d err=%v", len(lst), err)
	}
	if err := s.Notes().Delete(ctx, note.NoteID); err != nil {
		t.Fatalf("DeleteNote: %v", err)
	}

	// Events
	start := time.Now().UTC().Truncate(time.Second)
	ev, err := s.Events().Create(ctx, &model.CalendarEvent{UserID: userID, Title: "standup", StartTime: start})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	ev.Title = "retro"
	if upd, err := s.Events().Update(ctx, ev); err != nil || upd.Title != "retro" {
		t.Fatalf("UpdateEvent: got=%v err=%v", upd, err)
	}
	if err := s.Events().Delete(ctx, ev.EventID); err != nil {
		t.Fatalf("DeleteEvent: %v", err)
	}

	// Workflows and reports
	wf, err := s.Workflows().Create(ctx, &model.Workflow{UserID: userID, Title: "research", Query: "rust async", TotalSteps: 3, Sources: []string{"web"}, Depth: "standard", OutputFormat: "markdown"})
	if err != nil {
		t.Fatalf("CreateWorkflow: %v", err)
	}
	if wf.Status != model.WorkflowPending {
		t.Fatalf("CreateWorkflow status: %s", wf.Status)
	}
	if err := s.Workflows().SetStatus(ctx, wf.WorkflowID, model.WorkflowRunning, nil, nil); err != nil {
		t.Fatalf("SetStatus running: %v", err)
	}
	if err := s.Workflows().SetStep(ctx, wf.WorkflowID, 2); err != nil {
		t.Fatalf("SetStep: %v", err)
	}

	rep, err := s.Reports().Create(ctx, &model.Report{
		UserID:     userID,
		WorkflowID: &wf.WorkflowID,
		Title:      "rust async report",
		Summary:    "summary",
		Format:     "markdown",
		Sections:   []model.ReportSection{{Title: "Overview", Content: "..."}},
	})
	if err != nil {
		t.Fatalf("CreateReport: %v", err)
	}
	if err := s.Workflows().SetReport(ctx, wf.WorkflowID, rep.ReportID); err != nil {
		t.Fatalf("SetReport: %v", err)
	}
	if err := s.Workflows().SetStatus(ctx, wf.WorkflowID, model.WorkflowCompleted, nil, nil); err != nil {
		t.Fatalf("SetStatus completed: %v", err)
	}

	done, err := s.Workflows().GetByID(ctx, wf.WorkflowID)
	if err != nil {
		t.Fatalf("GetWorkflow: %v", err)
	}
	if done.Status != model.WorkflowCompleted || done.CurrentStep != 2 {
		t.Fatalf("workflow state: %+v", done)
	}
	if done.ReportID == nil || *done.ReportID != rep.ReportID {
		t.Fatalf("workflow report link: %+v", done.ReportID)
	}
	if done.CompletedTime == nil {
		t.Fatalf("completed workflow missing completed_time")
	}

	if lst, err := s.Reports().List(ctx, userID); err != nil || len(lst) != 1 || len(lst[0].Sections) != 1 {
		t.Fatalf("ListReports: %v err=%v", lst, err)
	}
	if err := s.Reports().Delete(ctx, rep.ReportID); err != nil {
		t.Fatalf("DeleteReport: %v", err)
	}

	// Cancellation path: failed status records the failing step
	failMsg := "cancelled by user"
	failStep := 2
	if err := s.Workflows().SetStatus(ctx, wf.WorkflowID, model.WorkflowFailed, &failMsg, &failStep); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	cancelled, err := s.Workflows().GetByID(ctx, wf.WorkflowID)
	if err != nil {
		t.Fatalf("GetWorkflow after cancel: %v", err)
	}
	if cancelled.ErrorMessage == nil || *cancelled.ErrorMessage != failMsg || cancelled.FailedStep == nil || *cancelled.FailedStep != 2 {
		t.Fatalf("cancelled workflow state: %+v", cancelled)
	}

	if err := s.Workflows().Delete(ctx, wf.WorkflowID); err != nil {
		t.Fatalf("DeleteWorkflow: %v", err)
	}
	if err := s.Workflows().Delete(ctx, wf.WorkflowID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("DeleteWorkflow twice: want ErrNotFound, got %v", err)
	}
}
