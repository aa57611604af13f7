//go:build e2e
// +build e2e

package e2e

import (
	"fmt"
	"net/http"
	"testing"
	"time"
)

// Smoke tests for a running dev stack. They exercise the public REST API end
// to end against the backend started by docker compose (or `go run
// ./cmd/curio-service`) and skip when nothing is listening.
//
//	go test -tags e2e ./dev_env_e2e_tests/...

func backendURL(t *testing.T) string {
	t.Helper()
	base := env("CURIO_BACKEND_URL", "http://localhost:8080")
	if err := ping(base + "/api/health"); err != nil {
		t.Skipf("curio backend unreachable at %s: %v", base, err)
	}
	return base
}

// Records a search session, bookmarks two results out of it, and verifies the
// collection contents. This covers the session store, the bookmark resolver
// and the collection store in one pass without touching upstream APIs.
func TestDevEnv_SessionBookmarkRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping in short mode")
	}
	base := backendURL(t)
	stamp := time.Now().UnixNano()

	query := fmt.Sprintf("smoke-%d", stamp)
	status := call(t, "POST", base+"/api/search-sessions", map[string]interface{}{
		"query":  query,
		"source": "google",
		"results": []map[string]interface{}{
			{"title": "Alpha", "url": "https://example.com/alpha"},
			{"title": "Beta", "url": "https://example.com/beta"},
			{"title": "Gamma", "url": "https://example.com/gamma"},
		},
	}, nil)
	if status != http.StatusCreated {
		t.Fatalf("record session: status %d", status)
	}

	var added struct {
		Success      bool   `json:"success"`
		CollectionID string `json:"collectionId"`
		ItemsAdded   int    `json:"itemsAdded"`
		Message      string `json:"message"`
	}
	status = call(t, "POST", base+"/api/tools/collection/add", map[string]interface{}{
		"collectionName": fmt.Sprintf("Smoke-%d", stamp),
		"searchQuery":    query,
		"searchType":     "web",
		"indices":        []int{0, 2},
	}, &added)
	if status != http.StatusOK || !added.Success {
		t.Fatalf("bookmark: status %d result %+v", status, added)
	}
	if added.ItemsAdded != 2 {
		t.Fatalf("expected 2 items added, got %d (%s)", added.ItemsAdded, added.Message)
	}

	var col struct {
		Items []struct {
			Title string `json:"title"`
			URL   string `json:"url"`
		} `json:"items"`
	}
	status = call(t, "GET", base+"/api/collections/"+added.CollectionID, nil, &col)
	if status != http.StatusOK {
		t.Fatalf("get collection: status %d", status)
	}
	if len(col.Items) != 2 || col.Items[0].Title != "Alpha" || col.Items[1].Title != "Gamma" {
		t.Fatalf("unexpected collection items: %+v", col.Items)
	}

	if status = call(t, "DELETE", base+"/api/collections/"+added.CollectionID, nil, nil); status != http.StatusNoContent {
		t.Fatalf("cleanup collection: status %d", status)
	}
}

// Creates, updates and deletes a note through the public API.
func TestDevEnv_NoteLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping in short mode")
	}
	base := backendURL(t)

	var note struct {
		NoteID string `json:"noteId"`
	}
	status := call(t, "POST", base+"/api/notes", map[string]string{
		"title":   fmt.Sprintf("Smoke note %d", time.Now().UnixNano()),
		"content": "initial",
	}, &note)
	if status != http.StatusCreated {
		t.Fatalf("create note: status %d", status)
	}

	var updated struct {
		Content string `json:"content"`
	}
	status = call(t, "PATCH", base+"/api/notes/"+note.NoteID, map[string]string{"content": "revised"}, &updated)
	if status != http.StatusOK || updated.Content != "revised" {
		t.Fatalf("update note: status %d content %q", status, updated.Content)
	}

	if status = call(t, "DELETE", base+"/api/notes/"+note.NoteID, nil, nil); status != http.StatusNoContent {
		t.Fatalf("delete note: status %d", status)
	}
	if status = call(t, "GET", base+"/api/notes/"+note.NoteID, nil, nil); status != http.StatusNotFound {
		t.Fatalf("deleted note still readable: status %d", status)
	}
}
