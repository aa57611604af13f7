// Blackbox contract checks that run against a live curio backend through its
// public REST API only. They assert behavior the rest of the system depends
// on; do not weaken an assertion to make an incremental change pass.

package invariants

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// InvariantChecker drives the service the way an external client would.
type InvariantChecker struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewInvariantChecker(baseURL, apiKey string) *InvariantChecker {
	return &InvariantChecker{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (ic *InvariantChecker) makeRequest(t *testing.T, method, path string, payload interface{}, wantStatus int) []byte {
	t.Helper()
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, ic.baseURL+path, body)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+ic.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := ic.client.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equalf(t, wantStatus, resp.StatusCode, "%s %s body: %s", method, path, string(data))
	return data
}

// CheckCollectionNameUniqueness: a user cannot hold two collections with the
// same name.
func (ic *InvariantChecker) CheckCollectionNameUniqueness(t *testing.T) {
	name := fmt.Sprintf("inv-unique-%d", time.Now().UnixNano())

	var col struct {
		CollectionID string `json:"collectionId"`
	}
	resp := ic.makeRequest(t, http.MethodPost, "/api/collections", map[string]string{"name": name}, http.StatusCreated)
	require.NoError(t, json.Unmarshal(resp, &col))
	defer ic.makeRequest(t, http.MethodDelete, "/api/collections/"+col.CollectionID, nil, http.StatusNoContent)

	ic.makeRequest(t, http.MethodPost, "/api/collections", map[string]string{"name": name}, http.StatusConflict)
}

// CheckSessionFidelity: the latest recorded session is returned exactly as it
// was stored, and a bookmark by index resolves against it rather than a fresh
// upstream search.
func (ic *InvariantChecker) CheckSessionFidelity(t *testing.T) {
	query := fmt.Sprintf("inv-session-%d", time.Now().UnixNano())
	results := []map[string]interface{}{
		{"title": "First", "url": "https://example.com/1"},
		{"title": "Second", "url": "https://example.com/2"},
	}

	ic.makeRequest(t, http.MethodPost, "/api/search-sessions", map[string]interface{}{
		"query":   query,
		"source":  "google",
		"results": results,
	}, http.StatusCreated)

	resp := ic.makeRequest(t, http.MethodGet,
		fmt.Sprintf("/api/search-sessions?query=%s&source=google", query), nil, http.StatusOK)
	var latest struct {
		SessionID string                   `json:"sessionId"`
		Results   []map[string]interface{} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(resp, &latest))
	require.NotEmpty(t, latest.SessionID)
	require.Len(t, latest.Results, 2)
	assert.Equal(t, "First", latest.Results[0]["title"])
	assert.Equal(t, "https://example.com/2", latest.Results[1]["url"])

	collection := fmt.Sprintf("inv-col-%d", time.Now().UnixNano())
	resp = ic.makeRequest(t, http.MethodPost, "/api/tools/collection/add", map[string]interface{}{
		"collectionName": collection,
		"searchQuery":    query,
		"searchType":     "web",
		"indices":        []int{1, 0},
	}, http.StatusOK)
	var added struct {
		Success      bool   `json:"success"`
		CollectionID string `json:"collectionId"`
		ItemsAdded   int    `json:"itemsAdded"`
	}
	require.NoError(t, json.Unmarshal(resp, &added))
	require.True(t, added.Success)
	require.Equal(t, 2, added.ItemsAdded)
	defer ic.makeRequest(t, http.MethodDelete, "/api/collections/"+added.CollectionID, nil, http.StatusNoContent)

	// Output order follows the requested indices, not session order.
	resp = ic.makeRequest(t, http.MethodGet, "/api/collections/"+added.CollectionID, nil, http.StatusOK)
	var col struct {
		Items []struct {
			Title string `json:"title"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(resp, &col))
	require.Len(t, col.Items, 2)
	assert.Equal(t, "Second", col.Items[0].Title)
	assert.Equal(t, "First", col.Items[1].Title)
}

// CheckToolResultShape: the bookmark tool answers with the same fields on
// success and on failure, so tool callers never special-case the envelope.
func (ic *InvariantChecker) CheckToolResultShape(t *testing.T) {
	resp := ic.makeRequest(t, http.MethodPost, "/api/tools/collection/add",
		map[string]interface{}{"collectionName": ""}, http.StatusBadRequest)

	var res map[string]interface{}
	require.NoError(t, json.Unmarshal(resp, &res))
	assert.Equal(t, false, res["success"])
	assert.Contains(t, res, "collectionId")
	assert.Contains(t, res, "itemsAdded")
	assert.Contains(t, res, "message")
}

// CheckDeletedCollectionsDisappear: a deleted collection is gone from both
// the list and the direct fetch immediately.
func (ic *InvariantChecker) CheckDeletedCollectionsDisappear(t *testing.T) {
	name := fmt.Sprintf("inv-del-%d", time.Now().UnixNano())
	resp := ic.makeRequest(t, http.MethodPost, "/api/collections", map[string]string{"name": name}, http.StatusCreated)
	var col struct {
		CollectionID string `json:"collectionId"`
	}
	require.NoError(t, json.Unmarshal(resp, &col))

	ic.makeRequest(t, http.MethodDelete, "/api/collections/"+col.CollectionID, nil, http.StatusNoContent)
	ic.makeRequest(t, http.MethodGet, "/api/collections/"+col.CollectionID, nil, http.StatusNotFound)

	resp = ic.makeRequest(t, http.MethodGet, "/api/collections", nil, http.StatusOK)
	var list struct {
		Collections []struct {
			CollectionID string `json:"collectionId"`
		} `json:"collections"`
	}
	require.NoError(t, json.Unmarshal(resp, &list))
	for _, c := range list.Collections {
		assert.NotEqual(t, col.CollectionID, c.CollectionID)
	}
}

// CheckAuthRequired: every data route rejects requests without a valid key.
func (ic *InvariantChecker) CheckAuthRequired(t *testing.T) {
	for _, path := range []string{"/api/collections", "/api/notes", "/api/workflows", "/api/search-sessions/recent"} {
		req, err := http.NewRequest(http.MethodGet, ic.baseURL+path, nil)
		require.NoError(t, err)
		resp, err := ic.client.Do(req)
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equalf(t, http.StatusUnauthorized, resp.StatusCode, "GET %s without key", path)
	}
}
