//go:build invariants
// +build invariants

// These tests run against a live curio backend, typically the docker compose
// stack on localhost. Start the service first, then:
//
//	go test -tags invariants ./internal/invariants/...

package invariants

import (
	"net/http"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func liveChecker(t *testing.T) *InvariantChecker {
	t.Helper()
	baseURL := os.Getenv("CURIO_BACKEND_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	apiKey := os.Getenv("CURIO_BACKEND_API_KEY")
	if apiKey == "" {
		apiKey = "sk_local_curio_dev_key"
	}

	resp, err := http.Get(baseURL + "/api/health")
	if err != nil {
		t.Skipf("curio backend unreachable at %s: %v", baseURL, err)
	}
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode, "service health check failed")

	return NewInvariantChecker(baseURL, apiKey)
}

func TestLiveServiceContract(t *testing.T) {
	ic := liveChecker(t)

	t.Run("AuthRequired", ic.CheckAuthRequired)
	t.Run("CollectionNameUniqueness", ic.CheckCollectionNameUniqueness)
	t.Run("SessionFidelity", ic.CheckSessionFidelity)
	t.Run("ToolResultShape", ic.CheckToolResultShape)
	t.Run("DeletedCollectionsDisappear", ic.CheckDeletedCollectionsDisappear)
}
