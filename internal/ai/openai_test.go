package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curiohq/curio/server/internal/model"
)

func TestParseReportWithHeadings(t *testing.T) {
	content := `# Async Rust in 2026
The ecosystem has consolidated around a few runtimes.

## Runtimes
Tokio remains dominant.

## Outlook
Structured concurrency is landing.`

	draft := parseReport("rust async", content)

	assert.Equal(t, "Async Rust in 2026", draft.Title)
	assert.Equal(t, "The ecosystem has consolidated around a few runtimes.", draft.Summary)
	require.Len(t, draft.Sections, 2)
	assert.Equal(t, "Runtimes", draft.Sections[0].Title)
	assert.Equal(t, "Tokio remains dominant.", draft.Sections[0].Content)
	assert.Equal(t, "Outlook", draft.Sections[1].Title)
}

func TestParseReportWithoutHeadings(t *testing.T) {
	draft := parseReport("rust async", "Just a flat answer. More detail follows.")

	assert.Equal(t, "rust async", draft.Title)
	require.Len(t, draft.Sections, 1)
	assert.Equal(t, "Overview", draft.Sections[0].Title)
	assert.Equal(t, "Just a flat answer.", draft.Summary)
}

func TestRenderSectionsTextFormat(t *testing.T) {
	sections := []model.ReportSection{{Title: "S", Content: "stay **bold** and `raw`"}}

	markdown := renderSections(sections, "markdown")
	assert.Equal(t, "stay **bold** and `raw`", markdown[0].Content)

	text := renderSections(sections, "text")
	assert.Equal(t, "stay bold and raw", text[0].Content)
}

func TestOpenAISummarizerComposeReport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Summary line.\n\n## Findings\nDetails here."}}]}`))
	}))
	defer srv.Close()

	s := NewOpenAISummarizerWithBaseURL("test-key", "gpt-4o-mini", srv.URL)
	draft, err := s.ComposeReport(context.Background(), "rust async", []string{"material"}, "markdown")
	require.NoError(t, err)

	assert.Equal(t, "Summary line.", draft.Summary)
	require.Len(t, draft.Sections, 1)
	assert.Equal(t, "Findings", draft.Sections[0].Title)
	assert.Equal(t, "Details here.", draft.Sections[0].Content)
}
