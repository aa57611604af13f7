package github

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curiohq/curio/server/internal/model"
)

func TestClassifyEntry(t *testing.T) {
	cases := []struct {
		name, path string
		want       NodeType
	}{
		{"components", "components", NodeFrontend},
		{"app", "src/app", NodeFrontend},
		{"api", "api", NodeAPI},
		{"handlers", "handlers", NodeAPI},
		{"services", "services", NodeBackend},
		{"migrations", "migrations", NodeDatabase},
		{"__tests__", "__tests__", NodeTesting},
		{"terraform", "terraform", NodeInfra},
		{"docs", "docs", NodeDocs},
	}
	for _, c := range cases {
		cl := classifyEntry(c.name, c.path)
		require.NotNil(t, cl, "classify %s", c.name)
		assert.Equal(t, c.want, cl.typ, "classify %s", c.name)
	}

	assert.Nil(t, classifyEntry("zzz-unrelated", "zzz-unrelated"))
}

func TestDetectLanguage(t *testing.T) {
	files := []ContentEntry{
		{Name: "main.go"}, {Name: "store.go"}, {Name: "util.py"},
		{Name: "README"}, {Name: "notes.unknownext"},
	}
	assert.Equal(t, "Go", detectLanguage(files))
	assert.Equal(t, "Unknown", detectLanguage(nil))
}

func TestInferConnections(t *testing.T) {
	nodes := []ArchitectureNode{
		{ID: "frontend", Type: NodeFrontend, Connections: []string{}},
		{ID: "api", Type: NodeAPI, Connections: []string{}},
		{ID: "backend", Type: NodeBackend, Connections: []string{}},
		{ID: "database", Type: NodeDatabase, Connections: []string{}},
	}
	inferConnections(nodes)

	assert.Equal(t, []string{"api"}, nodes[0].Connections)
	assert.ElementsMatch(t, []string{"backend", "database"}, nodes[1].Connections)
	assert.Equal(t, []string{"database"}, nodes[2].Connections)
	assert.Empty(t, nodes[3].Connections)
}

func TestAnalyzeRepository(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/repos/acme/widget":
			_, _ = w.Write([]byte(`{"name":"widget","full_name":"acme/widget","description":"widgets",
				"html_url":"https://github.com/acme/widget","stargazers_count":12,"forks_count":3,
				"language":"TypeScript","default_branch":"main"}`))
		case "/repos/acme/widget/contents/":
			_, _ = w.Write([]byte(`[
				{"name":"src","path":"src","type":"dir"},
				{"name":"migrations","path":"migrations","type":"dir"},
				{"name":".github","path":".github","type":"dir"},
				{"name":"package.json","path":"package.json","type":"file"},
				{"name":"tsconfig.json","path":"tsconfig.json","type":"file"}
			]`))
		case "/repos/acme/widget/contents/src":
			_, _ = w.Write([]byte(`[
				{"name":"components","path":"src/components","type":"dir"},
				{"name":"api","path":"src/api","type":"dir"},
				{"name":"index.ts","path":"src/index.ts","type":"file"}
			]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	analysis, err := c.AnalyzeRepository(context.Background(), "acme", "widget")
	require.NoError(t, err)

	assert.Equal(t, "acme/widget", analysis.FullName)
	assert.Equal(t, "TypeScript", analysis.Language)
	assert.Equal(t, "main", analysis.DefaultBranch)

	byType := map[NodeType]ArchitectureNode{}
	for _, n := range analysis.Nodes {
		byType[n.Type] = n
	}
	require.Contains(t, byType, NodeFrontend)
	require.Contains(t, byType, NodeAPI)
	require.Contains(t, byType, NodeDatabase)
	require.Contains(t, byType, NodeConfig)
	require.Contains(t, byType, NodeInfra)

	// frontend links into the api layer once both exist
	assert.Contains(t, byType[NodeFrontend].Connections, "api")
	assert.Contains(t, byType[NodeConfig].Description, "package.json")
}

func TestAnalyzeRepositoryNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.AnalyzeRepository(context.Background(), "acme", "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)
}
