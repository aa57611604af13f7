package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curiohq/curio/server/internal/github"
	"github.com/curiohq/curio/server/internal/model"
)

func TestSerpProviderMapsOrganicResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "google", r.URL.Query().Get("engine"))
		assert.Equal(t, "rust async", r.URL.Query().Get("q"))
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		assert.Equal(t, "10", r.URL.Query().Get("num"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"organic_results":[
			{"position":1,"title":"Tokio","link":"https://tokio.rs/guide","snippet":"async runtime","thumbnail":"https://t.example/1.png","source":"tokio.rs"},
			{"position":2,"title":"Async Book","link":"https://rust-lang.github.io/async-book","snippet":""}
		]}`))
	}))
	defer srv.Close()

	p := NewSerpProvider(srv.URL, "test-key")
	results, err := p.Search(context.Background(), "rust async", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "Tokio", results[0]["title"])
	assert.Equal(t, "https://tokio.rs/guide", results[0]["url"])
	assert.Equal(t, "https://t.example/1.png", results[0]["thumbnail"])
	assert.Equal(t, "tokio.rs", results[0]["source"])

	// source falls back to the link hostname
	assert.Equal(t, "rust-lang.github.io", results[1]["source"])
}

func TestSerpProviderSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := NewSerpProvider(srv.URL, "k")
	_, err := p.Search(context.Background(), "q", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestPexelsProviderMapsPhotos(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/search", r.URL.Path)
		assert.Equal(t, "px-key", r.Header.Get("Authorization"))
		assert.Equal(t, "sunset", r.URL.Query().Get("query"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"photos":[
			{"id":42,"url":"https://pexels.com/photo/42","photographer":"Ada","width":4000,"height":3000,"alt":"a sunset",
			 "src":{"original":"https://img/orig.jpg","large2x":"https://img/large.jpg","medium":"https://img/med.jpg"}}
		]}`))
	}))
	defer srv.Close()

	p := NewPexelsProvider(srv.URL, "px-key")
	results, err := p.Search(context.Background(), "sunset", 20)
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, "42", results[0]["id"])
	assert.Equal(t, "https://pexels.com/photo/42", results[0]["url"])
	assert.Equal(t, "https://img/large.jpg", results[0]["imageUrl"])
	assert.Equal(t, "https://img/med.jpg", results[0]["thumbnail"])
	assert.Equal(t, "Photo by Ada", results[0]["title"])
}

func TestGitHubProviderSkipsOwnerlessRepos(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/repositories", r.URL.Path)
		assert.Equal(t, "stars", r.URL.Query().Get("sort"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[
			{"id":1,"name":"tokio","full_name":"tokio-rs/tokio","description":"runtime","html_url":"https://github.com/tokio-rs/tokio",
			 "stargazers_count":25000,"forks_count":2000,"language":"Rust","updated_at":"2026-01-01T00:00:00Z",
			 "owner":{"login":"tokio-rs","avatar_url":"https://a/1.png"}},
			{"id":2,"name":"ghost","full_name":"ghost","html_url":"https://github.com/ghost"}
		]}`))
	}))
	defer srv.Close()

	p := NewGitHubProvider(github.NewClient(srv.URL, ""))
	results, err := p.Search(context.Background(), "async runtime", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, "tokio-rs/tokio", results[0]["fullName"])
	assert.Equal(t, "tokio-rs", results[0]["owner"])
	assert.Equal(t, 25000, results[0]["stars"])
}

func TestRegistryResolvesBySource(t *testing.T) {
	p := NewSerpProvider("http://localhost:1", "k")
	r := NewRegistry(p)

	got, err := r.Provider("google")
	require.NoError(t, err)
	assert.Equal(t, "google", got.Name())

	_, err = r.Provider("bing")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrValidation)
	assert.Equal(t, []string{"google"}, r.Sources())
}
