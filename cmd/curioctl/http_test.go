package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRunSearchPostsQueryWithAuth(t *testing.T) {
	var gotAuth string
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/search" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		fmt.Fprint(w, `{"sessionId":"s1","results":[]}`)
	}))
	defer srv.Close()

	apiFlag = srv.URL
	keyFlag = "sk_test"

	var out bytes.Buffer
	if err := runSearch("golang", "google", &out); err != nil {
		t.Fatalf("runSearch: %v", err)
	}
	if gotAuth != "Bearer sk_test" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if gotBody["query"] != "golang" || gotBody["source"] != "google" {
		t.Errorf("body = %v", gotBody)
	}
	if !strings.Contains(out.String(), "s1") {
		t.Errorf("output = %q", out.String())
	}
}

func TestRunSearchRejectsEmptyQuery(t *testing.T) {
	if err := runSearch("", "google", &bytes.Buffer{}); err == nil {
		t.Fatal("expected error for empty query")
	}
}

func TestDoRequestSurfacesErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprint(w, `{"error":"collection exists"}`)
	}))
	defer srv.Close()

	apiFlag = srv.URL
	keyFlag = "sk_test"

	_, err := doPostJSON("/api/collections", map[string]string{"name": "dup"})
	if err == nil || !strings.Contains(err.Error(), "409") {
		t.Fatalf("err = %v", err)
	}
}
