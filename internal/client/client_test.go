package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewRejectsInvalidTargets(t *testing.T) {
	cases := []string{"", "not a url", "example.com", "://missing-scheme"}
	for _, target := range cases {
		if _, err := New(target); err == nil {
			t.Errorf("expected error for target %q", target)
		}
	}
}

func TestNewNormalizesTrailingSlash(t *testing.T) {
	c, err := New("http://example.com/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.BaseURL() != "http://example.com" {
		t.Errorf("BaseURL() = %q, want trailing slash trimmed", c.BaseURL())
	}
}

func TestDoSetsSessionDefaults(t *testing.T) {
	var gotHeaders http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, err := New(srv.URL, WithToken("secret-token"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp, err := c.Do(context.Background(), http.MethodGet, "/", nil, nil)
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if !resp.OK() {
		t.Errorf("expected 2xx, got %d", resp.Status)
	}
	if got := gotHeaders.Get("Authorization"); got != "Bearer secret-token" {
		t.Errorf("Authorization = %q", got)
	}
	if got := gotHeaders.Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := gotHeaders.Get("User-Agent"); got != "gqlaudit/1.0" {
		t.Errorf("User-Agent = %q", got)
	}
}

func TestDoHeaderOverrideAndRemoval(t *testing.T) {
	var gotAuth string
	var hadAuth bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, hadAuth = r.Header["Authorization"]
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, _ := New(srv.URL, WithToken("session-token"))

	// Override replaces the session token.
	if _, err := c.Do(context.Background(), http.MethodGet, "/", map[string]string{"Authorization": "Bearer other"}, nil); err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if gotAuth != "Bearer other" {
		t.Errorf("override: Authorization = %q", gotAuth)
	}

	// An empty override removes the header entirely.
	if _, err := c.Do(context.Background(), http.MethodGet, "/", map[string]string{"Authorization": ""}, nil); err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if hadAuth {
		t.Errorf("empty override should remove Authorization, got %q", gotAuth)
	}
}

func TestDoPreservesQueryString(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, _ := New(srv.URL)
	if _, err := c.Do(context.Background(), http.MethodGet, "/graphql?query=%7B__typename%7D", nil, nil); err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if gotQuery != "query=%7B__typename%7D" {
		t.Errorf("query string = %q", gotQuery)
	}
}

func TestGraphQLPostsEnvelope(t *testing.T) {
	var gotPath string
	var payload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&payload)
		w.Write([]byte(`{"data":{"user":{"id":"1"}}}`))
	}))
	defer srv.Close()

	c, _ := New(srv.URL, WithGraphQLPath("/api/graphql"))
	resp, err := c.GraphQL(context.Background(), "query { user { id } }", map[string]any{"id": "1"}, nil)
	if err != nil {
		t.Fatalf("GraphQL failed: %v", err)
	}

	if gotPath != "/api/graphql" {
		t.Errorf("path = %q", gotPath)
	}
	if payload["query"] != "query { user { id } }" {
		t.Errorf("query = %v", payload["query"])
	}
	if _, ok := payload["variables"]; !ok {
		t.Error("variables key missing from payload")
	}

	result := resp.GraphQL()
	if !result.HasData("user") {
		t.Error("expected user field in decoded result")
	}
	if obj := result.Object("user"); obj["id"] != "1" {
		t.Errorf("user.id = %v", obj["id"])
	}
}

func TestResponseElapsedIsMeasured(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(20 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, _ := New(srv.URL)
	resp, err := c.Do(context.Background(), http.MethodGet, "/", nil, nil)
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if resp.Elapsed < 20*time.Millisecond {
		t.Errorf("Elapsed = %s, expected at least 20ms", resp.Elapsed)
	}
}

func TestGraphQLResultNonJSONBody(t *testing.T) {
	resp := &Response{Status: 200, Body: []byte("<html>not json</html>")}
	if got := resp.GraphQL(); got != nil {
		t.Errorf("expected nil result for non-JSON body, got %+v", got)
	}

	var nilResult *GraphQLResult
	if nilResult.HasData("anything") {
		t.Error("nil result should report no data")
	}
	if msgs := nilResult.ErrorMessages(); msgs != nil {
		t.Errorf("nil result should yield nil messages, got %v", msgs)
	}
}

func TestBodyContainsCaseInsensitive(t *testing.T) {
	resp := &Response{Body: []byte(`{"errors":[{"message":"Syntax ERROR near FROM"}]}`)}
	if !resp.BodyContains("syntax error") {
		t.Error("expected case-insensitive match")
	}
	if resp.BodyContains("absent") {
		t.Error("unexpected match")
	}
}
