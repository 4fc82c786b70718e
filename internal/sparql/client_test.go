package sparql

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mardigraph/graphscribe/internal/cache"
	"github.com/mardigraph/graphscribe/internal/model"
)

func testHTTPConfig() model.HTTPConfig {
	return model.HTTPConfig{
		Timeout:      5 * time.Second,
		UserAgent:    "graphscribe-test",
		MaxBodyBytes: 1 << 20,
	}
}

const sampleResponse = `{
  "results": {
    "bindings": [
      {"qid": {"type": "literal", "value": "Q42"}, "label": {"type": "literal", "value": "FEM"}},
      {"qid": {"type": "literal", "value": "Q43"}}
    ]
  }
}`

func TestClient_Select(t *testing.T) {
	var gotQuery, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte(sampleResponse))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testHTTPConfig())
	rows, err := c.Select(context.Background(), "SELECT ?qid WHERE {}")
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}

	if gotQuery != "SELECT ?qid WHERE {}" {
		t.Errorf("query not transmitted, got %q", gotQuery)
	}
	if gotAccept == "" {
		t.Error("expected Accept header on request")
	}

	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Value(FieldQID) != "Q42" || rows[0].Value(FieldLabel) != "FEM" {
		t.Errorf("row 0 not decoded: %v", rows[0])
	}
	// Unbound fields read as empty strings.
	if rows[1].Value(FieldLabel) != "" {
		t.Errorf("expected empty value for unbound field, got %q", rows[1].Value(FieldLabel))
	}
}

func TestClient_Select_EmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": {"bindings": []}}`))
	}))
	defer srv.Close()

	rows, err := NewClient(srv.URL, testHTTPConfig()).Select(context.Background(), "SELECT ?qid WHERE {}")
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected no rows, got %d", len(rows))
	}
}

func TestClient_Select_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL, testHTTPConfig()).Select(context.Background(), "SELECT"); err == nil {
		t.Error("expected error on server failure")
	}
}

func TestClient_Select_Cached(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(sampleResponse))
	}))
	defer srv.Close()

	store := cache.NewMemoryCache(time.Minute)
	c := NewClient(srv.URL, testHTTPConfig(), WithCache(store, time.Minute))

	for i := 0; i < 3; i++ {
		rows, err := c.Select(context.Background(), "SELECT ?qid WHERE {}")
		if err != nil {
			t.Fatalf("Select %d failed: %v", i, err)
		}
		if len(rows) != 2 {
			t.Fatalf("Select %d returned %d rows", i, len(rows))
		}
	}

	if hits != 1 {
		t.Errorf("expected 1 upstream request with cache attached, got %d", hits)
	}
}
