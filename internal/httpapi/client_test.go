package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"curveOps/internal/retry"
)

func TestGetJSONRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		if r.URL.Query().Get("limit") != "50" {
			t.Errorf("missing limit query: %s", r.URL.RawQuery)
		}
		_ = json.NewEncoder(w).Encode(map[string]int{"value": 7})
	}))
	defer srv.Close()

	client := NewClient(time.Second, retry.Policy{MaxRetries: 2, Backoff: time.Millisecond}, nil)
	var out struct {
		Value int `json:"value"`
	}
	if err := client.GetJSON(context.Background(), srv.URL, url.Values{"limit": {"50"}}, &out); err != nil {
		t.Fatalf("get json: %v", err)
	}
	if out.Value != 7 {
		t.Fatalf("value = %d", out.Value)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
}

func TestPostJSONClientErrorIsPermanent(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "bad query", http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewClient(time.Second, retry.Policy{MaxRetries: 3, Backoff: time.Millisecond}, nil)
	err := client.PostJSON(context.Background(), srv.URL, map[string]string{"query": "{}"}, nil)
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 status error, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}
