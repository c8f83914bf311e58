package alerting

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNoOpNotifyAlwaysSucceeds(t *testing.T) {
	var n NoOp
	if err := n.Notify(context.Background(), Summary{Total: 3}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestSlackNotifierPostsPayload(t *testing.T) {
	var gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	n := NewSlackNotifier(server.URL)
	err := n.Notify(context.Background(), Summary{
		RunID: "run-1", Total: 5, Passed: 4, Failed: 1, FailedChecks: []string{"orders_row_count"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotContentType != "application/json" {
		t.Fatalf("expected application/json, got %q", gotContentType)
	}
}

func TestSlackNotifierNonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	n := NewSlackNotifier(server.URL)
	if err := n.Notify(context.Background(), Summary{}); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}
