package summary

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSummarize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer key" {
			t.Errorf("expected bearer auth, got %q", got)
		}
		w.Write([]byte(`{"summary":"short call","key_points":["hello","goodbye"]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "key")
	got, err := c.Summarize(context.Background(), "A: hello\nB: goodbye")
	if err != nil {
		t.Fatalf("summarize failed: %v", err)
	}
	if got.Text != "short call" {
		t.Errorf("expected summary 'short call', got %q", got.Text)
	}
	if len(got.KeyPoints) != 2 {
		t.Errorf("expected 2 key points, got %d", len(got.KeyPoints))
	}
}

func TestSummarize_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	if _, err := c.Summarize(context.Background(), "text"); err == nil {
		t.Fatal("expected error on 503")
	}
}

func TestSummarize_DisabledWithoutEndpoint(t *testing.T) {
	c := New("", "")
	if c.Enabled() {
		t.Error("expected disabled client without endpoint")
	}
	got, err := c.Summarize(context.Background(), "text")
	if err != nil {
		t.Fatalf("disabled client must not error, got %v", err)
	}
	if got.Text != "" {
		t.Errorf("expected empty summary, got %q", got.Text)
	}
}

func TestSummarize_EmptyTranscriptShortCircuits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("empty transcript must not reach the endpoint")
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	if _, err := c.Summarize(context.Background(), "   "); err != nil {
		t.Fatalf("expected no error for empty transcript, got %v", err)
	}
}
