package translate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func readJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func newServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestTranslate_Primary(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected JSON content type, got %q", ct)
		}
		w.Write([]byte(`{"translatedText":"hello","detected_source_language":"fr"}`))
	})

	c := New(Config{Endpoints: []string{srv.URL}})
	res := c.Translate(context.Background(), "bonjour", Options{Source: "auto", Target: "en"})

	if res.Degraded {
		t.Error("expected non-degraded result")
	}
	if res.Text != "hello" {
		t.Errorf("expected translated text 'hello', got %q", res.Text)
	}
	if res.DetectedSource != "fr" {
		t.Errorf("expected detected source 'fr', got %q", res.DetectedSource)
	}
	if res.Endpoint != srv.URL {
		t.Errorf("expected primary endpoint, got %q", res.Endpoint)
	}
}

func TestTranslate_BearerAuth(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("expected bearer auth, got %q", got)
		}
		w.Write([]byte(`{"translated_text":"hola"}`))
	})

	c := New(Config{Endpoints: []string{srv.URL}, APIKey: "secret"})
	res := c.Translate(context.Background(), "hello", Options{Source: "auto", Target: "es"})

	if res.Text != "hola" {
		t.Errorf("expected 'hola', got %q", res.Text)
	}
}

func TestTranslate_ResponseFieldVariants(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"snake case", `{"translated_text":"a"}`, "a"},
		{"camel case", `{"translatedText":"b"}`, "b"},
		{"bare text", `{"text":"c"}`, "c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			})
			c := New(Config{Endpoints: []string{srv.URL}})

			res := c.Translate(context.Background(), "x", Options{Source: "auto", Target: "en"})
			if res.Text != tt.want {
				t.Errorf("expected %q, got %q", tt.want, res.Text)
			}
			if res.Degraded {
				t.Error("expected non-degraded result")
			}
		})
	}
}

func TestTranslate_MissingTextFieldsIsFailure(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	})

	c := New(Config{Endpoints: []string{srv.URL}})
	res := c.Translate(context.Background(), "bonjour", Options{Source: "auto", Target: "en"})

	if !res.Degraded {
		t.Fatal("expected degraded result when no text field is present")
	}
	if res.Text != "bonjour" {
		t.Errorf("expected original text back, got %q", res.Text)
	}
}

func TestTranslate_FallbackAfterPrimaryTimeout(t *testing.T) {
	primary := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"translatedText":"too late"}`))
	})
	var fallbackHits int32
	fallback := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&fallbackHits, 1)
		w.Write([]byte(`{"translatedText":"hello"}`))
	})

	c := New(Config{
		Endpoints:      []string{primary.URL, fallback.URL},
		AttemptTimeout: 50 * time.Millisecond,
	})
	res := c.Translate(context.Background(), "bonjour", Options{Source: "auto", Target: "en"})

	if res.Degraded {
		t.Fatal("expected fallback to serve the translation")
	}
	if res.Text != "hello" {
		t.Errorf("expected 'hello' from fallback, got %q", res.Text)
	}
	if res.Endpoint != fallback.URL {
		t.Errorf("expected fallback endpoint, got %q", res.Endpoint)
	}
	if atomic.LoadInt32(&fallbackHits) != 1 {
		t.Errorf("expected exactly one fallback call, got %d", fallbackHits)
	}
}

func TestTranslate_AllEndpointsFailDegrades(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	c := New(Config{Endpoints: []string{srv.URL, srv.URL}})
	res := c.Translate(context.Background(), "bonjour", Options{Source: "auto", Target: "en"})

	if !res.Degraded {
		t.Fatal("expected degraded result")
	}
	if res.Text != "bonjour" {
		t.Errorf("expected original text, got %q", res.Text)
	}
	if res.DetectedSource != "auto" {
		t.Errorf("expected detected source to fall back to requested source, got %q", res.DetectedSource)
	}
	if res.Raw == "" {
		t.Error("expected failure detail in Raw")
	}
}

func TestTranslate_EmptyInputShortCircuits(t *testing.T) {
	var hits int32
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	})

	c := New(Config{Endpoints: []string{srv.URL}})

	for _, text := range []string{"", "   ", "\t\n"} {
		res := c.Translate(context.Background(), text, Options{Source: "auto", Target: "en"})
		if res.Text != text {
			t.Errorf("expected input %q back, got %q", text, res.Text)
		}
		if res.Degraded {
			t.Error("short-circuit must not be marked degraded")
		}
	}

	if atomic.LoadInt32(&hits) != 0 {
		t.Errorf("expected no network calls for blank input, got %d", hits)
	}
}

func TestTranslate_NoEndpointsConfigured(t *testing.T) {
	c := New(Config{})
	res := c.Translate(context.Background(), "hello", Options{Source: "auto", Target: "en"})

	if !res.Degraded {
		t.Fatal("expected degraded result without endpoints")
	}
	if res.Text != "hello" {
		t.Errorf("expected original text, got %q", res.Text)
	}
}

func TestTranslate_NoopSameLanguage(t *testing.T) {
	var hits int32
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte(`{"translatedText":"hello"}`))
	})
	fallback := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("fallback must not be called when primary succeeds")
	})

	c := New(Config{Endpoints: []string{srv.URL, fallback.URL}})
	res := c.Translate(context.Background(), "hello", Options{Source: "auto", Target: "en"})

	if res.Degraded {
		t.Error("unchanged text is a soft signal, not a failure")
	}
	if res.Text != "hello" {
		t.Errorf("expected 'hello', got %q", res.Text)
	}
	if atomic.LoadInt32(&hits) != 1 {
		t.Errorf("expected one call to the primary tier, got %d", hits)
	}
}

func TestTranslate_TruncatesLongInput(t *testing.T) {
	var gotLen int
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Text string `json:"text"`
		}
		if err := readJSON(r, &req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		gotLen = len(req.Text)
		w.Write([]byte(`{"translatedText":"ok"}`))
	})

	c := New(Config{Endpoints: []string{srv.URL}, MaxInputLength: 10})
	long := "aaaaaaaaaaaaaaaaaaaaaaaaa"
	c.Translate(context.Background(), long, Options{Source: "auto", Target: "en"})

	if gotLen != 10 {
		t.Errorf("expected input truncated to 10 bytes, got %d", gotLen)
	}
}
