// Package translate wraps hosted machine-translation endpoints behind a
// uniform contract. Translate never returns an error: any failure degrades
// to the original text so the caption stream keeps rendering.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/PavanSargar/video-call-voice-translation/internal/observability/metrics"
)

// Options selects the translation direction and model for one call.
type Options struct {
	// Source is the source language code; "auto" asks the backend to detect.
	Source string
	// Target is the target language code (primary subtag, e.g. "kn").
	Target string
	// Model overrides the configured default model when set.
	Model string
}

// Result is the outcome of a translation attempt. Degraded results carry the
// original text and must still be displayed.
type Result struct {
	// Text is the translated text, or the original text when degraded.
	Text string
	// DetectedSource is the backend-reported source language, falling back
	// to the requested source.
	DetectedSource string
	// Degraded is set when every endpoint tier failed.
	Degraded bool
	// Endpoint is the tier that served the translation; empty when the call
	// was short-circuited or degraded.
	Endpoint string
	// Raw holds the raw backend response, or the failure detail when degraded.
	Raw string
}

// Config holds translation client configuration.
type Config struct {
	// Endpoints is the ordered fallback chain; the first entry is primary.
	Endpoints []string
	APIKey    string
	Model     string
	// MaxInputLength truncates input before sending. 0 disables truncation.
	MaxInputLength int
	// AttemptTimeout bounds each endpoint attempt.
	AttemptTimeout time.Duration
}

// Client calls translation endpoints. It is stateless between calls and safe
// for concurrent use.
type Client struct {
	cfg     Config
	http    *http.Client
	metrics *metrics.Metrics
}

// New creates a translation client.
func New(cfg Config) *Client {
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = 5 * time.Second
	}
	return &Client{
		cfg:     cfg,
		http:    &http.Client{},
		metrics: metrics.DefaultMetrics,
	}
}

type request struct {
	Text           string `json:"text"`
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
	Model          string `json:"model,omitempty"`
	Format         string `json:"format"`
}

// response accepts the field spellings seen across translation backends.
// Absence of all three text fields is treated as a failed attempt.
type response struct {
	TranslatedTextSnake string `json:"translated_text"`
	TranslatedTextCamel string `json:"translatedText"`
	Text                string `json:"text"`
	DetectedSourceLang  string `json:"detected_source_language"`
}

func (r response) translated() (string, bool) {
	switch {
	case r.TranslatedTextSnake != "":
		return r.TranslatedTextSnake, true
	case r.TranslatedTextCamel != "":
		return r.TranslatedTextCamel, true
	case r.Text != "":
		return r.Text, true
	}
	return "", false
}

// Translate converts text to the target language, trying each configured
// endpoint in order. On any failure it returns the original text with
// Degraded set; it never returns an error and never panics.
func (c *Client) Translate(ctx context.Context, text string, opts Options) Result {
	if strings.TrimSpace(text) == "" {
		return Result{Text: text, DetectedSource: opts.Source}
	}

	if c.cfg.MaxInputLength > 0 && len(text) > c.cfg.MaxInputLength {
		text = text[:c.cfg.MaxInputLength]
	}

	model := opts.Model
	if model == "" {
		model = c.cfg.Model
	}

	var lastErr error
	for i, endpoint := range c.cfg.Endpoints {
		start := time.Now()
		res, err := c.attempt(ctx, endpoint, text, opts, model)
		c.metrics.RecordTranslationAttempt(endpoint, err, time.Since(start).Seconds())
		if err != nil {
			lastErr = err
			log.Warn().
				Err(err).
				Str("endpoint", endpoint).
				Int("tier", i).
				Msg("Translation attempt failed")
			continue
		}

		if i > 0 {
			c.metrics.TranslationFallback.Inc()
			log.Info().
				Str("endpoint", endpoint).
				Int("tier", i).
				Msg("Translation served by fallback tier")
		}
		if res.Text == text {
			// Soft signal only; the target language may simply not be
			// supported by this backend.
			c.metrics.TranslationNoop.Inc()
			log.Debug().
				Str("target", opts.Target).
				Msg("Translation returned text unchanged")
		}
		return res
	}

	detail := "no translation endpoints configured"
	if lastErr != nil {
		detail = lastErr.Error()
	}
	return Result{
		Text:           text,
		DetectedSource: opts.Source,
		Degraded:       true,
		Raw:            detail,
	}
}

func (c *Client) attempt(ctx context.Context, endpoint, text string, opts Options, model string) (Result, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.AttemptTimeout)
	defer cancel()

	payload, err := json.Marshal(request{
		Text:           text,
		SourceLanguage: opts.Source,
		TargetLanguage: opts.Target,
		Model:          model,
		Format:         "text",
	})
	if err != nil {
		return Result{}, fmt.Errorf("marshal translation request: %w", err)
	}

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Result{}, fmt.Errorf("read translation response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("translation %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var parsed response
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Result{}, fmt.Errorf("decode translation response: %w", err)
	}
	translated, ok := parsed.translated()
	if !ok {
		return Result{}, fmt.Errorf("translation response missing translated text")
	}

	detected := parsed.DetectedSourceLang
	if detected == "" {
		detected = opts.Source
	}
	return Result{
		Text:           translated,
		DetectedSource: detected,
		Endpoint:       endpoint,
		Raw:            string(body),
	}, nil
}
