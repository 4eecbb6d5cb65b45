// Package summary calls a hosted NLP endpoint to summarize a room's
// transcript at end of call.
package summary

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PavanSargar/video-call-voice-translation/internal/observability/metrics"
)

// Summary is the result of summarizing a call transcript.
type Summary struct {
	Text      string   `json:"summary"`
	KeyPoints []string `json:"key_points"`
}

// Client calls the summarization endpoint.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
	metrics  *metrics.Metrics
}

// New creates a summarization client. An empty endpoint disables
// summarization; Summarize then returns an empty summary.
func New(endpoint, apiKey string) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 60 * time.Second},
		metrics:  metrics.DefaultMetrics,
	}
}

// Enabled reports whether an endpoint is configured.
func (c *Client) Enabled() bool {
	return c.endpoint != ""
}

// Summarize sends the joined transcript text for summarization.
func (c *Client) Summarize(ctx context.Context, text string) (Summary, error) {
	if !c.Enabled() || strings.TrimSpace(text) == "" {
		return Summary{}, nil
	}

	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return Summary{}, fmt.Errorf("summary marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return Summary{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.RecordSummaryCall(err)
		return Summary{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		const maxErr = 4096
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErr))
		err := fmt.Errorf("summary %s: %s", resp.Status, strings.TrimSpace(string(b)))
		c.metrics.RecordSummaryCall(err)
		return Summary{}, err
	}

	var out Summary
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		err = fmt.Errorf("summary decode: %w", err)
		c.metrics.RecordSummaryCall(err)
		return Summary{}, err
	}
	c.metrics.RecordSummaryCall(nil)
	return out, nil
}
