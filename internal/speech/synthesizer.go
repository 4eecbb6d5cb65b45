// Package speech triggers audio playback of translated captions.
package speech

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
)

// Synthesizer renders one utterance to audio. Speak blocks until playback
// completes or ctx is cancelled.
type Synthesizer interface {
	Speak(ctx context.Context, text, language, voice string) error
}

// Voice is an installed synthesis voice.
type Voice struct {
	Name     string
	Language string
}

// SelectVoice picks the first voice matching the language hint's primary
// subtag, falling back to def when none matches.
func SelectVoice(voices []Voice, languageHint, def string) string {
	hint := primarySubtag(languageHint)
	if hint == "" {
		return def
	}
	for _, v := range voices {
		if primarySubtag(v.Language) == hint {
			return v.Name
		}
	}
	return def
}

func primarySubtag(code string) string {
	if i := strings.IndexAny(code, "-_"); i >= 0 {
		return strings.ToLower(code[:i])
	}
	return strings.ToLower(code)
}

// HTTPSynthesizer requests playback from a hosted TTS endpoint.
type HTTPSynthesizer struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

// NewHTTPSynthesizer creates a synthesizer backed by a hosted TTS endpoint.
func NewHTTPSynthesizer(endpoint, apiKey string) *HTTPSynthesizer {
	return &HTTPSynthesizer{
		endpoint: endpoint,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

// Speak posts the synthesis request and waits for completion.
func (s *HTTPSynthesizer) Speak(ctx context.Context, text, language, voice string) error {
	payload, err := json.Marshal(map[string]string{
		"text":     text,
		"language": language,
		"voice":    voice,
	})
	if err != nil {
		return fmt.Errorf("marshal synthesis request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("synthesis %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	return nil
}

// NopSynthesizer discards synthesis requests. Used when no TTS endpoint is
// configured.
type NopSynthesizer struct{}

// Speak logs and drops the request.
func (NopSynthesizer) Speak(ctx context.Context, text, language, voice string) error {
	log.Debug().Str("language", language).Msg("Synthesis disabled, dropping utterance audio")
	return nil
}
