// Package producer turns speech recognition events into finalized utterances
// on the transport, one message per completed utterance.
//
// Utterance lifecycle:
//
//	IDLE → LISTENING → (interim updates, self-loop) → FINALIZED → IDLE
//
// The recognition session restarts whenever the target language changes or
// audio capture is toggled; the old session is fully closed before a new one
// starts so two concurrent listeners can never emit duplicate finals.
package producer

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/PavanSargar/video-call-voice-translation/internal/observability/logging"
	"github.com/PavanSargar/video-call-voice-translation/internal/observability/metrics"
	"github.com/PavanSargar/video-call-voice-translation/internal/recognizer"
	"github.com/PavanSargar/video-call-voice-translation/internal/transport"
)

// Producer captures speech for one participant and publishes finalized
// utterances to the room channel.
type Producer struct {
	factory   recognizer.Factory
	publisher transport.Publisher
	metrics   *metrics.Metrics
	logger    zerolog.Logger

	room     string
	sender   string
	senderID string

	mu        sync.Mutex
	recCfg    recognizer.Config
	session   recognizer.Recognizer
	state     State
	interim   string
	capturing bool
	// inert is set when the recognition capability is unavailable. This is
	// a fatal capability failure: logged once, never retried.
	inert bool
}

// New creates a producer for one participant. The recognizer session is not
// started until SetCapturing(true).
func New(factory recognizer.Factory, publisher transport.Publisher, room, sender, senderID string, recCfg recognizer.Config) *Producer {
	return &Producer{
		factory:   factory,
		publisher: publisher,
		metrics:   metrics.DefaultMetrics,
		logger:    logging.WithParticipant(room, senderID),
		room:      room,
		sender:    sender,
		senderID:  senderID,
		recCfg:    recCfg,
		state:     StateIdle,
	}
}

// State returns the current utterance lifecycle state.
func (p *Producer) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Inert reports whether the producer was disabled by a capability failure.
func (p *Producer) Inert() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inert
}

// Capturing reports whether a recognition session is active.
func (p *Producer) Capturing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.capturing
}

// SetCapturing toggles audio capture. Turning capture on starts a fresh
// recognition session; turning it off stops the session synchronously.
func (p *Producer) SetCapturing(ctx context.Context, on bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.inert {
		return nil
	}
	if on == p.capturing {
		return nil
	}
	if !on {
		p.stopSessionLocked()
		p.capturing = false
		return nil
	}
	if err := p.startSessionLocked(ctx); err != nil {
		return err
	}
	p.capturing = true
	return nil
}

// SetLanguage changes the recognition language. An active session is fully
// stopped and a new one started with the updated language.
func (p *Producer) SetLanguage(ctx context.Context, languageCode string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.inert || languageCode == p.recCfg.LanguageCode {
		p.recCfg.LanguageCode = languageCode
		return nil
	}
	p.recCfg.LanguageCode = languageCode
	if !p.capturing {
		return nil
	}

	p.stopSessionLocked()
	return p.startSessionLocked(ctx)
}

// SendAudio forwards audio to the active recognition session. Dropped
// silently while capture is off or the producer is inert.
func (p *Producer) SendAudio(ctx context.Context, audio []byte) error {
	p.mu.Lock()
	session := p.session
	p.mu.Unlock()

	if session == nil {
		return nil
	}
	return session.SendAudio(ctx, audio)
}

// Stop synchronously ends any active session.
func (p *Producer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopSessionLocked()
	p.capturing = false
}

// startSessionLocked creates and starts a recognition session. A factory
// failure marks the producer permanently inert.
func (p *Producer) startSessionLocked(ctx context.Context) error {
	session, err := p.factory(ctx, p.recCfg)
	if err != nil {
		p.inert = true
		p.logger.Error().Err(err).Msg("Speech recognition unavailable, captions from this participant are disabled")
		return nil
	}
	if err := session.Start(ctx, p); err != nil {
		p.inert = true
		p.logger.Error().Err(err).Msg("Failed to start recognition session, captions from this participant are disabled")
		return nil
	}
	p.session = session
	p.state = StateIdle
	p.interim = ""
	p.logger.Info().Str("language", p.recCfg.LanguageCode).Msg("Recognition session started")
	return nil
}

// stopSessionLocked closes the active session and waits for it to finish.
func (p *Producer) stopSessionLocked() {
	if p.session == nil {
		return
	}
	if err := p.session.Close(); err != nil {
		p.logger.Warn().Err(err).Msg("Error closing recognition session")
	}
	p.session = nil
	p.state = StateIdle
	p.interim = ""
}

// --- recognizer.Callback implementation ---

// OnInterim holds the latest interim text. Interim updates are transient and
// never cross the transport.
func (p *Producer) OnInterim(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = StateListening
	p.interim = text
}

// OnFinal publishes exactly one finalized utterance and resets interim state.
func (p *Producer) OnFinal(text string, confidence float64) {
	p.mu.Lock()
	p.state = StateFinalized
	p.interim = ""
	u := transport.NewUtterance(p.sender, p.senderID, text)
	p.state = StateIdle
	p.mu.Unlock()

	if err := p.publisher.Publish(context.Background(), p.room, u); err != nil {
		// Transport failures are transient; the call continues without
		// this caption.
		p.logger.Warn().Err(err).Str("utteranceId", u.ID).Msg("Failed to publish utterance")
		return
	}
	p.metrics.RecordUtterancePublished(p.room)
	p.logger.Debug().
		Str("utteranceId", u.ID).
		Float64("confidence", confidence).
		Msg("Utterance published")
}

// OnError logs recognition errors. The in-flight interim is discarded.
func (p *Producer) OnError(err error) {
	p.mu.Lock()
	p.state = StateIdle
	p.interim = ""
	p.mu.Unlock()
	p.logger.Warn().Err(err).Msg("Recognition error, interim discarded")
}
