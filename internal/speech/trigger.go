package speech

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/PavanSargar/video-call-voice-translation/internal/observability/metrics"
)

// TriggerConfig holds playback policy settings.
type TriggerConfig struct {
	// MaxPending bounds utterances queued behind the one playing; the most
	// recent entries win when the bound is exceeded.
	MaxPending int
	// DefaultVoice is used when no installed voice matches the language hint.
	DefaultVoice string
	// Voices lists installed synthesis voices.
	Voices []Voice
}

type request struct {
	text     string
	language string
}

// Trigger serializes synthesis playback for one viewer. At most one
// utterance plays at a time; Speak never blocks the caller.
type Trigger struct {
	cfg     TriggerConfig
	synth   Synthesizer
	metrics *metrics.Metrics

	mu      sync.Mutex
	pending []request
	cancel  context.CancelFunc
	wake    chan struct{}
	done    chan struct{}
	closed  bool
}

// NewTrigger creates a trigger and starts its playback worker.
func NewTrigger(cfg TriggerConfig, synth Synthesizer) *Trigger {
	if cfg.MaxPending <= 0 {
		cfg.MaxPending = 2
	}
	t := &Trigger{
		cfg:     cfg,
		synth:   synth,
		metrics: metrics.DefaultMetrics,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go t.playLoop()
	return t
}

// Speak requests playback of text. When interruptPrevious is set, any
// in-progress synthesis is cancelled and pending requests are discarded so
// the new utterance starts immediately.
func (t *Trigger) Speak(text string, interruptPrevious bool, languageHint string) {
	t.metrics.SynthesisRequests.Inc()

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	if interruptPrevious {
		if t.cancel != nil {
			t.cancel()
			t.metrics.SynthesisInterrupted.Inc()
		}
		if n := len(t.pending); n > 0 {
			t.metrics.SynthesisDropped.Add(float64(n))
		}
		t.pending = t.pending[:0]
	}
	t.pending = append(t.pending, request{text: text, language: languageHint})
	if over := len(t.pending) - t.cfg.MaxPending; over > 0 {
		t.metrics.SynthesisDropped.Add(float64(over))
		t.pending = append(t.pending[:0:0], t.pending[over:]...)
	}
	t.mu.Unlock()

	select {
	case t.wake <- struct{}{}:
	default:
	}
}

// Close stops the worker and cancels any in-progress playback.
func (t *Trigger) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	if t.cancel != nil {
		t.cancel()
	}
	t.pending = nil
	t.mu.Unlock()
	close(t.done)
}

func (t *Trigger) playLoop() {
	for {
		select {
		case <-t.done:
			return
		case <-t.wake:
		}

		for {
			t.mu.Lock()
			if t.closed || len(t.pending) == 0 {
				t.mu.Unlock()
				break
			}
			req := t.pending[0]
			t.pending = append(t.pending[:0:0], t.pending[1:]...)
			ctx, cancel := context.WithCancel(context.Background())
			t.cancel = cancel
			t.mu.Unlock()

			voice := SelectVoice(t.cfg.Voices, req.language, t.cfg.DefaultVoice)
			if err := t.synth.Speak(ctx, req.text, req.language, voice); err != nil && ctx.Err() == nil {
				log.Warn().Err(err).Msg("Speech synthesis failed")
			}

			t.mu.Lock()
			if t.cancel != nil {
				t.cancel()
				t.cancel = nil
			}
			t.mu.Unlock()
		}
	}
}
