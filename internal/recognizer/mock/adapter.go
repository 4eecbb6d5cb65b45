// Package mock provides a scripted recognizer for development and tests.
// It simulates realistic recognition behavior: progressive interim updates
// followed by exactly one final transcript per utterance.
package mock

import (
	"context"
	"sync"

	"github.com/PavanSargar/video-call-voice-translation/internal/recognizer"
)

// ScriptedUtterance is one simulated utterance with progressive interims.
type ScriptedUtterance struct {
	Interims   []string
	Final      string
	Confidence float64
}

// DefaultScript provides sample utterances for simulation.
var DefaultScript = []ScriptedUtterance{
	{
		Interims:   []string{"hello", "hello every", "hello everyone"},
		Final:      "hello everyone, can you hear me",
		Confidence: 0.95,
	},
	{
		Interims:   []string{"let's", "let's get started"},
		Final:      "let's get started with the agenda",
		Confidence: 0.92,
	},
	{
		Interims:   []string{"any", "any questions"},
		Final:      "any questions so far",
		Confidence: 0.97,
	},
}

// Adapter implements recognizer.Recognizer with scripted responses. Each
// SendAudio call advances the script by one interim; once interims are
// exhausted the final transcript is emitted, then the script moves to the
// next utterance.
type Adapter struct {
	mu       sync.Mutex
	cb       recognizer.Callback
	script   []ScriptedUtterance
	uttIndex int
	interim  int
	closed   bool
	started  bool
}

// New creates a mock recognizer using the default script.
func New() *Adapter {
	return NewScripted(DefaultScript)
}

// NewScripted creates a mock recognizer with a caller-provided script.
func NewScripted(script []ScriptedUtterance) *Adapter {
	return &Adapter{script: script}
}

// Start records the callback receiver.
func (a *Adapter) Start(ctx context.Context, cb recognizer.Callback) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cb = cb
	a.started = true
	return nil
}

// SendAudio advances the simulation by one step. Callbacks fire
// synchronously, which keeps tests deterministic.
func (a *Adapter) SendAudio(ctx context.Context, audio []byte) error {
	a.mu.Lock()
	if a.closed || !a.started || a.uttIndex >= len(a.script) {
		a.mu.Unlock()
		return nil
	}

	utt := a.script[a.uttIndex]
	if a.interim < len(utt.Interims) {
		text := utt.Interims[a.interim]
		a.interim++
		cb := a.cb
		a.mu.Unlock()
		cb.OnInterim(text)
		return nil
	}

	// Interims exhausted: finalize and move to the next utterance.
	a.uttIndex++
	a.interim = 0
	cb := a.cb
	a.mu.Unlock()
	cb.OnFinal(utt.Final, utt.Confidence)
	return nil
}

// Close ends the mock session.
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	return nil
}

// Closed reports whether Close has been called. Test helper.
func (a *Adapter) Closed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.closed
}
