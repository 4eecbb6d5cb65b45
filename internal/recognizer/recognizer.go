// Package recognizer defines the interface for streaming speech recognition
// adapters.
package recognizer

import "context"

// Callback receives recognition results from the provider.
type Callback interface {
	// OnInterim is called when an interim transcript update is received.
	OnInterim(text string)

	// OnFinal is called when an utterance is finalized.
	OnFinal(text string, confidence float64)

	// OnError is called when an error occurs during recognition.
	OnError(err error)
}

// Config holds recognition session settings.
type Config struct {
	LanguageCode   string
	SampleRateHz   int
	InterimResults bool
}

// DefaultConfig returns sensible recognition defaults.
func DefaultConfig() Config {
	return Config{
		LanguageCode:   "en-US",
		SampleRateHz:   16000,
		InterimResults: true,
	}
}

// Recognizer is a streaming speech recognition session. Implementations are
// single-session: Close then a fresh instance is required to change language.
type Recognizer interface {
	// Start begins a streaming recognition session.
	Start(ctx context.Context, cb Callback) error

	// SendAudio sends audio bytes to the provider.
	SendAudio(ctx context.Context, audio []byte) error

	// Close ends the session and releases resources. It must fully stop the
	// session before returning so that a successor session cannot overlap.
	Close() error
}

// Factory creates a recognition session for the given configuration. The
// producer calls it on every session restart (language change, capture
// toggle).
type Factory func(ctx context.Context, cfg Config) (Recognizer, error)
