// Package caption drains incoming utterances into the visible caption.
//
// The consumer owns the caption queue and display state exclusively; other
// components only push utterances or read the rendered caption. A single
// worker goroutine drains the queue strictly in arrival order, so at most
// one translation call is in flight at any time and the visible caption can
// never be overwritten by an older, slower item.
package caption

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/PavanSargar/video-call-voice-translation/internal/observability/logging"
	"github.com/PavanSargar/video-call-voice-translation/internal/observability/metrics"
	"github.com/PavanSargar/video-call-voice-translation/internal/translate"
	"github.com/PavanSargar/video-call-voice-translation/internal/transport"
)

// Caption is the currently visible translated caption.
type Caption struct {
	Sender  string `json:"sender"`
	Message string `json:"message"`
	// Err marks a degraded caption showing the original, untranslated text.
	Err bool `json:"error,omitempty"`
	// Visible is false once the display timeout has cleared the caption.
	Visible bool `json:"visible"`
}

// Translator is the slice of the translation client the consumer needs.
type Translator interface {
	Translate(ctx context.Context, text string, opts translate.Options) translate.Result
}

// Speaker triggers audio playback of a caption.
type Speaker interface {
	Speak(text string, interruptPrevious bool, languageHint string)
}

// Config holds consumer settings.
type Config struct {
	// Language is the viewer's selected language code; the caption target is
	// its primary subtag.
	Language string
	// DisplayTime is how long a caption stays visible after the last push.
	DisplayTime time.Duration
}

// Consumer drains the caption queue for one viewer.
type Consumer struct {
	translator Translator
	speaker    Speaker
	metrics    *metrics.Metrics
	logger     zerolog.Logger

	displayTime time.Duration

	mu       sync.Mutex
	queue    []transport.Utterance
	display  Caption
	language string
	timer    *time.Timer
	subs     map[int]chan Caption
	nextSub  int
	closed   bool

	wake chan struct{}
	done chan struct{}
}

// NewConsumer creates a consumer and starts its drain worker.
func NewConsumer(cfg Config, translator Translator, speaker Speaker) *Consumer {
	if cfg.DisplayTime <= 0 {
		cfg.DisplayTime = 5 * time.Second
	}
	c := &Consumer{
		translator:  translator,
		speaker:     speaker,
		metrics:     metrics.DefaultMetrics,
		logger:      logging.WithComponent("caption-consumer"),
		displayTime: cfg.DisplayTime,
		language:    cfg.Language,
		subs:        map[int]chan Caption{},
		wake:        make(chan struct{}, 1),
		done:        make(chan struct{}),
	}
	go c.drainLoop()
	return c
}

// TargetLanguage reduces a viewer language code to the primary subtag used
// as the translation target: "kn-IN" → "kn". Empty input defaults to "en".
func TargetLanguage(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return "en"
	}
	if i := strings.IndexAny(code, "-_"); i >= 0 {
		code = code[:i]
	}
	return strings.ToLower(code)
}

// Push appends a finalized utterance to the tail of the queue. Interim
// utterances are dropped; they never reach the display.
func (c *Consumer) Push(u transport.Utterance) {
	if !u.IsFinal {
		c.metrics.RecordUtteranceDropped("interim")
		return
	}
	c.metrics.RecordUtteranceReceived()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.queue = append(c.queue, u)
	c.metrics.QueueDepth.Set(float64(len(c.queue)))
	c.resetTimerLocked()
	c.mu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// SetLanguage changes the viewer's caption language for subsequent items.
func (c *Consumer) SetLanguage(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.language = code
}

// Caption returns a copy of the current display state.
func (c *Consumer) Caption() Caption {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.display
}

// QueueLen returns the number of utterances waiting to be processed.
func (c *Consumer) QueueLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

// Subscribe returns a channel receiving every display update. Slow readers
// miss updates rather than blocking the drain.
func (c *Consumer) Subscribe() (<-chan Caption, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSub
	c.nextSub++
	ch := make(chan Caption, 16)
	c.subs[id] = ch

	return ch, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if sub, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(sub)
		}
	}
}

// Close tears the consumer down: the drain stops, the display timer is
// cancelled and subscribers are closed.
func (c *Consumer) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	for id, sub := range c.subs {
		delete(c.subs, id)
		close(sub)
	}
	c.queue = nil
	c.mu.Unlock()
	close(c.done)
}

// drainLoop is the single consumer of the queue. One item is processed per
// iteration; the translation call is the only suspension point.
func (c *Consumer) drainLoop() {
	for {
		select {
		case <-c.done:
			return
		case <-c.wake:
		}

		for {
			c.mu.Lock()
			if c.closed || len(c.queue) == 0 {
				c.mu.Unlock()
				break
			}
			head := c.queue[0]
			target := TargetLanguage(c.language)
			c.mu.Unlock()

			start := time.Now()
			res := c.translator.Translate(context.Background(), head.Message, translate.Options{
				Source: "auto",
				Target: target,
			})

			c.mu.Lock()
			if c.closed {
				c.mu.Unlock()
				return
			}
			c.display = Caption{
				Sender:  head.Sender,
				Message: res.Text,
				Err:     res.Degraded,
				Visible: true,
			}
			// The head is removed regardless of the translation outcome;
			// the queue never retries and always makes forward progress.
			c.queue = append(c.queue[:0:0], c.queue[1:]...)
			last := len(c.queue) == 0
			c.metrics.QueueDepth.Set(float64(len(c.queue)))
			c.notifyLocked(c.display)
			c.mu.Unlock()

			c.metrics.RecordCaptionShown(res.Degraded, time.Since(start).Seconds())
			if res.Degraded {
				c.logger.Warn().
					Str("sender", head.Sender).
					Msg("Caption degraded to original text")
			}

			c.speaker.Speak(res.Text, last, target)
		}
	}
}

// resetTimerLocked restarts the display timeout. Callers hold c.mu.
func (c *Consumer) resetTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.displayTime, c.clearDisplay)
}

// clearDisplay hides the caption once the display timeout elapses.
func (c *Consumer) clearDisplay() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.display = Caption{}
	c.notifyLocked(c.display)
}

func (c *Consumer) notifyLocked(cap Caption) {
	for _, sub := range c.subs {
		select {
		case sub <- cap:
		default:
		}
	}
}
