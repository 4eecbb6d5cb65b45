package transport

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"github.com/PavanSargar/video-call-voice-translation/internal/observability/metrics"
)

// KafkaConfig holds Kafka bus configuration.
type KafkaConfig struct {
	Brokers []string
	// TopicPrefix namespaces room topics, e.g. "captions" → "captions.room-1".
	TopicPrefix string
	Principal   string
	Enabled     bool
}

// KafkaBus publishes and consumes utterances over per-room Kafka topics.
// When disabled it runs in log-only mode: publishes are logged and dropped,
// subscriptions deliver nothing.
type KafkaBus struct {
	cfg       KafkaConfig
	transport *kafka.Transport
	metrics   *metrics.Metrics

	mu      sync.Mutex
	writers map[string]*kafka.Writer
	enabled bool
}

// NewKafkaBus creates a Kafka-backed utterance bus.
func NewKafkaBus(cfg KafkaConfig) *KafkaBus {
	m := metrics.DefaultMetrics

	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		log.Info().Msg("Kafka disabled, utterance bus in log-only mode")
		return &KafkaBus{cfg: cfg, metrics: m, writers: map[string]*kafka.Writer{}}
	}

	// Longer dial timeout for DNS resolution in Kubernetes
	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}

	log.Info().
		Strs("brokers", cfg.Brokers).
		Str("topicPrefix", cfg.TopicPrefix).
		Str("principal", cfg.Principal).
		Msg("Kafka utterance bus initialized")

	return &KafkaBus{
		cfg:       cfg,
		transport: &kafka.Transport{Dial: dialer.DialFunc},
		metrics:   m,
		writers:   map[string]*kafka.Writer{},
		enabled:   true,
	}
}

func (b *KafkaBus) topic(room string) string {
	if b.cfg.TopicPrefix == "" {
		return room
	}
	return b.cfg.TopicPrefix + "." + room
}

func (b *KafkaBus) writer(room string) *kafka.Writer {
	b.mu.Lock()
	defer b.mu.Unlock()
	if w, ok := b.writers[room]; ok {
		return w
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(b.cfg.Brokers...),
		Topic:        b.topic(room),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
		Transport:    b.transport,
	}
	b.writers[room] = w
	return w
}

// Publish sends one utterance to the room topic, keyed by sender so that a
// single speaker's utterances stay ordered within a partition.
func (b *KafkaBus) Publish(ctx context.Context, room string, u Utterance) error {
	start := time.Now()

	if err := u.Validate(); err != nil {
		return err
	}

	payload, err := json.Marshal(u)
	if err != nil {
		log.Error().Err(err).Str("room", room).Msg("Failed to marshal utterance")
		return err
	}

	log.Debug().
		Str("room", room).
		Str("sender", u.Sender).
		RawJSON("payload", payload).
		Msg("Publishing utterance")

	if !b.enabled {
		b.metrics.RecordPublish(room, nil, time.Since(start).Seconds())
		return nil
	}

	msg := kafka.Message{
		Key:   []byte(u.SenderID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "room", Value: []byte(room)},
			{Key: "principal", Value: []byte(b.cfg.Principal)},
		},
	}

	if err := b.writer(room).WriteMessages(ctx, msg); err != nil {
		log.Error().
			Err(err).
			Str("room", room).
			Str("sender", u.Sender).
			Msg("Failed to write utterance to Kafka")
		b.metrics.RecordPublish(room, err, time.Since(start).Seconds())
		return err
	}

	b.metrics.RecordPublish(room, nil, time.Since(start).Seconds())
	return nil
}

// Subscribe consumes the room topic and delivers each utterance to fn.
// Malformed messages are logged and skipped.
func (b *KafkaBus) Subscribe(ctx context.Context, room string, fn func(Utterance)) (func(), error) {
	if !b.enabled {
		return func() {}, nil
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  b.cfg.Brokers,
		Topic:    b.topic(room),
		GroupID:  b.cfg.Principal + "." + room,
		MinBytes: 1,
		MaxBytes: 1 << 20,
	})

	readCtx, cancel := context.WithCancel(ctx)
	go func() {
		defer reader.Close()
		for {
			msg, err := reader.ReadMessage(readCtx)
			if err != nil {
				if readCtx.Err() != nil {
					return
				}
				log.Error().Err(err).Str("room", room).Msg("Kafka read failed")
				return
			}
			var u Utterance
			if err := json.Unmarshal(msg.Value, &u); err != nil {
				log.Warn().Err(err).Str("room", room).Msg("Skipping malformed utterance")
				continue
			}
			fn(u)
		}
	}()

	return cancel, nil
}

// Close closes all room writers.
func (b *KafkaBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	var err error
	for room, w := range b.writers {
		if e := w.Close(); e != nil {
			log.Error().Err(e).Str("room", room).Msg("Error closing Kafka writer")
			err = e
		}
	}
	b.writers = map[string]*kafka.Writer{}
	return err
}
