// Package config loads environment-derived configuration for the service.
// Configuration is read once at startup into an immutable struct and passed
// to components by injection; Validate reports missing required credentials
// so the process can fail fast instead of limping along half-configured.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ServiceConfig holds process-level settings.
type ServiceConfig struct {
	Name     string
	HTTPPort string
	// ObservabilityPort is where /metrics, /healthz and /readyz are served.
	ObservabilityPort string
	DevMode           bool
}

// TranslationConfig holds settings for the translation client.
type TranslationConfig struct {
	// Endpoints is the ordered fallback chain; the first entry is the
	// primary tier.
	Endpoints []string
	APIKey    string
	Model     string
	// MaxInputLength truncates utterance text before it is sent. 0 disables.
	MaxInputLength int
	// AttemptTimeout bounds each endpoint attempt.
	AttemptTimeout time.Duration
}

// LiveKitConfig holds media-service credentials.
type LiveKitConfig struct {
	URL       string
	APIKey    string
	APISecret string
	// TokenTTL is how long issued join tokens stay valid.
	TokenTTL time.Duration
}

// KafkaConfig holds utterance transport settings.
type KafkaConfig struct {
	Enabled     bool
	Brokers     []string
	TopicPrefix string
	Principal   string
}

// SpeechConfig holds speech synthesis settings.
type SpeechConfig struct {
	Endpoint     string
	APIKey       string
	DefaultVoice string
	// MaxPending bounds utterances queued behind a playing one; older
	// pending entries are dropped beyond this.
	MaxPending int
}

// SummaryConfig holds the end-of-call summarization endpoint settings.
type SummaryConfig struct {
	Endpoint string
	APIKey   string
}

// DatabaseConfig holds persistence settings. An empty DSN disables the store.
type DatabaseConfig struct {
	DSN string
}

// ViewerConfig holds per-viewer display defaults.
type ViewerConfig struct {
	// DefaultLanguage is the caption target language when a viewer has not
	// picked one. Region subtags are accepted ("kn-IN") and reduced to the
	// primary subtag before use.
	DefaultLanguage string
	// CaptionDisplayTime is how long a caption stays visible after the last
	// utterance arrived.
	CaptionDisplayTime time.Duration
}

// RecognizerConfig holds speech recognition settings.
type RecognizerConfig struct {
	// Provider selects the adapter: "google" or "mock".
	Provider     string
	LanguageCode string
	SampleRateHz int
	// InterimResults enables partial transcripts from the provider.
	InterimResults bool
}

// Config is the root configuration for captiond.
type Config struct {
	Service     ServiceConfig
	Translation TranslationConfig
	LiveKit     LiveKitConfig
	Kafka       KafkaConfig
	Speech      SpeechConfig
	Summary     SummaryConfig
	Database    DatabaseConfig
	Viewer      ViewerConfig
	Recognizer  RecognizerConfig
	LogLevel    string
}

// Load reads configuration from the environment, consulting an optional
// .env file first. Invalid numeric or duration values fall back to defaults.
func Load() *Config {
	// Best effort; absence of a .env file is the normal production case.
	_ = godotenv.Load()

	cfg := &Config{
		Service: ServiceConfig{
			Name:              envOrDefault("SERVICE_NAME", "captiond"),
			HTTPPort:          envOrDefault("HTTP_PORT", "8080"),
			ObservabilityPort: envOrDefault("OBSERVABILITY_PORT", "9090"),
			DevMode:           envOrDefaultBool("DEV_MODE", false),
		},
		Translation: TranslationConfig{
			Endpoints:      envOrDefaultList("TRANSLATION_ENDPOINTS", nil),
			APIKey:         os.Getenv("TRANSLATION_API_KEY"),
			Model:          envOrDefault("TRANSLATION_MODEL", "base"),
			MaxInputLength: envOrDefaultInt("TRANSLATION_MAX_INPUT_LENGTH", 1000),
			AttemptTimeout: envOrDefaultDuration("TRANSLATION_ATTEMPT_TIMEOUT", 5*time.Second),
		},
		LiveKit: LiveKitConfig{
			URL:       os.Getenv("LIVEKIT_URL"),
			APIKey:    os.Getenv("LIVEKIT_API_KEY"),
			APISecret: os.Getenv("LIVEKIT_API_SECRET"),
			TokenTTL:  envOrDefaultDuration("LIVEKIT_TOKEN_TTL", 5*time.Minute),
		},
		Kafka: KafkaConfig{
			Enabled:     envOrDefaultBool("KAFKA_ENABLED", false),
			Brokers:     envOrDefaultList("KAFKA_BROKERS", nil),
			TopicPrefix: envOrDefault("KAFKA_TOPIC_PREFIX", "captions"),
			Principal:   envOrDefault("KAFKA_PRINCIPAL", envOrDefault("SERVICE_NAME", "captiond")),
		},
		Speech: SpeechConfig{
			Endpoint:     os.Getenv("SPEECH_ENDPOINT"),
			APIKey:       os.Getenv("SPEECH_API_KEY"),
			DefaultVoice: envOrDefault("SPEECH_DEFAULT_VOICE", "en-US-Standard-A"),
			MaxPending:   envOrDefaultInt("SPEECH_MAX_PENDING", 2),
		},
		Summary: SummaryConfig{
			Endpoint: os.Getenv("SUMMARY_ENDPOINT"),
			APIKey:   os.Getenv("SUMMARY_API_KEY"),
		},
		Database: DatabaseConfig{
			DSN: os.Getenv("DATABASE_DSN"),
		},
		Viewer: ViewerConfig{
			DefaultLanguage:    envOrDefault("VIEWER_DEFAULT_LANGUAGE", "en"),
			CaptionDisplayTime: envOrDefaultDuration("CAPTION_DISPLAY_TIME", 5*time.Second),
		},
		Recognizer: RecognizerConfig{
			Provider:       envOrDefault("RECOGNIZER_PROVIDER", "mock"),
			LanguageCode:   envOrDefault("RECOGNIZER_LANGUAGE_CODE", "en-US"),
			SampleRateHz:   envOrDefaultInt("RECOGNIZER_SAMPLE_RATE_HZ", 16000),
			InterimResults: envOrDefaultBool("RECOGNIZER_INTERIM_RESULTS", true),
		},
		LogLevel: envOrDefault("LOG_LEVEL", "info"),
	}

	return cfg
}

// Validate checks that required credentials are present. Optional features
// (Kafka, persistence, synthesis, summarization) degrade gracefully when
// unset, but joining rooms is impossible without media-service credentials.
func (c *Config) Validate() error {
	if c.Service.DevMode {
		return nil
	}
	var missing []string
	if c.LiveKit.URL == "" {
		missing = append(missing, "LIVEKIT_URL")
	}
	if c.LiveKit.APIKey == "" {
		missing = append(missing, "LIVEKIT_API_KEY")
	}
	if c.LiveKit.APISecret == "" {
		missing = append(missing, "LIVEKIT_API_SECRET")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		missing = append(missing, "KAFKA_BROKERS")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(strings.ToLower(v)); err == nil {
			return b
		}
	}
	return def
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// envOrDefaultList splits a comma-separated env value, trimming whitespace
// and dropping empty entries.
func envOrDefaultList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
