package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	envVars := []string{
		"SERVICE_NAME", "HTTP_PORT", "OBSERVABILITY_PORT", "DEV_MODE", "LOG_LEVEL",
		"TRANSLATION_ENDPOINTS", "TRANSLATION_API_KEY", "TRANSLATION_MODEL",
		"TRANSLATION_MAX_INPUT_LENGTH", "TRANSLATION_ATTEMPT_TIMEOUT",
		"LIVEKIT_TOKEN_TTL", "KAFKA_ENABLED", "KAFKA_BROKERS", "KAFKA_TOPIC_PREFIX",
		"KAFKA_PRINCIPAL", "SPEECH_MAX_PENDING", "VIEWER_DEFAULT_LANGUAGE",
		"CAPTION_DISPLAY_TIME", "RECOGNIZER_PROVIDER", "RECOGNIZER_LANGUAGE_CODE",
		"RECOGNIZER_SAMPLE_RATE_HZ", "RECOGNIZER_INTERIM_RESULTS",
	}
	for _, v := range envVars {
		os.Unsetenv(v)
	}

	cfg := Load()

	if cfg.Service.Name != "captiond" {
		t.Errorf("expected default service name 'captiond', got %s", cfg.Service.Name)
	}
	if cfg.Service.HTTPPort != "8080" {
		t.Errorf("expected default HTTP port '8080', got %s", cfg.Service.HTTPPort)
	}
	if cfg.Service.ObservabilityPort != "9090" {
		t.Errorf("expected default observability port '9090', got %s", cfg.Service.ObservabilityPort)
	}
	if cfg.Translation.Model != "base" {
		t.Errorf("expected default translation model 'base', got %s", cfg.Translation.Model)
	}
	if cfg.Translation.MaxInputLength != 1000 {
		t.Errorf("expected default max input length 1000, got %d", cfg.Translation.MaxInputLength)
	}
	if cfg.Translation.AttemptTimeout != 5*time.Second {
		t.Errorf("expected default attempt timeout 5s, got %v", cfg.Translation.AttemptTimeout)
	}
	if cfg.LiveKit.TokenTTL != 5*time.Minute {
		t.Errorf("expected default token TTL 5m, got %v", cfg.LiveKit.TokenTTL)
	}
	if cfg.Kafka.Enabled {
		t.Error("expected Kafka disabled by default")
	}
	if cfg.Kafka.TopicPrefix != "captions" {
		t.Errorf("expected default topic prefix 'captions', got %s", cfg.Kafka.TopicPrefix)
	}
	if cfg.Speech.MaxPending != 2 {
		t.Errorf("expected default max pending 2, got %d", cfg.Speech.MaxPending)
	}
	if cfg.Viewer.DefaultLanguage != "en" {
		t.Errorf("expected default viewer language 'en', got %s", cfg.Viewer.DefaultLanguage)
	}
	if cfg.Viewer.CaptionDisplayTime != 5*time.Second {
		t.Errorf("expected default caption display time 5s, got %v", cfg.Viewer.CaptionDisplayTime)
	}
	if cfg.Recognizer.Provider != "mock" {
		t.Errorf("expected default recognizer 'mock', got %s", cfg.Recognizer.Provider)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected default log level 'info', got %s", cfg.LogLevel)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	os.Setenv("SERVICE_NAME", "captiond-test")
	os.Setenv("HTTP_PORT", "9999")
	os.Setenv("TRANSLATION_ENDPOINTS", "https://a.example/translate, https://b.example/translate")
	os.Setenv("TRANSLATION_ATTEMPT_TIMEOUT", "2s")
	os.Setenv("CAPTION_DISPLAY_TIME", "8s")
	os.Setenv("KAFKA_ENABLED", "true")
	os.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	os.Setenv("RECOGNIZER_PROVIDER", "google")

	defer func() {
		os.Unsetenv("SERVICE_NAME")
		os.Unsetenv("HTTP_PORT")
		os.Unsetenv("TRANSLATION_ENDPOINTS")
		os.Unsetenv("TRANSLATION_ATTEMPT_TIMEOUT")
		os.Unsetenv("CAPTION_DISPLAY_TIME")
		os.Unsetenv("KAFKA_ENABLED")
		os.Unsetenv("KAFKA_BROKERS")
		os.Unsetenv("RECOGNIZER_PROVIDER")
	}()

	cfg := Load()

	if cfg.Service.Name != "captiond-test" {
		t.Errorf("expected service name 'captiond-test', got %s", cfg.Service.Name)
	}
	if cfg.Service.HTTPPort != "9999" {
		t.Errorf("expected HTTP port '9999', got %s", cfg.Service.HTTPPort)
	}
	if len(cfg.Translation.Endpoints) != 2 {
		t.Fatalf("expected 2 translation endpoints, got %d", len(cfg.Translation.Endpoints))
	}
	if cfg.Translation.Endpoints[0] != "https://a.example/translate" {
		t.Errorf("expected trimmed primary endpoint, got %q", cfg.Translation.Endpoints[0])
	}
	if cfg.Translation.AttemptTimeout != 2*time.Second {
		t.Errorf("expected attempt timeout 2s, got %v", cfg.Translation.AttemptTimeout)
	}
	if cfg.Viewer.CaptionDisplayTime != 8*time.Second {
		t.Errorf("expected caption display time 8s, got %v", cfg.Viewer.CaptionDisplayTime)
	}
	if !cfg.Kafka.Enabled {
		t.Error("expected Kafka enabled")
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "k2:9092" {
		t.Errorf("unexpected brokers: %v", cfg.Kafka.Brokers)
	}
	if cfg.Recognizer.Provider != "google" {
		t.Errorf("expected recognizer 'google', got %s", cfg.Recognizer.Provider)
	}
}

func TestLoad_InvalidValues_FallbackToDefaults(t *testing.T) {
	os.Setenv("TRANSLATION_MAX_INPUT_LENGTH", "not-a-number")
	os.Setenv("TRANSLATION_ATTEMPT_TIMEOUT", "invalid")
	os.Setenv("KAFKA_ENABLED", "invalid")
	os.Setenv("SPEECH_MAX_PENDING", "invalid")

	defer func() {
		os.Unsetenv("TRANSLATION_MAX_INPUT_LENGTH")
		os.Unsetenv("TRANSLATION_ATTEMPT_TIMEOUT")
		os.Unsetenv("KAFKA_ENABLED")
		os.Unsetenv("SPEECH_MAX_PENDING")
	}()

	cfg := Load()

	if cfg.Translation.MaxInputLength != 1000 {
		t.Errorf("expected default max input length on invalid input, got %d", cfg.Translation.MaxInputLength)
	}
	if cfg.Translation.AttemptTimeout != 5*time.Second {
		t.Errorf("expected default attempt timeout on invalid input, got %v", cfg.Translation.AttemptTimeout)
	}
	if cfg.Kafka.Enabled {
		t.Error("expected Kafka disabled on invalid input")
	}
	if cfg.Speech.MaxPending != 2 {
		t.Errorf("expected default max pending on invalid input, got %d", cfg.Speech.MaxPending)
	}
}

func TestLoad_KafkaPrincipal_FallsBackToServiceName(t *testing.T) {
	os.Setenv("SERVICE_NAME", "my-captiond")
	os.Unsetenv("KAFKA_PRINCIPAL")

	defer os.Unsetenv("SERVICE_NAME")

	cfg := Load()

	if cfg.Kafka.Principal != "my-captiond" {
		t.Errorf("expected Kafka principal to fall back to service name, got %s", cfg.Kafka.Principal)
	}
}

func TestValidate_MissingLiveKitCredentials(t *testing.T) {
	cfg := &Config{}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error for missing LiveKit credentials")
	}
}

func TestValidate_DevModeSkipsCredentialCheck(t *testing.T) {
	cfg := &Config{Service: ServiceConfig{DevMode: true}}

	if err := cfg.Validate(); err != nil {
		t.Errorf("expected dev mode to skip credential checks, got %v", err)
	}
}

func TestValidate_KafkaEnabledRequiresBrokers(t *testing.T) {
	cfg := &Config{
		LiveKit: LiveKitConfig{URL: "wss://lk.example", APIKey: "key", APISecret: "secret"},
		Kafka:   KafkaConfig{Enabled: true},
	}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error when Kafka enabled without brokers")
	}
}

func TestEnvOrDefaultBool(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		def      bool
		expected bool
	}{
		{"true string", "true", false, true},
		{"false string", "false", true, false},
		{"1", "1", false, true},
		{"0", "0", true, false},
		{"TRUE uppercase", "TRUE", false, true},
		{"invalid", "invalid", true, true},
		{"empty", "", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := "TEST_BOOL_VAR"
			if tt.envValue != "" {
				os.Setenv(key, tt.envValue)
			} else {
				os.Unsetenv(key)
			}
			defer os.Unsetenv(key)

			got := envOrDefaultBool(key, tt.def)
			if got != tt.expected {
				t.Errorf("envOrDefaultBool(%s, %v) = %v, want %v", tt.envValue, tt.def, got, tt.expected)
			}
		})
	}
}

func TestEnvOrDefaultList(t *testing.T) {
	key := "TEST_LIST_VAR"
	defer os.Unsetenv(key)

	os.Setenv(key, " a , ,b,")
	got := envOrDefaultList(key, nil)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("expected [a b], got %v", got)
	}

	os.Unsetenv(key)
	def := []string{"x"}
	got = envOrDefaultList(key, def)
	if len(got) != 1 || got[0] != "x" {
		t.Errorf("expected default [x], got %v", got)
	}
}
