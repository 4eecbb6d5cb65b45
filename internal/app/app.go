// Package app wires configuration into running components and owns their
// lifecycle.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/PavanSargar/video-call-voice-translation/internal/api"
	"github.com/PavanSargar/video-call-voice-translation/internal/caption"
	"github.com/PavanSargar/video-call-voice-translation/internal/config"
	"github.com/PavanSargar/video-call-voice-translation/internal/observability"
	"github.com/PavanSargar/video-call-voice-translation/internal/observability/logging"
	"github.com/PavanSargar/video-call-voice-translation/internal/producer"
	"github.com/PavanSargar/video-call-voice-translation/internal/recognizer"
	"github.com/PavanSargar/video-call-voice-translation/internal/recognizer/google"
	"github.com/PavanSargar/video-call-voice-translation/internal/recognizer/mock"
	"github.com/PavanSargar/video-call-voice-translation/internal/room"
	"github.com/PavanSargar/video-call-voice-translation/internal/speech"
	"github.com/PavanSargar/video-call-voice-translation/internal/store"
	"github.com/PavanSargar/video-call-voice-translation/internal/summary"
	"github.com/PavanSargar/video-call-voice-translation/internal/translate"
	"github.com/PavanSargar/video-call-voice-translation/internal/transport"
)

// Application holds the wired components of captiond.
type Application struct {
	StartupTime time.Time
	Cfg         *config.Config
	Logger      zerolog.Logger

	Bus        transport.Bus
	Store      *store.Store
	Rooms      *room.Service
	Translator *translate.Client
	Recognize  recognizer.Factory

	httpServer *http.Server
	obsServer  *observability.Server
}

// New constructs the application from configuration. Optional subsystems
// (persistence, Kafka, synthesis, summarization) are wired only when
// configured; the rest of the service runs without them.
func New(cfg *config.Config) (*Application, error) {
	logging.Init(logging.Config{
		Level:      cfg.LogLevel,
		Format:     logFormat(cfg),
		TimeFormat: time.RFC3339,
		Service:    cfg.Service.Name,
	})

	a := &Application{
		Cfg:    cfg,
		Logger: logging.WithComponent("application"),
	}

	if cfg.Database.DSN != "" {
		st, err := store.Open(cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		a.Store = st
	} else {
		a.Logger.Info().Msg("Persistence disabled, transcripts and summaries unavailable")
	}

	if cfg.Service.DevMode && !cfg.Kafka.Enabled {
		a.Bus = transport.NewMemoryBus()
		a.Logger.Info().Msg("Using in-process utterance bus")
	} else {
		a.Bus = transport.NewKafkaBus(transport.KafkaConfig{
			Brokers:     cfg.Kafka.Brokers,
			TopicPrefix: cfg.Kafka.TopicPrefix,
			Principal:   cfg.Kafka.Principal,
			Enabled:     cfg.Kafka.Enabled,
		})
	}

	a.Translator = translate.New(translate.Config{
		Endpoints:      cfg.Translation.Endpoints,
		APIKey:         cfg.Translation.APIKey,
		Model:          cfg.Translation.Model,
		MaxInputLength: cfg.Translation.MaxInputLength,
		AttemptTimeout: cfg.Translation.AttemptTimeout,
	})

	summarizer := summary.New(cfg.Summary.Endpoint, cfg.Summary.APIKey)
	a.Rooms = room.New(room.Config{
		URL:       cfg.LiveKit.URL,
		APIKey:    cfg.LiveKit.APIKey,
		APISecret: cfg.LiveKit.APISecret,
		TokenTTL:  cfg.LiveKit.TokenTTL,
	}, a.Store, summarizer)

	a.Recognize = recognizerFactory(cfg.Recognizer.Provider)

	router := api.NewRouter(api.Deps{
		Rooms:              a.Rooms,
		Bus:                a.Bus,
		Translator:         a.Translator,
		NewSpeaker:         a.newSpeaker,
		DefaultLanguage:    cfg.Viewer.DefaultLanguage,
		CaptionDisplayTime: cfg.Viewer.CaptionDisplayTime,
	})

	a.httpServer = &http.Server{
		Addr:         ":" + cfg.Service.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	a.obsServer = observability.NewServer(":" + cfg.Service.ObservabilityPort)

	a.Logger.Info().Msg("Application created")
	return a, nil
}

// newSpeaker builds one synthesis trigger per caption feed. Without a
// configured endpoint playback is a no-op and captions stay silent.
func (a *Application) newSpeaker() caption.Speaker {
	var synth speech.Synthesizer
	if a.Cfg.Speech.Endpoint != "" {
		synth = speech.NewHTTPSynthesizer(a.Cfg.Speech.Endpoint, a.Cfg.Speech.APIKey)
	} else {
		synth = speech.NopSynthesizer{}
	}
	return speech.NewTrigger(speech.TriggerConfig{
		MaxPending:   a.Cfg.Speech.MaxPending,
		DefaultVoice: a.Cfg.Speech.DefaultVoice,
	}, synth)
}

// NewProducer creates a transcript producer for one room participant,
// publishing finalized utterances on the application bus.
func (a *Application) NewProducer(roomName, sender, senderID string) *producer.Producer {
	cfg := recognizer.Config{
		LanguageCode:   a.Cfg.Recognizer.LanguageCode,
		SampleRateHz:   a.Cfg.Recognizer.SampleRateHz,
		InterimResults: a.Cfg.Recognizer.InterimResults,
	}
	return producer.New(a.Recognize, a.Bus, roomName, sender, senderID, cfg)
}

// Start begins serving traffic.
func (a *Application) Start() error {
	a.StartupTime = time.Now().UTC()

	a.obsServer.Start()
	go func() {
		a.Logger.Info().Str("addr", a.httpServer.Addr).Msg("Starting HTTP server")
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.Error().Err(err).Msg("HTTP server error")
		}
	}()
	return nil
}

// Shutdown stops the servers and releases transport resources.
func (a *Application) Shutdown(ctx context.Context) {
	a.Logger.Info().Msg("Shutting down")
	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.Logger.Warn().Err(err).Msg("HTTP server shutdown error")
	}
	if err := a.obsServer.Shutdown(ctx); err != nil {
		a.Logger.Warn().Err(err).Msg("Observability server shutdown error")
	}
	if err := a.Bus.Close(); err != nil {
		a.Logger.Warn().Err(err).Msg("Transport close error")
	}
}

func recognizerFactory(provider string) recognizer.Factory {
	switch provider {
	case "google":
		return func(ctx context.Context, cfg recognizer.Config) (recognizer.Recognizer, error) {
			return google.New(ctx, cfg)
		}
	default:
		return func(context.Context, recognizer.Config) (recognizer.Recognizer, error) {
			return mock.New(), nil
		}
	}
}

func logFormat(cfg *config.Config) string {
	if cfg.Service.DevMode {
		return "console"
	}
	return "json"
}
