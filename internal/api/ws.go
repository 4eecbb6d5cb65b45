package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/PavanSargar/video-call-voice-translation/internal/caption"
	"github.com/PavanSargar/video-call-voice-translation/internal/observability/logging"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browsers connect from the app origin; token auth happens at join time.
	CheckOrigin: func(*http.Request) bool { return true },
}

const (
	writeTimeout = 10 * time.Second
	pingInterval = 30 * time.Second
)

// captionFeed streams caption display updates for a room over a WebSocket.
// Each connection runs its own caption consumer so every viewer gets captions
// in their own language, selected with the lang query parameter.
func captionFeed(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomName := chi.URLParam(r, "room")
		lang := r.URL.Query().Get("lang")
		if lang == "" {
			lang = deps.DefaultLanguage
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn().Err(err).Str("room", roomName).Msg("WebSocket upgrade failed")
			return
		}

		logger := logging.WithRoom(roomName).With().Str("lang", lang).Logger()
		logger.Info().Msg("Caption feed opened")

		speaker := deps.NewSpeaker()
		consumer := caption.NewConsumer(caption.Config{
			Language:    lang,
			DisplayTime: deps.CaptionDisplayTime,
		}, deps.Translator, speaker)

		unsubscribe, err := deps.Bus.Subscribe(r.Context(), roomName, consumer.Push)
		if err != nil {
			logger.Error().Err(err).Msg("Transport subscription failed")
			_ = conn.Close()
			consumer.Close()
			return
		}

		updates, cancel := consumer.Subscribe()

		defer func() {
			cancel()
			unsubscribe()
			consumer.Close()
			if c, ok := speaker.(interface{ Close() }); ok {
				c.Close()
			}
			_ = conn.Close()
			logger.Info().Msg("Caption feed closed")
		}()

		// Reader goroutine: we never expect client frames, but reading is
		// required to process close frames and detect disconnects.
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		ping := time.NewTicker(pingInterval)
		defer ping.Stop()

		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				conn.SetWriteDeadline(time.Now().Add(writeTimeout))
				if err := conn.WriteJSON(update); err != nil {
					logger.Debug().Err(err).Msg("Caption write failed")
					return
				}
			case <-ping.C:
				conn.SetWriteDeadline(time.Now().Add(writeTimeout))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			case <-done:
				return
			case <-r.Context().Done():
				return
			}
		}
	}
}
