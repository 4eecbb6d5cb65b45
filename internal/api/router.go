// Package api exposes the HTTP surface: room lifecycle endpoints and the
// WebSocket caption feed.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/PavanSargar/video-call-voice-translation/internal/caption"
	"github.com/PavanSargar/video-call-voice-translation/internal/observability"
	"github.com/PavanSargar/video-call-voice-translation/internal/room"
	"github.com/PavanSargar/video-call-voice-translation/internal/transport"
)

// Deps are the collaborators the router needs.
type Deps struct {
	Rooms      *room.Service
	Bus        transport.Bus
	Translator caption.Translator
	// NewSpeaker builds a synthesis trigger for one caption feed connection.
	NewSpeaker func() caption.Speaker
	// DefaultLanguage is the caption language when a viewer sends none.
	DefaultLanguage string
	// CaptionDisplayTime overrides the default caption display timeout.
	CaptionDisplayTime time.Duration
}

// NewRouter constructs the HTTP router for the service.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(observability.RequestLogger)

	r.Get("/v1/liveness", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/v1/readiness", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	r.Route("/v1/rooms", func(r chi.Router) {
		r.Post("/", createRoom(deps))
		r.Post("/{room}/join", joinRoom(deps))
		r.Post("/{room}/utterances", publishUtterance(deps))
		r.Post("/{room}/end", endCall(deps))
		r.Get("/{room}/captions", captionFeed(deps))
	})

	return r
}

type createRoomRequest struct {
	Name    string `json:"name"`
	OwnerID string `json:"ownerId"`
}

func createRoom(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRoomRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
			writeError(w, http.StatusBadRequest, "name is required")
			return
		}
		if err := deps.Rooms.CreateRoom(r.Context(), req.Name, req.OwnerID); err != nil {
			log.Error().Err(err).Str("room", req.Name).Msg("Room creation failed")
			writeError(w, http.StatusBadGateway, "could not create room")
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"name": req.Name})
	}
}

type joinRoomRequest struct {
	UserName string `json:"userName"`
}

func joinRoom(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomName := chi.URLParam(r, "room")
		var req joinRoomRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserName == "" {
			writeError(w, http.StatusBadRequest, "userName is required")
			return
		}
		res, err := deps.Rooms.JoinRoom(r.Context(), roomName, req.UserName)
		if err != nil {
			// Token issuance failures block joining; there is no degraded
			// join.
			log.Error().Err(err).Str("room", roomName).Msg("Join failed")
			writeError(w, http.StatusBadGateway, "could not join room")
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

type publishUtteranceRequest struct {
	Sender   string `json:"sender"`
	SenderID string `json:"senderId"`
	Message  string `json:"message"`
	IsFinal  bool   `json:"isFinal"`
}

// publishUtterance lets clients without a direct transport connection post
// finalized utterances over HTTP.
func publishUtterance(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomName := chi.URLParam(r, "room")
		var req publishUtteranceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid utterance")
			return
		}
		if !req.IsFinal {
			// Interim utterances never cross the transport.
			w.WriteHeader(http.StatusAccepted)
			return
		}

		u := transport.NewUtterance(req.Sender, req.SenderID, req.Message)
		if err := u.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := deps.Bus.Publish(r.Context(), roomName, u); err != nil {
			log.Warn().Err(err).Str("room", roomName).Msg("Utterance publish failed")
			writeError(w, http.StatusBadGateway, "could not publish utterance")
			return
		}
		deps.Rooms.RecordUtterance(r.Context(), roomName, req.SenderID, req.Message)
		writeJSON(w, http.StatusAccepted, map[string]string{"id": u.ID})
	}
}

func endCall(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomName := chi.URLParam(r, "room")
		sum := deps.Rooms.EndCall(r.Context(), roomName)
		writeJSON(w, http.StatusOK, sum)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
