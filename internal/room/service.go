// Package room glues together the media service, persistence and
// summarization: token issuance, room creation and lookup, participant
// bookkeeping and end-of-call summaries.
package room

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/livekit/protocol/auth"
	"github.com/livekit/protocol/livekit"
	lksdk "github.com/livekit/server-sdk-go/v2"
	"github.com/rs/zerolog"

	"github.com/PavanSargar/video-call-voice-translation/internal/observability/logging"
	"github.com/PavanSargar/video-call-voice-translation/internal/observability/metrics"
	"github.com/PavanSargar/video-call-voice-translation/internal/store"
	"github.com/PavanSargar/video-call-voice-translation/internal/summary"
)

// Config holds media-service settings for the room service.
type Config struct {
	URL       string
	APIKey    string
	APISecret string
	TokenTTL  time.Duration
}

// JoinResult carries what a client needs to enter a room.
type JoinResult struct {
	Identity    string `json:"identity"`
	AccessToken string `json:"accessToken"`
	RoomName    string `json:"roomName"`
}

// Service issues tokens and manages room lifecycle.
type Service struct {
	cfg        Config
	roomClient *lksdk.RoomServiceClient
	store      *store.Store
	summarizer *summary.Client
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

// New creates the room service. The store may be nil; participant and
// transcript bookkeeping is then skipped entirely.
func New(cfg Config, st *store.Store, summarizer *summary.Client) *Service {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 5 * time.Minute
	}
	return &Service{
		cfg:        cfg,
		roomClient: lksdk.NewRoomServiceClient(cfg.URL, cfg.APIKey, cfg.APISecret),
		store:      st,
		summarizer: summarizer,
		metrics:    metrics.DefaultMetrics,
		logger:     logging.WithComponent("room-service"),
	}
}

// CreateToken issues a signed join token for the given identity and room.
// Token-issuance failures are fatal to joining and are surfaced.
func (s *Service) CreateToken(identity, name, roomName string) (string, error) {
	at := auth.NewAccessToken(s.cfg.APIKey, s.cfg.APISecret)
	grant := &auth.VideoGrant{
		RoomJoin: true,
		Room:     roomName,
	}
	at.SetVideoGrant(grant).
		SetIdentity(identity).
		SetName(name).
		SetValidFor(s.cfg.TokenTTL)

	token, err := at.ToJWT()
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	s.metrics.TokensIssued.Inc()
	return token, nil
}

// CreateRoom creates the media-service room and records it. The persistence
// write is best-effort.
func (s *Service) CreateRoom(ctx context.Context, name, ownerID string) error {
	_, err := s.roomClient.CreateRoom(ctx, &livekit.CreateRoomRequest{Name: name})
	if err != nil {
		return fmt.Errorf("create media room %q: %w", name, err)
	}
	s.metrics.RoomsCreated.Inc()

	if s.store != nil {
		if _, err := s.store.CreateRoom(ctx, name, ownerID); err != nil {
			// The call proceeds without the database record.
			s.logger.Warn().Err(err).Str("room", name).Msg("Failed to persist room")
		}
	}
	return nil
}

// JoinRoom issues a token for userName and records the participant.
func (s *Service) JoinRoom(ctx context.Context, roomName, userName string) (JoinResult, error) {
	identity := userName + "-" + uuid.New().String()[:8]

	token, err := s.CreateToken(identity, userName, roomName)
	if err != nil {
		s.metrics.JoinFailures.WithLabelValues("token").Inc()
		return JoinResult{}, err
	}

	if s.store != nil {
		if room, err := s.store.FindRoom(ctx, roomName); err != nil {
			s.logger.Warn().Err(err).Str("room", roomName).Msg("Room record missing, participant not persisted")
		} else if err := s.store.AddParticipant(ctx, room.ID, identity, userName); err != nil {
			s.logger.Warn().Err(err).Str("room", roomName).Msg("Failed to persist participant")
		}
	}

	joinLogger := logging.WithParticipant(roomName, identity)
	joinLogger.Info().Msg("Participant joined")
	return JoinResult{Identity: identity, AccessToken: token, RoomName: roomName}, nil
}

// RecordUtterance appends a finalized utterance to the room transcript.
// Best-effort: failures are logged and swallowed.
func (s *Service) RecordUtterance(ctx context.Context, roomName, userID, text string) {
	if s.store == nil {
		return
	}
	room, err := s.store.FindRoom(ctx, roomName)
	if err != nil {
		s.logger.Debug().Err(err).Str("room", roomName).Msg("Transcript line not persisted")
		return
	}
	if err := s.store.AppendTranscript(ctx, room.ID, userID, text); err != nil {
		s.logger.Warn().Err(err).Str("room", roomName).Msg("Failed to persist transcript line")
	}
}

// EndCall summarizes the room transcript. A summarization failure yields an
// empty summary, not an error; the call has already ended.
func (s *Service) EndCall(ctx context.Context, roomName string) summary.Summary {
	if s.store == nil || s.summarizer == nil || !s.summarizer.Enabled() {
		return summary.Summary{}
	}

	room, err := s.store.FindRoom(ctx, roomName)
	if err != nil {
		s.logger.Warn().Err(err).Str("room", roomName).Msg("No room record, skipping summary")
		return summary.Summary{}
	}
	lines, err := s.store.Transcript(ctx, room.ID)
	if err != nil {
		s.logger.Warn().Err(err).Str("room", roomName).Msg("Failed to load transcript")
		return summary.Summary{}
	}

	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line.UserID)
		b.WriteString(": ")
		b.WriteString(line.Text)
		b.WriteByte('\n')
	}

	sum, err := s.summarizer.Summarize(ctx, b.String())
	if err != nil {
		s.logger.Warn().Err(err).Str("room", roomName).Msg("Summarization failed")
		return summary.Summary{}
	}
	return sum
}
