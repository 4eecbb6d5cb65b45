// Package google provides a Google Cloud Speech-to-Text recognizer.
package google

import (
	"context"
	"errors"
	"io"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/PavanSargar/video-call-voice-translation/internal/recognizer"
)

// Adapter implements recognizer.Recognizer using Google Cloud Speech-to-Text.
type Adapter struct {
	client *speech.Client
	stream speechpb.Speech_StreamingRecognizeClient
	cfg    recognizer.Config
	cb     recognizer.Callback
}

// New creates a Google recognizer.
// Requires GOOGLE_APPLICATION_CREDENTIALS to be set in the environment.
func New(ctx context.Context, cfg recognizer.Config) (*Adapter, error) {
	c, err := speech.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return &Adapter{client: c, cfg: cfg}, nil
}

// Start begins a streaming recognition session and sends the initial config.
// The response listener runs until the stream ends.
func (a *Adapter) Start(ctx context.Context, cb recognizer.Callback) error {
	stream, err := a.client.StreamingRecognize(ctx)
	if err != nil {
		return err
	}
	a.stream = stream
	a.cb = cb

	err = stream.Send(&speechpb.StreamingRecognizeRequest{
		StreamingRequest: &speechpb.StreamingRecognizeRequest_StreamingConfig{
			StreamingConfig: &speechpb.StreamingRecognitionConfig{
				Config: &speechpb.RecognitionConfig{
					Encoding:        speechpb.RecognitionConfig_LINEAR16,
					SampleRateHertz: int32(a.cfg.SampleRateHz),
					LanguageCode:    a.cfg.LanguageCode,
				},
				InterimResults: a.cfg.InterimResults,
			},
		},
	})
	if err != nil {
		return err
	}

	go a.listen()
	return nil
}

// SendAudio sends audio bytes to the provider.
func (a *Adapter) SendAudio(ctx context.Context, audio []byte) error {
	return a.stream.Send(&speechpb.StreamingRecognizeRequest{
		StreamingRequest: &speechpb.StreamingRecognizeRequest_AudioContent{
			AudioContent: audio,
		},
	})
}

// Close ends the streaming session and the underlying client.
func (a *Adapter) Close() error {
	var err error
	if a.stream != nil {
		err = a.stream.CloseSend()
	}
	if cerr := a.client.Close(); err == nil {
		err = cerr
	}
	return err
}

// listen receives transcript responses and invokes callbacks until the
// stream ends. Cancellation and clean EOF are not reported as errors.
func (a *Adapter) listen() {
	for {
		resp, err := a.stream.Recv()
		if err != nil {
			if recoverable(err) {
				log.Debug().Err(err).Msg("Recognition stream closed")
				return
			}
			a.cb.OnError(err)
			return
		}

		for _, r := range resp.Results {
			if len(r.Alternatives) == 0 {
				continue
			}
			alt := r.Alternatives[0]
			if r.IsFinal {
				a.cb.OnFinal(alt.Transcript, float64(alt.Confidence))
			} else {
				a.cb.OnInterim(alt.Transcript)
			}
		}
	}
}

// recoverable reports whether a stream error is an expected end-of-session
// rather than a provider failure.
func recoverable(err error) bool {
	if errors.Is(err, io.EOF) {
		return true
	}
	switch status.Code(err) {
	case codes.Canceled, codes.DeadlineExceeded:
		return true
	}
	return false
}
