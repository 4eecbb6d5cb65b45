// Package transport moves finalized utterances between call participants.
// Channels are keyed by room name. Delivery is FIFO per publisher; no total
// order is guaranteed across simultaneous speakers.
package transport

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Utterance is one finalized unit of transcribed speech attributed to a
// sender. Interim recognition output never crosses the transport.
type Utterance struct {
	ID       string `json:"id"`
	Sender   string `json:"sender"`
	SenderID string `json:"senderId"`
	Message  string `json:"message"`
	IsFinal  bool   `json:"isFinal"`
}

// NewUtterance builds a finalized utterance with a fresh message id.
func NewUtterance(sender, senderID, message string) Utterance {
	return Utterance{
		ID:       uuid.New().String(),
		Sender:   sender,
		SenderID: senderID,
		Message:  message,
		IsFinal:  true,
	}
}

// ErrInvalidUtterance is returned when a payload fails validation.
var ErrInvalidUtterance = errors.New("invalid utterance payload")

// Validate checks the fields required for an utterance to be deliverable.
func (u Utterance) Validate() error {
	if u.SenderID == "" || u.Message == "" {
		return ErrInvalidUtterance
	}
	return nil
}

// Publisher sends utterances to a room channel.
type Publisher interface {
	Publish(ctx context.Context, room string, u Utterance) error
	Close() error
}

// Subscriber delivers utterances for a room to a handler. Subscribe returns
// a cancel function that stops delivery.
type Subscriber interface {
	Subscribe(ctx context.Context, room string, fn func(Utterance)) (cancel func(), err error)
}

// Bus combines both sides of the transport.
type Bus interface {
	Publisher
	Subscriber
}
