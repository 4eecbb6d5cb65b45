package producer

import "fmt"

// State represents the utterance lifecycle state of the producer.
type State int

const (
	// StateIdle - no utterance in progress.
	StateIdle State = iota
	// StateListening - interim recognition results are accumulating.
	StateListening
	// StateFinalized - an utterance was just committed and published.
	StateFinalized
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateListening:
		return "LISTENING"
	case StateFinalized:
		return "FINALIZED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", s)
	}
}
