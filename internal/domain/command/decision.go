package command

import (
	"errors"

	"github.com/mverberg/broadside/internal/domain/event"
)

// Rejection codes shared by every decider. Domain-specific codes live with
// the decider that emits them.
const (
	// RejectionCodePayloadDecodeFailed indicates a payload failed to decode
	// into its typed form after registry validation.
	RejectionCodePayloadDecodeFailed = "PAYLOAD_DECODE_FAILED"
	// RejectionCodePayloadEncodeFailed indicates an event payload failed to
	// encode back to JSON.
	RejectionCodePayloadEncodeFailed = "PAYLOAD_ENCODE_FAILED"
	// RejectionCodeCommandTypeUnsupported indicates a decider received a type
	// it does not handle.
	RejectionCodeCommandTypeUnsupported = "COMMAND_TYPE_UNSUPPORTED"
)

// Decision represents the pure outcome of handling a command.
type Decision struct {
	Events     []event.Event
	Rejections []Rejection
}

// Rejection captures a domain-level reason a command was declined.
type Rejection struct {
	Code    string
	Message string
}

// Accept returns a decision that emits the provided events.
func Accept(events ...event.Event) Decision {
	return Decision{Events: append([]event.Event(nil), events...)}
}

// Reject returns a decision that carries the provided rejections.
func Reject(rejections ...Rejection) Decision {
	return Decision{Rejections: append([]Rejection(nil), rejections...)}
}

// Validate checks that the decision is either an acceptance or a rejection.
// A decision with neither events nor rejections is a decider bug.
func (d Decision) Validate() error {
	if len(d.Events) == 0 && len(d.Rejections) == 0 {
		return errors.New("decision must carry events or rejections")
	}
	if len(d.Events) > 0 && len(d.Rejections) > 0 {
		return errors.New("decision cannot carry both events and rejections")
	}
	return nil
}
