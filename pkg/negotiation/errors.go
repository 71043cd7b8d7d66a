package negotiation

import (
	"errors"
	"fmt"
)

var ErrDrained = errors.New("candidate queue is drained")

// ProtocolError is an out-of-order or duplicate negotiation step.
// It affects nothing but the call that caused it.
type ProtocolError struct {
	Peer   string
	Op     string
	Reason string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol error, peer [%v] %v: %v", e.Peer, e.Op, e.Reason)
}

// NegotiationFailure is a media engine rejection of a negotiation step.
// The peer cannot be negotiated anymore.
type NegotiationFailure struct {
	Peer string
	Op   string
	Err  error
}

func (e *NegotiationFailure) Error() string {
	return fmt.Sprintf("negotiation failure, peer [%v] %v: %v", e.Peer, e.Op, e.Err)
}

func (e *NegotiationFailure) Unwrap() error { return e.Err }
