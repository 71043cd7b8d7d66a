package session

import (
	"errors"
	"fmt"
)

var ErrClosed = errors.New("session is closed")

// RoutingError is an event addressed to an unknown peer.
type RoutingError struct {
	Peer string
	Type string
}

func (e *RoutingError) Error() string {
	return fmt.Sprintf("no peer [%v] for [%v] event", e.Peer, e.Type)
}

// TransportError is a signaling channel failure.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("transport: %v", e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }
