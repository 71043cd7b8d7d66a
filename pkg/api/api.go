// Package api defines signaling messages exchanged through a relay server.
//
// Each socket message is a JSON-encoded frame of the following structure:
//
//	e - (required) the relay event name;
//	p - (optional) event payload with arbitrary data.
//
// Signaling payloads are flat objects that differentiate by their type field,
// which makes it possible to unwrap them into distinct message structures
// after the first pass.
// Outgoing messages carry routing metadata for the relay (to, broadcast).
//
// Example:
//
//	{"e":"message","p":{"type":"candidate","id":"0","label":0,"candidate":"candidate:1 1 udp ...","to":"bob","broadcast":true}}
package api

import (
	"errors"
	"strings"

	"github.com/goccy/go-json"
)

type In struct {
	E       string          `json:"e"`
	Payload json.RawMessage `json:"p,omitempty"` // should be json.RawMessage for 2-pass unmarshal
}

type Out struct {
	E       string `json:"e"`
	Payload any    `json:"p,omitempty"`
}

// Kind is a known signaling message type.
type Kind uint8

const (
	Unknown Kind = iota
	Hello
	Offer
	Answer
	Candidate
)

func (k Kind) String() string {
	switch k {
	case Hello:
		return "hello"
	case Offer:
		return "offer"
	case Answer:
		return "answer"
	case Candidate:
		return "candidate"
	default:
		return "unknown"
	}
}

// KindOf maps the type field of a message.
// Description kinds are matched case-insensitively.
func KindOf(t string) Kind {
	switch {
	case t == "hello":
		return Hello
	case t == "candidate":
		return Candidate
	case strings.EqualFold(t, "offer"):
		return Offer
	case strings.EqualFold(t, "answer"):
		return Answer
	}
	return Unknown
}

var ErrMalformed = errors.New("malformed")

func UnwrapChecked[T any](data []byte) (*T, error) {
	out := new(T)
	if err := json.Unmarshal(data, out); err != nil {
		return nil, errors.Join(ErrMalformed, err)
	}
	return out, nil
}

func Marshal(v any) ([]byte, error) { return json.Marshal(v) }
