// Package negotiation implements the per-peer offer/answer protocol
// with connectivity candidate buffering.
package negotiation

import (
	"fmt"
	"strings"
)

type Role uint8

const (
	Responder Role = iota
	Initiator
)

func (r Role) String() string {
	if r == Initiator {
		return "initiator"
	}
	return "responder"
}

type SDPType string

const (
	Offer  SDPType = "offer"
	Answer SDPType = "answer"
)

// ParseSDPType converts a case-insensitive description kind.
func ParseSDPType(s string) (SDPType, error) {
	switch {
	case strings.EqualFold(s, string(Offer)):
		return Offer, nil
	case strings.EqualFold(s, string(Answer)):
		return Answer, nil
	}
	return "", fmt.Errorf("unknown description type [%v]", s)
}

// SessionDescription is an offer or an answer with its opaque SDP body.
type SessionDescription struct {
	Type SDPType
	SDP  string
}

// Candidate is a connectivity candidate.
type Candidate struct {
	// Mid is the media stream identification tag.
	Mid string
	// Index is the media line index.
	Index int
	SDP   string
}

func (c Candidate) String() string { return fmt.Sprintf("%v:%v %v", c.Mid, c.Index, c.SDP) }

type State uint8

const (
	New State = iota
	OfferCreated
	LocalSet
	AwaitingRemote
	RemoteSet
	AnswerCreated
	Negotiated
	Failed
)

func (s State) String() string {
	switch s {
	case New:
		return "new"
	case OfferCreated:
		return "offer-created"
	case LocalSet:
		return "local-set"
	case AwaitingRemote:
		return "awaiting-remote"
	case RemoteSet:
		return "remote-set"
	case AnswerCreated:
		return "answer-created"
	case Negotiated:
		return "negotiated"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", s)
}

// TrackInfo describes a remote media track.
type TrackInfo struct {
	Kind     string
	StreamId string
	TrackId  string
	Codec    string
}

// Connection is a media connection owned by a single Peer.
// Results of the asynchronous operations are passed into the done
// callbacks, which may be called from any goroutine.
type Connection interface {
	CreateOffer(done func(SessionDescription, error))
	CreateAnswer(done func(SessionDescription, error))
	SetLocalDescription(desc SessionDescription, done func(error))
	SetRemoteDescription(desc SessionDescription, done func(error))
	AddICECandidate(c Candidate) error
	Close() error
}

// ConnectionObserver receives media engine events of a connection.
// Its methods are called from media engine goroutines.
type ConnectionObserver interface {
	OnICECandidate(c Candidate)
	OnTrack(track TrackInfo)
	OnFailure(err error)
}

// Executor runs functions in a single logical context.
type Executor interface {
	Post(fn func()) bool
}

// Sender emits local descriptions and candidates to a remote peer.
type Sender interface {
	SendDescription(to string, desc SessionDescription)
	SendCandidate(to string, c Candidate)
}

// CandidatePath tells how a remote candidate reached the connection.
type CandidatePath string

const (
	CandidateQueued    CandidatePath = "queued"
	CandidateDrained   CandidatePath = "drained"
	CandidateImmediate CandidatePath = "immediate"
)

// Observer receives peer negotiation events in the peer execution context.
type Observer interface {
	OnStateChange(id string, from, to State)
	OnFailure(id string, err error)
	OnCandidate(id string, path CandidatePath)
}
