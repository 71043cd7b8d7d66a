package api

import "github.com/giongto35/socketrtc/pkg/config"

// Header is the common part of all signaling messages.
type Header struct {
	Type string `json:"type"`
	// From is the sender peer id, set by relays that support it.
	From string `json:"from,omitempty"`
}

func (h Header) Kind() Kind { return KindOf(h.Type) }

type HelloMessage struct {
	Header
	MakeOffer  bool               `json:"makeOffer"`
	IceServers []config.IceServer `json:"iceServers,omitempty"`
}

type SdpMessage struct {
	Header
	Sdp string `json:"sdp"`
}

type CandidateMessage struct {
	Header
	Id        string `json:"id"`
	Label     int    `json:"label"`
	Candidate string `json:"candidate"`
}

// Routing is the relay routing metadata of outgoing messages.
type Routing struct {
	To        string `json:"to"`
	Broadcast bool   `json:"broadcast"`
}

type (
	OutSdp struct {
		SdpMessage
		Routing
	}
	OutCandidate struct {
		CandidateMessage
		Routing
	}
)

func NewOutSdp(type_ string, sdp string, r Routing) OutSdp {
	return OutSdp{SdpMessage: SdpMessage{Header: Header{Type: type_}, Sdp: sdp}, Routing: r}
}

func NewOutCandidate(id string, label int, candidate string, r Routing) OutCandidate {
	return OutCandidate{
		CandidateMessage: CandidateMessage{Header: Header{Type: Candidate.String()}, Id: id, Label: label, Candidate: candidate},
		Routing:          r,
	}
}
