package session

import (
	"github.com/giongto35/socketrtc/pkg/api"
	"github.com/giongto35/socketrtc/pkg/logger"
	"github.com/giongto35/socketrtc/pkg/negotiation"
)

// sender emits peer messages into the transport.
type sender struct{ s *Session }

func (x sender) SendDescription(to string, d negotiation.SessionDescription) {
	x.s.log.Debug().Str(logger.DirectionField, "→").Msgf("%v", d.Type)
	x.s.send(api.NewOutSdp(string(d.Type), d.SDP, x.s.routing(to)))
}

func (x sender) SendCandidate(to string, c negotiation.Candidate) {
	x.s.send(api.NewOutCandidate(c.Mid, c.Index, c.SDP, x.s.routing(to)))
}

// observer follows peer negotiation states.
type observer struct{ s *Session }

func (o observer) OnStateChange(_ string, _, to negotiation.State) {
	if to == negotiation.Negotiated {
		o.s.metrics.Negotiated()
		o.s.setStatus(Connected)
	}
}

func (o observer) OnFailure(id string, err error) {
	o.s.metrics.NegotiationFailed()
	o.s.log.Error().Str(logger.PeerField, id).Err(err).Msg("Peer negotiation has failed")
	alive := false
	o.s.peers.ForEach(func(p *negotiation.Peer) { alive = alive || p.State() != negotiation.Failed })
	if !alive {
		o.s.setStatus(Failed)
	}
}

func (o observer) OnCandidate(_ string, path negotiation.CandidatePath) { o.s.metrics.Candidate(path) }

// peerEvents moves media engine callbacks of a peer into the session loop.
type peerEvents struct {
	s  *Session
	id string
}

func (e peerEvents) OnICECandidate(c negotiation.Candidate) {
	e.post(func(p *negotiation.Peer) { p.LocalCandidate(c) })
}

func (e peerEvents) OnTrack(track negotiation.TrackInfo) {
	e.s.loop.Post(func() { e.s.onTrack(e.id, track) })
}

func (e peerEvents) OnFailure(err error) {
	e.post(func(p *negotiation.Peer) { p.Fail(err) })
}

func (e peerEvents) post(fn func(p *negotiation.Peer)) {
	e.s.loop.Post(func() {
		if p, err := e.s.peers.Find(e.id); err == nil {
			fn(p)
		}
	})
}
