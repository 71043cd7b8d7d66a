// Package session dispatches signaling events to the peers of a call
// and owns the call lifecycle.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/giongto35/socketrtc/pkg/api"
	"github.com/giongto35/socketrtc/pkg/com"
	"github.com/giongto35/socketrtc/pkg/config"
	"github.com/giongto35/socketrtc/pkg/logger"
	"github.com/giongto35/socketrtc/pkg/monitoring"
	"github.com/giongto35/socketrtc/pkg/negotiation"
	"github.com/giongto35/socketrtc/pkg/thread"
	"github.com/hashicorp/go-multierror"
)

// Session is a single call.
//
// Inbound events and media engine callbacks are processed one at a time
// in the session loop, peers and session state are touched only there.
// Disconnect may be called from anywhere any number of times,
// the teardown runs once as the last task of the loop.
type Session struct {
	id   com.Uid
	conf config.Config
	log  *logger.Logger

	engine    Engine
	transport Transport
	renderer  Renderer
	onStatus  func(Status)
	metrics   *monitoring.Metrics
	filter    func(negotiation.SessionDescription) negotiation.SessionDescription

	loop   *thread.Looper
	peers  com.NetMap[string, *negotiation.Peer]
	params *negotiation.SignalingParameters
	tracks map[string]map[string]map[string]int

	status  atomic.Uint32
	closing atomic.Bool
	done    chan struct{}
	err     error
}

type Option func(*Session)

func WithRenderer(r Renderer) Option           { return func(s *Session) { s.renderer = r } }
func WithStatusHandler(fn func(Status)) Option { return func(s *Session) { s.onStatus = fn } }
func WithMetrics(m *monitoring.Metrics) Option { return func(s *Session) { s.metrics = m } }
func WithDescriptionFilter(fn func(negotiation.SessionDescription) negotiation.SessionDescription) Option {
	return func(s *Session) { s.filter = fn }
}

func New(conf config.Config, engine Engine, transport Transport, log *logger.Logger, opts ...Option) *Session {
	s := &Session{
		id:        com.NewUid(),
		conf:      conf,
		engine:    engine,
		transport: transport,
		peers:     com.NewNetMap[string, *negotiation.Peer](),
		tracks:    make(map[string]map[string]map[string]int),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = log.Extend(log.With().Str(logger.SessionField, s.id.Short()))
	s.loop = thread.NewLooper(func(err error) { s.log.Error().Err(err).Msg("session task") })
	transport.OnEvent(s.onTransportEvent)
	transport.OnDisconnect(s.onTransportDisconnect)
	return s
}

func (s *Session) Id() com.Uid    { return s.id }
func (s *Session) String() string { return "session::" + s.id.String() }
func (s *Session) Status() Status { return Status(s.status.Load()) }

// Done is closed when the session has been torn down.
func (s *Session) Done() <-chan struct{} { return s.done }

// Err returns the teardown errors, valid after Done.
func (s *Session) Err() error { return s.err }

// Run starts receiving signaling events.
func (s *Session) Run() {
	s.log.Info().Msg("Session has been started")
	s.transport.Listen()
}

// Shutdown disconnects and waits for the teardown.
func (s *Session) Shutdown(ctx context.Context) error {
	s.Disconnect()
	select {
	case <-s.done:
		return s.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Disconnect tears the session down: closes every peer connection,
// then the transport and then the media engine.
// Only the first call has an effect.
func (s *Session) Disconnect() {
	if !s.closing.CompareAndSwap(false, true) {
		return
	}
	s.log.Info().Msg("Disconnect")
	s.loop.Post(s.teardown)
}

func (s *Session) teardown() {
	var result *multierror.Error
	n := s.peers.Len()
	if err := s.peers.CloseAll(); err != nil {
		result = multierror.Append(result, err)
	}
	for i := 0; i < n; i++ {
		s.metrics.PeerRemoved()
	}
	if err := s.transport.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("transport close: %w", err))
	}
	if err := s.engine.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("engine close: %w", err))
	}
	s.err = result.ErrorOrNil()
	if s.err != nil {
		s.log.Warn().Err(s.err).Msg("teardown")
	}
	s.setStatus(Disconnected)
	s.loop.Stop()
	close(s.done)
}

// Pause suspends local media if the engine supports it.
func (s *Session) Pause() {
	if e, ok := s.engine.(Pausable); ok {
		e.Pause()
	}
}

func (s *Session) Resume() {
	if e, ok := s.engine.(Pausable); ok {
		e.Resume()
	}
}

// Peers returns ids of the current peers.
func (s *Session) Peers() []string {
	var ids []string
	s.peers.ForEach(func(p *negotiation.Peer) { ids = append(ids, p.Id()) })
	return ids
}

// RemovePeer closes and forgets the peer.
func (s *Session) RemovePeer(id string) {
	s.loop.Post(func() { s.report(s.removePeer(id)) })
}

func (s *Session) onTransportEvent(event string, payload []byte) {
	if event != s.conf.Signaling.Event {
		s.log.Debug().Msgf("skip [%v] event", event)
		return
	}
	if !s.loop.Post(func() { s.report(s.handleEvent(payload)) }) {
		s.log.Debug().Msg("event after teardown")
	}
}

func (s *Session) onTransportDisconnect(err error) {
	if !s.closing.Load() {
		s.log.Warn().Err(&TransportError{Err: err}).Msg("signaling is lost")
	}
	s.Disconnect()
}

// handleEvent routes an inbound signaling payload by its type.
// Unknown types are ignored.
func (s *Session) handleEvent(data []byte) error {
	if s.closing.Load() {
		return ErrClosed
	}
	h, err := api.UnwrapChecked[api.Header](data)
	if err != nil {
		return err
	}
	s.log.Debug().Str(logger.DirectionField, "←").Msgf("%v", h.Type)

	switch h.Kind() {
	case api.Hello:
		return s.onHello(h, data)
	case api.Candidate:
		m, err := api.UnwrapChecked[api.CandidateMessage](data)
		if err != nil {
			return err
		}
		peer, err := s.route(h)
		if err != nil {
			return err
		}
		return peer.ReceiveCandidate(negotiation.Candidate{Mid: m.Id, Index: m.Label, SDP: m.Candidate})
	case api.Offer, api.Answer:
		m, err := api.UnwrapChecked[api.SdpMessage](data)
		if err != nil {
			return err
		}
		peer, err := s.route(h)
		if err != nil {
			return err
		}
		t := negotiation.Offer
		if h.Kind() == api.Answer {
			t = negotiation.Answer
		}
		return peer.ReceiveRemoteDescription(negotiation.SessionDescription{Type: t, SDP: m.Sdp})
	default:
		s.log.Debug().Msgf("ignored [%v] event", h.Type)
		return nil
	}
}

// onHello starts negotiating with the sender. The first hello fixes
// the signaling parameters of the call and publishes local media,
// later ones only introduce new peers or replace failed ones.
func (s *Session) onHello(h *api.Header, data []byte) error {
	if s.params == nil {
		m, err := api.UnwrapChecked[api.HelloMessage](data)
		if err != nil {
			return err
		}
		s.start(m)
	}

	id := s.peerId(h)
	if peer, err := s.peers.Find(id); err == nil {
		if peer.State() != negotiation.Failed {
			s.log.Warn().Str(logger.PeerField, id).Msg("repeated hello is ignored")
			return nil
		}
		s.log.Info().Str(logger.PeerField, id).Msg("Replacing failed peer")
		if err := s.removePeer(id); err != nil {
			s.log.Warn().Err(err).Str(logger.PeerField, id).Msg("failed peer close")
		}
	}
	return s.addPeer(id)
}

func (s *Session) start(m *api.HelloMessage) {
	var ice []config.IceServer
	for _, server := range m.IceServers {
		if err := server.Validate(); err != nil {
			s.log.Warn().Err(err).Msg("skip ICE server")
			continue
		}
		ice = append(ice, server)
	}
	if len(ice) == 0 {
		ice = s.conf.Webrtc.IceServers
	}
	params := negotiation.NewSignalingParameters(m.MakeOffer, ice, negotiation.ConstraintsFromConfig(s.conf.Media))
	if !params.HasTurn() {
		s.log.Warn().Msg("No TURN server, connections behind symmetric NATs may fail")
	}
	s.params = &params
	s.log.Info().Str(logger.RoleField, params.Role().String()).Msg("Negotiation has been started")

	if err := s.engine.Publish(params); err != nil {
		s.log.Error().Err(err).Msg("local media is not published")
	}
}

func (s *Session) addPeer(id string) error {
	if s.peers.Has(id) {
		return &negotiation.ProtocolError{Peer: id, Op: "add peer", Reason: "peer exists"}
	}
	if s.Status() != Connected {
		s.setStatus(Negotiating)
	}
	conn, err := s.engine.NewConnection(id, *s.params, peerEvents{s: s, id: id})
	if err != nil {
		f := &negotiation.NegotiationFailure{Peer: id, Op: "new connection", Err: err}
		observer{s}.OnFailure(id, f)
		return f
	}
	peer := negotiation.NewPeer(id, s.params.Role(), conn,
		negotiation.WithExecutor(s.loop),
		negotiation.WithSender(sender{s}),
		negotiation.WithObserver(observer{s}),
		negotiation.WithLogger(s.log),
		negotiation.WithDescriptionFilter(s.filter),
	)
	s.peers.Add(peer)
	s.metrics.PeerAdded()
	s.metrics.NegotiationStarted()
	if peer.Role() == negotiation.Initiator {
		return peer.CreateOffer()
	}
	return nil
}

func (s *Session) removePeer(id string) error {
	peer, err := s.peers.Find(id)
	if err != nil {
		return &RoutingError{Peer: id, Type: "remove"}
	}
	delete(s.tracks, id)
	s.metrics.PeerRemoved()
	return s.peers.RemoveClose(peer)
}

func (s *Session) route(h *api.Header) (*negotiation.Peer, error) {
	id := s.peerId(h)
	peer, err := s.peers.Find(id)
	if err != nil {
		return nil, &RoutingError{Peer: id, Type: h.Type}
	}
	return peer, nil
}

// peerId returns the sender of the event or the default peer.
func (s *Session) peerId(h *api.Header) string {
	if h.From != "" {
		return h.From
	}
	return s.conf.Signaling.PeerId
}

func (s *Session) send(payload any) {
	if s.closing.Load() {
		s.log.Debug().Msg("skip sending while closing")
		return
	}
	if err := s.transport.Send(s.conf.Signaling.Event, payload); err != nil {
		s.log.Error().Err(&TransportError{Err: err}).Msg("send")
		s.Disconnect()
	}
}

func (s *Session) routing(to string) api.Routing {
	return api.Routing{To: to, Broadcast: s.conf.Signaling.Broadcast()}
}

func (s *Session) onTrack(id string, track negotiation.TrackInfo) {
	if !s.peers.Has(id) {
		return
	}
	s.log.Info().Str(logger.PeerField, id).Msgf("Remote [%v] track %v", track.Kind, track.Codec)
	streams := s.tracks[id]
	if streams == nil {
		streams = make(map[string]map[string]int)
		s.tracks[id] = streams
	}
	kinds := streams[track.StreamId]
	if kinds == nil {
		kinds = make(map[string]int)
		streams[track.StreamId] = kinds
	}
	kinds[track.Kind]++
	if kinds[track.Kind] > 1 {
		s.log.Warn().Str(logger.PeerField, id).Msgf("Weird-looking stream %v with %v %v tracks",
			track.StreamId, kinds[track.Kind], track.Kind)
	}
	if s.renderer != nil {
		s.renderer.OnRemoteTrack(id, track)
	}
}

func (s *Session) setStatus(st Status) {
	if Status(s.status.Swap(uint32(st))) == st {
		return
	}
	s.log.Debug().Msgf("status: %v", st)
	if s.onStatus != nil {
		s.onStatus(st)
	}
}

func (s *Session) report(err error) {
	if err == nil {
		return
	}
	var (
		re *RoutingError
		pe *negotiation.ProtocolError
		nf *negotiation.NegotiationFailure
	)
	switch {
	case errors.As(err, &re):
		s.metrics.RoutingError()
		s.log.Warn().Err(err).Msg("dropped event")
	case errors.As(err, &pe):
		s.metrics.ProtocolError()
		s.log.Warn().Err(err).Send()
	case errors.As(err, &nf):
		// already reported by the peer observer
	case errors.Is(err, ErrClosed):
		s.log.Debug().Err(err).Send()
	default:
		s.log.Error().Err(err).Send()
	}
}
