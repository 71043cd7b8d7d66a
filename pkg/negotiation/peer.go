package negotiation

import (
	"errors"
	"fmt"

	"github.com/giongto35/socketrtc/pkg/logger"
)

// Peer drives the offer/answer handshake of one connection.
//
// All the methods must be called in the context of its Executor,
// connection callbacks are posted there as well. The peer keeps at most
// one description operation in flight; a remote description that arrives
// in the meantime is applied right after the operation completes.
// Queued remote candidates are drained exactly once, by whichever of
// the local or remote descriptions is set last.
type Peer struct {
	id   string
	role Role
	conn Connection

	exec   Executor
	out    Sender
	obs    Observer
	filter func(SessionDescription) SessionDescription
	log    *logger.Logger

	state     State
	queue     *CandidateQueue
	hasLocal  bool
	hasRemote bool
	// accepted is set with the first valid remote description
	accepted bool
	busy     bool
	pending  *SessionDescription
	closed   bool
}

type Option func(*Peer)

func WithExecutor(e Executor) Option { return func(p *Peer) { p.exec = e } }
func WithSender(s Sender) Option     { return func(p *Peer) { p.out = s } }
func WithObserver(o Observer) Option { return func(p *Peer) { p.obs = o } }
func WithLogger(l *logger.Logger) Option {
	return func(p *Peer) { p.log = l }
}

// WithDescriptionFilter sets a function applied to each locally created
// description before it is set and sent.
func WithDescriptionFilter(fn func(SessionDescription) SessionDescription) Option {
	return func(p *Peer) { p.filter = fn }
}

type inline struct{}

func (inline) Post(fn func()) bool { fn(); return true }

type nopSender struct{}

func (nopSender) SendDescription(string, SessionDescription) {}
func (nopSender) SendCandidate(string, Candidate)            {}

type nopObserver struct{}

func (nopObserver) OnStateChange(string, State, State) {}
func (nopObserver) OnFailure(string, error)            {}
func (nopObserver) OnCandidate(string, CandidatePath)  {}

func NewPeer(id string, role Role, conn Connection, opts ...Option) *Peer {
	p := &Peer{
		id:    id,
		role:  role,
		conn:  conn,
		exec:  inline{},
		out:   nopSender{},
		obs:   nopObserver{},
		log:   logger.Nop(),
		queue: NewCandidateQueue(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log = p.log.Extend(p.log.With().Str(logger.PeerField, id).Str(logger.RoleField, role.String()))
	return p
}

func (p *Peer) Id() string                 { return p.id }
func (p *Peer) Role() Role                 { return p.role }
func (p *Peer) State() State               { return p.state }
func (p *Peer) HasLocalDescription() bool  { return p.hasLocal }
func (p *Peer) HasRemoteDescription() bool { return p.hasRemote }
func (p *Peer) QueuedCandidates() int      { return p.queue.Len() }

// CreateOffer starts the negotiation, valid for a new initiator only.
func (p *Peer) CreateOffer() error {
	if p.role != Initiator {
		return p.protocolError("create offer", "not an initiator")
	}
	if !p.active() || p.state != New || p.busy {
		return p.protocolError("create offer", "peer is "+p.status())
	}
	p.busy = true
	p.log.Debug().Msg("create offer")
	p.conn.CreateOffer(func(d SessionDescription, err error) {
		p.post(func() { p.onCreated("create offer", OfferCreated, d, err) })
	})
	return nil
}

// ReceiveRemoteDescription accepts the only remote description of the peer,
// an answer for initiators and an offer for responders.
// A rejected description leaves the peer untouched.
func (p *Peer) ReceiveRemoteDescription(d SessionDescription) error {
	if !p.active() {
		return p.protocolError("set remote", "peer is "+p.status())
	}
	if p.accepted {
		return p.protocolError("set remote", "remote description is already set")
	}
	want := Offer
	if p.role == Initiator {
		want = Answer
	}
	if d.Type != want {
		return p.protocolError("set remote", fmt.Sprintf("unexpected %v for %v", d.Type, p.role))
	}
	p.accepted = true
	p.pending = &d
	p.applyRemote()
	return nil
}

// ReceiveCandidate queues a remote candidate until the connection
// has both descriptions, after that candidates are applied immediately.
func (p *Peer) ReceiveCandidate(c Candidate) error {
	if !p.active() {
		return p.protocolError("add candidate", "peer is "+p.status())
	}
	if err := p.queue.Enqueue(c); err == nil {
		p.obs.OnCandidate(p.id, CandidateQueued)
		return nil
	}
	p.obs.OnCandidate(p.id, CandidateImmediate)
	if err := p.conn.AddICECandidate(c); err != nil {
		return fmt.Errorf("add candidate [%v]: %w", c, err)
	}
	return nil
}

// LocalCandidate sends a candidate discovered by the connection.
func (p *Peer) LocalCandidate(c Candidate) {
	if !p.active() {
		return
	}
	p.out.SendCandidate(p.id, c)
}

// Fail moves the peer into Failed state because of an external reason.
func (p *Peer) Fail(err error) { p.fail("connection", err) }

// Close releases the connection. Subsequent connection callbacks are ignored.
func (p *Peer) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	p.pending = nil
	p.log.Debug().Msg("close")
	if err := p.conn.Close(); err != nil {
		return fmt.Errorf("peer [%v] close: %w", p.id, err)
	}
	return nil
}

func (p *Peer) onCreated(op string, next State, d SessionDescription, err error) {
	p.busy = false
	if !p.active() {
		return
	}
	if err != nil {
		p.fail(op, err)
		return
	}
	p.setState(next)
	if p.filter != nil {
		d = p.filter(d)
	}
	p.busy = true
	p.conn.SetLocalDescription(d, func(err error) {
		p.post(func() { p.onLocalSet(d, err) })
	})
}

func (p *Peer) onLocalSet(d SessionDescription, err error) {
	p.busy = false
	if !p.active() {
		return
	}
	if err != nil {
		p.fail("set local", err)
		return
	}
	p.hasLocal = true
	p.setState(LocalSet)
	p.localDescriptionReady(d)
}

func (p *Peer) localDescriptionReady(d SessionDescription) {
	p.out.SendDescription(p.id, d)
	if p.hasRemote {
		p.drain()
		return
	}
	p.setState(AwaitingRemote)
	p.applyRemote()
}

func (p *Peer) applyRemote() {
	if p.pending == nil || p.busy {
		return
	}
	// an answer without our offer has nothing to match
	if p.role == Initiator && !p.hasLocal {
		return
	}
	d := *p.pending
	p.pending = nil
	p.busy = true
	p.log.Debug().Msgf("set remote %v", d.Type)
	p.conn.SetRemoteDescription(d, func(err error) {
		p.post(func() { p.onRemoteSet(err) })
	})
}

func (p *Peer) onRemoteSet(err error) {
	p.busy = false
	if !p.active() {
		return
	}
	if err != nil {
		p.fail("set remote", err)
		return
	}
	p.hasRemote = true
	p.setState(RemoteSet)
	if p.hasLocal {
		p.drain()
		return
	}
	if p.role == Responder {
		p.createAnswer()
	}
}

func (p *Peer) createAnswer() {
	p.busy = true
	p.log.Debug().Msg("create answer")
	p.conn.CreateAnswer(func(d SessionDescription, err error) {
		p.post(func() { p.onCreated("create answer", AnswerCreated, d, err) })
	})
}

func (p *Peer) drain() {
	n, err := p.queue.DrainInto(p.conn.AddICECandidate)
	if errors.Is(err, ErrDrained) {
		return
	}
	for i := 0; i < n; i++ {
		p.obs.OnCandidate(p.id, CandidateDrained)
	}
	if err != nil {
		p.log.Warn().Err(err).Msg("rejected candidates")
	}
	p.log.Debug().Int("candidates", n).Msg("drained")
	p.setState(Negotiated)
}

func (p *Peer) fail(op string, err error) {
	if !p.active() {
		return
	}
	p.busy = false
	p.pending = nil
	f := &NegotiationFailure{Peer: p.id, Op: op, Err: err}
	p.log.Error().Err(err).Msgf("%v failed", op)
	p.setState(Failed)
	p.obs.OnFailure(p.id, f)
}

func (p *Peer) setState(s State) {
	from := p.state
	p.state = s
	p.log.Debug().Msgf("%v -> %v", from, s)
	p.obs.OnStateChange(p.id, from, s)
}

func (p *Peer) post(fn func()) {
	if !p.exec.Post(fn) {
		p.log.Debug().Msg("connection callback dropped")
	}
}

func (p *Peer) active() bool { return !p.closed && p.state != Failed }

func (p *Peer) status() string {
	if p.closed {
		return "closed"
	}
	return p.state.String()
}

func (p *Peer) protocolError(op, reason string) error {
	return &ProtocolError{Peer: p.id, Op: op, Reason: reason}
}
