package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/giongto35/socketrtc/pkg/negotiation"
	"github.com/giongto35/socketrtc/pkg/network/websocket"
)

var errFake = errors.New("fake error")

// journal keeps the order of close calls across fakes.
type journal struct {
	mu   sync.Mutex
	list []string
}

func (j *journal) add(s string) { j.mu.Lock(); j.list = append(j.list, s); j.mu.Unlock() }

func (j *journal) all() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.list...)
}

type fakeTransport struct {
	mu           sync.Mutex
	onEvent      func(string, []byte)
	onDisconnect func(error)
	events       []string
	sent         []any
	failSend     error
	queue        int // sent frames nobody drains, unbounded if 0
	listening    bool
	closed       int
	j            *journal
}

func (t *fakeTransport) Send(event string, payload any) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.failSend != nil {
		return t.failSend
	}
	if t.queue > 0 && len(t.sent) >= t.queue {
		return websocket.ErrQueueFull
	}
	t.events = append(t.events, event)
	t.sent = append(t.sent, payload)
	return nil
}

func (t *fakeTransport) OnEvent(fn func(string, []byte)) { t.onEvent = fn }
func (t *fakeTransport) OnDisconnect(fn func(error))     { t.onDisconnect = fn }
func (t *fakeTransport) Listen()                         { t.mu.Lock(); t.listening = true; t.mu.Unlock() }

func (t *fakeTransport) Close() error {
	t.mu.Lock()
	t.closed++
	t.mu.Unlock()
	t.j.add("transport")
	return nil
}

func (t *fakeTransport) emit(event string, payload string) { t.onEvent(event, []byte(payload)) }

func (t *fakeTransport) messages() []any {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]any(nil), t.sent...)
}

func (t *fakeTransport) closes() int { t.mu.Lock(); defer t.mu.Unlock(); return t.closed }

type fakeEngine struct {
	mu        sync.Mutex
	published []negotiation.SignalingParameters
	conns     map[string]*fakeConn
	observers map[string]negotiation.ConnectionObserver
	failNew   error
	closed    int
	paused    bool
	j         *journal
}

func newFakeEngine(j *journal) *fakeEngine {
	return &fakeEngine{
		conns:     make(map[string]*fakeConn),
		observers: make(map[string]negotiation.ConnectionObserver),
		j:         j,
	}
}

func (e *fakeEngine) Publish(params negotiation.SignalingParameters) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.published = append(e.published, params)
	return nil
}

func (e *fakeEngine) NewConnection(id string, _ negotiation.SignalingParameters, obs negotiation.ConnectionObserver) (negotiation.Connection, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.failNew != nil {
		return nil, e.failNew
	}
	conn := &fakeConn{id: id, j: e.j}
	e.conns[id] = conn
	e.observers[id] = obs
	return conn, nil
}

func (e *fakeEngine) Close() error {
	e.mu.Lock()
	e.closed++
	e.mu.Unlock()
	e.j.add("engine")
	return nil
}

func (e *fakeEngine) Pause()  { e.mu.Lock(); e.paused = true; e.mu.Unlock() }
func (e *fakeEngine) Resume() { e.mu.Lock(); e.paused = false; e.mu.Unlock() }

func (e *fakeEngine) conn(id string) *fakeConn {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.conns[id]
}

func (e *fakeEngine) observer(id string) negotiation.ConnectionObserver {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.observers[id]
}

func (e *fakeEngine) params() []negotiation.SignalingParameters {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]negotiation.SignalingParameters(nil), e.published...)
}

// fakeConn completes every operation at once.
type fakeConn struct {
	mu      sync.Mutex
	id      string
	remote  []negotiation.SessionDescription
	applied []negotiation.Candidate
	closed  int
	j       *journal
}

func (c *fakeConn) CreateOffer(done func(negotiation.SessionDescription, error)) {
	done(negotiation.SessionDescription{Type: negotiation.Offer, SDP: "v=0 offer"}, nil)
}

func (c *fakeConn) CreateAnswer(done func(negotiation.SessionDescription, error)) {
	done(negotiation.SessionDescription{Type: negotiation.Answer, SDP: "v=0 answer"}, nil)
}

func (c *fakeConn) SetLocalDescription(_ negotiation.SessionDescription, done func(error)) { done(nil) }

func (c *fakeConn) SetRemoteDescription(d negotiation.SessionDescription, done func(error)) {
	c.mu.Lock()
	c.remote = append(c.remote, d)
	c.mu.Unlock()
	done(nil)
}

func (c *fakeConn) AddICECandidate(cand negotiation.Candidate) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.applied = append(c.applied, cand)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	c.closed++
	c.mu.Unlock()
	c.j.add(fmt.Sprintf("conn %v", c.id))
	return nil
}

func (c *fakeConn) candidates() []negotiation.Candidate {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]negotiation.Candidate(nil), c.applied...)
}

func (c *fakeConn) closes() int { c.mu.Lock(); defer c.mu.Unlock(); return c.closed }

type tracks struct {
	mu   sync.Mutex
	list []negotiation.TrackInfo
}

func (r *tracks) OnRemoteTrack(_ string, t negotiation.TrackInfo) {
	r.mu.Lock()
	r.list = append(r.list, t)
	r.mu.Unlock()
}

func (r *tracks) all() []negotiation.TrackInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]negotiation.TrackInfo(nil), r.list...)
}
