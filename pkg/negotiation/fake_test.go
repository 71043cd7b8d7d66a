package negotiation

import "errors"

var errEngine = errors.New("engine error")

// fakeConn completes operations synchronously or,
// when deferred, on flush/step calls.
type fakeConn struct {
	deferred bool
	calls    []func()

	failCreate error
	failLocal  error
	failRemote error
	failAdd    error

	offers  int
	answers int
	local   []SessionDescription
	remote  []SessionDescription
	applied []Candidate
	closed  int
}

func (f *fakeConn) run(fn func()) {
	if f.deferred {
		f.calls = append(f.calls, fn)
		return
	}
	fn()
}

// step completes the oldest deferred operation.
func (f *fakeConn) step() bool {
	if len(f.calls) == 0 {
		return false
	}
	fn := f.calls[0]
	f.calls = f.calls[1:]
	fn()
	return true
}

func (f *fakeConn) flush() {
	for f.step() {
	}
}

func (f *fakeConn) CreateOffer(done func(SessionDescription, error)) {
	f.offers++
	f.run(func() { done(SessionDescription{Type: Offer, SDP: "v=0 offer"}, f.failCreate) })
}

func (f *fakeConn) CreateAnswer(done func(SessionDescription, error)) {
	f.answers++
	f.run(func() { done(SessionDescription{Type: Answer, SDP: "v=0 answer"}, f.failCreate) })
}

func (f *fakeConn) SetLocalDescription(d SessionDescription, done func(error)) {
	f.run(func() {
		if f.failLocal == nil {
			f.local = append(f.local, d)
		}
		done(f.failLocal)
	})
}

func (f *fakeConn) SetRemoteDescription(d SessionDescription, done func(error)) {
	f.run(func() {
		if f.failRemote == nil {
			f.remote = append(f.remote, d)
		}
		done(f.failRemote)
	})
}

func (f *fakeConn) AddICECandidate(c Candidate) error {
	if f.failAdd != nil {
		return f.failAdd
	}
	f.applied = append(f.applied, c)
	return nil
}

func (f *fakeConn) Close() error { f.closed++; return nil }

type fakeSender struct {
	to         []string
	descs      []SessionDescription
	candidates []Candidate
}

func (s *fakeSender) SendDescription(to string, d SessionDescription) {
	s.to = append(s.to, to)
	s.descs = append(s.descs, d)
}

func (s *fakeSender) SendCandidate(to string, c Candidate) {
	s.to = append(s.to, to)
	s.candidates = append(s.candidates, c)
}

type recorder struct {
	states   []State
	failures []error
	paths    map[CandidatePath]int
}

func (r *recorder) OnStateChange(_ string, _, to State) { r.states = append(r.states, to) }
func (r *recorder) OnFailure(_ string, err error)       { r.failures = append(r.failures, err) }
func (r *recorder) OnCandidate(_ string, path CandidatePath) {
	if r.paths == nil {
		r.paths = make(map[CandidatePath]int)
	}
	r.paths[path]++
}

func (r *recorder) count(s State) (n int) {
	for _, x := range r.states {
		if x == s {
			n++
		}
	}
	return
}

type env struct {
	conn *fakeConn
	out  *fakeSender
	obs  *recorder
	peer *Peer
}

func newEnv(role Role, deferred bool, opts ...Option) *env {
	e := &env{conn: &fakeConn{deferred: deferred}, out: &fakeSender{}, obs: &recorder{}}
	opts = append([]Option{WithSender(e.out), WithObserver(e.obs)}, opts...)
	e.peer = NewPeer("bob", role, e.conn, opts...)
	return e
}

func candidates(n int) []Candidate {
	cs := make([]Candidate, n)
	for i := range cs {
		cs[i] = Candidate{Mid: "0", Index: 0, SDP: "candidate:" + string(rune('a'+i))}
	}
	return cs
}

func remoteFor(role Role) SessionDescription {
	if role == Initiator {
		return SessionDescription{Type: Answer, SDP: "v=0 remote answer"}
	}
	return SessionDescription{Type: Offer, SDP: "v=0 remote offer"}
}
