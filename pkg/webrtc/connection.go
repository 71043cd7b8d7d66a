package webrtc

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/giongto35/socketrtc/pkg/logger"
	"github.com/giongto35/socketrtc/pkg/negotiation"
	"github.com/pion/webrtc/v4"
)

var (
	ErrConnectionFailed      = errors.New("connection failed")
	ErrUnexpectedDataChannel = errors.New("unexpected data channel")
)

// Connection adapts a pion connection to asynchronous negotiation calls.
// Blocking pion calls run in their own goroutines, the results come
// through the done callbacks.
type Connection struct {
	pc  *webrtc.PeerConnection
	obs negotiation.ConnectionObserver
	log *logger.Logger

	video   *webrtc.RTPSender
	onClose func()

	statsInterval time.Duration
	statsOnce     sync.Once
	closed        atomic.Bool
	stop          chan struct{}
}

func newConnection(pc *webrtc.PeerConnection, obs negotiation.ConnectionObserver, stats time.Duration, log *logger.Logger) *Connection {
	c := &Connection{pc: pc, obs: obs, log: log, statsInterval: stats, stop: make(chan struct{})}
	pc.OnICECandidate(c.handleICECandidate)
	pc.OnTrack(c.handleTrack)
	pc.OnDataChannel(func(d *webrtc.DataChannel) {
		c.obs.OnFailure(fmt.Errorf("%w [%v]", ErrUnexpectedDataChannel, d.Label()))
	})
	pc.OnConnectionStateChange(c.handleState)
	return c
}

func (c *Connection) CreateOffer(done func(negotiation.SessionDescription, error)) {
	go func() {
		sd, err := c.pc.CreateOffer(nil)
		done(fromPion(sd), err)
	}()
}

func (c *Connection) CreateAnswer(done func(negotiation.SessionDescription, error)) {
	go func() {
		sd, err := c.pc.CreateAnswer(nil)
		done(fromPion(sd), err)
	}()
}

func (c *Connection) SetLocalDescription(d negotiation.SessionDescription, done func(error)) {
	go func() { done(c.pc.SetLocalDescription(toPion(d))) }()
}

func (c *Connection) SetRemoteDescription(d negotiation.SessionDescription, done func(error)) {
	go func() { done(c.pc.SetRemoteDescription(toPion(d))) }()
}

func (c *Connection) AddICECandidate(candidate negotiation.Candidate) error {
	return c.pc.AddICECandidate(toPionCandidate(candidate))
}

func (c *Connection) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(c.stop)
	if c.onClose != nil {
		c.onClose()
	}
	return c.pc.Close()
}

// AddTrack attaches a local track and drains its RTCP.
func (c *Connection) AddTrack(track webrtc.TrackLocal) error {
	sender, err := c.pc.AddTrack(track)
	if err != nil {
		return err
	}
	if track.Kind() == webrtc.RTPCodecTypeVideo {
		c.video = sender
	}
	go func() {
		rtcpBuf := make([]byte, 1500)
		for {
			if _, _, err := sender.Read(rtcpBuf); err != nil {
				return
			}
		}
	}()
	if t, ok := track.(interface {
		Codec() webrtc.RTPCodecCapability
	}); ok {
		c.log.Debug().Msgf("Added [%s] track", t.Codec().MimeType)
	}
	return nil
}

// ReplaceVideo swaps the sent video track without renegotiation.
func (c *Connection) ReplaceVideo(track webrtc.TrackLocal) error {
	if c.video == nil {
		return nil
	}
	return c.video.ReplaceTrack(track)
}

// Receive makes the connection ask for remote media of the kind.
func (c *Connection) Receive(kind webrtc.RTPCodecType) error {
	_, err := c.pc.AddTransceiverFromKind(kind, webrtc.RTPTransceiverInit{Direction: webrtc.RTPTransceiverDirectionRecvonly})
	return err
}

func (c *Connection) handleICECandidate(ice *webrtc.ICECandidate) {
	// ICE gathering finish condition
	if ice == nil {
		c.log.Debug().Msg("ICE gathering was complete probably")
		return
	}
	c.obs.OnICECandidate(fromPionCandidate(ice.ToJSON()))
}

func (c *Connection) handleTrack(track *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
	c.obs.OnTrack(negotiation.TrackInfo{
		Kind:     track.Kind().String(),
		StreamId: track.StreamID(),
		TrackId:  track.ID(),
		Codec:    track.Codec().MimeType,
	})
	// keep reading so interceptors get their packets
	go func() {
		buf := make([]byte, 1500)
		for {
			if _, _, err := track.Read(buf); err != nil {
				return
			}
		}
	}()
}

func (c *Connection) handleState(state webrtc.PeerConnectionState) {
	c.log.Debug().Str(".state", state.String()).Msg("connection")
	switch state {
	case webrtc.PeerConnectionStateConnected:
		c.statsOnce.Do(func() {
			if c.statsInterval > 0 {
				go c.logStats()
			}
		})
	case webrtc.PeerConnectionStateFailed:
		c.log.Error().Msgf("WebRTC connection fail! ice: %v, gathering: %v, signalling: %v",
			c.pc.ICEConnectionState(), c.pc.ICEGatheringState(), c.pc.SignalingState())
		c.obs.OnFailure(ErrConnectionFailed)
	}
}

func (c *Connection) logStats() {
	ticker := time.NewTicker(c.statsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			summarize(c.pc.GetStats()).log(c.log)
		}
	}
}

func fromPion(sd webrtc.SessionDescription) negotiation.SessionDescription {
	return negotiation.SessionDescription{Type: negotiation.SDPType(sd.Type.String()), SDP: sd.SDP}
}

func toPion(d negotiation.SessionDescription) webrtc.SessionDescription {
	return webrtc.SessionDescription{Type: webrtc.NewSDPType(string(d.Type)), SDP: d.SDP}
}

func fromPionCandidate(ice webrtc.ICECandidateInit) negotiation.Candidate {
	c := negotiation.Candidate{SDP: ice.Candidate}
	if ice.SDPMid != nil {
		c.Mid = *ice.SDPMid
	}
	if ice.SDPMLineIndex != nil {
		c.Index = int(*ice.SDPMLineIndex)
	}
	return c
}

func toPionCandidate(c negotiation.Candidate) webrtc.ICECandidateInit {
	index := uint16(c.Index)
	ice := webrtc.ICECandidateInit{Candidate: c.SDP, SDPMLineIndex: &index}
	if c.Mid != "" {
		mid := c.Mid
		ice.SDPMid = &mid
	}
	return ice
}
