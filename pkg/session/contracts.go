package session

import "github.com/giongto35/socketrtc/pkg/negotiation"

// Transport is a duplex signaling channel.
type Transport interface {
	// Send emits a payload under the event name.
	Send(event string, payload any) error
	OnEvent(fn func(event string, payload []byte))
	// OnDisconnect is called once the channel is lost.
	OnDisconnect(fn func(err error))
	Listen()
	Close() error
}

// Engine creates media connections and owns the local media.
type Engine interface {
	Publish(params negotiation.SignalingParameters) error
	NewConnection(id string, params negotiation.SignalingParameters, obs negotiation.ConnectionObserver) (negotiation.Connection, error)
	// Close releases local media and the connection factory.
	Close() error
}

// Pausable engines can suspend local media.
type Pausable interface {
	Pause()
	Resume()
}

// Renderer consumes remote media tracks.
type Renderer interface {
	OnRemoteTrack(peer string, track negotiation.TrackInfo)
}

type Status uint32

const (
	Connecting Status = iota
	Negotiating
	Connected
	Failed
	Disconnected
)

func (s Status) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Negotiating:
		return "negotiating"
	case Connected:
		return "connected"
	case Failed:
		return "failed"
	case Disconnected:
		return "disconnected"
	}
	return "unknown"
}
