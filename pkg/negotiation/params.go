package negotiation

import (
	"slices"

	"github.com/giongto35/socketrtc/pkg/config"
)

// MediaConstraints selects media kinds sent and requested.
type MediaConstraints struct {
	PublishAudio bool
	PublishVideo bool
	ReceiveAudio bool
	ReceiveVideo bool
}

func ConstraintsFromConfig(conf config.Media) MediaConstraints {
	return MediaConstraints{
		PublishAudio: conf.PublishAudio(),
		PublishVideo: conf.PublishVideo(),
		ReceiveAudio: conf.ReceiveAudio(),
		ReceiveVideo: conf.ReceiveVideo(),
	}
}

// SignalingParameters is an immutable set of agreed session parameters.
type SignalingParameters struct {
	initiator   bool
	iceServers  []config.IceServer
	constraints MediaConstraints
}

func NewSignalingParameters(initiator bool, iceServers []config.IceServer, constraints MediaConstraints) SignalingParameters {
	return SignalingParameters{
		initiator:   initiator,
		iceServers:  slices.Clone(iceServers),
		constraints: constraints,
	}
}

func (p SignalingParameters) Role() Role {
	if p.initiator {
		return Initiator
	}
	return Responder
}

// IceServers returns a copy of the connectivity server list.
func (p SignalingParameters) IceServers() []config.IceServer { return slices.Clone(p.iceServers) }

func (p SignalingParameters) Constraints() MediaConstraints { return p.constraints }

func (p SignalingParameters) HasTurn() bool { return config.HasTurn(p.iceServers) }
