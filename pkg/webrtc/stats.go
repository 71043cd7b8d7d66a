package webrtc

import (
	"github.com/giongto35/socketrtc/pkg/logger"
	"github.com/pion/webrtc/v4"
)

type mediaStats struct {
	packets uint32
	lost    int32
	bytes   uint64
}

type statsSummary struct {
	rtt      float64
	sent     uint64
	received uint64
	in       map[string]mediaStats
	out      map[string]mediaStats
}

// summarize picks the nominated candidate pair and per kind RTP counters.
func summarize(report webrtc.StatsReport) statsSummary {
	s := statsSummary{in: map[string]mediaStats{}, out: map[string]mediaStats{}}
	for _, v := range report {
		switch st := v.(type) {
		case webrtc.ICECandidatePairStats:
			if st.Nominated {
				s.rtt = st.CurrentRoundTripTime
				s.sent = st.BytesSent
				s.received = st.BytesReceived
			}
		case webrtc.InboundRTPStreamStats:
			m := s.in[st.Kind]
			m.packets += st.PacketsReceived
			m.lost += st.PacketsLost
			m.bytes += st.BytesReceived
			s.in[st.Kind] = m
		case webrtc.OutboundRTPStreamStats:
			m := s.out[st.Kind]
			m.packets += st.PacketsSent
			m.bytes += st.BytesSent
			s.out[st.Kind] = m
		}
	}
	return s
}

func (s statsSummary) log(log *logger.Logger) {
	e := log.Info().
		Float64("rtt", s.rtt).
		Uint64("sent", s.sent).
		Uint64("recv", s.received)
	for kind, m := range s.in {
		e = e.Uint32(kind+".in", m.packets).Int32(kind+".lost", m.lost)
	}
	for kind, m := range s.out {
		e = e.Uint32(kind+".out", m.packets)
	}
	e.Msg("stats")
}
