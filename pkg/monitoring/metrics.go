package monitoring

import (
	"github.com/giongto35/socketrtc/pkg/negotiation"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "socketrtc"

// Metrics counts negotiation events.
// A nil *Metrics is valid and counts nothing.
type Metrics struct {
	negotiations   *prometheus.CounterVec
	candidates     *prometheus.CounterVec
	routingErrors  prometheus.Counter
	protocolErrors prometheus.Counter
	peers          prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		negotiations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "negotiations_total",
			Help:      "Peer negotiations by result.",
		}, []string{"result"}),
		candidates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "candidates_total",
			Help:      "Remote candidates by the way they reached the connection.",
		}, []string{"path"}),
		routingErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "routing_errors_total",
			Help:      "Signaling events addressed to unknown peers.",
		}),
		protocolErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "protocol_errors_total",
			Help:      "Out-of-order or duplicate negotiation steps.",
		}),
		peers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "peers",
			Help:      "Current number of peers.",
		}),
	}
	reg.MustRegister(m.negotiations, m.candidates, m.routingErrors, m.protocolErrors, m.peers)
	return m
}

func (m *Metrics) NegotiationStarted() {
	if m != nil {
		m.negotiations.WithLabelValues("started").Inc()
	}
}

func (m *Metrics) Negotiated() {
	if m != nil {
		m.negotiations.WithLabelValues("negotiated").Inc()
	}
}

func (m *Metrics) NegotiationFailed() {
	if m != nil {
		m.negotiations.WithLabelValues("failed").Inc()
	}
}

func (m *Metrics) Candidate(path negotiation.CandidatePath) {
	if m != nil {
		m.candidates.WithLabelValues(string(path)).Inc()
	}
}

func (m *Metrics) RoutingError() {
	if m != nil {
		m.routingErrors.Inc()
	}
}

func (m *Metrics) ProtocolError() {
	if m != nil {
		m.protocolErrors.Inc()
	}
}

func (m *Metrics) PeerAdded() {
	if m != nil {
		m.peers.Inc()
	}
}

func (m *Metrics) PeerRemoved() {
	if m != nil {
		m.peers.Dec()
	}
}
