// Package monitoring serves Prometheus metrics and pprof endpoints.
package monitoring

import (
	"context"
	"fmt"
	"net/http/pprof"

	"github.com/giongto35/socketrtc/pkg/config"
	"github.com/giongto35/socketrtc/pkg/logger"
	"github.com/giongto35/socketrtc/pkg/network/httpx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const portRoll = 42

type Monitoring struct {
	conf   config.Monitoring
	server *httpx.Server
	mux    *httpx.Mux
	log    *logger.Logger
}

// New binds the monitoring server to the configured port
// or the nearest free one. Metrics are taken from the gatherer.
func New(conf config.Monitoring, gatherer prometheus.Gatherer, log *logger.Logger) (*Monitoring, error) {
	log = log.Extend(log.With().Str("s", "mon"))
	serv, err := httpx.Listen(fmt.Sprintf(":%d", conf.Port), httpx.WithPortRoll(portRoll), httpx.WithLogger(log))
	if err != nil {
		return nil, err
	}
	m := &Monitoring{conf: conf, server: serv, mux: httpx.NewMux(conf.URLPrefix), log: log}

	if conf.ProfilingEnabled {
		prefix := "/debug/pprof"
		m.mux.HandleFunc(prefix+"/", pprof.Index)
		m.mux.HandleFunc(prefix+"/cmdline", pprof.Cmdline)
		m.mux.HandleFunc(prefix+"/profile", pprof.Profile)
		m.mux.HandleFunc(prefix+"/symbol", pprof.Symbol)
		m.mux.HandleFunc(prefix+"/trace", pprof.Trace)
		// named profiles under a custom prefix need explicit handlers
		for _, p := range []string{"allocs", "block", "goroutine", "heap", "mutex", "threadcreate"} {
			m.mux.Handle(prefix+"/"+p, pprof.Handler(p))
		}
		log.Info().Msgf("Profiling is enabled at %v", serv.Addr()+m.mux.Path(prefix))
	}
	if conf.MetricEnabled {
		m.mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
		log.Info().Msgf("Prometheus metric is enabled at %v", serv.Addr()+m.mux.Path("/metrics"))
	}
	return m, nil
}

func (m *Monitoring) Run() {
	m.log.Info().Msgf("Starting monitoring server at %v", m.server.Addr())
	m.server.Serve(m.mux)
}

func (m *Monitoring) Shutdown(ctx context.Context) error {
	m.log.Info().Msg("Shutting down monitoring server")
	return m.server.Shutdown(ctx)
}

func (m *Monitoring) Port() int { return m.server.Port() }

func (m *Monitoring) String() string { return "monitoring::" + m.server.Addr() + m.conf.URLPrefix }
