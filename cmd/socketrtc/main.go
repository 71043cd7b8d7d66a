package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/giongto35/socketrtc/pkg/config"
	"github.com/giongto35/socketrtc/pkg/logger"
	"github.com/giongto35/socketrtc/pkg/monitoring"
	xos "github.com/giongto35/socketrtc/pkg/os"
	"github.com/giongto35/socketrtc/pkg/service"
	"github.com/giongto35/socketrtc/pkg/session"
	"github.com/giongto35/socketrtc/pkg/signaling"
	"github.com/giongto35/socketrtc/pkg/webrtc"
	"github.com/prometheus/client_golang/prometheus"
)

var Version = "?"

const shutdownTimeout = 10 * time.Second

func main() {
	conf, err := config.NewConfig(os.Args[1:])
	if err != nil {
		logger.Default().Fatal().Err(err).Msg("config")
	}

	log := logger.NewConsole(conf.Debug, "rtc", false)
	log.Info().Msgf("version %s", Version)
	if log.GetLevel() < logger.InfoLevel {
		log.Debug().Msgf("config: %+v", conf)
	}

	if err := run(conf, log); err != nil {
		log.Error().Err(err).Msg("service shutdown errors")
		os.Exit(1)
	}
}

func run(conf config.Config, log *logger.Logger) error {
	var services service.Group

	reg := prometheus.NewRegistry()
	var metrics *monitoring.Metrics
	if conf.Monitoring.MetricEnabled {
		metrics = monitoring.NewMetrics(reg)
	}
	if conf.Monitoring.IsEnabled() {
		mon, err := monitoring.New(conf.Monitoring, reg, log)
		if err != nil {
			return err
		}
		services.Add(mon)
	}

	engine, err := webrtc.NewEngine(conf, log)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-xos.ExpectTermination():
			cancel()
		case <-ctx.Done():
		}
	}()

	transport, err := signaling.Connect(ctx, conf.Signaling, log)
	if err != nil {
		return errors.Join(err, engine.Close())
	}

	sess := session.New(conf, engine, transport, log,
		session.WithMetrics(metrics),
		session.WithDescriptionFilter(webrtc.CodecFilter(conf.Media.PreferCodec, log)),
		session.WithStatusHandler(func(s session.Status) { log.Info().Msgf("Session is %v", s) }),
	)
	services.Add(sess)
	services.Start()

	select {
	case <-ctx.Done():
	case <-sess.Done():
	}

	sctx, scancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer scancel()
	return services.Shutdown(sctx)
}
