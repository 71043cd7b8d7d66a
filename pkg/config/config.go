package config

import (
	"slices"
	"time"

	flag "github.com/spf13/pflag"
)

type Config struct {
	Debug      bool
	Signaling  Signaling
	Media      Media
	Webrtc     Webrtc
	Monitoring Monitoring
}

type Signaling struct {
	// Url is the address of the signaling relay (ws:// or wss://).
	Url string `default:"ws://localhost:3000/ws"`
	// Event is the name under which signaling payloads are emitted and received.
	Event string `default:"message"`
	// PeerId addresses the counterpart when inbound events carry no sender.
	PeerId string `default:"the-only-peer"`
	// Direct disables relay broadcast of outgoing messages.
	Direct   bool
	PingPong bool
	// Attempts is the number of connection attempts to the relay.
	Attempts int `default:"5"`
	// MaxRetryDelay limits the doubling delay between attempts.
	MaxRetryDelay time.Duration `default:"10s"`
}

func (s *Signaling) Broadcast() bool { return !s.Direct }

type Media struct {
	// Publish lists local media kinds sent to peers.
	Publish []string `default:"[audio,video]"`
	// Receive lists remote media kinds requested in offers.
	Receive    []string `default:"[audio,video]"`
	VideoCodec string   `default:"vp8"`
	AudioCodec string   `default:"opus"`
	// PreferCodec moves the codec to the front of its media section
	// in every local description, i.e. opus.
	PreferCodec string
}

func (m *Media) PublishVideo() bool { return slices.Contains(m.Publish, "video") }
func (m *Media) PublishAudio() bool { return slices.Contains(m.Publish, "audio") }
func (m *Media) ReceiveVideo() bool { return slices.Contains(m.Receive, "video") }
func (m *Media) ReceiveAudio() bool { return slices.Contains(m.Receive, "audio") }

type Monitoring struct {
	Port             int `default:"6601"`
	URLPrefix        string
	MetricEnabled    bool
	ProfilingEnabled bool
	// StatsInterval enables periodic connection stats logging if > 0.
	StatsInterval time.Duration
}

func (c *Monitoring) IsEnabled() bool { return c.MetricEnabled || c.ProfilingEnabled }

// NewConfig parses the command line, loads the configuration file
// and then applies explicitly set flags on top of it.
func NewConfig(args []string) (conf Config, err error) {
	fs := flag.NewFlagSet("socketrtc", flag.ContinueOnError)
	path := fs.StringP("conf", "c", "", "Set custom configuration file path")
	url := fs.String("signaling.url", "", "Signaling server address")
	peer := fs.String("peer", "", "Default peer id")
	debug := fs.BoolP("debug", "d", false, "Enable debug output")
	port := fs.Int("monitoring.port", 0, "Monitoring server port")
	metrics := fs.Bool("monitoring.metrics", false, "Enable Prometheus metrics")
	if err = fs.Parse(args); err != nil {
		return
	}

	if err = LoadConfig(&conf, *path); err != nil {
		return
	}

	if fs.Changed("signaling.url") {
		conf.Signaling.Url = *url
	}
	if fs.Changed("peer") {
		conf.Signaling.PeerId = *peer
	}
	if fs.Changed("debug") {
		conf.Debug = *debug
	}
	if fs.Changed("monitoring.port") {
		conf.Monitoring.Port = *port
	}
	if fs.Changed("monitoring.metrics") {
		conf.Monitoring.MetricEnabled = *metrics
	}
	conf.Webrtc.AddIceServersEnv()
	conf.Webrtc.WithDefaults()
	return
}
