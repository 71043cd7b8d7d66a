package config

import (
	"fmt"
	"strings"
)

const DefaultStun = "stun:stun.l.google.com:19302"

type Webrtc struct {
	DisableDefaultInterceptors bool
	IceServers                 []IceServer
	IcePorts                   struct {
		Min uint16
		Max uint16
	}
	IceIpMap string
	// LogLevel is a zerolog level for pion internals.
	LogLevel int `default:"2"`
	// LogQuiet lists pion scopes that log warnings and errors only.
	LogQuiet []string
}

type IceServer struct {
	Urls       string `json:"urls,omitempty"`
	Username   string `json:"username,omitempty"`
	Credential string `json:"credential,omitempty"`
}

func (i IceServer) IsTurn() bool {
	return strings.HasPrefix(i.Urls, "turn:") || strings.HasPrefix(i.Urls, "turns:")
}

func (i IceServer) Validate() error {
	if i.IsTurn() && (i.Username == "" || i.Credential == "") {
		return fmt.Errorf("TURN or TURNS servers should have both username and credential: %v", i.Urls)
	}
	return nil
}

func (w *Webrtc) HasPortRange() bool { return w.IcePorts.Min > 0 && w.IcePorts.Max > 0 }
func (w *Webrtc) HasIceIpMap() bool  { return w.IceIpMap != "" }

// HasTurn tells if any relay server is present in the list.
func (w *Webrtc) HasTurn() bool { return HasTurn(w.IceServers) }

func HasTurn(servers []IceServer) bool {
	for _, s := range servers {
		if s.IsTurn() {
			return true
		}
	}
	return false
}

// WithDefaults adds the public STUN server when nothing was configured.
func (w *Webrtc) WithDefaults() {
	if len(w.IceServers) == 0 {
		w.IceServers = []IceServer{{Urls: DefaultStun}}
	}
}

// AddIceServersEnv replaces ICE servers with indexed ones from env,
// i.e. SOCKETRTC_ICESERVERS[0]_URLS. Invalid TURN servers are skipped.
func (w *Webrtc) AddIceServersEnv() {
	cfg := Webrtc{IceServers: []IceServer{{}, {}, {}, {}, {}}}
	_ = LoadConfigEnv(&cfg)
	for i, ice := range cfg.IceServers {
		if ice.Urls == "" || ice.Validate() != nil {
			continue
		}
		if i > len(w.IceServers)-1 {
			w.IceServers = append(w.IceServers, ice)
		} else {
			w.IceServers[i] = ice
		}
	}
}
