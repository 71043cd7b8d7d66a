package webrtc

import (
	"slices"
	"strings"

	"github.com/giongto35/socketrtc/pkg/logger"
	"github.com/giongto35/socketrtc/pkg/negotiation"
	"github.com/pion/sdp/v3"
)

// PreferCodec moves the payload types of the codec to the front
// of the format list of every media section that has it.
func PreferCodec(raw string, codec string) (string, error) {
	var s sdp.SessionDescription
	if err := s.Unmarshal([]byte(raw)); err != nil {
		return "", err
	}
	for _, md := range s.MediaDescriptions {
		var types []string
		for _, a := range md.Attributes {
			if a.Key != "rtpmap" {
				continue
			}
			pt, encoding, ok := strings.Cut(a.Value, " ")
			name, _, _ := strings.Cut(encoding, "/")
			if ok && strings.EqualFold(name, codec) {
				types = append(types, pt)
			}
		}
		if len(types) == 0 {
			continue
		}
		formats := md.MediaName.Formats
		preferred := make([]string, 0, len(formats))
		rest := make([]string, 0, len(formats))
		for _, f := range formats {
			if slices.Contains(types, f) {
				preferred = append(preferred, f)
			} else {
				rest = append(rest, f)
			}
		}
		md.MediaName.Formats = append(preferred, rest...)
	}
	out, err := s.Marshal()
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// CodecFilter returns a description filter with PreferCodec or nil
// when there is no codec to prefer.
// Descriptions that can't be parsed pass through unchanged.
func CodecFilter(codec string, log *logger.Logger) func(negotiation.SessionDescription) negotiation.SessionDescription {
	if codec == "" {
		return nil
	}
	return func(d negotiation.SessionDescription) negotiation.SessionDescription {
		s, err := PreferCodec(d.SDP, codec)
		if err != nil {
			log.Warn().Err(err).Msgf("couldn't prefer %v", codec)
			return d
		}
		d.SDP = s
		return d
	}
}
