package webrtc

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/gofrs/uuid"
	"github.com/pion/webrtc/v4"
)

var ErrMediaClosed = errors.New("local media is closed")

// LocalMedia is the published local audio and video of a session.
// While paused, connections send the idle video track instead of the video.
type LocalMedia struct {
	StreamId string

	audio *webrtc.TrackLocalStaticSample
	video *webrtc.TrackLocalStaticSample
	idle  *webrtc.TrackLocalStaticSample

	paused atomic.Bool
	closed atomic.Bool
}

func NewLocalMedia(video, audio bool, videoCodec, audioCodec string) (*LocalMedia, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	m := &LocalMedia{StreamId: id.String()}
	if video {
		if m.video, err = newTrack("video", m.StreamId, videoCodec); err != nil {
			return nil, err
		}
		if m.idle, err = newTrack("video", m.StreamId, videoCodec); err != nil {
			return nil, err
		}
	}
	if audio {
		if m.audio, err = newTrack("audio", m.StreamId, audioCodec); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *LocalMedia) HasVideo() bool { return m != nil && m.video != nil }
func (m *LocalMedia) HasAudio() bool { return m != nil && m.audio != nil }

func (m *LocalMedia) Tracks() (tracks []webrtc.TrackLocal) {
	if m == nil {
		return
	}
	if m.audio != nil {
		tracks = append(tracks, m.audio)
	}
	if m.video != nil {
		tracks = append(tracks, m.videoTrack())
	}
	return
}

// videoTrack returns the track connections should send now.
func (m *LocalMedia) videoTrack() webrtc.TrackLocal {
	if m.paused.Load() {
		return m.idle
	}
	return m.video
}

// setPaused switches the video and reports whether it has changed.
func (m *LocalMedia) setPaused(paused bool) bool {
	return m.HasVideo() && !m.closed.Load() && m.paused.CompareAndSwap(!paused, paused)
}

func (m *LocalMedia) Close() error {
	if !m.closed.CompareAndSwap(false, true) {
		return ErrMediaClosed
	}
	return nil
}

func newTrack(kind string, stream string, codec string) (*webrtc.TrackLocalStaticSample, error) {
	mime, err := mimeType(kind, codec)
	if err != nil {
		return nil, err
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	return webrtc.NewTrackLocalStaticSample(webrtc.RTPCodecCapability{MimeType: mime}, kind+"-"+id.String(), stream)
}

func mimeType(kind string, codec string) (string, error) {
	codec = strings.ToLower(codec)
	var mime string
	switch kind {
	case "audio":
		switch codec {
		case "opus":
			mime = webrtc.MimeTypeOpus
		case "pcmu":
			mime = webrtc.MimeTypePCMU
		case "pcma":
			mime = webrtc.MimeTypePCMA
		case "g722":
			mime = webrtc.MimeTypeG722
		}
	case "video":
		switch codec {
		case "h264":
			mime = webrtc.MimeTypeH264
		case "vpx", "vp8":
			mime = webrtc.MimeTypeVP8
		case "vp9":
			mime = webrtc.MimeTypeVP9
		case "av1":
			mime = webrtc.MimeTypeAV1
		}
	}
	if mime == "" {
		return "", fmt.Errorf("unsupported codec %s:%s", kind, codec)
	}
	return mime, nil
}
