package webrtc

import (
	"errors"
	"testing"

	"github.com/pion/webrtc/v4"
)

func TestMimeType(t *testing.T) {
	tests := []struct {
		kind  string
		codec string
		mime  string
		err   bool
	}{
		{kind: "video", codec: "VP8", mime: webrtc.MimeTypeVP8},
		{kind: "video", codec: "vpx", mime: webrtc.MimeTypeVP8},
		{kind: "video", codec: "h264", mime: webrtc.MimeTypeH264},
		{kind: "audio", codec: "opus", mime: webrtc.MimeTypeOpus},
		{kind: "audio", codec: "isac", err: true},
		{kind: "audio", codec: "vp8", err: true},
		{kind: "data", codec: "opus", err: true},
	}
	for _, tt := range tests {
		mime, err := mimeType(tt.kind, tt.codec)
		if (err != nil) != tt.err || mime != tt.mime {
			t.Errorf("mimeType(%v, %v) = %v, %v", tt.kind, tt.codec, mime, err)
		}
	}
}

func TestLocalMedia(t *testing.T) {
	m, err := NewLocalMedia(true, false, "vp8", "opus")
	if err != nil {
		t.Fatal(err)
	}
	if !m.HasVideo() || m.HasAudio() {
		t.Errorf("wrong tracks")
	}
	tracks := m.Tracks()
	if len(tracks) != 1 || tracks[0].StreamID() != m.StreamId || tracks[0].Kind() != webrtc.RTPCodecTypeVideo {
		t.Fatalf("wrong tracks %v", tracks)
	}

	video := tracks[0]

	if !m.setPaused(true) || m.setPaused(true) {
		t.Errorf("pause is not switched once")
	}
	idle := m.Tracks()[0]
	if idle == video || idle.StreamID() != m.StreamId || idle.Kind() != webrtc.RTPCodecTypeVideo {
		t.Errorf("wrong idle track %v", idle.ID())
	}
	if !m.setPaused(false) || m.Tracks()[0] != video {
		t.Errorf("video is not resumed")
	}

	if err := m.Close(); err != nil {
		t.Fatal(err)
	}
	if m.setPaused(true) {
		t.Errorf("closed media is paused")
	}
	if err := m.Close(); !errors.Is(err, ErrMediaClosed) {
		t.Errorf("have %v, want %v", err, ErrMediaClosed)
	}
}

func TestAudioOnlyMediaIsNotPaused(t *testing.T) {
	m, err := NewLocalMedia(false, true, "vp8", "opus")
	if err != nil {
		t.Fatal(err)
	}
	if m.setPaused(true) {
		t.Errorf("paused without video")
	}
}

func TestNilLocalMedia(t *testing.T) {
	var m *LocalMedia
	if m.HasVideo() || m.HasAudio() || len(m.Tracks()) > 0 {
		t.Errorf("nil media has tracks")
	}
	if m.setPaused(true) {
		t.Errorf("nil media is paused")
	}
}
