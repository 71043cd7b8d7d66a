// Package webrtc is the media engine of sessions built on pion.
package webrtc

import (
	"errors"
	"sync"
	"time"

	"github.com/giongto35/socketrtc/pkg/config"
	"github.com/giongto35/socketrtc/pkg/logger"
	"github.com/giongto35/socketrtc/pkg/negotiation"
	"github.com/hashicorp/go-multierror"
	"github.com/pion/webrtc/v4"
)

var ErrEngineClosed = errors.New("media engine is closed")

// Engine creates connections with the shared local media.
type Engine struct {
	conf  config.Media
	stats time.Duration
	log   *logger.Logger

	mu     sync.Mutex
	api    *ApiFactory
	media  *LocalMedia
	conns  map[*Connection]struct{}
	closed bool
}

func NewEngine(conf config.Config, log *logger.Logger) (*Engine, error) {
	api, err := NewApiFactory(conf.Webrtc, log, nil)
	if err != nil {
		return nil, err
	}
	return &Engine{
		conf:  conf.Media,
		stats: conf.Monitoring.StatsInterval,
		log:   log,
		api:   api,
		conns: make(map[*Connection]struct{}),
	}, nil
}

// Publish creates local media tracks once per engine.
func (e *Engine) Publish(params negotiation.SignalingParameters) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrEngineClosed
	}
	if e.media != nil {
		return nil
	}
	c := params.Constraints()
	if !c.PublishAudio && !c.PublishVideo {
		return nil
	}
	media, err := NewLocalMedia(c.PublishVideo, c.PublishAudio, e.conf.VideoCodec, e.conf.AudioCodec)
	if err != nil {
		return err
	}
	e.media = media
	e.log.Info().Str("stream", media.StreamId).Msg("Local media is published")
	return nil
}

func (e *Engine) NewConnection(id string, params negotiation.SignalingParameters, obs negotiation.ConnectionObserver) (negotiation.Connection, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, ErrEngineClosed
	}
	pc, err := e.api.NewPeer(params.IceServers())
	if err != nil {
		return nil, err
	}
	log := e.log.Extend(e.log.With().Str(logger.PeerField, id))
	conn := newConnection(pc, obs, e.stats, log)

	for _, track := range e.media.Tracks() {
		if err = conn.AddTrack(track); err != nil {
			return nil, errors.Join(err, conn.Close())
		}
	}
	c := params.Constraints()
	if c.ReceiveVideo && !e.media.HasVideo() {
		err = conn.Receive(webrtc.RTPCodecTypeVideo)
	}
	if err == nil && c.ReceiveAudio && !e.media.HasAudio() {
		err = conn.Receive(webrtc.RTPCodecTypeAudio)
	}
	if err != nil {
		return nil, errors.Join(err, conn.Close())
	}
	e.conns[conn] = struct{}{}
	conn.onClose = func() {
		e.mu.Lock()
		delete(e.conns, conn)
		e.mu.Unlock()
	}
	return conn, nil
}

// Pause makes every connection send the idle video track.
func (e *Engine) Pause() { e.setPaused(true) }

func (e *Engine) Resume() { e.setPaused(false) }

func (e *Engine) setPaused(paused bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.media.setPaused(paused) {
		return
	}
	track := e.media.videoTrack()
	for conn := range e.conns {
		if err := conn.ReplaceVideo(track); err != nil {
			e.log.Warn().Err(err).Msg("video switch")
		}
	}
	e.log.Info().Msgf("Local video paused: %v", paused)
}

// Close releases the local media and then the connection factory.
// Connections must be closed before.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	var result *multierror.Error
	if e.media != nil {
		result = multierror.Append(result, e.media.Close())
		e.media = nil
	}
	e.api = nil
	e.log.Debug().Msg("media engine has been released")
	return result.ErrorOrNil()
}
