// Package signaling is a websocket transport for sessions.
// Every socket message is an api.In/api.Out frame of an event name and a payload.
package signaling

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/giongto35/socketrtc/pkg/api"
	"github.com/giongto35/socketrtc/pkg/config"
	"github.com/giongto35/socketrtc/pkg/logger"
	"github.com/giongto35/socketrtc/pkg/network"
	"github.com/giongto35/socketrtc/pkg/network/websocket"
)

var ErrConnectionLost = errors.New("signaling connection is lost")

type Client struct {
	ws  *websocket.WS
	log *logger.Logger

	onEvent      func(event string, payload []byte)
	onDisconnect func(err error)

	mu      sync.Mutex
	readErr error
	closing atomic.Bool
}

// Connect dials the relay server making up to conf.Attempts attempts.
func Connect(ctx context.Context, conf config.Signaling, log *logger.Logger) (*Client, error) {
	attempts := max(conf.Attempts, 1)
	retry := network.NewRetry(conf.MaxRetryDelay)
	for i := 1; ; i++ {
		ws, err := websocket.NewClient(ctx, conf.Url, conf.PingPong, log)
		if err == nil {
			log.Info().Msgf("Connected to the relay %v", conf.Url)
			return newClient(ws, log), nil
		}
		if i >= attempts {
			return nil, fmt.Errorf("signaling connect %v: %w", conf.Url, err)
		}
		log.Warn().Err(err).Msgf("Relay is not available, retry in %v [%v/%v]", retry.Time(), i, attempts)
		if err := retry.Fail(ctx); err != nil {
			return nil, err
		}
	}
}

func newClient(ws *websocket.WS, log *logger.Logger) *Client {
	return &Client{
		ws:           ws,
		log:          log,
		onEvent:      func(string, []byte) {},
		onDisconnect: func(error) {},
	}
}

// Send emits the payload under the event name.
func (c *Client) Send(event string, payload any) error {
	data, err := api.Marshal(api.Out{E: event, Payload: payload})
	if err != nil {
		return err
	}
	return c.ws.Write(data)
}

// OnEvent sets the inbound event callback, must be called before Listen.
func (c *Client) OnEvent(fn func(event string, payload []byte)) { c.onEvent = fn }

// OnDisconnect sets the callback called when the connection
// is lost without Close, must be called before Listen.
func (c *Client) OnDisconnect(fn func(err error)) { c.onDisconnect = fn }

// Listen starts reading events.
func (c *Client) Listen() {
	c.ws.SetMessageHandler(c.handle)
	done := c.ws.Listen()
	go func() {
		<-done
		if c.closing.Load() {
			return
		}
		c.mu.Lock()
		err := c.readErr
		c.mu.Unlock()
		c.onDisconnect(errors.Join(ErrConnectionLost, err))
	}()
}

// Close closes the connection without the disconnect callback.
func (c *Client) Close() error {
	c.closing.Store(true)
	c.ws.Close()
	return nil
}

func (c *Client) handle(message []byte, err error) {
	if err != nil {
		c.mu.Lock()
		c.readErr = err
		c.mu.Unlock()
		return
	}
	in, err := api.UnwrapChecked[api.In](message)
	if err != nil {
		c.log.Warn().Err(err).Msg("skip frame")
		return
	}
	c.onEvent(in.E, in.Payload)
}
