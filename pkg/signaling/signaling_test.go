package signaling

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/giongto35/socketrtc/pkg/config"
	"github.com/giongto35/socketrtc/pkg/logger"
	"github.com/giongto35/socketrtc/pkg/network/websocket"
)

type frame struct {
	event   string
	payload string
}

// relay returns every frame back or, when hangup is set,
// closes the socket on the first one.
func relay(t *testing.T, hangup bool) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := websocket.NewServer(w, r, logger.Nop())
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		ws.SetMessageHandler(func(m []byte, err error) {
			if err != nil {
				return
			}
			if hangup {
				ws.Close()
				return
			}
			_ = ws.Write(m)
		})
		<-ws.Listen()
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func connect(t *testing.T, url string) *Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	c, err := Connect(ctx, config.Signaling{Url: url, Attempts: 1}, logger.Nop())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	return c
}

func TestClientSendReceive(t *testing.T) {
	c := connect(t, relay(t, false))
	defer func() { _ = c.Close() }()

	frames := make(chan frame, 1)
	c.OnEvent(func(event string, payload []byte) { frames <- frame{event, string(payload)} })
	c.Listen()

	if err := c.Send("message", map[string]any{"type": "hello", "makeOffer": true}); err != nil {
		t.Fatalf("send: %v", err)
	}

	select {
	case f := <-frames:
		if f.event != "message" {
			t.Errorf("event %v, want message", f.event)
		}
		if f.payload != `{"makeOffer":true,"type":"hello"}` {
			t.Errorf("wrong payload %v", f.payload)
		}
	case <-time.After(time.Second):
		t.Fatalf("no echo")
	}
}

func TestClientDisconnect(t *testing.T) {
	c := connect(t, relay(t, true))

	lost := make(chan error, 1)
	c.OnDisconnect(func(err error) { lost <- err })
	c.Listen()

	_ = c.Send("message", "bye")

	select {
	case err := <-lost:
		if !errors.Is(err, ErrConnectionLost) {
			t.Errorf("err %v, want connection lost", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("no disconnect callback")
	}
}

func TestClientCloseIsSilent(t *testing.T) {
	c := connect(t, relay(t, false))

	lost := make(chan error, 1)
	c.OnDisconnect(func(err error) { lost <- err })
	c.Listen()

	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := c.Send("message", "late"); !errors.Is(err, websocket.ErrClosed) {
		t.Errorf("send after close: %v", err)
	}
	select {
	case err := <-lost:
		t.Errorf("disconnect callback after close: %v", err)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestClientSendQueueFull(t *testing.T) {
	c := connect(t, relay(t, false))

	// the writer is not started before Listen
	var err error
	for i := 0; i < 64; i++ {
		if err = c.Send("message", "hi"); err != nil {
			break
		}
	}
	if !errors.Is(err, websocket.ErrQueueFull) {
		t.Errorf("have %v, want %v", err, websocket.ErrQueueFull)
	}

	c.Listen()
	if err := c.Close(); err != nil {
		t.Errorf("close: %v", err)
	}
}

func TestConnectFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	srv.Close()

	_, err := Connect(context.Background(), config.Signaling{Url: url, Attempts: 1}, logger.Nop())
	if err == nil {
		t.Errorf("connected to a closed server")
	}
}
