// Package websocket is a message-oriented duplex socket
// with separate read and write pumps.
package websocket

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/giongto35/socketrtc/pkg/logger"
	"github.com/gorilla/websocket"
)

const (
	maxMessageSize = 64 * 1024
	pingTime       = pongTime * 9 / 10
	pongTime       = 60 * time.Second
	writeWait      = 10 * time.Second
	sendQueue      = 32
)

var (
	ErrClosed    = errors.New("socket is closed")
	ErrQueueFull = errors.New("socket send queue is full")
)

type WS struct {
	conn *conn
	send chan []byte

	onMessage MessageHandler

	pingPong bool

	closeOnce sync.Once
	closed    chan struct{}
	listen    sync.Once
	shutdown  sync.WaitGroup
	done      chan struct{}

	log *logger.Logger
}

type MessageHandler func(message []byte, err error)

type Upgrader struct {
	websocket.Upgrader
}

var DefaultUpgrader = Upgrader{Upgrader: websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	WriteBufferPool: &sync.Pool{},
	CheckOrigin:     func(*http.Request) bool { return true },
}}

// NewServer upgrades an HTTP request into a socket.
func NewServer(w http.ResponseWriter, r *http.Request, log *logger.Logger) (*WS, error) {
	c, err := DefaultUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	return newSocket(c, false, true, log), nil
}

// NewClient dials a socket server.
func NewClient(ctx context.Context, address string, pingPong bool, log *logger.Logger) (*WS, error) {
	c, _, err := websocket.DefaultDialer.DialContext(ctx, address, nil)
	if err != nil {
		return nil, err
	}
	return newSocket(c, pingPong, false, log), nil
}

func newSocket(c *websocket.Conn, pingPong bool, server bool, log *logger.Logger) *WS {
	dir := "→"
	if server {
		dir = "←"
	}
	return &WS{
		conn:      &conn{Conn: c},
		send:      make(chan []byte, sendQueue),
		onMessage: func([]byte, error) {},
		pingPong:  pingPong,
		closed:    make(chan struct{}),
		done:      make(chan struct{}),
		log:       log.Extend(log.With().Str(logger.DirectionField, dir)),
	}
}

// SetMessageHandler sets the message callback, must be called before Listen.
func (ws *WS) SetMessageHandler(fn MessageHandler) { ws.onMessage = fn }

// Listen starts the socket pumps, the returned channel
// is closed when both of them exit.
func (ws *WS) Listen() <-chan struct{} {
	ws.listen.Do(func() {
		ws.shutdown.Add(2)
		go ws.writer()
		go ws.reader()
		go func() {
			ws.shutdown.Wait()
			_ = ws.conn.Close()
			close(ws.done)
		}()
	})
	return ws.done
}

func (ws *WS) Done() <-chan struct{} { return ws.done }

// Write queues a text message for sending.
// It never waits for the writer, a full queue is an error.
func (ws *WS) Write(data []byte) error {
	select {
	case <-ws.closed:
		return ErrClosed
	default:
	}
	select {
	case ws.send <- data:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close makes the writer send the close message and stop.
func (ws *WS) Close() {
	ws.closeOnce.Do(func() {
		ws.log.Debug().Str(logger.DirectionField, "x").Msg("close")
		close(ws.closed)
	})
}

// reader pumps messages from the websocket connection to the message callback.
// Blocking, must be called as goroutine. Serializes all websocket reads.
func (ws *WS) reader() {
	defer func() {
		ws.Close()
		ws.shutdown.Done()
	}()
	ws.conn.SetReadLimit(maxMessageSize)
	if ws.pingPong {
		ws.conn.expectPongs()
	}
	for {
		message, err := ws.conn.readFrame()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				ws.log.Error().Err(err).Msg("read")
				ws.onMessage(nil, err)
			}
			return
		}
		ws.onMessage(message, nil)
	}
}

// writer pumps messages from the send channel to the websocket connection.
// Blocking, must be called as goroutine. Serializes all websocket writes.
func (ws *WS) writer() {
	var ping <-chan time.Time
	if ws.pingPong {
		ticker := time.NewTicker(pingTime)
		defer ticker.Stop()
		ping = ticker.C
	}
	defer ws.shutdown.Done()
	for {
		select {
		case message := <-ws.send:
			if err := ws.conn.writeFrame(websocket.TextMessage, message); err != nil {
				ws.log.Error().Err(err).Msg("write")
				ws.Close()
				_ = ws.conn.Close()
				return
			}
		case <-ping:
			if err := ws.conn.writeFrame(websocket.PingMessage, nil); err != nil {
				ws.log.Error().Err(err).Msg("ping")
				ws.Close()
				_ = ws.conn.Close()
				return
			}
		case <-ws.closed:
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			_ = ws.conn.writeFrame(websocket.CloseMessage, msg)
			// unblocks the reader if the other side is silent
			_ = ws.conn.SetReadDeadline(time.Now().Add(writeWait))
			return
		}
	}
}
