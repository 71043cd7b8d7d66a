package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// conn is a gorilla connection with deadlined writes.
// Gorilla connections allow one concurrent writer only.
type conn struct {
	*websocket.Conn
	wmu sync.Mutex
}

func (c *conn) writeFrame(kind int, data []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if err := c.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.WriteMessage(kind, data)
}

// expectPongs makes reads fail if the other side stops answering pings.
func (c *conn) expectPongs() {
	extend := func(string) error { return c.SetReadDeadline(time.Now().Add(pongTime)) }
	_ = extend("")
	c.SetPongHandler(extend)
}

func (c *conn) readFrame() ([]byte, error) {
	_, data, err := c.ReadMessage()
	return data, err
}
