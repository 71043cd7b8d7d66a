package websocket

import (
	"errors"
	"testing"
	"time"

	"github.com/giongto35/socketrtc/pkg/logger"
)

func TestWriteDoesNotWaitForWriter(t *testing.T) {
	// no pumps, nothing drains the queue
	ws := newSocket(nil, false, false, logger.Nop())

	for i := 0; i < sendQueue; i++ {
		if err := ws.Write([]byte("x")); err != nil {
			t.Fatalf("write %v: %v", i, err)
		}
	}

	done := make(chan error, 1)
	go func() { done <- ws.Write([]byte("x")) }()
	select {
	case err := <-done:
		if !errors.Is(err, ErrQueueFull) {
			t.Errorf("have %v, want %v", err, ErrQueueFull)
		}
	case <-time.After(time.Second):
		t.Fatalf("write blocks on a full queue")
	}

	ws.Close()
	if err := ws.Write([]byte("x")); !errors.Is(err, ErrClosed) {
		t.Errorf("have %v, want %v", err, ErrClosed)
	}
}
