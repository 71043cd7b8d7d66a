package thread

import (
	"sync"
	"testing"
	"time"
)

func TestLooperOrder(t *testing.T) {
	l := NewLooper(nil)
	defer l.Stop()

	var got []int
	for i := 0; i < 100; i++ {
		i := i
		l.Post(func() { got = append(got, i) })
	}
	l.Call(func() {})

	if len(got) != 100 {
		t.Fatalf("have %v tasks, want 100", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("task %v ran at %v", v, i)
		}
	}
}

func TestLooperPostFromTask(t *testing.T) {
	l := NewLooper(nil)
	defer l.Stop()

	done := make(chan struct{})
	l.Post(func() {
		// queued behind the current task
		l.Post(func() { close(done) })
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("nested post was not executed")
	}
}

func TestLooperConcurrentPost(t *testing.T) {
	l := NewLooper(nil)
	defer l.Stop()

	n := 0
	var wg sync.WaitGroup
	for j := 0; j < 10; j++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for k := 0; k < 100; k++ {
				l.Post(func() { n++ })
			}
		}()
	}
	wg.Wait()
	l.Call(func() {})

	if n != 1000 {
		t.Errorf("have %v, want 1000", n)
	}
}

func TestLooperStop(t *testing.T) {
	l := NewLooper(nil)

	ran := false
	l.Call(func() { l.Stop() })
	if l.Post(func() { ran = true }) {
		t.Errorf("post after stop should be rejected")
	}

	select {
	case <-l.Done():
	case <-time.After(time.Second):
		t.Fatalf("looper is still running")
	}
	if ran {
		t.Errorf("task after stop has been executed")
	}
	if l.Call(func() {}) {
		t.Errorf("call after stop should be rejected")
	}
}

func TestLooperStopDropsQueued(t *testing.T) {
	l := NewLooper(nil)

	ran := false
	l.Post(func() { l.Stop() })
	l.Post(func() { ran = true })
	<-l.Done()

	if ran {
		t.Errorf("queued task after stop has been executed")
	}
}

func TestLooperPanic(t *testing.T) {
	var recovered error
	l := NewLooper(func(err error) { recovered = err })
	defer l.Stop()

	l.Post(func() { panic("boom") })
	ok := false
	l.Call(func() { ok = true })

	if recovered == nil {
		t.Errorf("panic was not recovered")
	}
	if !ok {
		t.Errorf("looper died after panic")
	}
}

func TestLooperPending(t *testing.T) {
	l := NewLooper(nil)
	defer l.Stop()

	block := make(chan struct{})
	l.Post(func() { <-block })
	l.Post(func() {})
	l.Post(func() {})
	// the first one may be running already
	if n := l.Pending(); n < 2 {
		t.Errorf("pending %v, want at least 2", n)
	}
	close(block)
	l.Call(func() {})
	if n := l.Pending(); n != 0 {
		t.Errorf("pending %v, want 0", n)
	}
}
