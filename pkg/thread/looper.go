// Package thread provides a single logical execution context.
package thread

import (
	"fmt"
	"sync"
)

// Looper runs posted functions one at a time, in the order of posting,
// on its own goroutine.
// Post never blocks, so a task may safely post more tasks.
type Looper struct {
	mu      sync.Mutex
	tasks   []func()
	stopped bool

	wake chan struct{}
	done chan struct{}

	onPanic func(err error)
}

// NewLooper starts a new looper.
// Task panics are recovered and passed into onPanic when it is not nil.
func NewLooper(onPanic func(err error)) *Looper {
	l := &Looper{wake: make(chan struct{}, 1), done: make(chan struct{}), onPanic: onPanic}
	go l.run()
	return l
}

// Post queues fn for execution.
// Returns false if the looper has been stopped and fn was dropped.
func (l *Looper) Post(fn func()) bool {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return false
	}
	l.tasks = append(l.tasks, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Call posts fn and waits until it has been executed.
// It must not be called from inside a task.
func (l *Looper) Call(fn func()) bool {
	ok := make(chan struct{})
	if !l.Post(func() { defer close(ok); fn() }) {
		return false
	}
	select {
	case <-ok:
		return true
	case <-l.done:
		return false
	}
}

// Stop makes the looper drop every queued and future task.
// A task that is running at the moment completes normally.
func (l *Looper) Stop() {
	l.mu.Lock()
	if !l.stopped {
		l.stopped = true
		l.tasks = nil
	}
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Pending returns the number of queued tasks.
func (l *Looper) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.tasks)
}

// Done is closed when the looper goroutine exits.
func (l *Looper) Done() <-chan struct{} { return l.done }

func (l *Looper) run() {
	defer close(l.done)
	for range l.wake {
		for {
			fn, ok := l.next()
			if !ok {
				break
			}
			l.exec(fn)
		}
		l.mu.Lock()
		stopped := l.stopped
		l.mu.Unlock()
		if stopped {
			return
		}
	}
}

func (l *Looper) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped || len(l.tasks) == 0 {
		return nil, false
	}
	fn := l.tasks[0]
	l.tasks[0] = nil
	l.tasks = l.tasks[1:]
	return fn, true
}

func (l *Looper) exec(fn func()) {
	if l.onPanic != nil {
		defer func() {
			if r := recover(); r != nil {
				l.onPanic(fmt.Errorf("task panic: %v", r))
			}
		}()
	}
	fn()
}
