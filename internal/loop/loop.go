// Package loop runs every mutation of the panel state on one goroutine.
// Timers never call back directly; they post onto the loop, so two timer
// callbacks can never run at the same time.
package loop

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/chess10kp/hexpanel/internal/logging"
)

var ErrStopped = errors.New("event loop stopped")

// Timer is a cancellable scheduled task.
type Timer interface {
	Stop()
}

// Scheduler schedules callbacks onto an event loop.
type Scheduler interface {
	After(d time.Duration, fn func()) Timer
	Every(d time.Duration, fn func()) Timer
}

// Loop is a serialized task queue.
type Loop struct {
	tasks   chan func()
	done    chan struct{}
	stop    sync.Once
	running atomic.Bool
	logger  *zap.Logger
}

func New(logger *zap.Logger) *Loop {
	return &Loop{
		tasks:  make(chan func(), 64),
		done:   make(chan struct{}),
		logger: logging.OrNop(logger).Named("loop"),
	}
}

// Run processes tasks until ctx is cancelled or Stop is called.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return errors.New("event loop is already running")
	}
	defer l.running.Store(false)

	l.logger.Debug("event loop started")
	for {
		select {
		case <-ctx.Done():
			l.Stop()
			return ctx.Err()
		case <-l.done:
			l.logger.Debug("event loop stopped")
			return nil
		case fn := <-l.tasks:
			l.runTask(fn)
		}
	}
}

func (l *Loop) runTask(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("recovered from panic in loop task", zap.Any("panic", r))
		}
	}()
	fn()
}

// Stop ends Run. Pending tasks are dropped.
func (l *Loop) Stop() {
	l.stop.Do(func() { close(l.done) })
}

// Post queues fn. It returns false if the loop has stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	case l.tasks <- fn:
		return true
	}
}

// Call runs fn on the loop and waits for it to finish.
func (l *Loop) Call(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		fn()
	}) {
		return ErrStopped
	}

	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// After runs fn on the loop once, d from now.
func (l *Loop) After(d time.Duration, fn func()) Timer {
	return afterTimer{time.AfterFunc(d, func() { l.Post(fn) })}
}

type afterTimer struct{ t *time.Timer }

func (a afterTimer) Stop() { a.t.Stop() }

// Every runs fn on the loop every d. A tick is skipped while the previous
// tick's callback is still queued.
func (l *Loop) Every(d time.Duration, fn func()) Timer {
	t := &ticker{ticker: time.NewTicker(d), quit: make(chan struct{})}
	go func() {
		for {
			select {
			case <-t.quit:
				return
			case <-l.done:
				return
			case <-t.ticker.C:
				if !t.pending.CompareAndSwap(false, true) {
					continue
				}
				if !l.Post(func() {
					t.pending.Store(false)
					fn()
				}) {
					return
				}
			}
		}
	}()
	return t
}

type ticker struct {
	ticker  *time.Ticker
	quit    chan struct{}
	once    sync.Once
	pending atomic.Bool
}

func (t *ticker) Stop() {
	t.once.Do(func() {
		t.ticker.Stop()
		close(t.quit)
	})
}
