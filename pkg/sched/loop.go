package sched

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Loop runs every posted task and timer callback on the goroutine that
// calls Run, strictly in the order they were queued.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	wake   chan struct{}
	done   chan struct{}
	once   sync.Once
	logger *slog.Logger
}

// NewLoop creates a Loop. Tasks posted before Run starts are kept and run
// once it does.
func NewLoop() *Loop {
	return &Loop{
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
		logger: slog.Default().With("component", "sched"),
	}
}

// SetLogger sets the logger used to report task panics.
func (l *Loop) SetLogger(logger *slog.Logger) {
	if logger != nil {
		l.logger = logger
	}
}

// Now implements Scheduler.
func (l *Loop) Now() time.Time {
	return time.Now()
}

// Post implements Scheduler. Tasks posted after Close are discarded.
func (l *Loop) Post(f func()) {
	if f == nil {
		return
	}
	select {
	case <-l.done:
		return
	default:
	}
	l.mu.Lock()
	l.queue = append(l.queue, f)
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// AfterFunc implements Scheduler. The callback is posted to the loop when
// the delay elapses; a Stop issued before the posted task runs still
// prevents it from running.
func (l *Loop) AfterFunc(d time.Duration, f func()) Timer {
	lt := &loopTimer{}
	lt.t = time.AfterFunc(d, func() {
		l.Post(func() {
			if lt.state.CompareAndSwap(timerPending, timerRan) {
				f()
			}
		})
	})
	return lt
}

// Run executes tasks until ctx is done or Close is called.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.done:
			return nil
		case <-l.wake:
			l.drain()
		}
	}
}

// Close stops Run and discards queued tasks.
func (l *Loop) Close() {
	l.once.Do(func() {
		close(l.done)
		l.mu.Lock()
		l.queue = nil
		l.mu.Unlock()
	})
}

func (l *Loop) drain() {
	for {
		l.mu.Lock()
		batch := l.queue
		l.queue = nil
		l.mu.Unlock()
		if len(batch) == 0 {
			return
		}
		for _, f := range batch {
			select {
			case <-l.done:
				return
			default:
			}
			l.run(f)
		}
	}
}

func (l *Loop) run(f func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("task panicked", "panic", r)
		}
	}()
	f()
}

const (
	timerPending int32 = iota
	timerStopped
	timerRan
)

type loopTimer struct {
	t     *time.Timer
	state atomic.Int32
}

func (lt *loopTimer) Stop() bool {
	if !lt.state.CompareAndSwap(timerPending, timerStopped) {
		return false
	}
	lt.t.Stop()
	return true
}
