package sched

import (
	"sync"
	"time"
)

// Manual is a virtual-clock Scheduler for tests. Time only moves when
// Advance is called; timers fire in deadline order, ties broken by the
// order they were scheduled.
type Manual struct {
	now    time.Time
	seq    uint64
	timers []*manualTimer

	mu     sync.Mutex
	posted []func()
}

// NewManual creates a Manual clock starting at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

type manualTimer struct {
	m     *Manual
	at    time.Time
	seq   uint64
	f     func()
	state int32
}

func (t *manualTimer) Stop() bool {
	if t.state != timerPending {
		return false
	}
	t.state = timerStopped
	t.m.remove(t)
	return true
}

// Now implements Scheduler.
func (m *Manual) Now() time.Time {
	return m.now
}

// AfterFunc implements Scheduler.
func (m *Manual) AfterFunc(d time.Duration, f func()) Timer {
	if d < 0 {
		d = 0
	}
	m.seq++
	t := &manualTimer{m: m, at: m.now.Add(d), seq: m.seq, f: f}
	m.timers = append(m.timers, t)
	return t
}

// Post implements Scheduler.
func (m *Manual) Post(f func()) {
	if f == nil {
		return
	}
	m.mu.Lock()
	m.posted = append(m.posted, f)
	m.mu.Unlock()
}

// Drain runs posted tasks, including any they post, until none remain.
func (m *Manual) Drain() {
	for {
		m.mu.Lock()
		if len(m.posted) == 0 {
			m.mu.Unlock()
			return
		}
		f := m.posted[0]
		m.posted = m.posted[1:]
		m.mu.Unlock()
		f()
	}
}

// Advance moves the clock forward by d, firing every timer that comes due.
// Posted tasks are drained before the first timer and after each one.
func (m *Manual) Advance(d time.Duration) {
	target := m.now.Add(d)
	for {
		m.Drain()
		next := m.nextDue(target)
		if next == nil {
			break
		}
		m.remove(next)
		m.now = next.at
		next.state = timerRan
		next.f()
	}
	m.now = target
	m.Drain()
}

// Pending returns the number of timers that have not fired or been stopped.
func (m *Manual) Pending() int {
	return len(m.timers)
}

func (m *Manual) nextDue(limit time.Time) *manualTimer {
	var best *manualTimer
	for _, t := range m.timers {
		if t.at.After(limit) {
			continue
		}
		if best == nil || t.at.Before(best.at) || (t.at.Equal(best.at) && t.seq < best.seq) {
			best = t
		}
	}
	return best
}

func (m *Manual) remove(t *manualTimer) {
	for i, cur := range m.timers {
		if cur == t {
			m.timers = append(m.timers[:i], m.timers[i+1:]...)
			return
		}
	}
}
