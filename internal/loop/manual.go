package loop

import (
	"sort"
	"sync"
	"time"
)

// Manual is a deterministic Scheduler driven by the caller. Posts may come
// from any goroutine; callbacks only run inside Drain, Frame, and Advance.
type Manual struct {
	mu     sync.Mutex
	now    time.Time
	queue  []func()
	timers []*manualTimer
	seq    int

	frames frameQueue
}

type manualTimer struct {
	due       time.Time
	seq       int
	fn        func()
	cancelled bool
}

// NewManual returns a Manual scheduler whose clock starts at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Post implements Scheduler.
func (m *Manual) Post(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, fn)
}

// RequestFrame implements Scheduler.
func (m *Manual) RequestFrame(fn func()) FrameID { return m.frames.add(fn) }

// CancelFrame implements Scheduler.
func (m *Manual) CancelFrame(id FrameID) { m.frames.cancel(id) }

// AfterFunc implements Scheduler.
func (m *Manual) AfterFunc(d time.Duration, fn func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTimer{due: m.now.Add(d), seq: m.seq, fn: fn}
	m.timers = append(m.timers, t)
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		t.cancelled = true
	}
}

// Now implements Scheduler.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Drain runs queued posts, including ones queued while draining.
func (m *Manual) Drain() {
	for {
		m.mu.Lock()
		if len(m.queue) == 0 {
			m.mu.Unlock()
			return
		}
		batch := m.queue
		m.queue = nil
		m.mu.Unlock()
		for _, fn := range batch {
			fn()
		}
	}
}

// Frame drains posts and runs one frame.
func (m *Manual) Frame() {
	m.Drain()
	for _, fn := range m.frames.take() {
		fn()
	}
	m.Drain()
}

// Frames runs n frames.
func (m *Manual) Frames(n int) {
	for i := 0; i < n; i++ {
		m.Frame()
	}
}

// PendingFrames returns the number of frame callbacks waiting to run.
func (m *Manual) PendingFrames() int { return m.frames.pending() }

// Advance moves the clock forward by d, firing due timers in order.
func (m *Manual) Advance(d time.Duration) {
	m.Drain()
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		t := m.nextDue(target)
		if t == nil {
			break
		}
		t.fn()
		m.Drain()
	}

	m.mu.Lock()
	m.now = target
	m.mu.Unlock()
}

// nextDue pops the earliest live timer due by target and moves the clock to it.
func (m *Manual) nextDue(target time.Time) *manualTimer {
	m.mu.Lock()
	defer m.mu.Unlock()

	live := m.timers[:0]
	for _, t := range m.timers {
		if !t.cancelled {
			live = append(live, t)
		}
	}
	m.timers = live
	sort.Slice(m.timers, func(i, j int) bool {
		if m.timers[i].due.Equal(m.timers[j].due) {
			return m.timers[i].seq < m.timers[j].seq
		}
		return m.timers[i].due.Before(m.timers[j].due)
	})
	if len(m.timers) == 0 || m.timers[0].due.After(target) {
		return nil
	}
	t := m.timers[0]
	m.timers = m.timers[1:]
	m.now = t.due
	return t
}

// DrainUntil drains repeatedly until cond holds or timeout passes in real
// time. It is meant for tests waiting on work posted by other goroutines.
func (m *Manual) DrainUntil(cond func() bool, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		m.Drain()
		if cond() {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(time.Millisecond)
	}
}
