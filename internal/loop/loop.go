// Package loop runs engine callbacks on a single goroutine.
//
// All session state is mutated from inside callbacks scheduled here, so the
// engine needs no locks of its own. Work done elsewhere (network, decoding)
// hands its result back with Post.
package loop

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// FrameID identifies a pending frame callback.
type FrameID uint64

// Scheduler is the cooperative scheduler the engine runs on.
type Scheduler interface {
	// Post queues fn to run on the loop goroutine. Safe from any goroutine.
	Post(fn func())
	// RequestFrame runs fn once on the next frame.
	RequestFrame(fn func()) FrameID
	// CancelFrame drops a pending frame callback.
	CancelFrame(id FrameID)
	// AfterFunc runs fn on the loop after d. The returned func cancels it.
	AfterFunc(d time.Duration, fn func()) (cancel func())
	// Now returns the scheduler's clock.
	Now() time.Time
}

// Every runs fn on s every d until the returned func is called.
func Every(s Scheduler, d time.Duration, fn func()) (cancel func()) {
	var (
		mu      sync.Mutex
		stopped bool
		current func()
	)
	var tick func()
	tick = func() {
		mu.Lock()
		if stopped {
			mu.Unlock()
			return
		}
		mu.Unlock()
		fn()
		mu.Lock()
		if !stopped {
			current = s.AfterFunc(d, tick)
		}
		mu.Unlock()
	}
	mu.Lock()
	current = s.AfterFunc(d, tick)
	mu.Unlock()
	return func() {
		mu.Lock()
		defer mu.Unlock()
		stopped = true
		if current != nil {
			current()
		}
	}
}

// frameQueue holds requested frame callbacks in request order.
type frameQueue struct {
	mu     sync.Mutex
	nextID FrameID
	ids    []FrameID
	fns    map[FrameID]func()
}

func (q *frameQueue) add(fn func()) FrameID {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.fns == nil {
		q.fns = make(map[FrameID]func())
	}
	q.nextID++
	q.ids = append(q.ids, q.nextID)
	q.fns[q.nextID] = fn
	return q.nextID
}

func (q *frameQueue) cancel(id FrameID) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.fns, id)
}

// take removes and returns the callbacks pending at this instant. Callbacks
// requested while these run wait for the next frame.
func (q *frameQueue) take() []func() {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]func(), 0, len(q.ids))
	for _, id := range q.ids {
		if fn, ok := q.fns[id]; ok {
			out = append(out, fn)
		}
	}
	q.ids = q.ids[:0]
	clear(q.fns)
	return out
}

func (q *frameQueue) pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.fns)
}

// Loop is the real-time Scheduler. Frames fire at a fixed rate.
type Loop struct {
	interval time.Duration

	mu    sync.Mutex
	queue []func()
	wake  chan struct{}

	frames frameQueue

	stopCh  chan struct{}
	done    chan struct{}
	running atomic.Bool
}

// New creates a loop that fires frames frameRate times per second.
func New(frameRate int) *Loop {
	if frameRate <= 0 {
		frameRate = 60
	}
	return &Loop{
		interval: time.Second / time.Duration(frameRate),
		wake:     make(chan struct{}, 1),
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Post implements Scheduler.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// RequestFrame implements Scheduler.
func (l *Loop) RequestFrame(fn func()) FrameID { return l.frames.add(fn) }

// CancelFrame implements Scheduler.
func (l *Loop) CancelFrame(id FrameID) { l.frames.cancel(id) }

// AfterFunc implements Scheduler.
func (l *Loop) AfterFunc(d time.Duration, fn func()) func() {
	var cancelled atomic.Bool
	t := time.AfterFunc(d, func() {
		l.Post(func() {
			if !cancelled.Load() {
				fn()
			}
		})
	})
	return func() {
		cancelled.Store(true)
		t.Stop()
	}
}

// Now implements Scheduler.
func (l *Loop) Now() time.Time { return time.Now() }

// Run processes posts and frames until ctx is done or Stop is called.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return nil
	}
	defer close(l.done)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.stopCh:
			return nil
		case <-l.wake:
			l.drain()
		case <-ticker.C:
			l.drain()
			for _, fn := range l.frames.take() {
				fn()
			}
		}
	}
}

// Start runs the loop on a new goroutine.
func (l *Loop) Start(ctx context.Context) {
	go l.Run(ctx)
}

// Stop ends Run and waits for it to return.
func (l *Loop) Stop() {
	select {
	case <-l.stopCh:
	default:
		close(l.stopCh)
	}
	if l.running.Load() {
		<-l.done
	}
}

func (l *Loop) drain() {
	for {
		l.mu.Lock()
		if len(l.queue) == 0 {
			l.mu.Unlock()
			return
		}
		batch := l.queue
		l.queue = nil
		l.mu.Unlock()
		for _, fn := range batch {
			fn()
		}
	}
}
