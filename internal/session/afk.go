package session

import (
	"time"

	"xsim/internal/loop"
)

// afkMonitor counts idle windows. Activity restarts the window unless a
// warning is waiting to be acknowledged.
type afkMonitor struct {
	sched      loop.Scheduler
	window     time.Duration
	maxStrikes int

	strikes int
	warning bool
	cancel  func()
	stopped bool

	onExpire func(strike int)
}

func newAFKMonitor(sched loop.Scheduler, window time.Duration, maxStrikes int, onExpire func(int)) *afkMonitor {
	return &afkMonitor{sched: sched, window: window, maxStrikes: maxStrikes, onExpire: onExpire}
}

func (a *afkMonitor) activity() {
	if a.stopped || a.warning {
		return
	}
	a.arm()
}

func (a *afkMonitor) arm() {
	if a.cancel != nil {
		a.cancel()
	}
	a.cancel = a.sched.AfterFunc(a.window, a.expire)
}

func (a *afkMonitor) expire() {
	if a.stopped || a.warning {
		return
	}
	a.cancel = nil
	a.strikes++
	a.warning = true
	a.onExpire(a.strikes)
}

// acknowledge clears a pending warning and restarts the window.
func (a *afkMonitor) acknowledge() bool {
	if a.stopped || !a.warning {
		return false
	}
	a.warning = false
	a.arm()
	return true
}

func (a *afkMonitor) exhausted() bool {
	return a.strikes >= a.maxStrikes
}

func (a *afkMonitor) stop() {
	a.stopped = true
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
}
