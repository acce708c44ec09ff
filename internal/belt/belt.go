// Package belt animates a bag across the screening window.
package belt

import (
	"xsim/internal/loop"
)

// State is the controller's lifecycle state.
type State int

const (
	Idle State = iota
	Running
	Paused
	Exited
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Exited:
		return "exited"
	default:
		return "unknown"
	}
}

// Controller moves one view's image from off the left edge to past the right
// edge at a fixed speed per frame. It is driven from the loop goroutine.
type Controller struct {
	sched       loop.Scheduler
	speed       float64
	canvasWidth int

	state  State
	x      float64
	gen    uint64
	frame  loop.FrameID
	queued bool

	onFrame func(x float64)
	onExit  func()
}

// New creates a controller. onFrame is called after every step with the
// current displacement, including while paused so zoom and pan stay live.
func New(sched loop.Scheduler, speed float64, canvasWidth int, onFrame func(x float64)) *Controller {
	return &Controller{
		sched:       sched,
		speed:       speed,
		canvasWidth: canvasWidth,
		onFrame:     onFrame,
	}
}

// State returns the current state.
func (c *Controller) State() State { return c.state }

// Position returns the current displacement.
func (c *Controller) Position() float64 { return c.x }

// Generation returns the token of the current run.
func (c *Controller) Generation() uint64 { return c.gen }

// Start begins a run for an image of the given width. Any previous run is
// cancelled. onExit fires once when the image leaves the window.
func (c *Controller) Start(imageWidth int, onExit func()) {
	c.Stop()
	c.x = -float64(imageWidth)
	c.onExit = onExit
	c.state = Running
	c.schedule()
}

// Pause holds the belt in place. Frames keep running.
func (c *Controller) Pause() {
	if c.state == Running {
		c.state = Paused
	}
}

// Resume continues a paused run.
func (c *Controller) Resume() {
	if c.state == Paused {
		c.state = Running
	}
}

// Stop cancels the run without firing the exit callback.
func (c *Controller) Stop() {
	c.gen++
	if c.queued {
		c.sched.CancelFrame(c.frame)
		c.queued = false
	}
	c.state = Idle
	c.onExit = nil
}

// Step advances one frame. It reports whether the image exited on this step.
func (c *Controller) Step() bool {
	if c.state == Running {
		c.x += c.speed
	}
	if c.onFrame != nil && (c.state == Running || c.state == Paused) {
		c.onFrame(c.x)
	}
	if c.state == Running && c.x > float64(c.canvasWidth) {
		c.state = Exited
		exit := c.onExit
		c.onExit = nil
		c.gen++
		if exit != nil {
			exit()
		}
		if c.state == Exited {
			c.state = Idle
		}
		return true
	}
	return false
}

func (c *Controller) schedule() {
	gen := c.gen
	c.queued = true
	c.frame = c.sched.RequestFrame(func() {
		c.queued = false
		if gen != c.gen {
			return
		}
		c.Step()
		if gen == c.gen && (c.state == Running || c.state == Paused) {
			c.schedule()
		}
	})
}
