package session

import (
	"time"

	"xsim/internal/filter"
	"xsim/internal/model"
	"xsim/pkg/geometry"
)

// EventType identifies engine events.
type EventType int

const (
	EventCategories EventType = iota
	EventOperator
	EventPresented
	EventFrame
	EventClick
	EventSelection
	EventGraded
	EventFilterChanged
	EventPauseToggled
	EventTick
	EventAFKWarning
	EventHUD
	EventNotice
	EventError
	EventFinished
)

// Listener receives event data. Listeners run on the loop goroutine.
type Listener func(data any)

// Category is a selectable answer with its display label.
type Category struct {
	ID    int
	Label string
}

// Presented is sent when a bag is on the belt.
type Presented struct {
	Record model.BaggageRecord
	Index  int
}

// Frame is sent after a view is redrawn.
type Frame struct {
	View model.View
}

// Click is sent when a paused click is registered.
type Click struct {
	View   model.View
	Point  geometry.Point2D
	Inside bool
}

// Graded is sent after a bag is graded.
type Graded struct {
	Record   model.BaggageRecord
	Selected int
	Correct  bool
	Missed   bool
	Expected string
}

// FilterChanged is sent when the active filter changes.
type FilterChanged struct {
	Kind filter.Kind
}

// PauseToggled is sent when the belts pause or resume.
type PauseToggled struct {
	Paused bool
}

// Tick is sent every second while the clock runs.
type Tick struct {
	Remaining time.Duration
}

// AFKWarning is sent when the operator has been idle for the whole window.
type AFKWarning struct {
	Strike int
	Max    int
}

// Notice is a transient message for the operator.
type Notice struct {
	Message string
}

// ErrorEvent reports a non-fatal failure.
type ErrorEvent struct {
	Op  string
	Err error
}

// On registers a listener for an event type.
func (e *Engine) On(event EventType, listener Listener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners[event] = append(e.listeners[event], listener)
}

// emit triggers all listeners for the specified event type.
func (e *Engine) emit(event EventType, data any) {
	e.mu.RLock()
	listeners := e.listeners[event]
	e.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}
