package sim

import "sync"

// VTimeInSec is a point of simulated time, in seconds.
type VTimeInSec float64

// An Event happens at a point of time and is handled by exactly one Handler.
type Event interface {
	Time() VTimeInSec
	Handler() Handler
}

// A Handler reacts to its events. An error returned by Handle aborts the run.
type Handler interface {
	Handle(e Event) error
}

// EventBase holds the time and the handler of an event.
type EventBase struct {
	time    VTimeInSec
	handler Handler
}

// MakeEventBase creates an EventBase.
func MakeEventBase(t VTimeInSec, handler Handler) EventBase {
	return EventBase{time: t, handler: handler}
}

// Time returns when the event happens.
func (e EventBase) Time() VTimeInSec {
	return e.time
}

// Handler returns the handler of the event.
func (e EventBase) Handler() Handler {
	return e.handler
}

// A Named object is an object that has a name.
type Named interface {
	Name() string
}

// A Component is a named event handler that accepts hooks.
type Component interface {
	Named
	Handler
	Hookable
}

// ComponentBase gives a component its name and its hooks.
type ComponentBase struct {
	HookableBase
	sync.Mutex
	name string
}

// NewComponentBase creates a ComponentBase.
func NewComponentBase(name string) *ComponentBase {
	return &ComponentBase{name: name}
}

// Name returns the name of the component.
func (c *ComponentBase) Name() string {
	return c.name
}

// A SimulationEndHandler is called once the simulation is over.
type SimulationEndHandler interface {
	Handle(now VTimeInSec)
}

// An Engine delivers the scheduled events to their handlers in time order.
type Engine interface {
	Hookable

	// CurrentTime returns the time of the event being handled.
	CurrentTime() VTimeInSec

	// Schedule queues an event. The event must not be in the past.
	Schedule(e Event)

	// Run handles events until none is left or a handler fails. The first
	// handler error is returned.
	Run() error

	// Pause holds the engine before its next event.
	Pause()

	// Continue releases a paused engine.
	Continue()

	// RegisterSimulationEndHandler registers a handler for Finished.
	RegisterSimulationEndHandler(handler SimulationEndHandler)

	// Finished calls every registered SimulationEndHandler.
	Finished()
}
