package sim

import (
	"fmt"
	"log"
	"reflect"
	"sync"
)

// A SerialEngine handles events one at a time on the goroutine that calls
// Run. Pause, Continue and CurrentTime may be called from other goroutines.
type SerialEngine struct {
	HookableBase

	mu       sync.Mutex
	resumed  *sync.Cond
	paused   bool
	now      VTimeInSec
	queue    *EventQueue
	finished []SimulationEndHandler
}

// NewSerialEngine creates a SerialEngine.
func NewSerialEngine() *SerialEngine {
	e := &SerialEngine{queue: NewEventQueue()}
	e.resumed = sync.NewCond(&e.mu)

	return e
}

// Schedule queues an event. Scheduling an event in the past panics.
func (e *SerialEngine) Schedule(evt Event) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if evt.Time() < e.now {
		log.Panicf("scheduling %s at %.10f, before now %.10f",
			reflect.TypeOf(evt), evt.Time(), e.now)
	}

	e.queue.Push(evt)
}

// Run handles events until none is left. It stops at the first handler that
// returns an error and returns that error.
func (e *SerialEngine) Run() error {
	for {
		evt, ok := e.next()
		if !ok {
			return nil
		}

		if err := e.handle(evt); err != nil {
			return err
		}
	}
}

// next blocks while the engine is paused, then pops the earliest event and
// moves the time to it.
func (e *SerialEngine) next() (Event, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for e.paused {
		e.resumed.Wait()
	}

	if e.queue.Len() == 0 {
		return nil, false
	}

	evt := e.queue.Pop()
	e.now = evt.Time()

	return evt, true
}

func (e *SerialEngine) handle(evt Event) error {
	ctx := HookCtx{Domain: e, Pos: HookPosBeforeEvent, Item: evt}
	e.InvokeHook(ctx)

	err := evt.Handler().Handle(evt)

	ctx.Pos = HookPosAfterEvent
	ctx.Detail = err
	e.InvokeHook(ctx)

	if err != nil {
		return fmt.Errorf("handling %s at %.10f: %w",
			reflect.TypeOf(evt), evt.Time(), err)
	}

	return nil
}

// Pause holds the engine once the current event is handled.
func (e *SerialEngine) Pause() {
	e.mu.Lock()
	e.paused = true
	e.mu.Unlock()
}

// Continue releases a paused engine.
func (e *SerialEngine) Continue() {
	e.mu.Lock()
	e.paused = false
	e.mu.Unlock()

	e.resumed.Broadcast()
}

// IsPaused tells if the engine is paused.
func (e *SerialEngine) IsPaused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.paused
}

// CurrentTime returns the time of the latest event taken from the queue.
func (e *SerialEngine) CurrentTime() VTimeInSec {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.now
}

// NumPending returns the number of events left in the queue.
func (e *SerialEngine) NumPending() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.queue.Len()
}

// RegisterSimulationEndHandler registers a handler to be called by Finished.
func (e *SerialEngine) RegisterSimulationEndHandler(h SimulationEndHandler) {
	e.finished = append(e.finished, h)
}

// Finished calls the registered SimulationEndHandlers in registration order.
func (e *SerialEngine) Finished() {
	now := e.CurrentTime()
	for _, h := range e.finished {
		h.Handle(now)
	}
}
