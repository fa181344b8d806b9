package sim

import (
	"fmt"
	"log"
	"sort"
)

// Cycle counts clock edges since the start of the simulation.
type Cycle uint64

type waitKind int

const (
	waitCycles waitKind = iota
	waitSignal
	waitHalt
)

// Wait describes what a suspended Process waits for before it resumes.
type Wait struct {
	kind   waitKind
	cycles uint64
	signal *Signal
}

// WaitCycles resumes the process n clock edges later. WaitCycles(1) resumes
// at the next edge.
func WaitCycles(n uint64) Wait {
	if n == 0 {
		log.Panic("a process must wait at least one cycle")
	}

	return Wait{kind: waitCycles, cycles: n}
}

// WaitOn resumes the process when the signal is notified.
func WaitOn(s *Signal) Wait {
	if s == nil {
		log.Panic("waiting on a nil signal")
	}

	return Wait{kind: waitSignal, signal: s}
}

// Halt ends the process. It is never resumed again.
func Halt() Wait {
	return Wait{kind: waitHalt}
}

// A Process is a cooperative task driven by a Clock. Resume runs the process
// until its next suspension point and reports what it waits for.
type Process interface {
	Resume(now Cycle) (Wait, error)
}

// ProcessFunc adapts a function to the Process interface.
type ProcessFunc func(now Cycle) (Wait, error)

// Resume calls f.
func (f ProcessFunc) Resume(now Cycle) (Wait, error) {
	return f(now)
}

type processState int

const (
	processTimed processState = iota
	processBlocked
	processReady
	processHalted
)

type processEntry struct {
	order  int
	name   string
	proc   Process
	state  processState
	wakeAt Cycle
}

// A Signal is an event a process can wait on. Notifying a signal makes its
// waiters runnable in the same cycle.
type Signal struct {
	name    string
	clock   *Clock
	waiters []*processEntry
}

// Name returns the name of the signal.
func (s *Signal) Name() string {
	return s.name
}

// NumWaiters returns the number of processes blocked on the signal.
func (s *Signal) NumWaiters() int {
	return len(s.waiters)
}

// Notify wakes up all the processes currently waiting on the signal. They run
// later in the same cycle, in the order they were spawned.
func (s *Signal) Notify() {
	if len(s.waiters) == 0 {
		return
	}

	woken := s.waiters
	s.waiters = nil

	sort.SliceStable(woken, func(i, j int) bool {
		return woken[i].order < woken[j].order
	})

	for _, p := range woken {
		if p.state != processBlocked {
			continue
		}

		p.state = processReady
		s.clock.ready = append(s.clock.ready, p)
	}

	if !s.clock.inTick {
		s.clock.TickNow()
	}
}

// Clock is the global time base. Every cycle it resumes the processes whose
// timers expire and then keeps running processes woken by signals until none
// is runnable.
type Clock struct {
	*TickingComponent

	now           Cycle
	started       bool
	inTick        bool
	stopRequested bool

	processes []*processEntry
	ready     []*processEntry
}

// NewClock creates a clock that ticks at the given frequency.
func NewClock(name string, engine Engine, freq Freq) *Clock {
	c := new(Clock)
	c.TickingComponent = NewTickingComponent(name, engine, freq, c)

	return c
}

// Now returns the current cycle.
func (c *Clock) Now() Cycle {
	return c.now
}

// NewSignal creates a signal bound to this clock.
func (c *Clock) NewSignal(name string) *Signal {
	return &Signal{name: name, clock: c}
}

// Spawn registers a process. It first runs in the first cycle that starts
// after spawning.
func (c *Clock) Spawn(name string, p Process) {
	entry := &processEntry{
		order:  len(c.processes),
		name:   name,
		proc:   p,
		state:  processTimed,
		wakeAt: c.now,
	}

	if c.started {
		entry.wakeAt = c.now + 1
	}

	c.processes = append(c.processes, entry)
}

// Start schedules the first tick at the current engine time.
func (c *Clock) Start() {
	c.TickNow()
}

// RequestStop makes the clock halt every process once the current cycle is
// over.
func (c *Clock) RequestStop() {
	c.stopRequested = true
}

// Quiescent tells if no process is runnable and no timer is pending.
func (c *Clock) Quiescent() bool {
	if len(c.ready) > 0 {
		return false
	}

	for _, p := range c.processes {
		if p.state == processTimed {
			return false
		}
	}

	return true
}

// NumAlive returns the number of processes that have not halted.
func (c *Clock) NumAlive() int {
	n := 0

	for _, p := range c.processes {
		if p.state != processHalted {
			n++
		}
	}

	return n
}

// Tick runs one cycle of the process kernel.
func (c *Clock) Tick() (bool, error) {
	c.started = true
	c.inTick = true
	defer func() { c.inTick = false }()

	c.now = Cycle(c.Freq.Cycle(c.CurrentTime()))

	if c.stopRequested {
		c.haltAll()
		return false, nil
	}

	c.wakeTimedProcesses()

	err := c.runReadyProcesses()
	if err != nil {
		c.haltAll()
		return false, err
	}

	if c.stopRequested {
		c.haltAll()
		return false, nil
	}

	return !c.Quiescent(), nil
}

func (c *Clock) wakeTimedProcesses() {
	for _, p := range c.processes {
		if p.state == processTimed && p.wakeAt <= c.now {
			p.state = processReady
			c.ready = append(c.ready, p)
		}
	}
}

func (c *Clock) runReadyProcesses() error {
	for len(c.ready) > 0 {
		p := c.ready[0]
		c.ready = c.ready[1:]

		if p.state != processReady {
			continue
		}

		w, err := p.proc.Resume(c.now)
		if err != nil {
			p.state = processHalted
			return fmt.Errorf("process %s at cycle %d: %w", p.name, c.now, err)
		}

		c.suspend(p, w)
	}

	return nil
}

func (c *Clock) suspend(p *processEntry, w Wait) {
	switch w.kind {
	case waitCycles:
		p.state = processTimed
		p.wakeAt = c.now + Cycle(w.cycles)
	case waitSignal:
		p.state = processBlocked
		w.signal.waiters = append(w.signal.waiters, p)
	case waitHalt:
		p.state = processHalted
	}
}

func (c *Clock) haltAll() {
	for _, p := range c.processes {
		p.state = processHalted
	}

	c.ready = nil
}
