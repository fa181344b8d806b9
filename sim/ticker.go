package sim

// TickEvent asks a TickingComponent to run one cycle.
type TickEvent struct {
	EventBase
}

// MakeTickEvent creates a TickEvent.
func MakeTickEvent(handler Handler, time VTimeInSec) TickEvent {
	return TickEvent{EventBase: MakeEventBase(time, handler)}
}

// A Ticker advances its state by one cycle and tells if anything happened.
// An error aborts the simulation.
type Ticker interface {
	Tick() (madeProgress bool, err error)
}

// A TickingComponent turns tick events into calls to its Ticker. It keeps at
// most one tick in the engine and goes to sleep when a tick makes no
// progress. TickNow wakes it up.
type TickingComponent struct {
	*ComponentBase

	Engine Engine
	Freq   Freq

	ticker   Ticker
	lastTick VTimeInSec
}

// NewTickingComponent creates a TickingComponent.
func NewTickingComponent(
	name string,
	engine Engine,
	freq Freq,
	ticker Ticker,
) *TickingComponent {
	return &TickingComponent{
		ComponentBase: NewComponentBase(name),
		Engine:        engine,
		Freq:          freq,
		ticker:        ticker,
		lastTick:      -1,
	}
}

// CurrentTime returns the time of the engine.
func (tc *TickingComponent) CurrentTime() VTimeInSec {
	return tc.Engine.CurrentTime()
}

// TickNow schedules a tick on the current clock edge, or on the following
// one when the engine is between edges.
func (tc *TickingComponent) TickNow() {
	tc.tickAt(tc.Freq.ThisTick(tc.CurrentTime()))
}

// TickLater schedules a tick on the next clock edge.
func (tc *TickingComponent) TickLater() {
	tc.tickAt(tc.Freq.NextTick(tc.CurrentTime()))
}

func (tc *TickingComponent) tickAt(t VTimeInSec) {
	tc.Lock()
	defer tc.Unlock()

	if tc.lastTick >= t {
		return
	}

	tc.lastTick = t
	tc.Engine.Schedule(MakeTickEvent(tc, t))
}

// Handle runs the ticker and schedules the next tick if it made progress.
func (tc *TickingComponent) Handle(_ Event) error {
	progress, err := tc.ticker.Tick()
	if err != nil {
		return err
	}

	if progress {
		tc.TickLater()
	}

	return nil
}
