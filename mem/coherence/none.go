package coherence

import "github.com/sarchlab/snoopsim/mem/bus"

// None keeps no coherence. Misses still fetch through the bus so that bus
// contention is modelled, but caches ignore each other.
type None struct{}

// Name returns "none".
func (None) Name() string {
	return NameNone
}

// Plan serves any present line locally and fetches everything else.
func (None) Plan(op Op, line LineView) Plan {
	if line.Present && line.State.IsValid() {
		return Plan{Hit: true, Latency: HitLatency, Next: Valid}
	}

	return Plan{
		UseBus:  true,
		Kind:    bus.Read,
		Refill:  true,
		Latency: MissLatency,
	}
}

// FillState is always Valid.
func (None) FillState(Op, bus.Response) State {
	return Valid
}

// Snoop ignores all the traffic.
func (None) Snoop(line LineView, _ bus.Kind) Reaction {
	return Reaction{Next: line.State}
}

// Invariant accepts any combination of copies.
func (None) Invariant([]State) error {
	return nil
}
