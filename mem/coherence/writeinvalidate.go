package coherence

import (
	"fmt"

	"github.com/sarchlab/snoopsim/mem/bus"
)

// WriteInvalidate is a write-through protocol with lazy invalidation. A peer
// write turns a line Invalid but leaves its tag, so a later access finds a
// stale line rather than a miss.
type WriteInvalidate struct{}

// Name returns "write-invalidate".
func (WriteInvalidate) Name() string {
	return NameWriteInvalidate
}

// Plan serves valid lines locally for reads. Writes always go through the
// bus: an Upgrade for a valid line, a ReadExclusive with refill otherwise.
// Reading a stale line counts as a hit but refills through the bus first.
func (WriteInvalidate) Plan(op Op, line LineView) Plan {
	valid := line.Present && line.State == Valid
	stale := line.Present && line.State == Invalid

	switch {
	case op == Load && valid:
		return Plan{Hit: true, Latency: HitLatency, Next: Valid}
	case op == Load && stale:
		return Plan{
			Hit:     true,
			UseBus:  true,
			Kind:    bus.Read,
			Refill:  true,
			Latency: MissLatency,
		}
	case op == Load:
		return Plan{
			UseBus:  true,
			Kind:    bus.Read,
			Refill:  true,
			Latency: MissLatency,
		}
	case valid:
		return Plan{
			Hit:     true,
			UseBus:  true,
			Kind:    bus.Upgrade,
			Latency: MissLatency,
			Next:    Valid,
		}
	case stale:
		return Plan{
			Hit:     true,
			UseBus:  true,
			Kind:    bus.ReadExclusive,
			Refill:  true,
			Latency: MissLatency,
		}
	default:
		return Plan{
			UseBus:  true,
			Kind:    bus.ReadExclusive,
			Refill:  true,
			Latency: MissLatency,
		}
	}
}

// FillState is always Valid.
func (WriteInvalidate) FillState(Op, bus.Response) State {
	return Valid
}

// Snoop invalidates the line on a peer write and counts probe hits.
func (WriteInvalidate) Snoop(line LineView, kind bus.Kind) Reaction {
	if !line.Present {
		return Reaction{Next: line.State}
	}

	switch kind {
	case bus.Read:
		return Reaction{Next: line.State, Probe: line.State == Valid}
	case bus.Upgrade, bus.ReadExclusive:
		return Reaction{Next: Invalid, Probe: true}
	default:
		return Reaction{Next: line.State}
	}
}

// Invariant only allows Valid and Invalid copies.
func (WriteInvalidate) Invariant(states []State) error {
	for i, s := range states {
		if s != Valid && s != Invalid {
			return fmt.Errorf("cache %d holds state %s", i, s)
		}
	}

	return nil
}
