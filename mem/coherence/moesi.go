package coherence

import (
	"fmt"

	"github.com/sarchlab/snoopsim/mem/bus"
)

// MOESI is the five-state invalidation protocol with an Owned state that lets
// a dirty line be shared without writing it back.
type MOESI struct{}

// Name returns "moesi".
func (MOESI) Name() string {
	return NameMOESI
}

// Plan serves reads of any valid line locally. Writes to Modified and
// Exclusive lines stay local, writes to Owned and Shared lines upgrade, and
// everything else is a miss.
func (MOESI) Plan(op Op, line LineView) Plan {
	valid := line.Present && line.State.IsValid()

	if op == Load {
		if valid {
			return Plan{Hit: true, Latency: HitLatency, Next: line.State}
		}

		return Plan{
			UseBus:  true,
			Kind:    bus.Read,
			Refill:  true,
			Latency: MissLatency,
		}
	}

	if !valid {
		return Plan{
			UseBus:  true,
			Kind:    bus.ReadExclusive,
			Refill:  true,
			Latency: MissLatency,
		}
	}

	p := Plan{Hit: true, Latency: HitLatency, Next: Modified}

	if line.State == Owned || line.State == Shared {
		p.UseBus = true
		p.Kind = bus.Upgrade
	}

	return p
}

// FillState is Modified for writes. A read fill is Shared if a peer supplied
// the line or kept a copy, and Exclusive otherwise.
func (MOESI) FillState(op Op, rsp bus.Response) State {
	if op == Store {
		return Modified
	}

	if rsp.Flush != nil || rsp.Shared {
		return Shared
	}

	return Exclusive
}

// Snoop applies the peer transaction to the line.
func (MOESI) Snoop(line LineView, kind bus.Kind) Reaction {
	if !line.Present || !line.State.IsValid() {
		return Reaction{Next: line.State}
	}

	switch kind {
	case bus.Read:
		if line.State.CanSupply() {
			return Reaction{Next: Owned, Flush: true, Probe: true}
		}

		return Reaction{Next: line.State, AssertShared: true, Probe: true}
	case bus.ReadExclusive:
		return Reaction{
			Next:  Invalid,
			Flush: line.State.CanSupply(),
			Probe: true,
		}
	case bus.Upgrade:
		if line.State == Shared || line.State == Owned {
			return Reaction{Next: Invalid, Probe: true}
		}

		return Reaction{Next: line.State}
	default:
		return Reaction{Next: line.State}
	}
}

// Invariant checks that a Modified or Exclusive copy is the only valid one
// and that an Owned copy is only accompanied by Shared copies.
func (MOESI) Invariant(states []State) error {
	valid, exclusive, owned := 0, 0, 0

	for _, s := range states {
		switch s {
		case Modified, Exclusive:
			exclusive++
		case Owned:
			owned++
		}

		if s.IsValid() {
			valid++
		}
	}

	switch {
	case exclusive > 1:
		return fmt.Errorf("%d caches hold the line modified or exclusive",
			exclusive)
	case exclusive == 1 && valid > 1:
		return fmt.Errorf("a modified or exclusive line has %d other copies",
			valid-1)
	case owned > 1:
		return fmt.Errorf("%d caches own the line", owned)
	}

	for i, s := range states {
		if s == Valid {
			return fmt.Errorf("cache %d holds state %s", i, s)
		}
	}

	return nil
}
