package platform

import (
	"fmt"
	"sort"

	"github.com/sarchlab/snoopsim/mem"
	"github.com/sarchlab/snoopsim/mem/coherence"
	"github.com/sarchlab/snoopsim/mem/snoopcache"
	"github.com/sarchlab/snoopsim/sim"
)

// Auditor is an engine hook that checks the coherence invariant after every
// event over all the lines any cache holds. It keeps the first violation.
type Auditor struct {
	protocol coherence.Protocol
	caches   []*snoopcache.Comp
	readers  []coherence.StateReader

	numChecks uint64
	err       error
}

// NewAuditor creates an auditor for the caches.
func NewAuditor(
	protocol coherence.Protocol,
	caches []*snoopcache.Comp,
) *Auditor {
	a := &Auditor{protocol: protocol, caches: caches}

	for _, c := range caches {
		a.readers = append(a.readers, c)
	}

	return a
}

// Func checks the caches after each event.
func (a *Auditor) Func(ctx sim.HookCtx) {
	if ctx.Pos != sim.HookPosAfterEvent || a.err != nil {
		return
	}

	a.numChecks++

	err := coherence.CheckInvariant(a.protocol, a.readers, a.addresses())
	if err != nil {
		a.err = fmt.Errorf("%w after event at %.10f: %w",
			ErrInvariantViolated, ctx.Item.(sim.Event).Time(), err)
	}
}

// Err returns the first violation found.
func (a *Auditor) Err() error {
	return a.err
}

// NumChecks returns how many times the invariant was checked.
func (a *Auditor) NumChecks() uint64 {
	return a.numChecks
}

func (a *Auditor) addresses() []uint64 {
	seen := make(map[uint64]bool)

	for _, c := range a.caches {
		layout := c.Layout()
		array := c.Array()

		for s := 0; s < array.NumSets(); s++ {
			for _, l := range array.Set(s).Lines {
				if !l.Used() || !l.State.IsValid() {
					continue
				}

				seen[layout.Encode(mem.Address{
					Tag: l.Tag,
					Set: uint64(l.SetID),
				})] = true
			}
		}
	}

	addrs := make([]uint64, 0, len(seen))
	for addr := range seen {
		addrs = append(addrs, addr)
	}

	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })

	return addrs
}
