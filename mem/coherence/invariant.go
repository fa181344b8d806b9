package coherence

import "fmt"

// A StateReader tells the state a cache holds an address in. Caches that do
// not hold the address report Invalid.
type StateReader interface {
	StateOf(addr uint64) State
}

// CheckInvariant verifies the protocol invariant for every address across all
// the caches.
func CheckInvariant(p Protocol, caches []StateReader, addrs []uint64) error {
	states := make([]State, len(caches))

	for _, addr := range addrs {
		for i, c := range caches {
			states[i] = c.StateOf(addr)
		}

		if err := p.Invariant(states); err != nil {
			return fmt.Errorf("address 0x%x %v: %w", addr, states, err)
		}
	}

	return nil
}
