// Package coherence describes the snooping coherence protocols as pure
// transition tables. The cache controller asks a Protocol what to do with a
// processor access and how to react to a bus transaction.
package coherence

// State is the coherence state of a cache line.
type State int

// The line states. Each protocol uses a subset.
const (
	Invalid State = iota
	Valid
	Exclusive
	Modified
	Owned
	Shared
)

var stateNames = [...]string{
	Invalid:   "I",
	Valid:     "V",
	Exclusive: "E",
	Modified:  "M",
	Owned:     "O",
	Shared:    "S",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "?"
	}

	return stateNames[s]
}

// IsValid tells if a line in this state holds usable data.
func (s State) IsValid() bool {
	return s != Invalid
}

// IsDirty tells if the line holds data newer than memory.
func (s State) IsDirty() bool {
	return s == Modified || s == Owned
}

// CanSupply tells if a line in this state answers a peer read with a flush.
func (s State) CanSupply() bool {
	return s == Modified || s == Exclusive || s == Owned
}
