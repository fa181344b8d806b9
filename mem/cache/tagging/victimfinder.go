package tagging

// A VictimFinder decides which line should be evicted and keeps the
// replacement order up to date.
type VictimFinder interface {
	FindVictim(set *Set) *Line
	Touch(set *Set, wayID int)
}

// AgeLRUVictimFinder implements LRU with a per-line age. The most recently
// used line has age 1, the least recently used the highest age, and never
// filled lines age 0.
type AgeLRUVictimFinder struct{}

// NewAgeLRUVictimFinder returns a newly constructed LRU victim finder.
func NewAgeLRUVictimFinder() *AgeLRUVictimFinder {
	return new(AgeLRUVictimFinder)
}

// FindVictim returns the first empty line of the set, or the oldest line if
// the set is full. Equal ages resolve to the lower way.
func (e *AgeLRUVictimFinder) FindVictim(set *Set) *Line {
	for i := range set.Lines {
		if set.Lines[i].Age == 0 {
			return &set.Lines[i]
		}
	}

	victim := &set.Lines[0]
	for i := range set.Lines {
		if set.Lines[i].Age > victim.Age {
			victim = &set.Lines[i]
		}
	}

	return victim
}

// Touch makes the line at wayID the most recently used one. Only the lines
// younger than its previous age grow older, so the ages of the used lines
// stay a permutation of 1..n.
func (e *AgeLRUVictimFinder) Touch(set *Set, wayID int) {
	mru := &set.Lines[wayID]
	if mru.Age == 1 {
		return
	}

	prevAge := mru.Age
	mru.Age = 1

	for i := range set.Lines {
		l := &set.Lines[i]
		if i == wayID || l.Age == 0 {
			continue
		}

		if prevAge == 0 || l.Age < prevAge {
			l.Age++
		}
	}
}
