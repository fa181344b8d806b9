// Package tagging holds the storage of a cache: sets of lines with their tags,
// coherence states, ages and data.
package tagging

import (
	"github.com/sarchlab/snoopsim/mem/coherence"
)

// A Line is one way of one set.
type Line struct {
	SetID int
	WayID int
	Tag   uint64
	State coherence.State

	// Age is the LRU rank of the line in its set. 1 is the most recently
	// used. 0 marks a line that has never been filled.
	Age  int
	Data []byte
}

// Used tells if the line has ever been filled. An Invalid line can still be
// used, holding a stale tag.
func (l *Line) Used() bool {
	return l.Age > 0
}

// A Set is a list of lines where a certain piece memory can be stored at.
type Set struct {
	Lines []Line
}

// Array is the line storage of one cache, indexed by (set, way).
type Array struct {
	numSets      int
	numWays      int
	lineSize     int
	sets         []Set
	victimFinder VictimFinder
}

// NewArray creates an empty cache array.
func NewArray(
	numSets, numWays, lineSize int,
	victimFinder VictimFinder,
) *Array {
	a := &Array{
		numSets:      numSets,
		numWays:      numWays,
		lineSize:     lineSize,
		victimFinder: victimFinder,
	}

	a.Reset()

	return a
}

// NumSets returns the number of sets.
func (a *Array) NumSets() int {
	return a.numSets
}

// NumWays returns the associativity.
func (a *Array) NumWays() int {
	return a.numWays
}

// LineSize returns the number of bytes in a line.
func (a *Array) LineSize() int {
	return a.lineSize
}

// TotalSize returns the maximum number of bytes can be stored in the cache
func (a *Array) TotalSize() uint64 {
	return uint64(a.numSets) * uint64(a.numWays) * uint64(a.lineSize)
}

// Set returns the set with the given index.
func (a *Array) Set(setID int) *Set {
	return &a.sets[setID]
}

// Line returns the line at (set, way).
func (a *Array) Line(setID, wayID int) *Line {
	return &a.sets[setID].Lines[wayID]
}

// Lookup finds the used line holding tag in a set. The line may be Invalid;
// callers decide whether a stale line counts.
func (a *Array) Lookup(setID int, tag uint64) (*Line, bool) {
	set := &a.sets[setID]

	for i := range set.Lines {
		l := &set.Lines[i]
		if l.Used() && l.Tag == tag {
			return l, true
		}
	}

	return nil, false
}

// FindVictim picks the line to replace in a set.
func (a *Array) FindVictim(setID int) *Line {
	return a.victimFinder.FindVictim(&a.sets[setID])
}

// Visit marks the line as the most recently used in its set.
func (a *Array) Visit(l *Line) {
	a.victimFinder.Touch(&a.sets[l.SetID], l.WayID)
}

// Reset empties all the lines.
func (a *Array) Reset() {
	a.sets = make([]Set, a.numSets)

	for i := 0; i < a.numSets; i++ {
		a.sets[i].Lines = make([]Line, a.numWays)

		for j := 0; j < a.numWays; j++ {
			a.sets[i].Lines[j] = Line{
				SetID: i,
				WayID: j,
				State: coherence.Invalid,
				Data:  make([]byte, a.lineSize),
			}
		}
	}
}
