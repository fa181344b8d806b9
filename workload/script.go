package workload

import (
	"fmt"
	"io"
)

// Script is a Source backed by in-memory lists of operations.
type Script struct {
	ops  [][]Op
	next []int
}

// NewScript creates a source that plays the given lists, one per core.
func NewScript(perCore ...[]Op) *Script {
	s := &Script{
		ops:  perCore,
		next: make([]int, len(perCore)),
	}

	return s
}

// NumCores returns the number of streams.
func (s *Script) NumCores() int {
	return len(s.ops)
}

// Len returns the number of operations of a core.
func (s *Script) Len(core int) int {
	if core < 0 || core >= len(s.ops) {
		return 0
	}

	return len(s.ops[core])
}

// Next returns the next operation of the core.
func (s *Script) Next(core int) (Op, error) {
	if s.Exhausted(core) {
		return Op{}, fmt.Errorf("core %d: %w", core, io.EOF)
	}

	op := s.ops[core][s.next[core]]
	s.next[core]++

	return op, nil
}

// Exhausted tells if the core has played all its operations. Cores the
// script knows nothing about are always exhausted.
func (s *Script) Exhausted(core int) bool {
	if core < 0 || core >= len(s.ops) {
		return true
	}

	return s.next[core] >= len(s.ops[core])
}
