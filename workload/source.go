// Package workload provides the per-core streams of memory operations that
// drive the processors.
package workload

import (
	"errors"
	"fmt"
)

// ErrUnsupportedOperationKind is returned for operations the processors do
// not know how to execute.
var ErrUnsupportedOperationKind = errors.New("unsupported operation kind")

// Kind is the type of an operation.
type Kind int

// The operation kinds.
const (
	Read Kind = iota
	Write
	NoOp
	Unknown
)

func (k Kind) String() string {
	switch k {
	case Read:
		return "R"
	case Write:
		return "W"
	case NoOp:
		return "N"
	default:
		return "?"
	}
}

// An Op is one memory operation of a core.
type Op struct {
	Kind    Kind
	Address uint64
}

func (o Op) String() string {
	if o.Kind == NoOp {
		return o.Kind.String()
	}

	return fmt.Sprintf("%s 0x%x", o.Kind, o.Address)
}

// A Source yields the operations of every core.
type Source interface {
	// Next returns the next operation of the core.
	Next(core int) (Op, error)

	// Exhausted tells if the core has no operation left.
	Exhausted(core int) bool
}
