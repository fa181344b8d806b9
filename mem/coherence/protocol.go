package coherence

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sarchlab/snoopsim/mem/bus"
)

// ErrUnknownProtocol is returned when a protocol name is not recognized.
var ErrUnknownProtocol = errors.New("unknown coherence protocol")

// Op is a processor access.
type Op int

// The processor accesses.
const (
	Load Op = iota
	Store
)

func (o Op) String() string {
	if o == Store {
		return "W"
	}

	return "R"
}

// LineView is what the controller knows about the line an access targets.
type LineView struct {
	// Present is set if a filled line in the set holds the tag, whatever its
	// state.
	Present bool
	State   State
}

// Latency selects which of the configured latencies an access pays after the
// bus work is done.
type Latency int

// The latency classes.
const (
	HitLatency Latency = iota
	MissLatency
)

// A Plan tells the request path how to serve an access.
type Plan struct {
	// Hit is how the access is counted in the statistics.
	Hit bool

	// UseBus is set if a transaction of the given kind must be issued.
	UseBus bool
	Kind   bus.Kind

	// Refill is set if the line is (re)loaded from the bus or memory. The
	// state after a refill comes from FillState.
	Refill bool

	Latency Latency

	// Next is the state of the line after an access without refill.
	Next State
}

// A Reaction tells the snoop path how to react to a peer transaction.
type Reaction struct {
	Next State

	// Flush asks the snooper to supply its copy of the line.
	Flush bool

	// AssertShared tells the requester a clean copy stays here.
	AssertShared bool

	// Probe is set if the transaction hit a line of this cache.
	Probe bool
}

// A Protocol is a coherence protocol.
type Protocol interface {
	Name() string

	// Plan decides how to serve a processor access.
	Plan(op Op, line LineView) Plan

	// FillState returns the state of a line refilled for op, given the bus
	// response.
	FillState(op Op, rsp bus.Response) State

	// Snoop decides how a line reacts to a peer transaction.
	Snoop(line LineView, kind bus.Kind) Reaction

	// Invariant checks the states a single address has across all caches.
	Invariant(states []State) error
}

// Names of the protocols.
const (
	NameNone            = "none"
	NameWriteInvalidate = "write-invalidate"
	NameMOESI           = "moesi"
)

// New returns the protocol with the given name. Names are case insensitive
// and "wi" is accepted for write-invalidate.
func New(name string) (Protocol, error) {
	switch strings.ToLower(name) {
	case NameNone:
		return None{}, nil
	case NameWriteInvalidate, "wi", "writeinvalidate":
		return WriteInvalidate{}, nil
	case NameMOESI:
		return MOESI{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProtocol, name)
	}
}
