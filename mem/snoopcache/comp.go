// Package snoopcache implements a private cache controller that keeps its
// lines coherent by snooping a shared bus.
package snoopcache

import (
	"log"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/snoopsim/mem"
	"github.com/sarchlab/snoopsim/mem/bus"
	"github.com/sarchlab/snoopsim/mem/cache/tagging"
	"github.com/sarchlab/snoopsim/mem/coherence"
	"github.com/sarchlab/snoopsim/sim"
	"github.com/sarchlab/snoopsim/stats"
)

// A Request is a processor access.
type Request struct {
	Op      coherence.Op
	Address uint64

	// Data is the byte a Store writes at Address.
	Data byte
}

// A Result is the outcome of a completed Request.
type Result struct {
	Request Request
	Hit     bool

	// Data is the byte at Address after the access.
	Data byte

	Cycle sim.Cycle
}

// Comp is a cache controller. It runs two processes on the clock: the request
// path serving the processor and the snoop path reacting to the bus.
type Comp struct {
	*sim.ComponentBase

	id          int
	clock       *sim.Clock
	bus         *bus.Arbiter
	protocol    coherence.Protocol
	layout      mem.AddressLayout
	array       *tagging.Array
	stats       stats.Sink
	rng         *rand.Rand
	hitLatency  uint64
	missLatency uint64
	log         logrus.FieldLogger

	pending    *access
	reqArrived *sim.Signal
	done       *sim.Signal
	result     Result

	inbox       []bus.Transaction
	busActivity *sim.Signal

	probeReads  uint64
	probeWrites uint64
}

// ID returns the core index of the controller.
func (c *Comp) ID() int {
	return c.id
}

// Protocol returns the coherence protocol of the controller.
func (c *Comp) Protocol() coherence.Protocol {
	return c.protocol
}

// Array exposes the lines of the cache.
func (c *Comp) Array() *tagging.Array {
	return c.array
}

// Layout returns how addresses are split.
func (c *Comp) Layout() mem.AddressLayout {
	return c.layout
}

// Submit hands an access to the request path. A controller serves one access
// at a time; submitting while busy is a programming error.
func (c *Comp) Submit(req Request) {
	if c.pending != nil {
		log.Panicf("%s: access submitted while another is in flight", c.Name())
	}

	c.pending = &access{Request: req}
	c.reqArrived.Notify()
}

// Busy tells if an access is in flight.
func (c *Comp) Busy() bool {
	return c.pending != nil
}

// Done is notified each time an access completes.
func (c *Comp) Done() *sim.Signal {
	return c.done
}

// Result returns the outcome of the last completed access.
func (c *Comp) Result() Result {
	return c.result
}

// Deliver queues a bus transaction for the snoop path.
func (c *Comp) Deliver(tx bus.Transaction) {
	c.inbox = append(c.inbox, tx)
	c.busActivity.Notify()
}

// ProbeCounts returns how many peer transactions hit a line of this cache,
// split into reads and writes.
func (c *Comp) ProbeCounts() (reads, writes uint64) {
	return c.probeReads, c.probeWrites
}

// StateOf returns the state the cache holds an address in.
func (c *Comp) StateOf(addr uint64) coherence.State {
	line, ok := c.lookup(addr)
	if !ok {
		return coherence.Invalid
	}

	return line.State
}

// LineOf returns the line holding an address, if any. Invalid lines with a
// matching tag are returned as well.
func (c *Comp) LineOf(addr uint64) (*tagging.Line, bool) {
	return c.lookup(addr)
}

func (c *Comp) lookup(addr uint64) (*tagging.Line, bool) {
	a := c.layout.Decode(addr)
	return c.array.Lookup(int(a.Set), a.Tag)
}

func (c *Comp) view(addr uint64) (coherence.LineView, *tagging.Line) {
	line, ok := c.lookup(addr)
	if !ok {
		return coherence.LineView{}, nil
	}

	return coherence.LineView{Present: true, State: line.State}, line
}

func (c *Comp) randomLine(data []byte) {
	for i := range data {
		data[i] = byte(c.rng.Intn(255))
	}
}
