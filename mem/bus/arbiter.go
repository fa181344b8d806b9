package bus

import (
	"log"

	"github.com/sarchlab/snoopsim/sim"
)

// HookPosBusTransaction marks a transaction appearing on the bus. The hook
// item is a TransactionRecord.
var HookPosBusTransaction = &sim.HookPos{Name: "BusTransaction"}

// TransactionRecord describes a granted transaction for hooks.
type TransactionRecord struct {
	Cycle     uint64
	ID        uint64
	Requester int
	Address   uint64
	Kind      string
}

// A Snooper watches every transaction on the bus.
type Snooper interface {
	Deliver(tx Transaction)
}

// A CycleTeller tells the current cycle.
type CycleTeller interface {
	Now() sim.Cycle
}

// Arbiter grants the bus to one requester at a time and broadcasts the
// transactions to the snoopers. Requesters that find the bus busy retry on
// the next cycle; there is no queue and no fairness.
type Arbiter struct {
	sim.HookableBase

	name  string
	clock CycleTeller

	snoopers []Snooper

	locked  bool
	holder  int
	current *Transaction
	rsp     Response

	nextID   uint64
	counters Counters
}

// NewArbiter creates a free bus.
func NewArbiter(name string, clock CycleTeller) *Arbiter {
	return &Arbiter{
		name:  name,
		clock: clock,
	}
}

// Name returns the name of the bus.
func (a *Arbiter) Name() string {
	return a.name
}

// Attach adds a snooper. Transactions are delivered in attachment order.
func (a *Arbiter) Attach(s Snooper) {
	a.snoopers = append(a.snoopers, s)
}

// Busy tells if the bus is held.
func (a *Arbiter) Busy() bool {
	return a.locked
}

// Holder returns the requester holding the bus.
func (a *Arbiter) Holder() (int, bool) {
	return a.holder, a.locked
}

// Counters returns a snapshot of the bus statistics.
func (a *Arbiter) Counters() Counters {
	return a.counters
}

// TryAcquire grants the bus if it is free. A failed attempt costs the
// requester one wait cycle.
func (a *Arbiter) TryAcquire(requester int) bool {
	if a.locked {
		a.counters.WaitCycles++
		return false
	}

	a.locked = true
	a.holder = requester
	a.current = nil
	a.rsp = Response{}

	return true
}

// Publish puts the holder's transaction on the bus and delivers it to every
// snooper.
func (a *Arbiter) Publish(tx Transaction) Transaction {
	a.mustBeHolder(tx.Requester, "publish")

	if a.current != nil {
		log.Panicf("bus %s: requester %d publishes twice", a.name, tx.Requester)
	}

	tx = a.broadcast(tx)
	a.current = &tx

	return tx
}

// Flush lets a snooper supply a line to the current holder. The flush is also
// a bus read and is observed by all snoopers.
func (a *Arbiter) Flush(tx Transaction) {
	if a.current == nil {
		log.Panicf("bus %s: flush without a transaction in flight", a.name)
	}

	tx.Kind = Flush
	tx = a.broadcast(tx)

	if a.rsp.Flush == nil {
		a.rsp.Flush = &tx
	}
}

// AssertShared tells the holder a peer keeps a copy of the line.
func (a *Arbiter) AssertShared() {
	if a.current == nil {
		log.Panicf("bus %s: shared signal without a transaction in flight",
			a.name)
	}

	a.rsp.Shared = true
}

// Release frees the bus and returns what the snoopers answered.
func (a *Arbiter) Release(requester int) Response {
	a.mustBeHolder(requester, "release")

	rsp := a.rsp

	a.locked = false
	a.current = nil
	a.rsp = Response{}

	return rsp
}

func (a *Arbiter) broadcast(tx Transaction) Transaction {
	a.nextID++
	tx.ID = a.nextID

	if tx.Kind.IsRead() {
		a.counters.Reads++
	} else {
		a.counters.WritesOrUpgrades++
	}

	a.InvokeHook(sim.HookCtx{
		Domain: a,
		Pos:    HookPosBusTransaction,
		Item: TransactionRecord{
			Cycle:     uint64(a.clock.Now()),
			ID:        tx.ID,
			Requester: tx.Requester,
			Address:   tx.Address,
			Kind:      tx.Kind.String(),
		},
	})

	for _, s := range a.snoopers {
		s.Deliver(tx)
	}

	return tx
}

func (a *Arbiter) mustBeHolder(requester int, action string) {
	if !a.locked || a.holder != requester {
		log.Panicf("bus %s: requester %d cannot %s without holding the bus",
			a.name, requester, action)
	}
}
