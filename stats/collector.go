// Package stats collects the hit, miss and bus statistics of a simulation and
// renders the final report.
package stats

import "sync"

// A Sink receives the outcome of every processor access.
type Sink interface {
	ReadHit(core int)
	ReadMiss(core int)
	WriteHit(core int)
	WriteMiss(core int)
}

// CoreCounters are the access counters of one core.
type CoreCounters struct {
	ReadHits    uint64
	ReadMisses  uint64
	WriteHits   uint64
	WriteMisses uint64
}

// Accesses returns the number of accesses of the core.
func (c CoreCounters) Accesses() uint64 {
	return c.ReadHits + c.ReadMisses + c.WriteHits + c.WriteMisses
}

// HitRate returns the fraction of accesses that hit, or 0 if there was none.
func (c CoreCounters) HitRate() float64 {
	n := c.Accesses()
	if n == 0 {
		return 0
	}

	return float64(c.ReadHits+c.WriteHits) / float64(n)
}

// Collector is a Sink that keeps per-core counters.
type Collector struct {
	lock  sync.Mutex
	cores []CoreCounters
}

// NewCollector creates a collector for the given number of cores.
func NewCollector(numCores int) *Collector {
	return &Collector{cores: make([]CoreCounters, numCores)}
}

// NumCores returns the number of cores tracked.
func (c *Collector) NumCores() int {
	return len(c.cores)
}

// ReadHit counts a read hit.
func (c *Collector) ReadHit(core int) {
	c.update(core, func(cc *CoreCounters) { cc.ReadHits++ })
}

// ReadMiss counts a read miss.
func (c *Collector) ReadMiss(core int) {
	c.update(core, func(cc *CoreCounters) { cc.ReadMisses++ })
}

// WriteHit counts a write hit.
func (c *Collector) WriteHit(core int) {
	c.update(core, func(cc *CoreCounters) { cc.WriteHits++ })
}

// WriteMiss counts a write miss.
func (c *Collector) WriteMiss(core int) {
	c.update(core, func(cc *CoreCounters) { cc.WriteMisses++ })
}

func (c *Collector) update(core int, f func(cc *CoreCounters)) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if core < 0 || core >= len(c.cores) {
		panic("core out of range")
	}

	f(&c.cores[core])
}

// Core returns a copy of the counters of a core.
func (c *Collector) Core(core int) CoreCounters {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.cores[core]
}

// Cores returns a copy of the counters of all the cores.
func (c *Collector) Cores() []CoreCounters {
	c.lock.Lock()
	defer c.lock.Unlock()

	out := make([]CoreCounters, len(c.cores))
	copy(out, c.cores)

	return out
}
