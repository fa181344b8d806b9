package sim

import (
	"log"
	"math"
)

// Freq is a clock frequency in Hz.
type Freq float64

// Frequency units.
const (
	Hz  Freq = 1
	KHz Freq = 1e3
	MHz Freq = 1e6
	GHz Freq = 1e9
)

// Period returns the time between two clock edges.
func (f Freq) Period() VTimeInSec {
	if f <= 0 {
		log.Panicf("invalid frequency %v", float64(f))
	}

	return VTimeInSec(1 / f)
}

// Cycle returns the number of clock edges between time 0 and t, rounded to
// the nearest edge.
func (f Freq) Cycle(t VTimeInSec) uint64 {
	return uint64(math.Round(float64(t) * float64(f)))
}

// ThisTick returns the first clock edge at or after now.
func (f Freq) ThisTick(now VTimeInSec) VTimeInSec {
	return f.edge(math.Ceil(f.cycles(now)))
}

// NextTick returns the first clock edge strictly after now.
func (f Freq) NextTick(now VTimeInSec) VTimeInSec {
	return f.edge(math.Floor(f.cycles(now)) + 1)
}

// cycles converts now into a fractional cycle count. It keeps a tenth of a
// cycle of precision so that float error cannot move a time across an edge.
func (f Freq) cycles(now VTimeInSec) float64 {
	if math.IsNaN(float64(now)) {
		log.Panic("invalid time")
	}

	return math.Round(float64(now)*float64(f)*10) / 10
}

func (f Freq) edge(count float64) VTimeInSec {
	return VTimeInSec(count / float64(f))
}
