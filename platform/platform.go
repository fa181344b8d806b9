// Package platform assembles a complete multi-core system: the engine, the
// clock, the bus, one cache controller and one processor per core.
package platform

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/snoopsim/config"
	"github.com/sarchlab/snoopsim/datarecording"
	"github.com/sarchlab/snoopsim/mem/bus"
	"github.com/sarchlab/snoopsim/mem/coherence"
	"github.com/sarchlab/snoopsim/mem/snoopcache"
	"github.com/sarchlab/snoopsim/monitoring"
	"github.com/sarchlab/snoopsim/processor"
	"github.com/sarchlab/snoopsim/sim"
	"github.com/sarchlab/snoopsim/stats"
)

// Platform is a built system, ready to run.
type Platform struct {
	Config   config.Config
	Engine   *sim.SerialEngine
	Clock    *sim.Clock
	Bus      *bus.Arbiter
	Protocol coherence.Protocol
	Caches   []*snoopcache.Comp
	Cores    []*processor.Stub
	Stats    *stats.Collector
	Monitor  *monitoring.Monitor

	recorder datarecording.DataRecorder
	auditor  *Auditor
	bars     []*monitoring.ProgressBar
}

// Run simulates until every process halts or a process fails.
func (p *Platform) Run() error {
	p.Clock.Start()

	err := p.Engine.Run()

	p.Engine.Finished()

	if err != nil {
		return err
	}

	if p.auditor != nil {
		return p.auditor.Err()
	}

	return nil
}

// Report summarizes the statistics collected so far.
func (p *Platform) Report() stats.Report {
	probes := make([]stats.ProbeCounterReader, len(p.Caches))
	for i, c := range p.Caches {
		probes[i] = c
	}

	return stats.MakeReport(p.Stats, p.Bus, probes, uint64(p.Clock.Now()))
}

// Close releases the recorder, if any.
func (p *Platform) Close() error {
	if p.recorder == nil {
		return nil
	}

	return p.recorder.Close()
}

// CheckInvariant verifies the coherence invariant for the given addresses.
func (p *Platform) CheckInvariant(addrs []uint64) error {
	return coherence.CheckInvariant(p.Protocol, p.stateReaders(), addrs)
}

func (p *Platform) stateReaders() []coherence.StateReader {
	readers := make([]coherence.StateReader, len(p.Caches))
	for i, c := range p.Caches {
		readers[i] = c
	}

	return readers
}

// ErrInvariantViolated is returned by Run when the auditor found caches in
// states the protocol forbids.
var ErrInvariantViolated = errors.New("coherence invariant violated")

// Auditor returns the invariant auditor, if enabled.
func (p *Platform) Auditor() *Auditor {
	return p.auditor
}

// endOfRun flushes the recorder and retires the progress bars once the
// engine runs out of events.
type endOfRun struct {
	p   *Platform
	log logrus.FieldLogger
}

func (h *endOfRun) Handle(now sim.VTimeInSec) {
	p := h.p

	if p.recorder != nil {
		p.recorder.Flush()
	}

	for _, bar := range p.bars {
		p.Monitor.CompleteProgressBar(bar)
	}

	h.log.WithFields(logrus.Fields{
		"time":  float64(now),
		"cycle": uint64(p.Clock.Now()),
		"alive": p.Clock.NumAlive(),
	}).Info("simulation finished")
}
