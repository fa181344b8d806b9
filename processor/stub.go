// Package processor provides the stub cores that replay a workload against
// their private caches.
package processor

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/snoopsim/mem/coherence"
	"github.com/sarchlab/snoopsim/mem/snoopcache"
	"github.com/sarchlab/snoopsim/sim"
	"github.com/sarchlab/snoopsim/workload"
)

// Termination decides what happens when a core runs out of operations.
type Termination int

// The termination policies.
const (
	// StopAll ends the whole simulation after the cycle in which the first
	// core runs out of operations.
	StopAll Termination = iota

	// StopCore only halts the core. The simulation ends when every core is
	// done.
	StopCore
)

func (t Termination) String() string {
	if t == StopCore {
		return "core"
	}

	return "all"
}

// ParseTermination converts "all" or "core" into a policy.
func ParseTermination(s string) (Termination, error) {
	switch s {
	case "all", "":
		return StopAll, nil
	case "core":
		return StopCore, nil
	default:
		return StopAll, fmt.Errorf("unknown termination policy %q", s)
	}
}

// A Cache serves the accesses of one core.
type Cache interface {
	Submit(req snoopcache.Request)
	Done() *sim.Signal
	Result() snoopcache.Result
}

// A ProgressReporter is told about every operation a core executes. No-ops
// finish at once while accesses are in progress until they retire.
type ProgressReporter interface {
	IncrementFinished(amount uint64)
	IncrementInProgress(amount uint64)
	MoveInProgressToFinished(amount uint64)
}

// A Stopper can end the simulation.
type Stopper interface {
	RequestStop()
}

// Stub is a processor that does nothing but memory accesses. It runs as a
// clock process: each operation is fetched, issued to the cache and waited
// for, and the next fetch happens one cycle after completion.
type Stub struct {
	name        string
	id          int
	source      workload.Source
	cache       Cache
	stopper     Stopper
	termination Termination
	rng         *rand.Rand
	log         logrus.FieldLogger
	progress    ProgressReporter

	next func(now sim.Cycle) (sim.Wait, error)

	issued   uint64
	noOps    uint64
	finished bool
	finishAt sim.Cycle
}

// Name returns the name of the stub.
func (s *Stub) Name() string {
	return s.name
}

// ID returns the core index.
func (s *Stub) ID() int {
	return s.id
}

// Finished tells if the stub is out of operations.
func (s *Stub) Finished() bool {
	return s.finished
}

// FinishedAt returns the cycle the stub finished in.
func (s *Stub) FinishedAt() sim.Cycle {
	return s.finishAt
}

// NumIssued returns the number of memory accesses completed.
func (s *Stub) NumIssued() uint64 {
	return s.issued
}

// NumNoOps returns the number of idle cycles executed.
func (s *Stub) NumNoOps() uint64 {
	return s.noOps
}

// Resume implements sim.Process.
func (s *Stub) Resume(now sim.Cycle) (sim.Wait, error) {
	return s.next(now)
}

func (s *Stub) fetch(now sim.Cycle) (sim.Wait, error) {
	if s.source.Exhausted(s.id) {
		return s.finish(now)
	}

	op, err := s.source.Next(s.id)
	if err != nil {
		s.log.WithError(err).Error("cannot read the next operation")
		return s.finish(now)
	}

	switch op.Kind {
	case workload.NoOp:
		s.noOps++
		if s.progress != nil {
			s.progress.IncrementFinished(1)
		}

		return sim.WaitCycles(1), nil
	case workload.Read:
		return s.issue(snoopcache.Request{
			Op:      coherence.Load,
			Address: op.Address,
		})
	case workload.Write:
		return s.issue(snoopcache.Request{
			Op:      coherence.Store,
			Address: op.Address,
			Data:    byte(s.rng.Intn(255)),
		})
	default:
		return sim.Halt(), fmt.Errorf("core %d, operation %s: %w",
			s.id, op, workload.ErrUnsupportedOperationKind)
	}
}

func (s *Stub) issue(req snoopcache.Request) (sim.Wait, error) {
	s.cache.Submit(req)
	s.next = s.retire

	if s.progress != nil {
		s.progress.IncrementInProgress(1)
	}

	return sim.WaitOn(s.cache.Done()), nil
}

func (s *Stub) retire(now sim.Cycle) (sim.Wait, error) {
	s.issued++

	if s.progress != nil {
		s.progress.MoveInProgressToFinished(1)
	}

	rsp := s.cache.Result()
	s.log.WithFields(logrus.Fields{
		"cycle": uint64(now),
		"op":    rsp.Request.Op.String(),
		"addr":  rsp.Request.Address,
		"hit":   rsp.Hit,
	}).Trace("retired")

	s.next = s.fetch

	return sim.WaitCycles(1), nil
}

func (s *Stub) finish(now sim.Cycle) (sim.Wait, error) {
	s.finished = true
	s.finishAt = now

	s.log.WithField("cycle", uint64(now)).Debug("out of operations")

	if s.termination == StopAll {
		s.stopper.RequestStop()
	}

	return sim.Halt(), nil
}

// IsUnsupported tells if err comes from an operation the stub cannot run.
func IsUnsupported(err error) bool {
	return errors.Is(err, workload.ErrUnsupportedOperationKind)
}
