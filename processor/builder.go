package processor

import (
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/snoopsim/workload"
)

// Builder can build processor stubs.
type Builder struct {
	source      workload.Source
	stopper     Stopper
	termination Termination
	seed        int64
	logger      logrus.FieldLogger
	progress    ProgressReporter
}

// MakeBuilder creates a builder with the StopAll policy.
func MakeBuilder() Builder {
	return Builder{
		termination: StopAll,
		seed:        1,
	}
}

// WithSource sets where the operations come from.
func (b Builder) WithSource(s workload.Source) Builder {
	b.source = s
	return b
}

// WithStopper sets what the stubs stop under the StopAll policy.
func (b Builder) WithStopper(s Stopper) Builder {
	b.stopper = s
	return b
}

// WithTermination sets the termination policy.
func (b Builder) WithTermination(t Termination) Builder {
	b.termination = t
	return b
}

// WithSeed sets the seed of the written values.
func (b Builder) WithSeed(seed int64) Builder {
	b.seed = seed
	return b
}

// WithProgress sets where the stub reports its executed operations.
func (b Builder) WithProgress(p ProgressReporter) Builder {
	b.progress = p
	return b
}

// WithLogger sets the logger.
func (b Builder) WithLogger(l logrus.FieldLogger) Builder {
	b.logger = l
	return b
}

// Build creates the stub of core id in front of the given cache. The caller
// spawns it on the clock.
func (b Builder) Build(name string, id int, cache Cache) *Stub {
	if b.source == nil {
		panic("processor requires a workload source")
	}

	if b.termination == StopAll && b.stopper == nil {
		panic("processor requires a stopper to stop the simulation")
	}

	logger := b.logger
	if logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		logger = l
	}

	s := &Stub{
		name:        name,
		id:          id,
		source:      b.source,
		cache:       cache,
		stopper:     b.stopper,
		termination: b.termination,
		rng:         rand.New(rand.NewSource(b.seed + int64(id))),
		progress:    b.progress,
		log: logger.WithFields(logrus.Fields{
			"component": name,
			"core":      id,
		}),
	}
	s.next = s.fetch

	return s
}
