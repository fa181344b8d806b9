package snoopcache

import (
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/snoopsim/mem"
	"github.com/sarchlab/snoopsim/mem/bus"
	"github.com/sarchlab/snoopsim/mem/cache/tagging"
	"github.com/sarchlab/snoopsim/mem/coherence"
	"github.com/sarchlab/snoopsim/sim"
	"github.com/sarchlab/snoopsim/stats"
)

// Builder can build cache controllers.
type Builder struct {
	clock    *sim.Clock
	bus      *bus.Arbiter
	protocol coherence.Protocol
	stats    stats.Sink
	logger   logrus.FieldLogger

	cacheByteSize    uint64
	lineSize         uint64
	wayAssociativity int
	addressWidth     int
	hitLatency       uint64
	missLatency      uint64
	seed             int64
}

// MakeBuilder creates a builder with a 32 KiB, 8-way cache of 32-byte lines
// running MOESI.
func MakeBuilder() Builder {
	return Builder{
		protocol:         coherence.MOESI{},
		cacheByteSize:    32 * mem.KB,
		lineSize:         32,
		wayAssociativity: 8,
		addressWidth:     32,
		hitLatency:       1,
		missLatency:      100,
		seed:             1,
	}
}

// WithClock sets the clock that runs the controller processes.
func (b Builder) WithClock(clock *sim.Clock) Builder {
	b.clock = clock
	return b
}

// WithBus sets the bus the controller snoops.
func (b Builder) WithBus(arbiter *bus.Arbiter) Builder {
	b.bus = arbiter
	return b
}

// WithProtocol sets the coherence protocol.
func (b Builder) WithProtocol(p coherence.Protocol) Builder {
	b.protocol = p
	return b
}

// WithStats sets where the access outcomes are counted.
func (b Builder) WithStats(s stats.Sink) Builder {
	b.stats = s
	return b
}

// WithLogger sets the logger.
func (b Builder) WithLogger(l logrus.FieldLogger) Builder {
	b.logger = l
	return b
}

// WithByteSize sets the capacity of the cache.
func (b Builder) WithByteSize(size uint64) Builder {
	b.cacheByteSize = size
	return b
}

// WithLineSize sets the line size in bytes.
func (b Builder) WithLineSize(size uint64) Builder {
	b.lineSize = size
	return b
}

// WithWayAssociativity sets the number of ways per set.
func (b Builder) WithWayAssociativity(ways int) Builder {
	b.wayAssociativity = ways
	return b
}

// WithAddressWidth sets the address width in bits.
func (b Builder) WithAddressWidth(width int) Builder {
	b.addressWidth = width
	return b
}

// WithHitLatency sets the cycles a hit takes after the bus work.
func (b Builder) WithHitLatency(cycles uint64) Builder {
	b.hitLatency = cycles
	return b
}

// WithMissLatency sets the cycles a memory access takes.
func (b Builder) WithMissLatency(cycles uint64) Builder {
	b.missLatency = cycles
	return b
}

// WithSeed sets the seed of the synthetic line data.
func (b Builder) WithSeed(seed int64) Builder {
	b.seed = seed
	return b
}

// Build creates the controller of core id, attaches it to the bus and spawns
// its processes on the clock.
func (b Builder) Build(name string, id int) *Comp {
	b.mustHaveWiring()

	layout := mem.MustNewAddressLayout(
		b.cacheByteSize, b.lineSize, b.wayAssociativity, b.addressWidth)

	c := &Comp{
		ComponentBase: sim.NewComponentBase(name),
		id:            id,
		clock:         b.clock,
		bus:           b.bus,
		protocol:      b.protocol,
		layout:        layout,
		stats:         b.stats,
		rng:           rand.New(rand.NewSource(b.seed + int64(id))),
		hitLatency:    b.hitLatency,
		missLatency:   b.missLatency,
		log:           b.createLogger(name, id),
	}

	c.array = tagging.NewArray(
		layout.NumSets(),
		b.wayAssociativity,
		layout.LineSize(),
		tagging.NewAgeLRUVictimFinder(),
	)

	c.reqArrived = b.clock.NewSignal(name + ".ReqArrived")
	c.done = b.clock.NewSignal(name + ".Done")
	c.busActivity = b.clock.NewSignal(name + ".BusActivity")

	b.bus.Attach(c)
	b.clock.Spawn(name+".RequestPath", newRequestPath(c))
	b.clock.Spawn(name+".SnoopPath", &snoopPath{c: c})

	return c
}

func (b Builder) mustHaveWiring() {
	if b.clock == nil {
		panic("cache controller requires a clock")
	}

	if b.bus == nil {
		panic("cache controller requires a bus")
	}

	if b.protocol == nil {
		panic("cache controller requires a coherence protocol")
	}
}

func (b Builder) createLogger(name string, id int) logrus.FieldLogger {
	logger := b.logger
	if logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		logger = l
	}

	return logger.WithFields(logrus.Fields{
		"component": name,
		"core":      id,
	})
}
