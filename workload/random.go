package workload

import (
	"fmt"
	"io"
	"math/rand"
)

// RandomConfig describes a synthetic workload.
type RandomConfig struct {
	NumCores   int
	OpsPerCore int

	// ReadRatio and NoOpRatio are the probabilities of a read and of an idle
	// cycle. The remaining operations are writes.
	ReadRatio float64
	NoOpRatio float64

	// Footprint is the size in bytes of each address region. Region 0 is
	// shared by all the cores; core i privately uses region i+1.
	Footprint   uint64
	SharedRatio float64

	Seed int64
}

// Random is a Source of seeded random operations. Each core has its own
// generator, so the stream of a core does not depend on how the cores
// interleave.
type Random struct {
	cfg  RandomConfig
	rngs []*rand.Rand
	left []int
}

// NewRandom creates a random source.
func NewRandom(cfg RandomConfig) (*Random, error) {
	if cfg.NumCores <= 0 || cfg.OpsPerCore < 0 {
		return nil, fmt.Errorf("random workload: bad size %d x %d",
			cfg.NumCores, cfg.OpsPerCore)
	}

	if cfg.ReadRatio < 0 || cfg.NoOpRatio < 0 ||
		cfg.ReadRatio+cfg.NoOpRatio > 1 {
		return nil, fmt.Errorf("random workload: bad ratios r=%v n=%v",
			cfg.ReadRatio, cfg.NoOpRatio)
	}

	if cfg.Footprint < 4 {
		return nil, fmt.Errorf("random workload: footprint %d too small",
			cfg.Footprint)
	}

	r := &Random{
		cfg:  cfg,
		rngs: make([]*rand.Rand, cfg.NumCores),
		left: make([]int, cfg.NumCores),
	}

	for i := range r.rngs {
		r.rngs[i] = rand.New(rand.NewSource(cfg.Seed + int64(i)*7919))
		r.left[i] = cfg.OpsPerCore
	}

	return r, nil
}

// Next draws the next operation of the core.
func (r *Random) Next(core int) (Op, error) {
	if r.Exhausted(core) {
		return Op{}, fmt.Errorf("core %d: %w", core, io.EOF)
	}

	r.left[core]--
	rng := r.rngs[core]

	p := rng.Float64()

	switch {
	case p < r.cfg.NoOpRatio:
		return Op{Kind: NoOp}, nil
	case p < r.cfg.NoOpRatio+r.cfg.ReadRatio:
		return Op{Kind: Read, Address: r.address(core, rng)}, nil
	default:
		return Op{Kind: Write, Address: r.address(core, rng)}, nil
	}
}

func (r *Random) address(core int, rng *rand.Rand) uint64 {
	region := uint64(core + 1)
	if rng.Float64() < r.cfg.SharedRatio {
		region = 0
	}

	offset := uint64(rng.Int63n(int64(r.cfg.Footprint))) &^ 3

	return region*r.cfg.Footprint + offset
}

// Len returns the number of operations of each core.
func (r *Random) Len(core int) int {
	if core < 0 || core >= len(r.left) {
		return 0
	}

	return r.cfg.OpsPerCore
}

// Exhausted tells if the core has drawn all its operations.
func (r *Random) Exhausted(core int) bool {
	if core < 0 || core >= len(r.left) {
		return true
	}

	return r.left[core] <= 0
}
