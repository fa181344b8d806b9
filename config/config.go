// Package config holds the parameters of a simulation run.
package config

import (
	"errors"
	"fmt"

	"github.com/sarchlab/snoopsim/mem"
	"github.com/sarchlab/snoopsim/mem/coherence"
	"github.com/sarchlab/snoopsim/processor"
	"github.com/sarchlab/snoopsim/sim"
)

// ErrInvalidConfig is wrapped by every validation error.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config describes the simulated machine, its workload and the outputs.
type Config struct {
	NumCores      int
	CacheSize     uint64
	LineSize      uint64
	Associativity int
	AddressWidth  int
	Frequency     sim.Freq
	Protocol      string
	HitLatency    uint64
	MissLatency   uint64
	Seed          int64
	Termination   string

	// TraceFile replays a trace. Without it, a random workload is used.
	TraceFile   string
	OpsPerCore  int
	ReadRatio   float64
	NoOpRatio   float64
	SharedRatio float64
	Footprint   uint64

	// RecordPath enables the SQLite trace when set.
	RecordPath  string
	LogLevel    string
	MonitorPort int
	OpenBrowser bool
}

// Default returns a 4-core MOESI machine with 32 KiB, 8-way caches of 32-byte
// lines running at 1 GHz.
func Default() Config {
	return Config{
		NumCores:      4,
		CacheSize:     32 * mem.KB,
		LineSize:      32,
		Associativity: 8,
		AddressWidth:  32,
		Frequency:     1 * sim.GHz,
		Protocol:      coherence.NameMOESI,
		HitLatency:    1,
		MissLatency:   100,
		Seed:          1,
		Termination:   "all",

		OpsPerCore:  10000,
		ReadRatio:   0.7,
		NoOpRatio:   0.1,
		SharedRatio: 0.3,
		Footprint:   64 * mem.KB,

		LogLevel: "warning",
	}
}

// Validate checks that the configuration describes a machine that can be
// built.
func (c Config) Validate() error {
	if c.NumCores <= 0 {
		return invalid("number of cores must be positive, got %d", c.NumCores)
	}

	if _, err := mem.NewAddressLayout(
		c.CacheSize, c.LineSize, c.Associativity, c.AddressWidth,
	); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if c.Frequency <= 0 {
		return invalid("frequency must be positive, got %v", c.Frequency)
	}

	if _, err := coherence.New(c.Protocol); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if c.MissLatency == 0 {
		return invalid("miss latency must be positive")
	}

	if _, err := processor.ParseTermination(c.Termination); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if c.TraceFile == "" {
		if err := c.validateRandom(); err != nil {
			return err
		}
	}

	if c.MonitorPort < 0 || c.MonitorPort > 65535 {
		return invalid("monitor port %d out of range", c.MonitorPort)
	}

	return nil
}

func (c Config) validateRandom() error {
	if c.OpsPerCore < 0 {
		return invalid("operations per core must not be negative")
	}

	if c.ReadRatio < 0 || c.NoOpRatio < 0 || c.ReadRatio+c.NoOpRatio > 1 {
		return invalid("read ratio %v and no-op ratio %v do not fit in 1",
			c.ReadRatio, c.NoOpRatio)
	}

	if c.SharedRatio < 0 || c.SharedRatio > 1 {
		return invalid("shared ratio %v out of [0, 1]", c.SharedRatio)
	}

	if c.Footprint < c.LineSize {
		return invalid("footprint %d smaller than a line", c.Footprint)
	}

	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}
