package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/sarchlab/snoopsim/sim"
)

// EnvPrefix starts the name of every environment variable read by LoadEnv.
const EnvPrefix = "SNOOPSIM_"

// LoadEnv loads the given .env files, or ./.env if none is given, and applies
// the SNOOPSIM_* variables on top of c. Variables already set in the
// environment win over the files. A missing default .env file is not an
// error.
func (c Config) LoadEnv(files ...string) (Config, error) {
	if len(files) == 0 {
		if _, err := os.Stat(".env"); err == nil {
			files = []string{".env"}
		}
	}

	if len(files) > 0 {
		if err := godotenv.Load(files...); err != nil {
			return c, fmt.Errorf("loading env files: %w", err)
		}
	}

	return c.applyEnv()
}

type envParser struct {
	err error
}

func (p *envParser) lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + name)
	if !ok {
		return "", false
	}

	return strings.TrimSpace(v), true
}

func (p *envParser) fail(name, v string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("%w: %s%s=%q: %w",
			ErrInvalidConfig, EnvPrefix, name, v, err)
	}
}

func (p *envParser) int(name string, dst *int) {
	if v, ok := p.lookup(name); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			p.fail(name, v, err)
			return
		}

		*dst = n
	}
}

func (p *envParser) int64(name string, dst *int64) {
	if v, ok := p.lookup(name); ok {
		n, err := strconv.ParseInt(v, 0, 64)
		if err != nil {
			p.fail(name, v, err)
			return
		}

		*dst = n
	}
}

func (p *envParser) uint64(name string, dst *uint64) {
	if v, ok := p.lookup(name); ok {
		n, err := strconv.ParseUint(v, 0, 64)
		if err != nil {
			p.fail(name, v, err)
			return
		}

		*dst = n
	}
}

func (p *envParser) float(name string, dst *float64) {
	if v, ok := p.lookup(name); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			p.fail(name, v, err)
			return
		}

		*dst = f
	}
}

func (p *envParser) bool(name string, dst *bool) {
	if v, ok := p.lookup(name); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			p.fail(name, v, err)
			return
		}

		*dst = b
	}
}

func (p *envParser) string(name string, dst *string) {
	if v, ok := p.lookup(name); ok {
		*dst = v
	}
}

func (c Config) applyEnv() (Config, error) {
	p := &envParser{}

	p.int("CORES", &c.NumCores)
	p.uint64("CACHE_SIZE", &c.CacheSize)
	p.uint64("LINE_SIZE", &c.LineSize)
	p.int("ASSOCIATIVITY", &c.Associativity)
	p.int("ADDRESS_WIDTH", &c.AddressWidth)
	p.string("PROTOCOL", &c.Protocol)
	p.uint64("HIT_LATENCY", &c.HitLatency)
	p.uint64("MISS_LATENCY", &c.MissLatency)
	p.int64("SEED", &c.Seed)
	p.string("TERMINATION", &c.Termination)

	freq := float64(c.Frequency)
	p.float("FREQUENCY", &freq)
	c.Frequency = sim.Freq(freq)

	p.string("TRACE", &c.TraceFile)
	p.int("OPS_PER_CORE", &c.OpsPerCore)
	p.float("READ_RATIO", &c.ReadRatio)
	p.float("NOOP_RATIO", &c.NoOpRatio)
	p.float("SHARED_RATIO", &c.SharedRatio)
	p.uint64("FOOTPRINT", &c.Footprint)

	p.string("RECORD", &c.RecordPath)
	p.string("LOG_LEVEL", &c.LogLevel)
	p.int("MONITOR_PORT", &c.MonitorPort)
	p.bool("OPEN_BROWSER", &c.OpenBrowser)

	if p.err != nil {
		return c, p.err
	}

	return c, nil
}

// LoadEnv applies the .env files and the environment on top of Default.
func LoadEnv(files ...string) (Config, error) {
	return Default().LoadEnv(files...)
}
