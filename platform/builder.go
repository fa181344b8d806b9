package platform

import (
	"fmt"

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
	"github.com/sarchlab/snoopsim/tracing"
	"github.com/sarchlab/snoopsim/workload"
)

// Builder can build platforms.
type Builder struct {
	cfg      config.Config
	source   workload.Source
	logger   *logrus.Logger
	recorder datarecording.DataRecorder
	tracers  []tracing.Tracer
	monitor  *monitoring.Monitor
	audit    bool
}

// MakeBuilder creates a builder with the default configuration.
func MakeBuilder() Builder {
	return Builder{cfg: config.Default()}
}

// WithConfig sets the configuration.
func (b Builder) WithConfig(cfg config.Config) Builder {
	b.cfg = cfg
	return b
}

// WithSource sets the workload. Without it, the workload is read from the
// configured trace file or generated randomly.
func (b Builder) WithSource(s workload.Source) Builder {
	b.source = s
	return b
}

// WithLogger sets the logger. Engine events are logged at trace level.
func (b Builder) WithLogger(l *logrus.Logger) Builder {
	b.logger = l
	return b
}

// WithRecorder stores every access and bus transaction in the recorder.
func (b Builder) WithRecorder(r datarecording.DataRecorder) Builder {
	b.recorder = r
	return b
}

// WithTracer attaches a tracer to every cache and to the bus.
func (b Builder) WithTracer(t tracing.Tracer) Builder {
	b.tracers = append(b.tracers[:len(b.tracers):len(b.tracers)], t)
	return b
}

// WithMonitor registers the platform with a monitor.
func (b Builder) WithMonitor(m *monitoring.Monitor) Builder {
	b.monitor = m
	return b
}

// WithInvariantAudit checks the coherence invariant after every cycle and
// makes Run fail on the first violation.
func (b Builder) WithInvariantAudit() Builder {
	b.audit = true
	return b
}

// Build creates the platform.
func (b Builder) Build() (*Platform, error) {
	cfg := b.cfg
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	protocol, err := coherence.New(cfg.Protocol)
	if err != nil {
		return nil, err
	}

	termination, err := processor.ParseTermination(cfg.Termination)
	if err != nil {
		return nil, err
	}

	source, err := b.buildSource()
	if err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.WarnLevel)
	}

	p := &Platform{
		Config:   cfg,
		Engine:   sim.NewSerialEngine(),
		Protocol: protocol,
		Stats:    stats.NewCollector(cfg.NumCores),
		Monitor:  b.monitor,
	}

	if logger.IsLevelEnabled(logrus.TraceLevel) {
		p.Engine.AcceptHook(sim.NewEventLogger(logger))
	}

	p.Clock = sim.NewClock("Clock", p.Engine, cfg.Frequency)
	p.Bus = bus.NewArbiter("Bus", p.Clock)

	b.buildCaches(p, logger)
	b.buildCores(p, source, termination, logger)
	b.attachTracers(p)

	if b.audit {
		p.auditor = NewAuditor(protocol, p.Caches)
		p.Engine.AcceptHook(p.auditor)
	}

	b.registerWithMonitor(p)

	p.Engine.RegisterSimulationEndHandler(&endOfRun{p: p, log: logger})

	return p, nil
}

func (b Builder) buildSource() (workload.Source, error) {
	if b.source != nil {
		return b.source, nil
	}

	cfg := b.cfg
	if cfg.TraceFile != "" {
		return workload.LoadTraceFile(cfg.TraceFile, cfg.NumCores)
	}

	return workload.NewRandom(workload.RandomConfig{
		NumCores:    cfg.NumCores,
		OpsPerCore:  cfg.OpsPerCore,
		ReadRatio:   cfg.ReadRatio,
		NoOpRatio:   cfg.NoOpRatio,
		Footprint:   cfg.Footprint,
		SharedRatio: cfg.SharedRatio,
		Seed:        cfg.Seed,
	})
}

func (b Builder) buildCaches(p *Platform, logger logrus.FieldLogger) {
	cfg := b.cfg

	builder := snoopcache.MakeBuilder().
		WithClock(p.Clock).
		WithBus(p.Bus).
		WithProtocol(p.Protocol).
		WithStats(p.Stats).
		WithLogger(logger).
		WithByteSize(cfg.CacheSize).
		WithLineSize(cfg.LineSize).
		WithWayAssociativity(cfg.Associativity).
		WithAddressWidth(cfg.AddressWidth).
		WithHitLatency(cfg.HitLatency).
		WithMissLatency(cfg.MissLatency).
		WithSeed(cfg.Seed)

	for i := 0; i < cfg.NumCores; i++ {
		p.Caches = append(p.Caches,
			builder.Build(fmt.Sprintf("Cache[%d]", i), i))
	}
}

type sizedSource interface {
	Len(core int) int
}

func (b Builder) buildCores(
	p *Platform,
	source workload.Source,
	termination processor.Termination,
	logger logrus.FieldLogger,
) {
	builder := processor.MakeBuilder().
		WithSource(source).
		WithStopper(p.Clock).
		WithTermination(termination).
		WithSeed(b.cfg.Seed).
		WithLogger(logger)

	for i := 0; i < b.cfg.NumCores; i++ {
		name := fmt.Sprintf("Core[%d]", i)
		coreBuilder := builder

		if b.monitor != nil {
			var total uint64
			if sized, ok := source.(sizedSource); ok {
				total = uint64(sized.Len(i))
			}

			bar := b.monitor.CreateProgressBar(name, total)
			p.bars = append(p.bars, bar)
			coreBuilder = coreBuilder.WithProgress(bar)
		}

		stub := coreBuilder.Build(name, i, p.Caches[i])
		p.Cores = append(p.Cores, stub)
		p.Clock.Spawn(name, stub)
	}
}

func (b Builder) attachTracers(p *Platform) {
	tracers := b.tracers

	if b.recorder != nil {
		p.recorder = b.recorder
		tracers = append(tracers[:len(tracers):len(tracers)],
			tracing.NewDBTracer(b.recorder))
	}

	for _, t := range tracers {
		for _, c := range p.Caches {
			tracing.CollectTrace(c, t)
		}

		tracing.CollectTrace(p.Bus, t)
	}
}

func (b Builder) registerWithMonitor(p *Platform) {
	m := b.monitor
	if m == nil {
		return
	}

	m.RegisterEngine(p.Engine)
	m.RegisterClock(p.Clock)
	m.RegisterStats(p)
	m.RegisterBus(p.Bus)
	m.RegisterComponent(p.Bus)

	for _, c := range p.Caches {
		m.RegisterComponent(c)
	}

	for _, c := range p.Cores {
		m.RegisterComponent(c)
	}
}
