package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sarchlab/snoopsim/config"
	"github.com/sarchlab/snoopsim/datarecording"
	"github.com/sarchlab/snoopsim/monitoring"
	"github.com/sarchlab/snoopsim/platform"
)

var (
	flagConfig = config.Default()
	envFiles   []string
	audit      bool
)

type flagBinding struct {
	name  string
	apply func(dst *config.Config, src config.Config)
}

// Flags win over the environment only when they are given.
var flagBindings = []flagBinding{
	{"cores", func(d *config.Config, s config.Config) { d.NumCores = s.NumCores }},
	{"cache-size", func(d *config.Config, s config.Config) { d.CacheSize = s.CacheSize }},
	{"line-size", func(d *config.Config, s config.Config) { d.LineSize = s.LineSize }},
	{"ways", func(d *config.Config, s config.Config) { d.Associativity = s.Associativity }},
	{"address-width", func(d *config.Config, s config.Config) { d.AddressWidth = s.AddressWidth }},
	{"frequency", func(d *config.Config, s config.Config) { d.Frequency = s.Frequency }},
	{"protocol", func(d *config.Config, s config.Config) { d.Protocol = s.Protocol }},
	{"hit-latency", func(d *config.Config, s config.Config) { d.HitLatency = s.HitLatency }},
	{"miss-latency", func(d *config.Config, s config.Config) { d.MissLatency = s.MissLatency }},
	{"seed", func(d *config.Config, s config.Config) { d.Seed = s.Seed }},
	{"termination", func(d *config.Config, s config.Config) { d.Termination = s.Termination }},
	{"trace", func(d *config.Config, s config.Config) { d.TraceFile = s.TraceFile }},
	{"ops", func(d *config.Config, s config.Config) { d.OpsPerCore = s.OpsPerCore }},
	{"read-ratio", func(d *config.Config, s config.Config) { d.ReadRatio = s.ReadRatio }},
	{"noop-ratio", func(d *config.Config, s config.Config) { d.NoOpRatio = s.NoOpRatio }},
	{"shared-ratio", func(d *config.Config, s config.Config) { d.SharedRatio = s.SharedRatio }},
	{"footprint", func(d *config.Config, s config.Config) { d.Footprint = s.Footprint }},
	{"record", func(d *config.Config, s config.Config) { d.RecordPath = s.RecordPath }},
	{"log-level", func(d *config.Config, s config.Config) { d.LogLevel = s.LogLevel }},
	{"monitor-port", func(d *config.Config, s config.Config) { d.MonitorPort = s.MonitorPort }},
	{"open-browser", func(d *config.Config, s config.Config) { d.OpenBrowser = s.OpenBrowser }},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation and print the statistics.",
	Long: "`run` simulates a random workload, or the trace given with " +
		"--trace, and prints per-core and bus statistics. Settings are read " +
		"from .env files and SNOOPSIM_* variables first, then from flags.",
	Args: cobra.NoArgs,
	RunE: runSimulation,
}

func init() {
	rootCmd.AddCommand(runCmd)

	f := runCmd.Flags()
	c := &flagConfig

	f.IntVar(&c.NumCores, "cores", c.NumCores, "Number of cores")
	f.Uint64Var(&c.CacheSize, "cache-size", c.CacheSize, "Bytes per cache")
	f.Uint64Var(&c.LineSize, "line-size", c.LineSize, "Bytes per cache line")
	f.IntVar(&c.Associativity, "ways", c.Associativity, "Ways per set")
	f.IntVar(&c.AddressWidth, "address-width", c.AddressWidth,
		"Bits per address")
	f.Float64Var((*float64)(&c.Frequency), "frequency", float64(c.Frequency),
		"Clock frequency in Hz")
	f.StringVar(&c.Protocol, "protocol", c.Protocol,
		"Coherence protocol: moesi, write-invalidate or none")
	f.Uint64Var(&c.HitLatency, "hit-latency", c.HitLatency,
		"Cycles of a hit that needs no bus")
	f.Uint64Var(&c.MissLatency, "miss-latency", c.MissLatency,
		"Cycles of a bus transaction")
	f.Int64Var(&c.Seed, "seed", c.Seed, "Random seed")
	f.StringVar(&c.Termination, "termination", c.Termination,
		"Stop when the first core is done (all) or each core on its own (core)")
	f.StringVar(&c.TraceFile, "trace", c.TraceFile,
		"Trace file to replay instead of a random workload")
	f.IntVar(&c.OpsPerCore, "ops", c.OpsPerCore,
		"Random operations per core")
	f.Float64Var(&c.ReadRatio, "read-ratio", c.ReadRatio,
		"Share of random operations that are reads")
	f.Float64Var(&c.NoOpRatio, "noop-ratio", c.NoOpRatio,
		"Share of random operations that are no-ops")
	f.Float64Var(&c.SharedRatio, "shared-ratio", c.SharedRatio,
		"Share of random accesses that go to the shared region")
	f.Uint64Var(&c.Footprint, "footprint", c.Footprint,
		"Bytes per random address region")
	f.StringVar(&c.RecordPath, "record", c.RecordPath,
		"Record accesses and bus transactions to this SQLite file")
	f.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Logrus log level")
	f.IntVar(&c.MonitorPort, "monitor-port", c.MonitorPort,
		"Serve the monitor on this port, 0 disables it")
	f.BoolVar(&c.OpenBrowser, "open-browser", c.OpenBrowser,
		"Open the monitor in a web browser")

	f.StringSliceVar(&envFiles, "env-file", nil,
		".env files to load, ./.env by default")
	f.BoolVar(&audit, "audit", false,
		"Check the coherence invariant after every cycle")
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.LoadEnv(envFiles...)
	if err != nil {
		return cfg, err
	}

	for _, b := range flagBindings {
		if cmd.Flags().Changed(b.name) {
			b.apply(&cfg, flagConfig)
		}
	}

	return cfg, cfg.Validate()
}

func newLogger(level string) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	logger := logrus.New()
	logger.SetLevel(lvl)

	return logger, nil
}

func runSimulation(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}

	builder := platform.MakeBuilder().WithConfig(cfg).WithLogger(logger)

	if audit {
		builder = builder.WithInvariantAudit()
	}

	if cfg.RecordPath != "" {
		recorder, err := datarecording.New(cfg.RecordPath)
		if err != nil {
			return err
		}

		builder = builder.WithRecorder(recorder)
	}

	var monitor *monitoring.Monitor
	if cfg.MonitorPort > 0 || cfg.OpenBrowser {
		monitor = monitoring.NewMonitor().
			WithPortNumber(cfg.MonitorPort).
			WithBrowser(cfg.OpenBrowser)
		builder = builder.WithMonitor(monitor)
	}

	p, err := builder.Build()
	if err != nil {
		return err
	}

	if monitor != nil {
		if _, err := monitor.StartServer(); err != nil {
			return err
		}
	}

	logger.WithFields(logrus.Fields{
		"cores":    cfg.NumCores,
		"protocol": p.Protocol.Name(),
	}).Info("simulation started")

	runErr := p.Run()

	if err := p.Close(); err != nil {
		logger.WithError(err).Error("closing the recorder")
	}

	if runErr != nil {
		return fmt.Errorf("simulation failed at cycle %d: %w",
			p.Clock.Now(), runErr)
	}

	p.Report().Print(cmd.OutOrStdout())

	return nil
}
