package stats

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"gonum.org/v1/gonum/stat"

	"github.com/sarchlab/snoopsim/mem/bus"
)

// A BusCounterReader exposes the counters of a bus.
type BusCounterReader interface {
	Counters() bus.Counters
}

// A ProbeCounterReader exposes how many peer transactions hit the lines of a
// cache.
type ProbeCounterReader interface {
	ProbeCounts() (reads, writes uint64)
}

// CoreRow is the report line of one core.
type CoreRow struct {
	Core int
	CoreCounters
	ProbeReads  uint64
	ProbeWrites uint64
}

// Report is the summary of a finished simulation.
type Report struct {
	Cycles uint64
	Cores  []CoreRow
	Total  CoreCounters
	Bus    bus.Counters

	AverageWait float64
	HitRateMean float64
	HitRateStd  float64
}

// MakeReport aggregates the collector, the bus and the probe counters of the
// caches. probes may be shorter than the number of cores or nil.
func MakeReport(
	c *Collector,
	b BusCounterReader,
	probes []ProbeCounterReader,
	cycles uint64,
) Report {
	r := Report{Cycles: cycles}

	hitRates := make([]float64, 0, c.NumCores())

	for i, cc := range c.Cores() {
		row := CoreRow{Core: i, CoreCounters: cc}

		if i < len(probes) && probes[i] != nil {
			row.ProbeReads, row.ProbeWrites = probes[i].ProbeCounts()
		}

		r.Cores = append(r.Cores, row)
		r.Total.ReadHits += cc.ReadHits
		r.Total.ReadMisses += cc.ReadMisses
		r.Total.WriteHits += cc.WriteHits
		r.Total.WriteMisses += cc.WriteMisses

		hitRates = append(hitRates, cc.HitRate())
	}

	if len(hitRates) > 0 {
		r.HitRateMean, r.HitRateStd = stat.MeanStdDev(hitRates, nil)
	}

	if len(hitRates) < 2 {
		r.HitRateStd = 0
	}

	if b != nil {
		r.Bus = b.Counters()
		r.AverageWait = r.Bus.AverageWait()
	}

	return r
}

// Print writes the report as a table.
func (r Report) Print(w io.Writer) {
	header := color.New(color.Bold)
	label := color.New(color.FgCyan)

	header.Fprintln(w, "CPU  Reads  RHit  RMiss  Writes  WHit  WMiss  "+
		"Hitrate  PrbRd  PrbWr")

	for _, row := range r.Cores {
		fmt.Fprintf(w, "%3d  %5d  %4d  %5d  %6d  %4d  %5d  %7.4f  %5d  %5d\n",
			row.Core,
			row.ReadHits+row.ReadMisses, row.ReadHits, row.ReadMisses,
			row.WriteHits+row.WriteMisses, row.WriteHits, row.WriteMisses,
			row.HitRate(), row.ProbeReads, row.ProbeWrites)
	}

	fmt.Fprintf(w, "%3s  %5d  %4d  %5d  %6d  %4d  %5d  %7.4f\n",
		"all",
		r.Total.ReadHits+r.Total.ReadMisses, r.Total.ReadHits,
		r.Total.ReadMisses,
		r.Total.WriteHits+r.Total.WriteMisses, r.Total.WriteHits,
		r.Total.WriteMisses,
		r.Total.HitRate())

	fmt.Fprintln(w)
	label.Fprint(w, "Hit rate across cores: ")
	fmt.Fprintf(w, "mean %.4f, std %.4f\n", r.HitRateMean, r.HitRateStd)

	label.Fprint(w, "Bus: ")
	fmt.Fprintf(w, "%d reads, %d writes/upgrades, %d transactions\n",
		r.Bus.Reads, r.Bus.WritesOrUpgrades, r.Bus.Transactions())

	label.Fprint(w, "Bus waits: ")
	fmt.Fprintf(w, "%d cycles, %.6f cycles per transaction\n",
		r.Bus.WaitCycles, r.AverageWait)

	label.Fprint(w, "Simulated cycles: ")
	fmt.Fprintf(w, "%d\n", r.Cycles)
}
