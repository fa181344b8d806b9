package platform

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/snoopsim/config"
	"github.com/sarchlab/snoopsim/datarecording"
	"github.com/sarchlab/snoopsim/mem"
	"github.com/sarchlab/snoopsim/mem/coherence"
	"github.com/sarchlab/snoopsim/mem/snoopcache"
	"github.com/sarchlab/snoopsim/monitoring"
	"github.com/sarchlab/snoopsim/sim"
	"github.com/sarchlab/snoopsim/tracing"
	"github.com/sarchlab/snoopsim/workload"
)

func smallConfig(protocol string, cores int) config.Config {
	cfg := config.Default()
	cfg.NumCores = cores
	cfg.Protocol = protocol
	cfg.CacheSize = 1 * mem.KB
	cfg.Associativity = 2
	cfg.Termination = "core"

	return cfg
}

func idle(n int) []workload.Op {
	ops := make([]workload.Op, n)
	for i := range ops {
		ops[i] = workload.Op{Kind: workload.NoOp}
	}

	return ops
}

func then(ops ...[]workload.Op) []workload.Op {
	var out []workload.Op
	for _, o := range ops {
		out = append(out, o...)
	}

	return out
}

func rd(addr uint64) []workload.Op {
	return []workload.Op{{Kind: workload.Read, Address: addr}}
}

func wr(addr uint64) []workload.Op {
	return []workload.Op{{Kind: workload.Write, Address: addr}}
}

func build(b Builder) *Platform {
	p, err := b.Build()
	Expect(err).NotTo(HaveOccurred())

	return p
}

var _ = Describe("Platform", func() {
	It("should count a write miss and a remote read miss", func() {
		script := workload.NewScript(
			wr(0x1000),
			then(idle(200), rd(0x1000)),
		)
		p := build(MakeBuilder().
			WithConfig(smallConfig("write-invalidate", 2)).
			WithSource(script))

		Expect(p.Run()).To(Succeed())

		Expect(p.Stats.Core(0).WriteMisses).To(Equal(uint64(1)))
		Expect(p.Stats.Core(1).ReadMisses).To(Equal(uint64(1)))
		Expect(p.Bus.Counters().Reads).To(Equal(uint64(2)))
		Expect(p.Caches[0].StateOf(0x1000)).To(Equal(coherence.Valid))
		Expect(p.Caches[1].StateOf(0x1000)).To(Equal(coherence.Valid))
	})

	Context("MOESI sharing", func() {
		const x = uint64(0x2000)

		It("should supply a read from an exclusive copy", func() {
			counter := tracing.NewCountTracer()
			script := workload.NewScript(
				rd(x),
				then(idle(200), rd(x)),
			)
			p := build(MakeBuilder().
				WithConfig(smallConfig("moesi", 2)).
				WithSource(script).
				WithTracer(counter))

			Expect(p.Run()).To(Succeed())

			Expect(p.Caches[0].StateOf(x)).To(Equal(coherence.Owned))
			Expect(p.Caches[1].StateOf(x)).To(Equal(coherence.Shared))
			Expect(counter.Transactions("Flush")).To(Equal(uint64(1)))
		})

		It("should upgrade the owner and invalidate the sharer", func() {
			counter := tracing.NewCountTracer()
			script := workload.NewScript(
				then(rd(x), idle(300), wr(x)),
				then(idle(200), rd(x)),
			)
			p := build(MakeBuilder().
				WithConfig(smallConfig("moesi", 2)).
				WithSource(script).
				WithTracer(counter))

			Expect(p.Run()).To(Succeed())

			Expect(p.Caches[0].StateOf(x)).To(Equal(coherence.Modified))
			Expect(p.Caches[1].StateOf(x)).To(Equal(coherence.Invalid))
			Expect(counter.Transactions("Upgrade")).To(Equal(uint64(1)))
			Expect(p.Stats.Core(0).WriteHits).To(Equal(uint64(1)))
		})

		It("should leave a single modified copy after upgrading a shared line",
			func() {
				script := workload.NewScript(
					rd(x),
					then(idle(200), rd(x)),
					then(idle(400), rd(x), idle(10), wr(x)),
				)
				p := build(MakeBuilder().
					WithConfig(smallConfig("moesi", 3)).
					WithSource(script))

				Expect(p.Run()).To(Succeed())

				var modified, others int
				for _, c := range p.Caches {
					switch c.StateOf(x) {
					case coherence.Modified:
						modified++
					case coherence.Shared, coherence.Owned:
						others++
					}
				}

				Expect(modified).To(Equal(1))
				Expect(others).To(BeZero())
				Expect(p.CheckInvariant([]uint64{x})).To(Succeed())
			})

		It("should invalidate two shared copies on an upgrade", func() {
			// 16 sets of 32 bytes: x+0x200 and x+0x400 push x out of core 0.
			counter := tracing.NewCountTracer()
			script := workload.NewScript(
				then(rd(x), idle(300), rd(x+0x200), rd(x+0x400)),
				then(idle(200), rd(x)),
				then(idle(800), rd(x)),
				then(idle(1000), rd(x), idle(10), wr(x)),
			)
			p := build(MakeBuilder().
				WithConfig(smallConfig("moesi", 4)).
				WithSource(script).
				WithTracer(counter))

			Expect(p.Run()).To(Succeed())

			Expect(counter.Transactions("Flush")).To(Equal(uint64(1)))
			Expect(counter.Transactions("Upgrade")).To(Equal(uint64(1)))
			Expect(p.Stats.Core(3).WriteHits).To(Equal(uint64(1)))

			Expect(p.Caches[0].StateOf(x)).To(Equal(coherence.Invalid))
			Expect(p.Caches[1].StateOf(x)).To(Equal(coherence.Invalid))
			Expect(p.Caches[2].StateOf(x)).To(Equal(coherence.Invalid))
			Expect(p.Caches[3].StateOf(x)).To(Equal(coherence.Modified))
			Expect(p.CheckInvariant([]uint64{x})).To(Succeed())
		})
	})

	DescribeTable("should keep the invariant on random workloads",
		func(protocol string) {
			cfg := smallConfig(protocol, 4)
			cfg.OpsPerCore = 400
			cfg.Footprint = 2 * mem.KB
			cfg.SharedRatio = 0.6
			cfg.MissLatency = 20

			p := build(MakeBuilder().WithConfig(cfg).WithInvariantAudit())

			Expect(p.Run()).To(Succeed())
			Expect(p.Auditor().NumChecks()).To(BeNumerically(">", 0))
			Expect(p.Report().Total.Accesses()).To(BeNumerically(">", 0))
		},
		Entry("MOESI", "moesi"),
		Entry("write-invalidate", "write-invalidate"),
		Entry("no coherence", "none"),
	)

	It("should be deterministic", func() {
		cfg := smallConfig("moesi", 4)
		cfg.OpsPerCore = 300
		cfg.Footprint = 2 * mem.KB
		cfg.MissLatency = 20
		cfg.Seed = 11

		first := build(MakeBuilder().WithConfig(cfg))
		Expect(first.Run()).To(Succeed())

		second := build(MakeBuilder().WithConfig(cfg))
		Expect(second.Run()).To(Succeed())

		Expect(second.Report()).To(Equal(first.Report()))
	})

	It("should account every granted transaction", func() {
		cfg := smallConfig("moesi", 4)
		cfg.OpsPerCore = 300
		cfg.Footprint = 2 * mem.KB
		cfg.MissLatency = 20

		counter := tracing.NewCountTracer()
		p := build(MakeBuilder().WithConfig(cfg).WithTracer(counter))

		Expect(p.Run()).To(Succeed())

		counters := p.Bus.Counters()
		Expect(counters.Transactions()).To(Equal(counter.TotalTransactions()))
		Expect(counters.WaitCycles).To(BeNumerically(">", 0))

		report := p.Report()
		Expect(report.AverageWait).To(BeNumerically("~",
			float64(counters.WaitCycles)/float64(counters.Transactions())))

		total, _ := counter.Accesses()
		Expect(total).To(Equal(report.Total.Accesses()))
	})

	Context("termination", func() {
		script := func() *workload.Script {
			return workload.NewScript(rd(0x40), idle(500))
		}

		It("should stop every core with the first one", func() {
			cfg := smallConfig("moesi", 2)
			cfg.Termination = "all"

			p := build(MakeBuilder().WithConfig(cfg).WithSource(script()))

			Expect(p.Run()).To(Succeed())

			Expect(p.Cores[0].Finished()).To(BeTrue())
			Expect(p.Cores[1].Finished()).To(BeFalse())
			Expect(p.Clock.Now()).To(Equal(p.Cores[0].FinishedAt()))
			Expect(p.Report().Cycles).To(Equal(uint64(102)))
		})

		It("should let every core finish its stream", func() {
			p := build(MakeBuilder().
				WithConfig(smallConfig("moesi", 2)).
				WithSource(script()))

			Expect(p.Run()).To(Succeed())

			Expect(p.Cores[0].Finished()).To(BeTrue())
			Expect(p.Cores[1].Finished()).To(BeTrue())
			Expect(p.Clock.Now()).To(Equal(sim.Cycle(500)))
		})
	})

	It("should fail on an unsupported operation", func() {
		script := workload.NewScript(
			[]workload.Op{{Kind: workload.Unknown, Address: 0x40}},
		)
		p := build(MakeBuilder().
			WithConfig(smallConfig("moesi", 1)).
			WithSource(script))

		err := p.Run()

		Expect(errors.Is(err, workload.ErrUnsupportedOperationKind)).
			To(BeTrue())
	})

	It("should reject an invalid configuration", func() {
		cfg := smallConfig("mesi", 2)

		_, err := MakeBuilder().WithConfig(cfg).Build()

		Expect(errors.Is(err, config.ErrInvalidConfig)).To(BeTrue())
	})

	It("should record accesses and transactions", func() {
		path := filepath.Join(GinkgoT().TempDir(), "run")
		recorder, err := datarecording.New(path)
		Expect(err).NotTo(HaveOccurred())

		script := workload.NewScript(then(rd(0x40), wr(0x40), rd(0x80)))
		p := build(MakeBuilder().
			WithConfig(smallConfig("moesi", 1)).
			WithSource(script).
			WithRecorder(recorder))

		Expect(p.Run()).To(Succeed())
		Expect(p.Close()).To(Succeed())

		reader, err := datarecording.NewReader(path + ".sqlite3")
		Expect(err).NotTo(HaveOccurred())
		defer reader.Close()

		reader.MapTable(tracing.AccessTable, snoopcache.AccessRecord{})

		rows, total, err := reader.Query(context.Background(),
			tracing.AccessTable, datarecording.QueryParams{
				Where: "Hit = ?",
				Args:  []any{true},
			})
		Expect(err).NotTo(HaveOccurred())
		Expect(total).To(Equal(1))
		Expect(rows[0].(*snoopcache.AccessRecord).Write).To(BeTrue())

		set := int(p.Caches[0].Layout().Decode(0x80).Set)
		rows, _, err = reader.Query(context.Background(),
			tracing.AccessTable, datarecording.QueryParams{
				Where: `"Set" = ? AND Address = ?`,
				Args:  []any{set, 0x80},
			})
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(1))
		Expect(rows[0].(*snoopcache.AccessRecord).Set).To(Equal(set))
	})

	It("should register with a monitor", func() {
		m := monitoring.NewMonitor()
		script := workload.NewScript(rd(0x40), rd(0x80))

		p := build(MakeBuilder().
			WithConfig(smallConfig("moesi", 2)).
			WithSource(script).
			WithMonitor(m))

		progress := func() string {
			rec := httptest.NewRecorder()
			m.Router().ServeHTTP(rec,
				httptest.NewRequest(http.MethodGet, "/api/progress", nil))

			return rec.Body.String()
		}

		Expect(progress()).To(ContainSubstring("Core[1]"))

		Expect(p.Run()).To(Succeed())
		Expect(p.Report().Total.ReadMisses).To(Equal(uint64(2)))
		Expect(strings.TrimSpace(progress())).To(Equal("[]"))
	})
})
