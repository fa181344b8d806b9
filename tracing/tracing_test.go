package tracing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/snoopsim/mem/bus"
	"github.com/sarchlab/snoopsim/mem/snoopcache"
	"github.com/sarchlab/snoopsim/sim"
)

var _ = Describe("CollectTrace", func() {
	var (
		mockCtrl *gomock.Controller
		domain   *MockNamedHookable
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		domain = NewMockNamedHookable(mockCtrl)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should attach a hook forwarding records", func() {
		tracer := NewCountTracer()

		var hook sim.Hook
		domain.EXPECT().Hooks().Return(nil)
		domain.EXPECT().AcceptHook(gomock.Any()).Do(func(h sim.Hook) {
			hook = h
		})

		CollectTrace(domain, tracer)

		hook.Func(sim.HookCtx{
			Pos:  snoopcache.HookPosAccess,
			Item: snoopcache.AccessRecord{Hit: true},
		})
		hook.Func(sim.HookCtx{
			Pos:  bus.HookPosBusTransaction,
			Item: bus.TransactionRecord{Kind: "Upgrade"},
		})
		hook.Func(sim.HookCtx{Pos: sim.HookPosBeforeEvent})

		total, hits := tracer.Accesses()
		Expect(total).To(Equal(uint64(1)))
		Expect(hits).To(Equal(uint64(1)))
		Expect(tracer.Transactions("Upgrade")).To(Equal(uint64(1)))
		Expect(tracer.TotalTransactions()).To(Equal(uint64(1)))
	})

	It("should refuse to attach the same tracer twice", func() {
		tracer := NewCountTracer()

		domain.EXPECT().Hooks().Return([]sim.Hook{&traceHook{t: tracer}})
		domain.EXPECT().Name().Return("Cache[0]")

		Expect(func() { CollectTrace(domain, tracer) }).To(Panic())
	})
})

var _ = Describe("DBTracer", func() {
	var (
		mockCtrl *gomock.Controller
		backend  *MockDataRecorder
		tracer   *DBTracer
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		backend = NewMockDataRecorder(mockCtrl)

		backend.EXPECT().CreateTable(AccessTable, snoopcache.AccessRecord{})
		backend.EXPECT().
			CreateTable(BusTransactionTable, bus.TransactionRecord{})

		tracer = NewDBTracer(backend)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should insert records into their tables", func() {
		access := snoopcache.AccessRecord{Cycle: 5, Core: 1, Address: 0x40}
		tx := bus.TransactionRecord{Cycle: 4, ID: 1, Kind: "Read"}

		backend.EXPECT().InsertData(AccessTable, access)
		backend.EXPECT().InsertData(BusTransactionTable, tx)

		tracer.TraceAccess(access)
		tracer.TraceTransaction(tx)

		accesses, transactions := tracer.NumRecorded()
		Expect(accesses).To(Equal(uint64(1)))
		Expect(transactions).To(Equal(uint64(1)))
	})

	It("should drop records outside the window", func() {
		tracer.SetWindow(10, 20)

		backend.EXPECT().InsertData(AccessTable, gomock.Any()).Times(2)

		tracer.TraceAccess(snoopcache.AccessRecord{Cycle: 9})
		tracer.TraceAccess(snoopcache.AccessRecord{Cycle: 10})
		tracer.TraceAccess(snoopcache.AccessRecord{Cycle: 20})
		tracer.TraceAccess(snoopcache.AccessRecord{Cycle: 21})
		tracer.TraceTransaction(bus.TransactionRecord{Cycle: 30})
	})

	It("should flush the backend", func() {
		backend.EXPECT().Flush()

		tracer.Flush()
	})
})

var _ = Describe("LogTracer", func() {
	It("should log one entry per record", func() {
		logger, hook := logtest.NewNullLogger()
		logger.SetLevel(logrus.DebugLevel)
		tracer := NewLogTracer(logger, logrus.DebugLevel)

		tracer.TraceAccess(snoopcache.AccessRecord{Write: true, Hit: false})
		Expect(hook.LastEntry().Message).To(Equal("write miss"))
		Expect(hook.LastEntry().Level).To(Equal(logrus.DebugLevel))

		tracer.TraceTransaction(bus.TransactionRecord{Kind: "Flush", ID: 3})
		Expect(hook.LastEntry().Message).To(Equal("Flush"))
		Expect(hook.LastEntry().Data).To(HaveKeyWithValue("id", uint64(3)))
		Expect(hook.AllEntries()).To(HaveLen(2))
	})
})
