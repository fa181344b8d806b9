package tracing

import (
	"sync"

	"github.com/sarchlab/snoopsim/datarecording"
	"github.com/sarchlab/snoopsim/mem/bus"
	"github.com/sarchlab/snoopsim/mem/snoopcache"
)

// The tables the DBTracer writes.
const (
	AccessTable         = "access"
	BusTransactionTable = "bus_transaction"
)

// DBTracer stores the records in a DataRecorder. Records outside the
// [start, end] cycle window are dropped.
type DBTracer struct {
	mu      sync.Mutex
	backend datarecording.DataRecorder

	start, end uint64

	numAccesses     uint64
	numTransactions uint64
}

// NewDBTracer creates the tables in the backend and returns a tracer that
// records everything.
func NewDBTracer(backend datarecording.DataRecorder) *DBTracer {
	backend.CreateTable(AccessTable, snoopcache.AccessRecord{})
	backend.CreateTable(BusTransactionTable, bus.TransactionRecord{})

	return &DBTracer{backend: backend}
}

// SetWindow restricts recording to the given cycles. An end of 0 means no
// upper bound.
func (t *DBTracer) SetWindow(start, end uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.start, t.end = start, end
}

func (t *DBTracer) inWindow(cycle uint64) bool {
	if cycle < t.start {
		return false
	}

	return t.end == 0 || cycle <= t.end
}

// TraceAccess records a completed access.
func (t *DBTracer) TraceAccess(r snoopcache.AccessRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.inWindow(r.Cycle) {
		return
	}

	t.numAccesses++
	t.backend.InsertData(AccessTable, r)
}

// TraceTransaction records a bus transaction.
func (t *DBTracer) TraceTransaction(r bus.TransactionRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.inWindow(r.Cycle) {
		return
	}

	t.numTransactions++
	t.backend.InsertData(BusTransactionTable, r)
}

// NumRecorded returns how many records of each kind were stored.
func (t *DBTracer) NumRecorded() (accesses, transactions uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.numAccesses, t.numTransactions
}

// Flush writes the buffered records.
func (t *DBTracer) Flush() {
	t.backend.Flush()
}
