package tracing

import (
	"sync"

	"github.com/sarchlab/snoopsim/mem/bus"
	"github.com/sarchlab/snoopsim/mem/snoopcache"
)

// CountTracer counts the records it sees.
type CountTracer struct {
	lock sync.Mutex

	accesses     uint64
	hits         uint64
	transactions map[string]uint64
}

// NewCountTracer creates a new CountTracer.
func NewCountTracer() *CountTracer {
	return &CountTracer{transactions: make(map[string]uint64)}
}

// TraceAccess counts an access.
func (t *CountTracer) TraceAccess(r snoopcache.AccessRecord) {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.accesses++
	if r.Hit {
		t.hits++
	}
}

// TraceTransaction counts a transaction by kind.
func (t *CountTracer) TraceTransaction(r bus.TransactionRecord) {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.transactions[r.Kind]++
}

// Accesses returns the number of accesses and hits seen.
func (t *CountTracer) Accesses() (total, hits uint64) {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.accesses, t.hits
}

// Transactions returns the number of transactions of a kind, e.g. "Upgrade".
func (t *CountTracer) Transactions(kind string) uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.transactions[kind]
}

// TotalTransactions returns the number of transactions of all kinds.
func (t *CountTracer) TotalTransactions() uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	var n uint64
	for _, c := range t.transactions {
		n += c
	}

	return n
}
