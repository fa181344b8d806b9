// Package bus models the shared snooping bus that connects the private caches
// to memory.
package bus

import "fmt"

// Kind is the type of a bus transaction.
type Kind int

// The bus transaction kinds.
const (
	// Read fetches a line for reading.
	Read Kind = iota
	// ReadExclusive fetches a line for writing and invalidates other copies.
	ReadExclusive
	// Upgrade invalidates other copies of a line the requester already has.
	Upgrade
	// Flush carries a line supplied by a snooping cache.
	Flush
)

func (k Kind) String() string {
	switch k {
	case Read:
		return "Read"
	case ReadExclusive:
		return "ReadExclusive"
	case Upgrade:
		return "Upgrade"
	case Flush:
		return "Flush"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// IsRead tells if the transaction is counted as a bus read.
func (k Kind) IsRead() bool {
	return k != Upgrade
}

// A Transaction is one use of the bus.
type Transaction struct {
	ID        uint64
	Requester int
	Address   uint64
	Kind      Kind
	Data      []byte
}

// Response is what the holder of the bus learns from the snoopers by the time
// it releases the bus.
type Response struct {
	// Flush is the line supplied by a peer, if any.
	Flush *Transaction

	// Shared is set if a peer keeps a copy of the line.
	Shared bool
}

// Counters are the statistics of the bus.
type Counters struct {
	Reads            uint64
	WritesOrUpgrades uint64
	WaitCycles       uint64
}

// Transactions returns the number of granted transactions.
func (c Counters) Transactions() uint64 {
	return c.Reads + c.WritesOrUpgrades
}

// AverageWait returns the wait cycles per granted transaction, or 0 if the
// bus was never used.
func (c Counters) AverageWait() float64 {
	n := c.Transactions()
	if n == 0 {
		return 0
	}

	return float64(c.WaitCycles) / float64(n)
}
