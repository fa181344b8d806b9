package snoopcache

import (
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/snoopsim/mem/bus"
	"github.com/sarchlab/snoopsim/sim"
)

// snoopPath drains the transactions the bus delivered and applies them to the
// lines. It never allocates or evicts lines.
type snoopPath struct {
	c *Comp
}

func (p *snoopPath) Resume(_ sim.Cycle) (sim.Wait, error) {
	c := p.c

	for len(c.inbox) > 0 {
		tx := c.inbox[0]
		c.inbox = c.inbox[1:]

		p.snoop(tx)
	}

	return sim.WaitOn(c.busActivity), nil
}

func (p *snoopPath) snoop(tx bus.Transaction) {
	c := p.c
	if tx.Requester == c.id {
		return
	}

	v, line := c.view(tx.Address)
	r := c.protocol.Snoop(v, tx.Kind)

	if r.Probe {
		if tx.Kind == bus.Upgrade {
			c.probeWrites++
		} else {
			c.probeReads++
		}
	}

	if r.Flush {
		data := make([]byte, len(line.Data))
		copy(data, line.Data)

		c.bus.Flush(bus.Transaction{
			Requester: c.id,
			Address:   tx.Address,
			Data:      data,
		})
	}

	if r.AssertShared {
		c.bus.AssertShared()
	}

	if line == nil || line.State == r.Next {
		return
	}

	c.log.WithFields(logrus.Fields{
		"cycle": uint64(c.clock.Now()),
		"tx":    tx.Kind.String(),
		"from":  tx.Requester,
		"addr":  tx.Address,
		"old":   line.State.String(),
		"new":   r.Next.String(),
	}).Debug("snoop")

	line.State = r.Next
}
