package snoopcache

import (
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/snoopsim/mem/bus"
	"github.com/sarchlab/snoopsim/mem/cache/tagging"
	"github.com/sarchlab/snoopsim/mem/coherence"
	"github.com/sarchlab/snoopsim/sim"
)

type access struct {
	Request Request
	plan    coherence.Plan
	line    *tagging.Line
	data    byte
}

// requestPath serves the processor accesses one at a time. Each step runs to
// a suspension point and names the step to continue with.
type requestPath struct {
	c    *Comp
	next func(now sim.Cycle) (sim.Wait, error)
}

func newRequestPath(c *Comp) *requestPath {
	p := &requestPath{c: c}
	p.next = p.waitForRequest

	return p
}

func (p *requestPath) Resume(now sim.Cycle) (sim.Wait, error) {
	return p.next(now)
}

func (p *requestPath) waitForRequest(now sim.Cycle) (sim.Wait, error) {
	if p.c.pending == nil {
		return sim.WaitOn(p.c.reqArrived), nil
	}

	p.classify()

	if !p.c.pending.plan.UseBus {
		p.install(bus.Response{})
		return p.waitLatency(now)
	}

	return p.acquire(now)
}

func (p *requestPath) classify() {
	c := p.c
	a := c.pending

	v, _ := c.view(a.Request.Address)
	a.plan = c.protocol.Plan(a.Request.Op, v)

	p.countAccess(a)

	c.log.WithFields(logrus.Fields{
		"cycle":  uint64(c.clock.Now()),
		"op":     a.Request.Op.String(),
		"addr":   a.Request.Address,
		"state":  v.State.String(),
		"hit":    a.plan.Hit,
		"bus":    a.plan.UseBus,
		"refill": a.plan.Refill,
	}).Debug("access")
}

func (p *requestPath) countAccess(a *access) {
	c := p.c
	if c.stats == nil {
		return
	}

	switch {
	case a.Request.Op == coherence.Load && a.plan.Hit:
		c.stats.ReadHit(c.id)
	case a.Request.Op == coherence.Load:
		c.stats.ReadMiss(c.id)
	case a.plan.Hit:
		c.stats.WriteHit(c.id)
	default:
		c.stats.WriteMiss(c.id)
	}
}

func (p *requestPath) acquire(now sim.Cycle) (sim.Wait, error) {
	c := p.c
	a := c.pending

	if !c.bus.TryAcquire(c.id) {
		p.next = p.acquire
		return sim.WaitCycles(1), nil
	}

	// The line may have been taken away while waiting for the bus.
	v, _ := c.view(a.Request.Address)
	if replan := c.protocol.Plan(a.Request.Op, v); replan.UseBus {
		replan.Hit = a.plan.Hit
		a.plan = replan
	}

	c.bus.Publish(bus.Transaction{
		Requester: c.id,
		Address:   c.layout.LineAddress(a.Request.Address),
		Kind:      a.plan.Kind,
	})

	p.next = p.release

	return sim.WaitCycles(1), nil
}

func (p *requestPath) release(now sim.Cycle) (sim.Wait, error) {
	rsp := p.c.bus.Release(p.c.id)

	p.install(rsp)

	return p.waitLatency(now)
}

// install updates the line at the end of the bus work so that snoops arriving
// during the latency see the new state.
func (p *requestPath) install(rsp bus.Response) {
	c := p.c
	a := c.pending
	addr := c.layout.Decode(a.Request.Address)

	_, line := c.view(a.Request.Address)

	if a.plan.Refill {
		if line == nil {
			line = c.array.FindVictim(int(addr.Set))
		}

		if rsp.Flush != nil {
			copy(line.Data, rsp.Flush.Data)
		} else {
			c.randomLine(line.Data)
		}

		line.Tag = addr.Tag
		line.State = c.protocol.FillState(a.Request.Op, rsp)
	} else {
		line.State = a.plan.Next
	}

	if a.Request.Op == coherence.Store {
		line.Data[addr.Offset] = a.Request.Data
	}

	c.array.Visit(line)

	a.line = line
	a.data = line.Data[addr.Offset]
}

func (p *requestPath) waitLatency(now sim.Cycle) (sim.Wait, error) {
	latency := p.c.hitLatency
	if p.c.pending.plan.Latency == coherence.MissLatency {
		latency = p.c.missLatency
	}

	if latency == 0 {
		return p.complete(now)
	}

	p.next = p.complete

	return sim.WaitCycles(latency), nil
}

func (p *requestPath) complete(now sim.Cycle) (sim.Wait, error) {
	c := p.c
	a := c.pending

	c.result = Result{
		Request: a.Request,
		Hit:     a.plan.Hit,
		Data:    a.data,
		Cycle:   now,
	}

	c.traceAccess(a, now)

	c.pending = nil
	c.done.Notify()

	p.next = p.waitForRequest

	return sim.WaitOn(c.reqArrived), nil
}
