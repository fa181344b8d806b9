package snoopcache

import (
	"github.com/sarchlab/snoopsim/mem/coherence"
	"github.com/sarchlab/snoopsim/sim"
)

// HookPosAccess marks the completion of a processor access. The hook item is
// an AccessRecord.
var HookPosAccess = &sim.HookPos{Name: "CacheAccess"}

// AccessRecord describes a completed access: which line it used and how it
// was served.
type AccessRecord struct {
	Cycle   uint64
	Core    int
	Address uint64
	Set     int
	Way     int
	Hit     bool
	Write   bool
	State   string
}

func (c *Comp) traceAccess(a *access, now sim.Cycle) {
	if c.NumHooks() == 0 {
		return
	}

	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    HookPosAccess,
		Item: AccessRecord{
			Cycle:   uint64(now),
			Core:    c.id,
			Address: a.Request.Address,
			Set:     a.line.SetID,
			Way:     a.line.WayID,
			Hit:     a.plan.Hit,
			Write:   a.Request.Op == coherence.Store,
			State:   a.line.State.String(),
		},
	})
}
