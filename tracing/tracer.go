// Package tracing collects the access and bus records that the caches and the
// bus emit through hooks.
package tracing

import (
	"fmt"
	"reflect"

	"github.com/sarchlab/snoopsim/mem/bus"
	"github.com/sarchlab/snoopsim/mem/snoopcache"
	"github.com/sarchlab/snoopsim/sim"
)

// A Tracer consumes records.
type Tracer interface {
	TraceAccess(r snoopcache.AccessRecord)
	TraceTransaction(r bus.TransactionRecord)
}

// NamedHookable is a hookable element with a name.
type NamedHookable interface {
	sim.Named
	sim.Hookable
}

// CollectTrace lets the tracer collect the records of a domain.
func CollectTrace(domain NamedHookable, tracer Tracer) {
	for _, hook := range domain.Hooks() {
		hook, ok := hook.(*traceHook)
		if ok && hook.t == tracer {
			panic(fmt.Sprintf(
				"domain %s already has tracer %s",
				domain.Name(), reflect.TypeOf(tracer)))
		}
	}

	domain.AcceptHook(&traceHook{t: tracer})
}

// A traceHook forwards records to a tracer.
type traceHook struct {
	t Tracer
}

// Func calls the tracer when the hook is triggered.
func (h *traceHook) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case snoopcache.HookPosAccess:
		h.t.TraceAccess(ctx.Item.(snoopcache.AccessRecord))
	case bus.HookPosBusTransaction:
		h.t.TraceTransaction(ctx.Item.(bus.TransactionRecord))
	}
}
