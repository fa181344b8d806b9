package tracing

import (
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/snoopsim/mem/bus"
	"github.com/sarchlab/snoopsim/mem/snoopcache"
)

// LogTracer writes one log line per record.
type LogTracer struct {
	logger logrus.FieldLogger
	level  logrus.Level
}

// NewLogTracer creates a tracer logging at the given level.
func NewLogTracer(logger logrus.FieldLogger, level logrus.Level) *LogTracer {
	return &LogTracer{logger: logger, level: level}
}

// TraceAccess logs a completed access.
func (t *LogTracer) TraceAccess(r snoopcache.AccessRecord) {
	op := "read"
	if r.Write {
		op = "write"
	}

	outcome := "miss"
	if r.Hit {
		outcome = "hit"
	}

	t.logger.WithFields(logrus.Fields{
		"cycle": r.Cycle,
		"core":  r.Core,
		"addr":  r.Address,
		"set":   r.Set,
		"way":   r.Way,
		"state": r.State,
	}).Log(t.level, op+" "+outcome)
}

// TraceTransaction logs a bus transaction.
func (t *LogTracer) TraceTransaction(r bus.TransactionRecord) {
	t.logger.WithFields(logrus.Fields{
		"cycle": r.Cycle,
		"id":    r.ID,
		"from":  r.Requester,
		"addr":  r.Address,
	}).Log(t.level, r.Kind)
}
