package sim

import (
	"reflect"

	"github.com/sirupsen/logrus"
)

// EventLogger is a hook for engines. It logs every event at trace level and
// every failing handler at error level.
type EventLogger struct {
	Logger logrus.FieldLogger
}

// NewEventLogger creates an EventLogger writing to logger.
func NewEventLogger(logger logrus.FieldLogger) *EventLogger {
	return &EventLogger{Logger: logger}
}

// Func logs the event of the hook context.
func (h *EventLogger) Func(ctx HookCtx) {
	evt, ok := ctx.Item.(Event)
	if !ok {
		return
	}

	entry := h.Logger.WithFields(logrus.Fields{
		"time":  float64(evt.Time()),
		"event": reflect.TypeOf(evt).String(),
	})

	if tc, ok := evt.Handler().(*TickingComponent); ok {
		entry = entry.WithField("cycle", tc.Freq.Cycle(evt.Time()))
	}

	if named, ok := evt.Handler().(Named); ok {
		entry = entry.WithField("handler", named.Name())
	}

	switch ctx.Pos {
	case HookPosBeforeEvent:
		entry.Trace("event")
	case HookPosAfterEvent:
		if err, ok := ctx.Detail.(error); ok && err != nil {
			entry.WithError(err).Error("event failed")
		}
	}
}
