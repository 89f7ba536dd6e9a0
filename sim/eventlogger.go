package sim

import (
	"log"
	"reflect"
)

// EventLogger is an hook that prints the event information
type EventLogger struct {
	LogHookBase
}

// NewEventLogger returns a new EventLogger which will write in to the logger
func NewEventLogger(logger *log.Logger) *EventLogger {
	h := new(EventLogger)
	h.Logger = logger

	return h
}

// Func writes the event information into the logger
func (h *EventLogger) Func(ctx HookCtx) {
	switch ctx.Pos {
	case HookPosBeforeEvent:
		evt, ok := ctx.Item.(Event)
		if !ok {
			return
		}

		target := reflect.TypeOf(evt.Handler).String()
		if named, ok := evt.Handler.(Named); ok {
			target = named.Name()
		}

		h.Logger.Printf("%d, event %d, %T -> %s",
			evt.Time, evt.ID, evt.Payload, target)
	case HookPosBeforeTick:
		cycle, ok := ctx.Item.(uint64)
		if !ok {
			return
		}

		h.Logger.Printf("cycle %d, edge", cycle)
	}
}
