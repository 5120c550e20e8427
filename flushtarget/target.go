// Package flushtarget gives the flushpolicy package something real to
// rank: concrete Target and Handler implementations, plus a
// goroutine-safe in-memory reference implementation used by tests, the
// demo CLI, and the flush engine's default wiring.
package flushtarget

import (
	"context"

	"github.com/arborfs/flushnode/flushpolicy"
)

// Target is anything the flush engine can invoke to persist its
// in-memory state to disk. Stats must reflect the target's state as of
// the call, not a cached value from an earlier tick.
type Target interface {
	Name() string
	Stats() flushpolicy.FlushTarget
	Flush(ctx context.Context) error
}

// Handler owns a set of Targets and a single transaction-log stream.
// CurrentSerial is the handler's highest assigned transaction-log
// serial, used by the engine to build each target's FlushContext.
type Handler interface {
	Name() string
	Targets() []Target
	CurrentSerial() uint64
}

// Contexts builds the []flushpolicy.FlushContext the policy core
// consumes, one per target across all of handlers.
func Contexts(handlers []Handler) []flushpolicy.FlushContext {
	var out []flushpolicy.FlushContext
	for _, h := range handlers {
		ref := flushpolicy.FlushHandlerRef{Name: h.Name()}
		serial := h.CurrentSerial()
		for _, t := range h.Targets() {
			out = append(out, flushpolicy.FlushContext{
				Handler:    ref,
				Target:     t.Stats(),
				LastSerial: serial,
			})
		}
	}
	return out
}
