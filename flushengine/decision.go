package flushengine

import (
	"time"

	"github.com/arborfs/flushnode/flushpolicy"
)

// Decision is the record produced by one Engine.RunOnce: what the
// policy chose, and what happened when the engine acted on it.
type Decision struct {
	At        time.Time
	OrderType flushpolicy.OrderType
	Candidate int // number of candidates considered
	Selected  []flushpolicy.FlushContext
	Failed    []TargetError
	Elapsed   time.Duration
}

// TargetError pairs a failed target's handler/name with the error its
// Flush call returned.
type TargetError struct {
	Handler string
	Target  string
	Err     error
}

// Triggered reports whether the policy selected any targets this tick.
func (d Decision) Triggered() bool {
	return len(d.Selected) > 0
}
