// Package flushpolicy implements the flush target selection and
// prioritization core for an indexing node. Given the current set of
// candidate flush targets and the current transaction-log statistics for
// their owning handlers, it decides which targets should be flushed next,
// and in what order.
//
// The package is a pure, deterministic function over its inputs: it
// performs no I/O, takes no locks, and retains no state between calls to
// Select. Concurrent callers of the same *FlushStrategy are safe because
// a FlushStrategy, once constructed, holds only immutable configuration.
package flushpolicy

import "time"

/*
Four independent resource-pressure signals feed into one decision: memory
pressure, disk bloat, target age, and transaction-log size. Select
classifies the candidate set against each signal in turn (the "trigger
evaluators"), picks the single dominant signal (the "order-type"), and
returns the candidates sorted by that signal's comparator.
*/

////////////////////////////////////////////////////////////////////////////////

// MemoryGain describes how much heap a target's flush would free.
type MemoryGain struct {
	Before uint64
	After  uint64
}

// Gain returns Before-After as a signed delta. A flush that leaves the
// target larger than before (e.g. due to compaction overhead) yields a
// negative gain.
func (g MemoryGain) Gain() int64 {
	return int64(g.Before) - int64(g.After)
}

// DiskGain describes how many disk bytes a target's flush would reclaim.
type DiskGain struct {
	Before uint64
	After  uint64
}

// Gain returns Before-After as a signed delta.
func (g DiskGain) Gain() int64 {
	return int64(g.Before) - int64(g.After)
}

// FlushTarget is the statistical snapshot of a candidate flush target. The
// policy is opaque to anything about a target beyond these fields.
type FlushTarget struct {
	Name string

	MemoryGain MemoryGain
	DiskGain   DiskGain

	// FlushedSerial is the last transaction-log serial number this target
	// has durably incorporated. A target with FlushedSerial equal to its
	// handler's TlsStats.LastSerial has nothing left to contribute via the
	// TLS-size signal.
	FlushedSerial uint64

	// LastFlushTime is the wall-clock time of the target's last flush. The
	// zero time.Time denotes "never flushed" and is treated as infinitely
	// old for age comparisons.
	LastFlushTime time.Time

	// Urgent, when true, forces this target to the front of the returned
	// list regardless of any other signal.
	Urgent bool
}

// neverFlushed reports whether t has never been flushed.
func (t FlushTarget) neverFlushed() bool {
	return t.LastFlushTime.IsZero()
}

// FlushHandlerRef identifies the handler owning a target, by name. A
// handler owns a set of targets and a single transaction-log stream.
type FlushHandlerRef struct {
	Name string
}

// FlushContext pairs a handler, one of its targets, and the transaction-log
// serial at the time the context was built. It is the unit the policy
// ranks and returns.
type FlushContext struct {
	Handler    FlushHandlerRef
	Target     FlushTarget
	LastSerial uint64
}

// TlsStats is the transaction-log state of a single handler.
type TlsStats struct {
	Bytes       uint64
	FirstSerial uint64
	LastSerial  uint64
}

// TlsStatsMap maps handler name to that handler's TlsStats. A handler
// referenced by a candidate but absent from the map is treated as having
// the zero-value TlsStats{} (an empty, never-written log), not an error.
type TlsStatsMap map[string]TlsStats

// lookup returns m[name], defaulting to the zero value when absent.
func (m TlsStatsMap) lookup(name string) TlsStats {
	return m[name]
}

// OrderType identifies the dominant resource-pressure signal chosen by the
// arbiter for one Select call.
type OrderType int

const (
	// OrderNone means no trigger fired; Select returns an empty list.
	OrderNone OrderType = iota
	OrderUrgent
	OrderMaxAge
	OrderDiskBloat
	OrderMemory
)

// String renders the order-type for logs and tests.
func (o OrderType) String() string {
	switch o {
	case OrderUrgent:
		return "URGENT"
	case OrderMaxAge:
		return "MAXAGE"
	case OrderDiskBloat:
		return "DISKBLOAT"
	case OrderMemory:
		return "MEMORY"
	default:
		return "NONE"
	}
}

// MinDiskFloor is the minimum disk-size floor used in bloat ratios, so a
// tiny disk footprint never produces an artificially huge ratio.
const MinDiskFloor uint64 = 100_000_000 // 100 * 10^6 bytes
