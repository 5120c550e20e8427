package flushtarget

import (
	"context"
	"sync"
	"time"

	"github.com/arborfs/flushnode/flushpolicy"
)

// MemTarget is an in-memory reference Target. It tracks a simple
// memory/disk gain profile that a caller seeds directly (via the Set*
// methods) and that collapses to zero on Flush, mimicking what a real
// flush would do to a target's statistics. It is guarded by a mutex in
// the same style as the teacher's WAL manager guards its pending-batch
// bookkeeping: short critical sections, no lock held across I/O.
type MemTarget struct {
	mu    sync.Mutex
	stats flushpolicy.FlushTarget
}

// NewMemTarget returns a MemTarget with zero-valued statistics.
func NewMemTarget(name string) *MemTarget {
	return &MemTarget{stats: flushpolicy.FlushTarget{Name: name}}
}

func (t *MemTarget) Name() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats.Name
}

// Stats returns a snapshot of the target's current statistics.
func (t *MemTarget) Stats() flushpolicy.FlushTarget {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}

// SetMemoryGain seeds the target's memory before/after statistics.
func (t *MemTarget) SetMemoryGain(before, after uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats.MemoryGain = flushpolicy.MemoryGain{Before: before, After: after}
}

// SetDiskGain seeds the target's disk before/after statistics.
func (t *MemTarget) SetDiskGain(before, after uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats.DiskGain = flushpolicy.DiskGain{Before: before, After: after}
}

// SetUrgent flags or unflags the target as urgent.
func (t *MemTarget) SetUrgent(urgent bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats.Urgent = urgent
}

// SetLastFlushTime backdates the target's last-flush time, for seeding
// age-based test scenarios. The zero time.Time denotes never-flushed.
func (t *MemTarget) SetLastFlushTime(at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats.LastFlushTime = at
}

func (t *MemTarget) setFlushedSerial(serial uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats.FlushedSerial = serial
}

// Flush collapses the target's gain profile to zero and stamps the
// current time as its last flush, simulating the effect a real flush
// would have on the statistics the policy reads.
func (t *MemTarget) Flush(_ context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats.MemoryGain = flushpolicy.MemoryGain{Before: t.stats.MemoryGain.After, After: t.stats.MemoryGain.After}
	t.stats.DiskGain = flushpolicy.DiskGain{Before: t.stats.DiskGain.After, After: t.stats.DiskGain.After}
	t.stats.Urgent = false
	t.stats.LastFlushTime = time.Now()
	return nil
}

// MemHandler is an in-memory reference Handler, owning a set of
// MemTargets and a monotonic transaction-log serial counter.
type MemHandler struct {
	mu      sync.Mutex
	name    string
	targets []*MemTarget
	serial  uint64
}

// NewMemHandler returns an empty MemHandler.
func NewMemHandler(name string) *MemHandler {
	return &MemHandler{name: name}
}

func (h *MemHandler) Name() string { return h.name }

// AddTarget registers t as owned by h.
func (h *MemHandler) AddTarget(t *MemTarget) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.targets = append(h.targets, t)
}

// Targets returns the handler's targets as the Target interface.
func (h *MemHandler) Targets() []Target {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Target, len(h.targets))
	for i, t := range h.targets {
		out[i] = t
	}
	return out
}

// CurrentSerial returns the handler's highest assigned serial.
func (h *MemHandler) CurrentSerial() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.serial
}

// Advance simulates delta new transaction-log records being appended.
func (h *MemHandler) Advance(delta uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.serial += delta
}

// MarkFlushed records that the named target has incorporated the
// handler's current serial. The flush engine calls this via the
// optional serialMarker interface after a target's Flush succeeds; it
// is a no-op if no target by that name is registered.
func (h *MemHandler) MarkFlushed(targetName string) {
	serial := h.CurrentSerial()
	h.mu.Lock()
	targets := append([]*MemTarget(nil), h.targets...)
	h.mu.Unlock()
	for _, t := range targets {
		if t.Name() == targetName {
			t.setFlushedSerial(serial)
			return
		}
	}
}
