// Package tlsstats owns the per-handler transaction-log statistics the
// flush policy consumes. A real transaction log's storage and
// serial-number bookkeeping are out of scope for this repository; this
// package gives the engine and tests a concrete, concurrency-safe place
// to source a flushpolicy.TlsStatsMap snapshot from.
package tlsstats

import (
	"sync"

	"github.com/arborfs/flushnode/flushpolicy"
)

// Registry is a synchronized map from handler name to TlsStats. Update
// is called by whatever owns the real transaction log (or, in tests and
// the demo CLI, by code simulating one); Snapshot is called by the
// engine immediately before each policy evaluation.
type Registry struct {
	mu    sync.Mutex
	stats map[string]flushpolicy.TlsStats
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{stats: make(map[string]flushpolicy.TlsStats)}
}

// Update replaces the stored TlsStats for handler.
func (r *Registry) Update(handler string, stats flushpolicy.TlsStats) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats[handler] = stats
}

// Advance adds delta bytes and serials to handler's existing stats,
// creating an entry if one doesn't exist yet.
func (r *Registry) Advance(handler string, bytes, serials uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.stats[handler]
	if s.FirstSerial == 0 && s.LastSerial == 0 {
		s.FirstSerial = 1
	}
	s.Bytes += bytes
	s.LastSerial += serials
	r.stats[handler] = s
}

// Snapshot returns a copy of the registry's current state. Copying
// under lock, rather than returning the live map, is what lets callers
// hand the result to flushpolicy.Select without re-reading it mid-call:
// a concurrent Update after Snapshot returns cannot retroactively change
// a decision already in flight.
func (r *Registry) Snapshot() flushpolicy.TlsStatsMap {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(flushpolicy.TlsStatsMap, len(r.stats))
	for k, v := range r.stats {
		out[k] = v
	}
	return out
}
