package flushpolicy

import "time"

// Select is the core operation: given the current candidate flush
// contexts and a transaction-log snapshot, it returns candidates ordered
// by the dominant order-type's comparator, or an empty slice if no
// trigger condition holds.
//
// Select is pure: it performs no I/O, takes no locks, and retains no
// state between calls. candidates and stats must be a consistent
// snapshot for the duration of the call — Select reads them once and
// does not re-read them.
func (fs *FlushStrategy) Select(candidates []FlushContext, stats TlsStatsMap) []FlushContext {
	return fs.selectAt(candidates, stats, fs.now())
}

// SelectAt is Select with an explicit "now", bypassing both the
// strategy's clock and any pinned start. Tests that need a different
// instant per call without constructing a new strategy use this.
func (fs *FlushStrategy) SelectAt(candidates []FlushContext, stats TlsStatsMap, now time.Time) []FlushContext {
	return fs.selectAt(candidates, stats, now)
}

func (fs *FlushStrategy) selectAt(candidates []FlushContext, stats TlsStatsMap, now time.Time) []FlushContext {
	out, _ := fs.selectWithOrderType(candidates, stats, now)
	return out
}

// Classify reports which order-type Select(candidates, stats) would
// choose, without materializing the sorted output. Callers that need to
// log or label a decision (the flush engine) use this instead of
// re-deriving the order-type from the returned list's contents.
func (fs *FlushStrategy) Classify(candidates []FlushContext, stats TlsStatsMap) OrderType {
	_, orderType := fs.selectWithOrderType(candidates, stats, fs.now())
	return orderType
}

func (fs *FlushStrategy) selectWithOrderType(candidates []FlushContext, stats TlsStatsMap, now time.Time) ([]FlushContext, OrderType) {
	if len(candidates) == 0 {
		return []FlushContext{}, OrderNone
	}

	d := decide(now, candidates, stats, fs.cfg)
	if d.orderType == OrderNone {
		return []FlushContext{}, OrderNone
	}

	out := make([]FlushContext, len(candidates))
	copy(out, candidates)
	sortCandidates(now, out, stats, d)
	return out, d.orderType
}
