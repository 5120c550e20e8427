package flushpolicy

import "time"

// age returns how long ago target last flushed, relative to now. A target
// that has never flushed is treated as infinitely old.
func age(now time.Time, t FlushTarget) time.Duration {
	if t.neverFlushed() {
		return time.Duration(1<<63 - 1) // effectively unbounded
	}
	d := now.Sub(t.LastFlushTime)
	if d < 0 {
		return 0
	}
	return d
}

// anyUrgent reports whether any candidate is flagged urgent.
func anyUrgent(candidates []FlushContext) bool {
	for _, c := range candidates {
		if c.Target.Urgent {
			return true
		}
	}
	return false
}

// anyOverAge reports whether any candidate's age meets or exceeds
// cfg.MaxTimeGain.
func anyOverAge(now time.Time, candidates []FlushContext, cfg PolicyConfig) bool {
	for _, c := range candidates {
		if age(now, c.Target) >= cfg.MaxTimeGain {
			return true
		}
	}
	return false
}

// diskBloatFloor returns the larger of before and MinDiskFloor, so ratios
// computed against a near-empty disk footprint don't blow up.
func diskBloatFloor(before uint64) float64 {
	if before < MinDiskFloor {
		return float64(MinDiskFloor)
	}
	return float64(before)
}

// diskBloatTriggered reports whether any single candidate, or the
// candidate set in aggregate, exceeds its disk-bloat ratio threshold.
func diskBloatTriggered(candidates []FlushContext, cfg PolicyConfig) bool {
	var sumGain int64
	var sumBefore uint64
	for _, c := range candidates {
		gain := c.Target.DiskGain.Gain()
		floor := diskBloatFloor(c.Target.DiskGain.Before)
		if float64(gain)/floor > cfg.DiskBloatFactor {
			return true
		}
		sumGain += gain
		sumBefore += c.Target.DiskGain.Before
	}
	if len(candidates) == 0 {
		return false
	}
	aggFloor := float64(len(candidates)) * float64(MinDiskFloor)
	if before := float64(sumBefore); before > aggFloor {
		aggFloor = before
	}
	return float64(sumGain)/aggFloor > cfg.TotalDiskBloatFactor
}

// referencedTlsBytes sums TlsStats.Bytes for the distinct set of handlers
// referenced by candidates, defaulting to the zero TlsStats for a handler
// absent from stats.
func referencedTlsBytes(candidates []FlushContext, stats TlsStatsMap) uint64 {
	seen := make(map[string]struct{}, len(candidates))
	var total uint64
	for _, c := range candidates {
		name := c.Handler.Name
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		total += stats.lookup(name).Bytes
	}
	return total
}

// memoryTriggered reports whether the MEMORY order-type's threshold
// condition holds, and whether it holds via a direct memory-gain path
// (per-target or aggregate) as opposed to solely via the TLS-size path.
// The distinction drives which comparator the arbiter selects.
func memoryTriggered(candidates []FlushContext, stats TlsStatsMap, cfg PolicyConfig) (triggered, viaGain bool) {
	var sumGain int64
	for _, c := range candidates {
		gain := c.Target.MemoryGain.Gain()
		if gain >= 0 && uint64(gain) >= cfg.MaxMemoryGain {
			return true, true
		}
		sumGain += gain
	}
	if sumGain >= 0 && uint64(sumGain) >= cfg.GlobalMaxMemory {
		return true, true
	}
	if referencedTlsBytes(candidates, stats) > cfg.MaxGlobalTlsSize {
		return true, false
	}
	return false, false
}
