package flushpolicy

import (
	"sort"
	"time"
)

// less reports whether a should sort before b for the given order-type.
// Every comparator breaks ties by ascending target name, so Select's
// output is fully deterministic regardless of input order.
func less(now time.Time, a, b FlushContext, stats TlsStatsMap, d decision) bool {
	switch d.orderType {
	case OrderUrgent:
		// Urgent candidates precede non-urgent ones; within each group,
		// fall through to age, the next most time-sensitive signal.
		if a.Target.Urgent != b.Target.Urgent {
			return a.Target.Urgent
		}
		return lessByAge(now, a, b)
	case OrderMaxAge:
		return lessByAge(now, a, b)
	case OrderDiskBloat:
		return lessByDiskGain(a, b)
	case OrderMemory:
		if d.memoryViaGain {
			return lessByMemory(a, b, stats)
		}
		return lessByTlsRetired(a, b, stats)
	default:
		return lessByName(a, b)
	}
}

func lessByName(a, b FlushContext) bool {
	return a.Target.Name < b.Target.Name
}

// lessByAge orders the older (larger age) target first.
func lessByAge(now time.Time, a, b FlushContext) bool {
	ageA, ageB := age(now, a.Target), age(now, b.Target)
	if ageA != ageB {
		return ageA > ageB
	}
	return lessByName(a, b)
}

// lessByDiskGain orders the larger disk-gain target first.
func lessByDiskGain(a, b FlushContext) bool {
	gainA, gainB := a.Target.DiskGain.Gain(), b.Target.DiskGain.Gain()
	if gainA != gainB {
		return gainA > gainB
	}
	return lessByName(a, b)
}

// lessByMemory orders the larger memory-gain target first, falling back
// to the TLS-size sub-order (the amount of a handler's transaction log a
// target's flush would retire) when two targets have equal memory gain.
// Negative gains are treated as zero for comparison purposes only; the
// underlying FlushTarget value is never mutated.
func lessByMemory(a, b FlushContext, stats TlsStatsMap) bool {
	gainA, gainB := clampGain(a.Target.MemoryGain.Gain()), clampGain(b.Target.MemoryGain.Gain())
	if gainA != gainB {
		return gainA > gainB
	}
	tlsA, tlsB := tlsRetired(a, stats), tlsRetired(b, stats)
	if tlsA != tlsB {
		return tlsA > tlsB
	}
	return lessByName(a, b)
}

func clampGain(g int64) int64 {
	if g < 0 {
		return 0
	}
	return g
}

// lessByTlsRetired orders the target that would retire more of its
// handler's transaction log first. Used when MEMORY triggers solely via
// the aggregate TLS-size path, where gain differences below the
// per-target threshold are not the relevant signal.
func lessByTlsRetired(a, b FlushContext, stats TlsStatsMap) bool {
	tlsA, tlsB := tlsRetired(a, stats), tlsRetired(b, stats)
	if tlsA != tlsB {
		return tlsA > tlsB
	}
	return lessByName(a, b)
}

// tlsRetired returns the number of unreplayed log entries flushing c's
// target would retire: its handler's last serial minus the target's own
// flushed serial. This must use 64-bit unsigned arithmetic since serials
// routinely exceed the 32-bit range.
func tlsRetired(c FlushContext, stats TlsStatsMap) uint64 {
	s := stats.lookup(c.Handler.Name)
	if c.Target.FlushedSerial >= s.LastSerial {
		return 0
	}
	return s.LastSerial - c.Target.FlushedSerial
}

// sortCandidates sorts candidates in place per the chosen order-type's
// comparator, using a stable sort so equal elements keep their relative
// input order before the name tiebreak resolves any remaining ties.
func sortCandidates(now time.Time, candidates []FlushContext, stats TlsStatsMap, d decision) {
	sort.SliceStable(candidates, func(i, j int) bool {
		return less(now, candidates[i], candidates[j], stats, d)
	})
}
