package flushpolicy

import "time"

// decision is the arbiter's verdict: the dominant order-type, plus,
// when that order-type is OrderMemory, whether the MEMORY trigger fired
// via a direct memory-gain threshold (as opposed to solely via the
// TLS-size path) — the comparator needs this to choose its primary key.
type decision struct {
	orderType     OrderType
	memoryViaGain bool
}

// decide runs the four trigger evaluators against candidates and returns
// the single dominant order-type, or OrderNone if nothing triggers.
//
// Precedence is URGENT, then MAXAGE, then MEMORY, then DISKBLOAT. This
// looks backwards against the order-type list in spec.md's trigger
// table, which lists DISKBLOAT ahead of MEMORY — but the specification
// is explicit that when both DISKBLOAT's and MEMORY's conditions hold at
// once, MEMORY's comparator is the one actually used (see DESIGN.md).
// Evaluating MEMORY before DISKBLOAT is the direct implementation of
// that rule, not a deviation from it: DISKBLOAT only wins when MEMORY's
// condition does not also hold.
func decide(now time.Time, candidates []FlushContext, stats TlsStatsMap, cfg PolicyConfig) decision {
	if anyUrgent(candidates) {
		return decision{orderType: OrderUrgent}
	}
	if anyOverAge(now, candidates, cfg) {
		return decision{orderType: OrderMaxAge}
	}
	if triggered, viaGain := memoryTriggered(candidates, stats, cfg); triggered {
		return decision{orderType: OrderMemory, memoryViaGain: viaGain}
	}
	if diskBloatTriggered(candidates, cfg) {
		return decision{orderType: OrderDiskBloat}
	}
	return decision{orderType: OrderNone}
}
