package cmd

import (
	"github.com/arborfs/flushnode/flushpolicy"
	"github.com/arborfs/flushnode/flushtarget"
	"github.com/arborfs/flushnode/tlsstats"
)

// buildDemoNode seeds a handful of in-memory handlers and targets with
// representative statistics, for use by `run` and `decide` when no
// other handler source is wired in. A production embedding would
// construct its handlers from its own storage/index layer instead.
func buildDemoNode(registry *tlsstats.Registry) []flushtarget.Handler {
	docs := flushtarget.NewMemHandler("documents")
	docsMemtable := flushtarget.NewMemTarget("documents-memtable")
	docsMemtable.SetMemoryGain(512<<20, 300<<20)
	docs.AddTarget(docsMemtable)
	docs.Advance(5000)
	registry.Update("documents", flushpolicy.TlsStats{Bytes: 256 << 20, FirstSerial: 1, LastSerial: 5000})

	attrs := flushtarget.NewMemHandler("attributes")
	attrsIndex := flushtarget.NewMemTarget("attributes-index")
	attrsIndex.SetDiskGain(4<<30, 3<<30)
	attrs.AddTarget(attrsIndex)
	attrs.Advance(1200)
	registry.Update("attributes", flushpolicy.TlsStats{Bytes: 64 << 20, FirstSerial: 1, LastSerial: 1200})

	return []flushtarget.Handler{docs, attrs}
}
