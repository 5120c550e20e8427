package tlsstats_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arborfs/flushnode/flushpolicy"
	"github.com/arborfs/flushnode/tlsstats"
)

func TestSnapshotIsolation(t *testing.T) {
	r := tlsstats.NewRegistry()
	r.Update("h1", flushpolicy.TlsStats{Bytes: 100, LastSerial: 10})

	snap := r.Snapshot()
	require.Equal(t, uint64(100), snap["h1"].Bytes)

	r.Update("h1", flushpolicy.TlsStats{Bytes: 999, LastSerial: 99})

	// The earlier snapshot must not observe the later update.
	require.Equal(t, uint64(100), snap["h1"].Bytes)

	snap2 := r.Snapshot()
	require.Equal(t, uint64(999), snap2["h1"].Bytes)
}

func TestAdvanceAccumulates(t *testing.T) {
	r := tlsstats.NewRegistry()
	r.Advance("h1", 1000, 5)
	r.Advance("h1", 500, 3)

	snap := r.Snapshot()
	require.Equal(t, uint64(1500), snap["h1"].Bytes)
	require.Equal(t, uint64(8), snap["h1"].LastSerial) // 5 + 3 serials; FirstSerial is seeded to 1
}

func TestMissingHandlerDefaultsToZeroValue(t *testing.T) {
	r := tlsstats.NewRegistry()
	snap := r.Snapshot()

	var got flushpolicy.TlsStats = snap["unknown"]
	require.Equal(t, flushpolicy.TlsStats{}, got)
}
