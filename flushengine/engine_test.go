package flushengine_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arborfs/flushnode/flushengine"
	"github.com/arborfs/flushnode/flushpolicy"
	"github.com/arborfs/flushnode/flushtarget"
	"github.com/arborfs/flushnode/tlsstats"
)

func newTestStrategy(t *testing.T, cfg flushpolicy.PolicyConfig) *flushpolicy.FlushStrategy {
	t.Helper()
	fs, err := flushpolicy.NewPolicy(cfg)
	require.NoError(t, err)
	return fs
}

func baseTestConfig() flushpolicy.PolicyConfig {
	return flushpolicy.PolicyConfig{
		MaxMemoryGain:        5,
		GlobalMaxMemory:      1 << 40,
		TotalDiskBloatFactor: 1e9,
		MaxGlobalTlsSize:     1 << 40,
		DiskBloatFactor:      1e9,
		MaxTimeGain:          365 * 24 * time.Hour,
	}
}

func TestRunOnceFlushesInSelectOrder(t *testing.T) {
	h := flushtarget.NewMemHandler("h1")
	t1, t2 := flushtarget.NewMemTarget("t1"), flushtarget.NewMemTarget("t2")
	t1.SetMemoryGain(100, 90) // gain 10
	t2.SetMemoryGain(100, 80) // gain 20, should flush first
	// Recently flushed, so MAXAGE (which a never-flushed target always
	// trips) does not pre-empt the MEMORY ordering under test.
	t1.SetLastFlushTime(time.Now())
	t2.SetLastFlushTime(time.Now())
	h.AddTarget(t1)
	h.AddTarget(t2)
	h.Advance(100)

	registry := tlsstats.NewRegistry()
	strategy := newTestStrategy(t, baseTestConfig())
	engine := flushengine.NewEngine(strategy, registry, []flushtarget.Handler{h})

	decision, err := engine.RunOnce(context.Background())
	require.NoError(t, err)
	require.True(t, decision.Triggered())
	require.Equal(t, flushpolicy.OrderMemory, decision.OrderType)
	require.Equal(t, []string{"t2", "t1"}, []string{decision.Selected[0].Target.Name, decision.Selected[1].Target.Name})

	// Flushing collapses gain to zero, so a second tick finds nothing to do.
	decision2, err := engine.RunOnce(context.Background())
	require.NoError(t, err)
	require.False(t, decision2.Triggered())
}

type failingTarget struct {
	name string
	err  error
}

func (f *failingTarget) Name() string { return f.name }
func (f *failingTarget) Stats() flushpolicy.FlushTarget {
	return flushpolicy.FlushTarget{Name: f.name, MemoryGain: flushpolicy.MemoryGain{Before: 100, After: 0}}
}
func (f *failingTarget) Flush(context.Context) error { return f.err }

type staticHandler struct {
	name    string
	targets []flushtarget.Target
}

func (h *staticHandler) Name() string                 { return h.name }
func (h *staticHandler) Targets() []flushtarget.Target { return h.targets }
func (h *staticHandler) CurrentSerial() uint64         { return 0 }

func TestRunOnceIsolatesTargetFailures(t *testing.T) {
	ok := flushtarget.NewMemTarget("ok")
	ok.SetMemoryGain(100, 0)
	bad := &failingTarget{name: "bad", err: errors.New("disk full")}

	h1 := flushtarget.NewMemHandler("h1")
	h1.AddTarget(ok)
	h2 := &staticHandler{name: "h2", targets: []flushtarget.Target{bad}}

	registry := tlsstats.NewRegistry()
	strategy := newTestStrategy(t, baseTestConfig())
	engine := flushengine.NewEngine(strategy, registry, []flushtarget.Handler{h1, h2})

	decision, err := engine.RunOnce(context.Background())
	require.NoError(t, err)
	require.Len(t, decision.Selected, 2)
	require.Len(t, decision.Failed, 1)
	require.Equal(t, "bad", decision.Failed[0].Target)

	// ok's gain collapsed to zero despite bad's failure elsewhere.
	require.Equal(t, int64(0), ok.Stats().MemoryGain.Gain())
}

func TestRunOnceNoCandidatesIsANoOpDecision(t *testing.T) {
	registry := tlsstats.NewRegistry()
	strategy := newTestStrategy(t, baseTestConfig())
	engine := flushengine.NewEngine(strategy, registry, nil)

	decision, err := engine.RunOnce(context.Background())
	require.NoError(t, err)
	require.False(t, decision.Triggered())
	require.Equal(t, flushpolicy.OrderNone, decision.OrderType)
}
