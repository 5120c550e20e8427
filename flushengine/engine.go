// Package flushengine is the out-of-scope collaborator the policy core
// names but does not implement: the loop that actually invokes the
// targets flushpolicy.Select chooses, at a configured interval, with
// bounded concurrency and failure isolation across handlers.
package flushengine

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/arborfs/flushnode/flushpolicy"
	"github.com/arborfs/flushnode/flushtarget"
	"github.com/arborfs/flushnode/internal/log"
	"github.com/arborfs/flushnode/tlsstats"
)

// serialMarker is implemented by Handlers that want to be told which
// target just flushed successfully, so they can advance its
// flushed-serial bookkeeping. It is optional: handlers that manage this
// internally inside Target.Flush don't need it.
type serialMarker interface {
	MarkFlushed(targetName string)
}

type config struct {
	workerLimit int
	metrics     *Metrics
}

// Option configures an Engine at construction time.
type Option func(*config)

// WithWorkerLimit bounds how many handlers the engine flushes
// concurrently within one RunOnce. The default is 4.
func WithWorkerLimit(n int) Option {
	return func(c *config) { c.workerLimit = n }
}

// WithMetrics attaches a Metrics instance the engine updates on every
// tick. Without this option, metrics are not recorded.
func WithMetrics(m *Metrics) Option {
	return func(c *config) { c.metrics = m }
}

// Engine owns the candidate handlers, the transaction-log registry, and
// the policy strategy, and drives the periodic flush loop.
type Engine struct {
	strategy *flushpolicy.FlushStrategy
	registry *tlsstats.Registry
	handlers []flushtarget.Handler

	workerLimit int
	metrics     *Metrics
}

// NewEngine returns an Engine ready to run against handlers, using
// strategy to decide what to flush and registry as the source of
// transaction-log statistics.
func NewEngine(strategy *flushpolicy.FlushStrategy, registry *tlsstats.Registry, handlers []flushtarget.Handler, opts ...Option) *Engine {
	c := &config{workerLimit: 4}
	for _, opt := range opts {
		opt(c)
	}
	return &Engine{
		strategy:    strategy,
		registry:    registry,
		handlers:    handlers,
		workerLimit: c.workerLimit,
		metrics:     c.metrics,
	}
}

// RunOnce gathers the current candidate set, asks the strategy to
// select and order it, and invokes Flush on each selected target.
// Targets belonging to the same handler are invoked sequentially, in
// the order Select returned them, since they share one transaction log.
// Handlers are invoked concurrently, bounded by the engine's worker
// limit. A target's Flush failure is logged and counted but does not
// prevent other targets, or other handlers, from flushing.
func (e *Engine) RunOnce(ctx context.Context) (Decision, error) {
	start := time.Now()

	candidates := flushtarget.Contexts(e.handlers)
	stats := e.registry.Snapshot()
	selected := e.strategy.Select(candidates, stats)
	orderType := e.strategy.Classify(candidates, stats)

	decision := Decision{At: start, OrderType: orderType, Candidate: len(candidates), Selected: selected}
	if len(selected) == 0 {
		decision.Elapsed = time.Since(start)
		e.observe(decision)
		log.Infow(ctx, "flush tick produced no decision", "candidates", len(candidates))
		return decision, nil
	}

	byHandler := groupByHandler(selected)
	handlerIndex := e.handlerIndex()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workerLimit)

	failuresCh := make(chan TargetError, len(selected))
	for handlerName, contexts := range byHandler {
		handlerName, contexts := handlerName, contexts
		h, ok := handlerIndex[handlerName]
		if !ok {
			continue
		}
		g.Go(func() error {
			tctx := log.AddTags(gctx, "handler", handlerName)
			flushHandler(tctx, h, contexts, failuresCh)
			return nil
		})
	}
	// errgroup's worker functions never return an error; the group is
	// only used for bounded fan-out, so this can't actually fail.
	_ = g.Wait()
	close(failuresCh)

	for f := range failuresCh {
		decision.Failed = append(decision.Failed, f)
	}

	decision.Elapsed = time.Since(start)
	e.observe(decision)
	log.Infow(ctx, "flush tick decided",
		"order_type", orderType.String(),
		"candidates", len(candidates),
		"selected", len(selected),
		"failed", len(decision.Failed),
		"elapsed", decision.Elapsed,
	)
	return decision, nil
}

// Run invokes RunOnce once immediately and then on every tick of a
// ticker at the given interval, until ctx is cancelled.
func (e *Engine) Run(ctx context.Context, interval time.Duration) error {
	if _, err := e.RunOnce(ctx); err != nil {
		return fmt.Errorf("failed initial flush tick: %w", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := e.RunOnce(ctx); err != nil {
				log.Errorf(ctx, "flush tick failed: %v", err)
			}
		}
	}
}

func flushHandler(ctx context.Context, h flushtarget.Handler, contexts []flushpolicy.FlushContext, failures chan<- TargetError) {
	byName := make(map[string]flushtarget.Target, len(h.Targets()))
	for _, t := range h.Targets() {
		byName[t.Name()] = t
	}

	for _, fc := range contexts {
		target, ok := byName[fc.Target.Name]
		if !ok {
			continue
		}
		if err := target.Flush(ctx); err != nil {
			log.Errorf(ctx, "failed to flush target %s: %v", fc.Target.Name, err)
			failures <- TargetError{Handler: h.Name(), Target: fc.Target.Name, Err: err}
			continue
		}
		if marker, ok := h.(serialMarker); ok {
			marker.MarkFlushed(fc.Target.Name)
		}
	}
}

func groupByHandler(contexts []flushpolicy.FlushContext) map[string][]flushpolicy.FlushContext {
	out := make(map[string][]flushpolicy.FlushContext)
	for _, c := range contexts {
		out[c.Handler.Name] = append(out[c.Handler.Name], c)
	}
	return out
}

func (e *Engine) handlerIndex() map[string]flushtarget.Handler {
	out := make(map[string]flushtarget.Handler, len(e.handlers))
	for _, h := range e.handlers {
		out[h.Name()] = h
	}
	return out
}

func (e *Engine) observe(d Decision) {
	if e.metrics == nil {
		return
	}
	e.metrics.observe(d, d.OrderType.String())
}
