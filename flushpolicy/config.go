package flushpolicy

import (
	"errors"
	"math"
	"time"
)

// PolicyConfig holds the tunable thresholds for a FlushStrategy. All
// fields are required and must be strictly positive; NewPolicy rejects a
// PolicyConfig that violates this.
type PolicyConfig struct {
	// MaxMemoryGain is the per-target memory-gain threshold for the
	// MEMORY order-type.
	MaxMemoryGain uint64

	// GlobalMaxMemory is the aggregate memory-gain threshold across all
	// candidates for the MEMORY order-type.
	GlobalMaxMemory uint64

	// TotalDiskBloatFactor is the aggregate disk-bloat ratio threshold
	// for the DISKBLOAT order-type.
	TotalDiskBloatFactor float64

	// MaxGlobalTlsSize is the aggregate transaction-log size threshold,
	// summed across the handlers referenced by the candidate set, for
	// the MEMORY order-type's TLS-size path.
	MaxGlobalTlsSize uint64

	// DiskBloatFactor is the per-target disk-bloat ratio threshold for
	// the DISKBLOAT order-type.
	DiskBloatFactor float64

	// MaxTimeGain is the target-age threshold for the MAXAGE order-type.
	MaxTimeGain time.Duration
}

func (cfg PolicyConfig) validate() error {
	switch {
	case cfg.MaxMemoryGain == 0:
		return errors.New("flushpolicy: max_memory_gain must be positive")
	case cfg.GlobalMaxMemory == 0:
		return errors.New("flushpolicy: global_max_memory must be positive")
	case cfg.MaxGlobalTlsSize == 0:
		return errors.New("flushpolicy: max_global_tls_size must be positive")
	case cfg.MaxTimeGain <= 0:
		return errors.New("flushpolicy: max_time_gain must be positive")
	case cfg.TotalDiskBloatFactor <= 0 || math.IsNaN(cfg.TotalDiskBloatFactor):
		return errors.New("flushpolicy: total_disk_bloat_factor must be positive")
	case cfg.DiskBloatFactor <= 0 || math.IsNaN(cfg.DiskBloatFactor):
		return errors.New("flushpolicy: disk_bloat_factor must be positive")
	}
	return nil
}

// Clock abstracts the current time, so tests can pin it without sleeping.
type Clock interface {
	Now() time.Time
}

// systemClock is the default Clock, backed by time.Now.
type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

type options struct {
	clock Clock
	start *time.Time
}

// Option configures a FlushStrategy at construction time, in the
// functional-options style.
type Option func(*options)

// WithClock overrides the strategy's time source. Tests use this to make
// age-based decisions deterministic.
func WithClock(c Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithStart pins the strategy's notion of "now" to a fixed instant,
// bypassing the clock entirely. It takes precedence over WithClock.
func WithStart(t time.Time) Option {
	return func(o *options) { o.start = &t }
}

// FlushStrategy is an immutable, concurrency-safe evaluator of one
// PolicyConfig. Construct with NewPolicy.
type FlushStrategy struct {
	cfg   PolicyConfig
	clock Clock
	start *time.Time
}

// NewPolicy validates cfg and returns a FlushStrategy bound to it. It
// returns an error if any threshold is missing or out of range; it never
// panics on bad configuration, reserving panics for invariant violations
// discovered at Select time.
func NewPolicy(cfg PolicyConfig, opts ...Option) (*FlushStrategy, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	o := &options{clock: systemClock{}}
	for _, opt := range opts {
		opt(o)
	}
	return &FlushStrategy{cfg: cfg, clock: o.clock, start: o.start}, nil
}

// Config returns the PolicyConfig the strategy was constructed with.
func (fs *FlushStrategy) Config() PolicyConfig {
	return fs.cfg
}

// now resolves the strategy's current-time source: a pinned start, if
// set, otherwise the configured clock.
func (fs *FlushStrategy) now() time.Time {
	if fs.start != nil {
		return *fs.start
	}
	return fs.clock.Now()
}
