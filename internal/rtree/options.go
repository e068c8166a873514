package rtree

// Default tuning values, named the way iamNilotpal-ignite's pkg/options
// names its Min/Max/Default segment-size constants.
const (
	DefaultCacheCapacity     = 1024
	DefaultCacheQuantization = 1e-5
	MinCacheCapacity         = 16
	MaxCacheCapacity         = 1 << 20
)

// Options mirrors the source tree's per-instance Options struct: which
// optional subsystems (query cache, node pool, space-filling bulk-load
// order) are enabled, and their tuning parameters. It is serialized
// alongside the tree itself so a reloaded tree restores the same
// configuration it was built with.
type Options struct {
	EnableSpatialClustering bool
	EnableQueryCache        bool
	EnableMemoryPool        bool
	EnableSpaceFillingSort  bool
	CacheCapacity           int
	CacheQuantization       float64
}

// Option configures an Options value. Functional options in the
// iamNilotpal-ignite pkg/options idiom.
type Option func(*Options)

// WithDefaultOptions returns the baseline configuration used by
// build_spatial_indexes: clustering, query cache, memory pool, and
// space-filling bulk-load order all enabled, with the default cache
// tuning.
func WithDefaultOptions() Options {
	return Options{
		EnableSpatialClustering: true,
		EnableQueryCache:        true,
		EnableMemoryPool:        true,
		EnableSpaceFillingSort:  true,
		CacheCapacity:           DefaultCacheCapacity,
		CacheQuantization:       DefaultCacheQuantization,
	}
}

// WithQueryCache toggles the LRU query cache.
func WithQueryCache(enabled bool) Option {
	return func(o *Options) { o.EnableQueryCache = enabled }
}

// WithMemoryPool toggles the interior-node pool.
func WithMemoryPool(enabled bool) Option {
	return func(o *Options) { o.EnableMemoryPool = enabled }
}

// WithSpaceFillingSort toggles space-filling-curve ordering for bulk-load.
// When disabled, bulk-load falls back to sorting by bounds midpoint X.
func WithSpaceFillingSort(enabled bool) Option {
	return func(o *Options) { o.EnableSpaceFillingSort = enabled }
}

// WithCacheCapacity sets the query cache's LRU capacity, clamped to
// [MinCacheCapacity, MaxCacheCapacity].
func WithCacheCapacity(capacity int) Option {
	return func(o *Options) {
		if capacity < MinCacheCapacity {
			capacity = MinCacheCapacity
		}
		if capacity > MaxCacheCapacity {
			capacity = MaxCacheCapacity
		}
		o.CacheCapacity = capacity
	}
}

// WithCacheQuantization sets the coordinate rounding quantum used to key
// the query cache.
func WithCacheQuantization(quantum float64) Option {
	return func(o *Options) { o.CacheQuantization = quantum }
}

// NewOptions builds Options starting from WithDefaultOptions and applying
// opts in order.
func NewOptions(opts ...Option) Options {
	o := WithDefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
