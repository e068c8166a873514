package cache

import "time"

// Default tuning values for a Manager, named in the iamNilotpal-ignite
// pkg/options style (Default/Min/Max constants paired with functional
// options).
const (
	DefaultMaxRetryAttempts        = 3
	DefaultCorruptionThresholdByte = 1024
	MinRetryAttempts               = 1
	MaxRetryAttempts               = 10

	// retryBaseDelay and retryJitterPerAttempt parameterize the backoff
	// formula 100ms * 2^attempt + 50ms * attempt.
	retryBaseDelay        = 100 * time.Millisecond
	retryJitterPerAttempt = 50 * time.Millisecond
)

// Options configures a Manager's validation strictness and retry
// discipline. Validate consults EnableDeepValidation and
// CorruptionThresholdBytes; EnableCorruptionDetection,
// EnableVersionValidation, and EnableChecksumValidation are carried but
// not consulted, so the magic, version, and checksum checks always run.
type Options struct {
	EnableCorruptionDetection bool
	EnableVersionValidation   bool
	EnableChecksumValidation  bool
	EnableDeepValidation      bool
	MaxRetryAttempts          int
	CorruptionThresholdBytes  int64
}

// OptionFunc configures an Options value.
type OptionFunc func(*Options)

// WithDefaultOptions returns the baseline configuration: every validation
// enabled except deep (R-tree structural) validation, with the default
// retry bound and corruption threshold.
func WithDefaultOptions() Options {
	return Options{
		EnableCorruptionDetection: true,
		EnableVersionValidation:   true,
		EnableChecksumValidation:  true,
		EnableDeepValidation:      false,
		MaxRetryAttempts:          DefaultMaxRetryAttempts,
		CorruptionThresholdBytes:  DefaultCorruptionThresholdByte,
	}
}

// WithDeepValidation toggles a dry parse of the serialized R-trees during
// Validate, catching corruption that a magic/checksum check alone misses.
func WithDeepValidation(enabled bool) OptionFunc {
	return func(o *Options) { o.EnableDeepValidation = enabled }
}

// WithMaxRetryAttempts sets the retry bound for Load/Save, clamped to
// [MinRetryAttempts, MaxRetryAttempts].
func WithMaxRetryAttempts(attempts int) OptionFunc {
	return func(o *Options) {
		if attempts < MinRetryAttempts {
			attempts = MinRetryAttempts
		}
		if attempts > MaxRetryAttempts {
			attempts = MaxRetryAttempts
		}
		o.MaxRetryAttempts = attempts
	}
}

// WithCorruptionThresholdBytes sets the minimum cache file size Validate
// accepts before declaring the file corrupted outright.
func WithCorruptionThresholdBytes(n int64) OptionFunc {
	return func(o *Options) {
		if n > 0 {
			o.CorruptionThresholdBytes = n
		}
	}
}

// NewOptions builds Options starting from WithDefaultOptions and applying
// opts in order.
func NewOptions(opts ...OptionFunc) Options {
	o := WithDefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
