package cache

import (
	"time"

	"github.com/NoahdaBoat/gisevo/internal/geoerr"
)

// isRetryable reports whether err represents a transient condition worth
// retrying. Corruption, checksum, and version mismatches are structural:
// retrying a Load against the same bytes would just fail the same way, so
// only I/O-classified failures retry.
func isRetryable(err error) bool {
	switch geoerr.CodeOf(err) {
	case geoerr.CodeIO, geoerr.CodeDiskSpace:
		return true
	default:
		return false
	}
}

// retryBackoff returns the delay before the given retry attempt (1-based),
// following 100ms * 2^attempt + 50ms * attempt.
func retryBackoff(attempt int) time.Duration {
	base := retryBaseDelay
	for i := 0; i < attempt; i++ {
		base *= 2
	}
	return base + retryJitterPerAttempt*time.Duration(attempt)
}

// withRetry runs op up to maxAttempts times, sleeping with exponential
// backoff between attempts, but returns immediately on the first
// non-retryable error.
func withRetry(maxAttempts int, op func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := op()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isRetryable(err) {
			return err
		}
		if attempt < maxAttempts {
			time.Sleep(retryBackoff(attempt))
		}
	}
	return lastErr
}
