package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"
)

// networkErrorSignatures are substrings of browser and transport errors
// that indicate a transient condition worth retrying. Chrome surfaces
// these as net:: codes in the error text.
var networkErrorSignatures = []string{
	"net::ERR_INTERNET_DISCONNECTED",
	"net::ERR_PROXY_CONNECTION_FAILED",
	"net::ERR_CONNECTION_TIMED_OUT",
	"net::ERR_CONNECTION_RESET",
	"net::ERR_NAME_NOT_RESOLVED",
	"net::ERR_NETWORK_CHANGED",
	"net::ERR_CONNECTION_REFUSED",
	"net::ERR_FAILED",
	"chrome not reachable",
	"disconnected",
	"timeout",
	"deadline exceeded",
}

// IsNetworkError reports whether err looks like a transient
// connectivity, timeout or navigation failure.
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := err.Error()
	for _, sig := range networkErrorSignatures {
		if strings.Contains(msg, sig) {
			return true
		}
	}
	return false
}

// Executor runs fallible network-bound operations with bounded retry and
// exponential backoff. Non-retryable errors are returned immediately.
type Executor struct {
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
	retryable   func(error) bool
	logger      *slog.Logger
}

// New builds an Executor making maxAttempts total attempts with delays of
// baseDelay * 2^attempt, capped at one minute, jittered by up to 10%.
// Errors are classified by IsNetworkError unless WithClassifier overrides it.
func New(maxAttempts int, baseDelay time.Duration, logger *slog.Logger) *Executor {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		maxDelay:    time.Minute,
		retryable:   IsNetworkError,
		logger:      logger,
	}
}

// WithClassifier replaces the retryability decision.
func (e *Executor) WithClassifier(f func(error) bool) *Executor {
	e.retryable = f
	return e
}

// Do runs op until it succeeds, a non-retryable error occurs, the context
// is cancelled, or attempts are exhausted. name only labels log lines and
// the terminal error.
func (e *Executor) Do(ctx context.Context, name string, op func(context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt < e.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = op(ctx)
		if lastErr == nil {
			if attempt > 0 {
				e.logger.Info("operation succeeded after retry", "operation", name, "attempt", attempt+1)
			}
			return nil
		}

		// The caller going away is not a failure of the operation.
		if err := ctx.Err(); err != nil {
			return err
		}
		if !e.retryable(lastErr) {
			return lastErr
		}
		if attempt == e.maxAttempts-1 {
			break
		}

		delay := e.backoff(attempt)
		e.logger.Warn("operation failed, retrying",
			"operation", name,
			"attempt", attempt+1,
			"max_attempts", e.maxAttempts,
			"delay", delay,
			"error", lastErr)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	e.logger.Error("operation failed after all attempts",
		"operation", name, "attempts", e.maxAttempts, "error", lastErr)
	return fmt.Errorf("%s failed after %d attempts: %w", name, e.maxAttempts, lastErr)
}

func (e *Executor) backoff(attempt int) time.Duration {
	delay := e.baseDelay << uint(attempt)
	if delay > e.maxDelay || delay <= 0 {
		delay = e.maxDelay
	}
	// ±10% jitter
	jitter := time.Duration(rand.Int63n(int64(delay)/5+1)) - delay/10
	delay += jitter
	if delay < 0 {
		delay = 0
	}
	return delay
}
