package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/openai/openai-go"
)

const (
	defaultRetryAttempts  = 5
	defaultRetryBaseDelay = 1 * time.Second
	defaultRetryMaxDelay  = 10 * time.Second
)

// retryer reruns a completion call on transient failures with
// exponential backoff.
type retryer struct {
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
	sleeper     func(time.Duration)
}

func newRetryer() retryer {
	return retryer{
		maxAttempts: defaultRetryAttempts,
		baseDelay:   defaultRetryBaseDelay,
		maxDelay:    defaultRetryMaxDelay,
	}
}

func (r retryer) attempts() int {
	if r.maxAttempts <= 0 {
		return 1
	}
	return r.maxAttempts
}

// Do runs fn until it succeeds, fails permanently, or attempts run out.
func (r retryer) Do(ctx context.Context, op string, fn func(context.Context) (string, error)) (string, error) {
	attempts := r.attempts()
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		content, err := fn(ctx)
		if err == nil {
			return content, nil
		}
		if attempt >= attempts || !retryable(ctx, err) {
			return "", err
		}
		if err := r.sleep(ctx, r.backoffDelay(attempt)); err != nil {
			return "", err
		}
		lastErr = err
	}
	return "", fmt.Errorf("%s: failed after %d attempts: %w", op, attempts, lastErr)
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var emptyErr *emptyContentError
	if errors.As(err, &emptyErr) {
		return true
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusRequestTimeout,
			apiErr.StatusCode == http.StatusTooManyRequests,
			apiErr.StatusCode >= http.StatusInternalServerError:
			return true
		default:
			return false
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}

// backoffDelay doubles from the base each attempt and never exceeds
// the cap: attempt 1 waits base, attempt 2 waits base*2, and so on.
func (r retryer) backoffDelay(attempt int) time.Duration {
	base := r.baseDelay
	maxDelay := r.maxDelay
	if maxDelay <= 0 {
		maxDelay = defaultRetryMaxDelay
	}
	if base <= 0 {
		return 0
	}
	delay := base
	for i := 1; i < attempt; i++ {
		if delay > maxDelay/2 {
			return maxDelay
		}
		delay *= 2
	}
	if delay > maxDelay {
		return maxDelay
	}
	return delay
}

func (r retryer) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if r.sleeper != nil {
		r.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type emptyContentError struct {
	Op           string
	FinishReason string
}

func (e *emptyContentError) Error() string {
	return fmt.Sprintf("%s: empty content (finish_reason=%q)", e.Op, e.FinishReason)
}
