package llm

import (
	"context"
	"errors"
	"testing"
	"time"
)

func testRetryer(attempts int, slept *[]time.Duration) retryer {
	r := newRetryer()
	r.maxAttempts = attempts
	r.baseDelay = 10 * time.Millisecond
	r.maxDelay = 80 * time.Millisecond
	r.sleeper = func(d time.Duration) {
		if slept != nil {
			*slept = append(*slept, d)
		}
	}
	return r
}

func TestDoRetriesTransientThenSucceeds(t *testing.T) {
	var slept []time.Duration
	calls := 0
	content, err := testRetryer(5, &slept).Do(context.Background(), "test", func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", &emptyContentError{Op: "test"}
		}
		return "done", nil
	})
	if err != nil || content != "done" {
		t.Fatalf("Do = %q, %v", content, err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if len(slept) != 2 {
		t.Fatalf("slept %d times, want 2", len(slept))
	}
	// Exponential: base, then base*2.
	if slept[0] != 10*time.Millisecond || slept[1] != 20*time.Millisecond {
		t.Errorf("delays = %v", slept)
	}
}

func TestDoStopsOnPermanentError(t *testing.T) {
	permanent := errors.New("model not found")
	calls := 0
	_, err := testRetryer(5, nil).Do(context.Background(), "test", func(context.Context) (string, error) {
		calls++
		return "", permanent
	})
	if !errors.Is(err, permanent) {
		t.Fatalf("err = %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDoGivesUpAfterMaxAttempts(t *testing.T) {
	calls := 0
	_, err := testRetryer(3, nil).Do(context.Background(), "test", func(context.Context) (string, error) {
		calls++
		return "", &emptyContentError{Op: "test"}
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDoHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	_, err := testRetryer(5, nil).Do(ctx, "test", func(context.Context) (string, error) {
		calls++
		return "", &emptyContentError{Op: "test"}
	})
	var emptyErr *emptyContentError
	if !errors.As(err, &emptyErr) {
		t.Fatalf("err = %v, want the attempt's own error without retries", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestBackoffDelayCapped(t *testing.T) {
	r := newRetryer()
	r.baseDelay = time.Second
	r.maxDelay = 10 * time.Second
	want := []time.Duration{
		1 * time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second, 10 * time.Second, 10 * time.Second,
	}
	for i, expected := range want {
		if got := r.backoffDelay(i + 1); got != expected {
			t.Errorf("backoffDelay(%d) = %v, want %v", i+1, got, expected)
		}
	}
}

func TestRetryableClassification(t *testing.T) {
	ctx := context.Background()
	if retryable(ctx, context.Canceled) {
		t.Error("context cancellation must not retry")
	}
	if retryable(ctx, errors.New("invalid api key")) {
		t.Error("unknown errors must not retry")
	}
	if !retryable(ctx, &emptyContentError{Op: "x"}) {
		t.Error("empty content should retry")
	}
}
