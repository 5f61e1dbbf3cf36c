package retry

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

var errFlaky = errors.New("flaky")

func recordSleeps(delays *[]time.Duration) func(time.Duration) {
	return func(d time.Duration) { *delays = append(*delays, d) }
}

func alwaysRetry(error) Decision { return Decision{Retry: true} }

func TestDoStopsOnSuccess(t *testing.T) {
	var delays []time.Duration
	calls := 0
	policy := Policy{Attempts: 5, BaseDelay: time.Second, MaxDelay: 16 * time.Second, Sleeper: recordSleeps(&delays)}
	err := policy.Do(context.Background(), "op", alwaysRetry, func(context.Context) error {
		calls++
		if calls < 3 {
			return errFlaky
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do returned error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
	want := []time.Duration{time.Second, 2 * time.Second}
	if len(delays) != len(want) || delays[0] != want[0] || delays[1] != want[1] {
		t.Fatalf("unexpected delays: %v", delays)
	}
}

func TestDoExhaustsBudget(t *testing.T) {
	var delays []time.Duration
	calls := 0
	policy := Policy{Attempts: 5, BaseDelay: time.Second, MaxDelay: 16 * time.Second, Sleeper: recordSleeps(&delays)}
	err := policy.Do(context.Background(), "completion", alwaysRetry, func(context.Context) error {
		calls++
		return errFlaky
	})
	if !errors.Is(err, ErrExhausted) || !errors.Is(err, errFlaky) {
		t.Fatalf("expected exhausted error wrapping cause, got %v", err)
	}
	if calls != 5 {
		t.Fatalf("expected 5 calls, got %d", calls)
	}
	want := []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second}
	if len(delays) != len(want) {
		t.Fatalf("expected %d sleeps, got %v", len(want), delays)
	}
	for i := range want {
		if delays[i] != want[i] {
			t.Fatalf("delay %d: got %s want %s", i, delays[i], want[i])
		}
	}
}

func TestDoDoesNotRetryPermanentErrors(t *testing.T) {
	calls := 0
	policy := Policy{Attempts: 5, BaseDelay: time.Second, Sleeper: func(time.Duration) { t.Fatal("unexpected sleep") }}
	err := policy.Do(context.Background(), "op", func(error) Decision { return Decision{} }, func(context.Context) error {
		calls++
		return errFlaky
	})
	if !errors.Is(err, errFlaky) || errors.Is(err, ErrExhausted) {
		t.Fatalf("expected raw error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected one call, got %d", calls)
	}
}

func TestDoHonoursRetryAfterAndCap(t *testing.T) {
	var delays []time.Duration
	policy := Policy{Attempts: 2, BaseDelay: time.Second, MaxDelay: 5 * time.Second, Sleeper: recordSleeps(&delays)}
	_ = policy.Do(context.Background(), "op", func(error) Decision {
		return Decision{Retry: true, After: time.Minute}
	}, func(context.Context) error { return errFlaky })
	if len(delays) != 1 || delays[0] != 5*time.Second {
		t.Fatalf("expected capped retry-after delay, got %v", delays)
	}
}

func TestDoStopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	policy := Policy{Attempts: 5, BaseDelay: time.Second, Sleeper: func(time.Duration) { cancel() }}
	err := policy.Do(ctx, "op", alwaysRetry, func(context.Context) error {
		calls++
		return errFlaky
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected one call before cancellation, got %d", calls)
	}
}

func TestZeroPolicyRunsOnce(t *testing.T) {
	calls := 0
	err := Policy{}.Do(context.Background(), "op", alwaysRetry, func(context.Context) error {
		calls++
		return errFlaky
	})
	if calls != 1 || !errors.Is(err, ErrExhausted) {
		t.Fatalf("expected single exhausted attempt, calls=%d err=%v", calls, err)
	}
}

func TestParseRetryAfter(t *testing.T) {
	if d, ok := ParseRetryAfter("3"); !ok || d != 3*time.Second {
		t.Fatalf("unexpected seconds parse: %v %v", d, ok)
	}
	future := time.Now().Add(10 * time.Second).UTC().Format(http.TimeFormat)
	if d, ok := ParseRetryAfter(future); !ok || d <= 0 || d > 10*time.Second {
		t.Fatalf("unexpected date parse: %v %v", d, ok)
	}
	if _, ok := ParseRetryAfter("soon"); ok {
		t.Fatal("expected parse failure")
	}
	if _, ok := ParseRetryAfter("-1"); ok {
		t.Fatal("expected negative seconds rejected")
	}
}

func TestRetryableStatus(t *testing.T) {
	for _, code := range []int{408, 429, 500, 503} {
		if !RetryableStatus(code) {
			t.Fatalf("expected %d retryable", code)
		}
	}
	for _, code := range []int{400, 401, 404} {
		if RetryableStatus(code) {
			t.Fatalf("expected %d permanent", code)
		}
	}
}
