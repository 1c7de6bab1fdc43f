package stealth

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestRetrySucceedsAfterFailures(t *testing.T) {
	calls := 0
	got, err := Retry(context.Background(), zap.NewNop(), "op", 3, time.Millisecond,
		func(ctx context.Context) (string, error) {
			calls++
			if calls < 3 {
				return "", errors.New("transient")
			}
			return "ok", nil
		})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" || calls != 3 {
		t.Fatalf("got %q after %d calls, want ok after 3", got, calls)
	}
}

func TestRetryExhaustionWrapsLastError(t *testing.T) {
	sentinel := errors.New("boom")
	calls := 0
	_, err := Retry(context.Background(), zap.NewNop(), "op", 3, time.Millisecond,
		func(ctx context.Context) (int, error) {
			calls++
			return 0, sentinel
		})
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
	if !errors.Is(err, sentinel) {
		t.Fatalf("error %v does not wrap the last failure", err)
	}
}

func TestRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := Retry(ctx, zap.NewNop(), "op", 5, time.Hour,
		func(ctx context.Context) (int, error) {
			calls++
			cancel()
			return 0, errors.New("transient")
		})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestRetryZeroAttemptsRunsOnce(t *testing.T) {
	calls := 0
	_, err := Retry(context.Background(), zap.NewNop(), "op", 0, time.Millisecond,
		func(ctx context.Context) (int, error) {
			calls++
			return 7, nil
		})
	if err != nil || calls != 1 {
		t.Fatalf("calls = %d, err = %v, want one clean call", calls, err)
	}
}
