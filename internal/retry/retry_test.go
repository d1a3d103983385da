package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastDelays() []time.Duration {
	return []time.Duration{time.Millisecond, time.Millisecond, time.Millisecond}
}

func TestWithRetry_SucceedsFirstTry(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), RetryConfig{MaxAttempts: 3, Delay: time.Millisecond}, func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("got %d calls, want 1", calls)
	}
}

func TestWithRetry_ExhaustsAttempts(t *testing.T) {
	calls := 0
	boom := errors.New("boom")
	err := WithRetry(context.Background(), RetryConfig{MaxAttempts: 3, Delay: time.Millisecond}, func() error {
		calls++
		return boom
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !errors.Is(err, boom) {
		t.Errorf("original error not wrapped: %v", err)
	}
	if calls != 3 {
		t.Errorf("got %d calls, want 3", calls)
	}
}

func TestWithRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := WithRetry(ctx, RetryConfig{MaxAttempts: 3, Delay: time.Minute}, func() error {
		return errors.New("always")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestFetchWithRetry_ReturnsItemsOnSuccess(t *testing.T) {
	calls := 0
	items, err := FetchWithRetry(context.Background(), fastDelays(), func() ([]string, error) {
		calls++
		return []string{"a", "b"}, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 || calls != 1 {
		t.Errorf("got %d items after %d calls, want 2 after 1", len(items), calls)
	}
}

func TestFetchWithRetry_EmptyResultIsRetried(t *testing.T) {
	calls := 0
	items, err := FetchWithRetry(context.Background(), fastDelays(), func() ([]string, error) {
		calls++
		if calls < 3 {
			return nil, nil
		}
		return []string{"late"}, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 || len(items) != 1 {
		t.Errorf("got %d items after %d calls, want the third attempt to land", len(items), calls)
	}
}

func TestFetchWithRetry_EmptyExhaustionIsNotAnError(t *testing.T) {
	calls := 0
	items, err := FetchWithRetry(context.Background(), fastDelays(), func() ([]string, error) {
		calls++
		return []string{}, nil
	})
	if err != nil {
		t.Fatalf("empty exhaustion must not error, got %v", err)
	}
	if items != nil {
		t.Errorf("got %v, want nil", items)
	}
	if calls != 3 {
		t.Errorf("got %d calls, want 3", calls)
	}
}

func TestFetchWithRetry_ErrorExhaustionSurfaces(t *testing.T) {
	boom := errors.New("boom")
	_, err := FetchWithRetry(context.Background(), fastDelays(), func() ([]string, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("got %v, want wrapped boom", err)
	}
}

func TestFetchWithRetry_LateErrorStillSurfaces(t *testing.T) {
	// Empty results first, then a transport error on the last attempt: the
	// error wins over the silent empty outcome.
	calls := 0
	boom := errors.New("boom")
	_, err := FetchWithRetry(context.Background(), fastDelays(), func() ([]string, error) {
		calls++
		if calls < 3 {
			return nil, nil
		}
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("got %v, want wrapped boom", err)
	}
}
