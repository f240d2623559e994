package utils

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestTruncateForLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		limit  int
		expect string
	}{
		{
			name:   "returns empty when limit non-positive",
			input:  "hello world",
			limit:  0,
			expect: "",
		},
		{
			name:   "shorter than limit",
			input:  "hello",
			limit:  10,
			expect: "hello",
		},
		{
			name:   "truncates and adds ellipsis",
			input:  "hello world",
			limit:  5,
			expect: "hello...",
		},
		{
			name:   "trims surrounding whitespace",
			input:  "  spaced  ",
			limit:  5,
			expect: "space...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := TruncateForLog(tt.input, tt.limit); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

type fakeTimer struct {
	requested time.Duration
	fired     chan time.Time
	stopped   bool
}

func swapTimer(t *testing.T) *fakeTimer {
	t.Helper()

	fake := &fakeTimer{fired: make(chan time.Time, 1)}
	original := newTimer
	newTimer = func(d time.Duration) (<-chan time.Time, func() bool) {
		fake.requested = d
		return fake.fired, func() bool {
			fake.stopped = true
			return true
		}
	}
	t.Cleanup(func() { newTimer = original })
	return fake
}

func TestWaitFor(t *testing.T) {
	timer := swapTimer(t)
	timer.fired <- time.Now()

	if err := WaitFor(context.Background(), 300*time.Millisecond); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if timer.requested != 300*time.Millisecond {
		t.Fatalf("expected a 300ms timer, got %s", timer.requested)
	}

	timer.requested = 0
	if err := WaitFor(context.Background(), 0); err != nil || timer.requested != 0 {
		t.Fatalf("expected zero wait to return at once, err=%v timer=%s", err, timer.requested)
	}
}

func TestWaitForCancelledStopsTimer(t *testing.T) {
	timer := swapTimer(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := WaitFor(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if !timer.stopped {
		t.Fatal("expected the timer to be stopped on cancel")
	}
}

func TestWaitForRealTimer(t *testing.T) {
	start := time.Now()
	if err := WaitFor(context.Background(), 10*time.Millisecond); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if elapsed := time.Since(start); elapsed < 10*time.Millisecond {
		t.Fatalf("returned after %s", elapsed)
	}
}
