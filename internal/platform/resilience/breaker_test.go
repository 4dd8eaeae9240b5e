package resilience

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestBreakerOpensAfterThreshold(t *testing.T) {
	clock := time.Unix(0, 0)
	b := NewBreaker(BreakerConfig{FailureThreshold: 3, OpenTimeout: 10 * time.Second, HalfOpenMaxReq: 1})
	b.now = func() time.Time { return clock }

	for i := 0; i < 3; i++ {
		if err := b.Allow(); err != nil {
			t.Fatalf("allow %d failed: %v", i, err)
		}
		b.RecordFailure()
	}

	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected open circuit, got %v", err)
	}

	clock = clock.Add(11 * time.Second)
	if err := b.Allow(); err != nil {
		t.Fatalf("expected half-open probe to be allowed, got %v", err)
	}
	b.RecordSuccess()

	if state := b.State(); state != CircuitClosed {
		t.Fatalf("expected closed after probe success, got %s", state)
	}
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	clock := time.Unix(0, 0)
	b := NewBreaker(BreakerConfig{FailureThreshold: 1, OpenTimeout: 5 * time.Second, HalfOpenMaxReq: 1})
	b.now = func() time.Time { return clock }

	b.RecordFailure()
	clock = clock.Add(6 * time.Second)

	if err := b.Allow(); err != nil {
		t.Fatalf("expected probe allowed: %v", err)
	}
	b.RecordFailure()

	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected reopened circuit, got %v", err)
	}
}

func TestSingleFlightSharesResult(t *testing.T) {
	var g SingleFlight
	var calls atomic.Int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	results := make([]any, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out, err, _ := g.Do("key", func() (any, error) {
				calls.Add(1)
				<-release
				return "value", nil
			})
			if err != nil {
				t.Errorf("do failed: %v", err)
			}
			results[i] = out
		}(i)
	}

	// Let both goroutines reach Do before releasing the first execution.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Fatalf("expected one execution, got %d", got)
	}
	for i, out := range results {
		if out != "value" {
			t.Fatalf("result %d: got %v", i, out)
		}
	}
}
