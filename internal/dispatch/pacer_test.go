package dispatch

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestPacer_ConcurrencyCeiling(t *testing.T) {
	const maxInFlight = 3
	pacer := NewPacer(0, maxInFlight)
	ctx := context.Background()

	var (
		inFlight atomic.Int64
		peak     atomic.Int64
		wg       sync.WaitGroup
	)

	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			release, err := pacer.Acquire(ctx)
			if err != nil {
				t.Errorf("Acquire() error = %v", err)
				return
			}
			defer release()

			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			inFlight.Add(-1)
		}()
	}
	wg.Wait()

	if got := peak.Load(); got > maxInFlight {
		t.Errorf("peak in-flight = %d, want <= %d", got, maxInFlight)
	}
}

func TestPacer_MinInterval(t *testing.T) {
	const interval = 30 * time.Millisecond
	pacer := NewPacer(interval, 5)
	ctx := context.Background()

	var times []time.Time
	for i := 0; i < 4; i++ {
		release, err := pacer.Acquire(ctx)
		if err != nil {
			t.Fatalf("Acquire() error = %v", err)
		}
		times = append(times, time.Now())
		release()
	}

	// The first acquire may pass immediately; each later one must be spaced
	// at least the configured interval from its predecessor. A small slack
	// covers timer granularity.
	const slack = 5 * time.Millisecond
	for i := 1; i < len(times); i++ {
		gap := times[i].Sub(times[i-1])
		if gap < interval-slack {
			t.Errorf("gap between acquire %d and %d = %v, want >= %v", i-1, i, gap, interval)
		}
	}
}

func TestPacer_ZeroIntervalDisablesSpacing(t *testing.T) {
	pacer := NewPacer(0, 1)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 100; i++ {
		release, err := pacer.Acquire(ctx)
		if err != nil {
			t.Fatalf("Acquire() error = %v", err)
		}
		release()
	}

	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("100 acquires with no interval took %v", elapsed)
	}
}

func TestPacer_ReleaseIdempotent(t *testing.T) {
	pacer := NewPacer(0, 1)
	ctx := context.Background()

	release, err := pacer.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	// Double release must not free a slot twice; otherwise a later pair of
	// acquires would both succeed on a 1-slot pacer.
	release()
	release()

	r1, err := pacer.Acquire(ctx)
	if err != nil {
		t.Fatalf("second Acquire() error = %v", err)
	}
	defer r1()

	blocked, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if _, err := pacer.Acquire(blocked); err == nil {
		t.Error("third Acquire() succeeded while slot held, want block")
	}
}

func TestPacer_AcquireHonorsContext(t *testing.T) {
	pacer := NewPacer(0, 1)

	release, err := pacer.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := pacer.Acquire(ctx); err != context.DeadlineExceeded {
		t.Errorf("Acquire() on full pacer error = %v, want context.DeadlineExceeded", err)
	}
}

func TestPacer_SetInterval(t *testing.T) {
	pacer := NewPacer(time.Hour, 1)
	ctx := context.Background()

	// Burn the initial token.
	release, err := pacer.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	release()

	// At an hour per send the next acquire would stall; retuning to zero
	// must let it through immediately.
	pacer.SetInterval(0)

	fast, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	release, err = pacer.Acquire(fast)
	if err != nil {
		t.Fatalf("Acquire() after SetInterval(0) error = %v", err)
	}
	release()
}

func TestPacer_MaxInFlightFloor(t *testing.T) {
	if got := NewPacer(0, 0).MaxInFlight(); got != 1 {
		t.Errorf("MaxInFlight() with 0 requested = %d, want floor of 1", got)
	}
	if got := NewPacer(0, 4).MaxInFlight(); got != 4 {
		t.Errorf("MaxInFlight() = %d, want 4", got)
	}
}
