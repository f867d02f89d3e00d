package tasks

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"delphiwatch/app/database"
	"delphiwatch/app/feed"
)

type mockRunner struct {
	cycles  atomic.Int32
	results chan error
}

func (m *mockRunner) Execute(ctx context.Context) (CycleResult, error) {
	m.cycles.Add(1)
	select {
	case err := <-m.results:
		return CycleResult{Total: 1}, err
	default:
		return CycleResult{Total: 1}, nil
	}
}

func TestScheduler_StartAndStop(t *testing.T) {
	runner := &mockRunner{results: make(chan error, 10)}
	scheduler := NewScheduler(runner, 10*time.Millisecond, 100*time.Millisecond)

	scheduler.Start()
	time.Sleep(50 * time.Millisecond)
	scheduler.Stop()

	cycles := runner.cycles.Load()
	if cycles < 2 {
		t.Errorf("Expected at least 2 cycles in 50ms at a 10ms interval, got %d", cycles)
	}

	// No cycles after Stop returns
	time.Sleep(30 * time.Millisecond)
	if runner.cycles.Load() != cycles {
		t.Error("Expected no cycles after Stop")
	}
}

func TestScheduler_Status(t *testing.T) {
	runner := &mockRunner{results: make(chan error, 10)}
	scheduler := NewScheduler(runner, 10*time.Millisecond, 100*time.Millisecond)

	scheduler.Start()
	time.Sleep(30 * time.Millisecond)
	scheduler.Stop()

	status := scheduler.Status()
	if status.CyclesRun < 1 {
		t.Errorf("Expected at least 1 recorded cycle, got %d", status.CyclesRun)
	}
	if status.LastCycleAt.IsZero() {
		t.Error("Expected last cycle timestamp to be set")
	}
	if status.LastError != "" {
		t.Errorf("Expected no last error, got %q", status.LastError)
	}
	if status.LastResult.Total != 1 {
		t.Errorf("Expected last result to be recorded, got %+v", status.LastResult)
	}
}

func TestScheduler_FetchFailureKeepsRunning(t *testing.T) {
	runner := &mockRunner{results: make(chan error, 10)}
	runner.results <- &feed.FetchError{URL: "https://example.com/latest.rss", Err: errors.New("timeout")}

	scheduler := NewScheduler(runner, 5*time.Millisecond, 20*time.Millisecond)
	scheduler.Start()
	time.Sleep(80 * time.Millisecond)
	scheduler.Stop()

	if runner.cycles.Load() < 2 {
		t.Errorf("Expected scheduler to keep polling after a fetch failure, got %d cycles", runner.cycles.Load())
	}

	select {
	case err := <-scheduler.Fatal():
		t.Errorf("Fetch failure must not be fatal, got %v", err)
	default:
	}
}

func TestScheduler_StoreErrorIsFatal(t *testing.T) {
	runner := &mockRunner{results: make(chan error, 10)}
	runner.results <- &database.StoreError{Op: "delivery mark", Err: errors.New("disk I/O error")}

	scheduler := NewScheduler(runner, 5*time.Millisecond, 20*time.Millisecond)
	scheduler.Start()
	defer scheduler.Stop()

	select {
	case err := <-scheduler.Fatal():
		var storeErr *database.StoreError
		if !errors.As(err, &storeErr) {
			t.Errorf("Expected StoreError on the fatal channel, got %T", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Expected a fatal error after a store failure")
	}

	// The loop stops after the fatal cycle
	cycles := runner.cycles.Load()
	time.Sleep(50 * time.Millisecond)
	if runner.cycles.Load() != cycles {
		t.Error("Expected no cycles after a store failure")
	}
}

func TestBackoffDelay_GrowsAndCaps(t *testing.T) {
	base := 15 * time.Second
	max := 5 * time.Minute

	previousMin := time.Duration(0)
	for failures := 1; failures <= 10; failures++ {
		delay := backoffDelay(base, max, failures)

		if delay > max {
			t.Errorf("Delay after %d failures exceeds the cap: %v", failures, delay)
		}
		if delay <= 0 {
			t.Errorf("Delay after %d failures is not positive: %v", failures, delay)
		}

		// Jitter is at most ±20%, so the lower bound still grows until the cap
		lowerBound := time.Duration(float64(delay) / 0.8)
		if failures <= 4 && lowerBound < previousMin {
			t.Errorf("Delay after %d failures shrank unexpectedly: %v", failures, delay)
		}
		previousMin = lowerBound
	}
}

func TestBackoffDelay_FirstFailureNearBase(t *testing.T) {
	base := 15 * time.Second
	max := 5 * time.Minute

	for i := 0; i < 20; i++ {
		delay := backoffDelay(base, max, 1)
		if delay < time.Duration(float64(base)*0.79) || delay > time.Duration(float64(base)*1.21) {
			t.Errorf("First-failure delay outside jitter range: %v", delay)
		}
	}
}

func TestBackoffDelay_ManyFailuresStayAtCap(t *testing.T) {
	base := 15 * time.Second
	max := 2 * time.Minute

	for i := 0; i < 20; i++ {
		delay := backoffDelay(base, max, 50)
		if delay > max {
			t.Errorf("Delay exceeds cap after many failures: %v", delay)
		}
		if delay < time.Duration(float64(max)*0.79) {
			t.Errorf("Capped delay dropped below the jittered floor: %v", delay)
		}
	}
}
