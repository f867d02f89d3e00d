package tasks

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"delphiwatch/app/database"
)

const cycleTimeout = 5 * time.Minute

var _ TaskSchedulerInterface = (*Scheduler)(nil)

type TaskSchedulerInterface interface {
	Start()
	Stop()
	Fatal() <-chan error
	Status() Status
}

// Status is a point-in-time snapshot of the scheduler, served by /stats.
type Status struct {
	LastCycleAt         time.Time
	LastError           string
	ConsecutiveFailures int
	CyclesRun           int
	LastResult          CycleResult
}

// Scheduler drives the poll loop: one cycle at a time, never overlapping.
// The next fetch does not start until the previous cycle has worked through
// its last post, which preserves per-cycle delivery ordering.
type Scheduler struct {
	runner     CycleRunner
	interval   time.Duration
	maxBackoff time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	fatal  chan error

	mu     sync.Mutex
	status Status
}

func NewScheduler(runner CycleRunner, interval, maxBackoff time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		runner:     runner,
		interval:   interval,
		maxBackoff: maxBackoff,
		ctx:        ctx,
		cancel:     cancel,
		fatal:      make(chan error, 1),
	}
}

func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.run()
}

// Stop cancels the loop and waits for the in-flight cycle to finish its
// current post, so a confirmed send is never abandoned before its mark.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

// Fatal reports unrecoverable store failures. The loop stops after sending:
// dispatching without durable delivery records risks duplicates on restart.
func (s *Scheduler) Fatal() <-chan error {
	return s.fatal
}

func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	timer := time.NewTimer(0)
	defer timer.Stop()

	failures := 0

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-timer.C:
		}

		cctx, cancel := context.WithTimeout(s.ctx, cycleTimeout)
		result, err := s.runner.Execute(cctx)
		cancel()

		if s.ctx.Err() != nil {
			return
		}

		delay := s.interval
		if err != nil {
			var storeErr *database.StoreError
			if errors.As(err, &storeErr) {
				slog.Error("Durable store failure, stopping scheduler", "error", err)
				s.recordCycle(result, err, failures)
				select {
				case s.fatal <- err:
				default:
				}
				return
			}

			failures++
			delay = backoffDelay(s.interval, s.maxBackoff, failures)
			slog.Warn("Fetch cycle failed", "consecutive_failures", failures, "retry_in", delay.String(), "error", err)
		} else {
			failures = 0
		}

		s.recordCycle(result, err, failures)
		timer.Reset(delay)
	}
}

func (s *Scheduler) recordCycle(result CycleResult, err error, failures int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status.LastCycleAt = time.Now().UTC()
	s.status.CyclesRun++
	s.status.ConsecutiveFailures = failures
	s.status.LastError = ""
	if err != nil {
		s.status.LastError = err.Error()
	} else {
		s.status.LastResult = result
	}
}

// backoffDelay doubles the base interval per consecutive failure, with ±20%
// jitter so retries do not line up with the source's failure rhythm. The
// returned delay never exceeds max.
func backoffDelay(base, max time.Duration, failures int) time.Duration {
	delay := base
	for i := 1; i < failures; i++ {
		delay *= 2
		if delay >= max {
			delay = max
			break
		}
	}
	if delay > max {
		delay = max
	}

	jitter := 1 + (rand.Float64()*0.4 - 0.2)
	delay = time.Duration(float64(delay) * jitter)
	if delay > max {
		delay = max
	}

	return delay
}
