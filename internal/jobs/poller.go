package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultInterval is the status poll period.
const DefaultInterval = time.Second

// SubmitFunc posts a job payload and returns the backend acknowledgement.
type SubmitFunc[P, A any] func(ctx context.Context, payload P) (A, error)

// StatusFunc reads the job status once.
type StatusFunc func(ctx context.Context) (Status, error)

// Options configures a Poller.
type Options struct {
	Interval time.Duration // zero means DefaultInterval
	Timeout  time.Duration // zero means poll until done, failed or stopped
	// StallAfter is the number of consecutive failed polls after which the
	// job is reported as stalled. Zero means 3.
	StallAfter int
	OnUpdate   func(Snapshot)
}

// Poller drives one job through idle → submitted → polling → done|failed.
// Each Submit discards the previous job. A failed status request skips the
// tick instead of ending the loop.
type Poller[P, A any] struct {
	submit SubmitFunc[P, A]
	status StatusFunc
	opts   Options
	logger *slog.Logger

	mu         sync.Mutex
	job        Snapshot
	ack        A
	gen        int
	submitting bool
	cancel     context.CancelFunc
	finished   chan struct{}
	onFinish   func(Snapshot)
}

// New creates a Poller.
func New[P, A any](submit SubmitFunc[P, A], status StatusFunc, opts Options, logger *slog.Logger) *Poller[P, A] {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller[P, A]{
		submit: submit,
		status: status,
		opts:   opts,
		logger: logger,
		job:    Snapshot{State: Idle},
	}
}

// Snapshot returns a copy of the current job.
func (p *Poller[P, A]) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.job
}

// Ack returns the acknowledgement of the last successful submission.
func (p *Poller[P, A]) Ack() A {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ack
}

// Busy reports whether a job is being submitted or polled.
func (p *Poller[P, A]) Busy() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.submitting || p.job.State == Polling
}

// Submit starts a new job. The previous job, if terminal or merely submitted,
// is discarded. On error the new job is failed and polling cannot start.
func (p *Poller[P, A]) Submit(ctx context.Context, payload P) (A, error) {
	var zero A

	p.mu.Lock()
	if p.submitting || p.job.State == Polling {
		p.mu.Unlock()
		return zero, ErrBusy
	}
	p.stopLocked()
	p.gen++
	p.submitting = true
	p.ack = zero
	p.job = Snapshot{ID: uuid.NewString(), State: Submitted, StartedAt: time.Now()}
	p.finished = make(chan struct{})
	snap := p.job
	p.mu.Unlock()

	p.notify(snap)
	p.logger.Debug("job submitted", "job_id", snap.ID)

	ack, err := p.submit(ctx, payload)

	p.mu.Lock()
	p.submitting = false
	if err != nil {
		p.job.State = Failed
		p.job.Err = err
		p.job.FinishedAt = time.Now()
		close(p.finished)
		snap = p.job
		p.mu.Unlock()
		p.notify(snap)
		return zero, err
	}
	p.ack = ack
	p.mu.Unlock()
	return ack, nil
}

// Start begins polling the submitted job in a background goroutine and
// returns immediately. onFinish, if non-nil, runs exactly once when the job
// reaches done or failed. It does not run when Stop ends the job.
func (p *Poller[P, A]) Start(ctx context.Context, onFinish func(Snapshot)) error {
	p.mu.Lock()
	if p.job.State != Submitted || p.submitting {
		p.mu.Unlock()
		return ErrNotSubmitted
	}
	loopCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.onFinish = onFinish
	p.job.State = Polling
	gen := p.gen
	snap := p.job
	p.mu.Unlock()

	p.notify(snap)
	go p.loop(loopCtx, gen, NewCircuitBreaker(p.opts.StallAfter))
	return nil
}

// Stop cancels polling. Safe to call any number of times and in any state.
func (p *Poller[P, A]) Stop() {
	p.mu.Lock()
	gen := p.gen
	p.mu.Unlock()
	p.abandon(gen)
}

// abandon ends a polling job without running its onFinish callback.
func (p *Poller[P, A]) abandon(gen int) {
	p.mu.Lock()
	if gen != p.gen {
		p.mu.Unlock()
		return
	}
	p.stopLocked()
	if p.job.State != Polling {
		p.mu.Unlock()
		return
	}
	p.job.State = Failed
	p.job.Err = ErrStopped
	p.job.FinishedAt = time.Now()
	p.onFinish = nil
	close(p.finished)
	snap := p.job
	p.mu.Unlock()

	p.notify(snap)
}

// Wait blocks until the current job is terminal or ctx ends.
func (p *Poller[P, A]) Wait(ctx context.Context) (Snapshot, error) {
	p.mu.Lock()
	ch := p.finished
	p.mu.Unlock()
	if ch == nil {
		return p.Snapshot(), ErrNotSubmitted
	}
	select {
	case <-ch:
		return p.Snapshot(), nil
	case <-ctx.Done():
		return p.Snapshot(), ctx.Err()
	}
}

// Run submits payload, polls to completion and returns the final snapshot.
// The returned error is the job's error for failed jobs.
func (p *Poller[P, A]) Run(ctx context.Context, payload P) (Snapshot, error) {
	if _, err := p.Submit(ctx, payload); err != nil {
		return p.Snapshot(), err
	}
	if err := p.Start(ctx, nil); err != nil {
		return p.Snapshot(), err
	}
	snap, err := p.Wait(ctx)
	if err != nil {
		p.Stop()
		return p.Snapshot(), err
	}
	return snap, snap.Err
}

func (p *Poller[P, A]) stopLocked() {
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}

func (p *Poller[P, A]) loop(ctx context.Context, gen int, breaker *CircuitBreaker) {
	ticker := time.NewTicker(p.opts.Interval)
	defer ticker.Stop()

	var timeout <-chan time.Time
	if p.opts.Timeout > 0 {
		t := time.NewTimer(p.opts.Timeout)
		defer t.Stop()
		timeout = t.C
	}

	for {
		select {
		case <-ctx.Done():
			p.abandon(gen)
			return
		case <-timeout:
			p.finish(gen, Failed, &PollTimeoutError{After: p.opts.Timeout})
			return
		case <-ticker.C:
			st, err := p.status(ctx)
			if err != nil {
				if ctx.Err() != nil {
					p.abandon(gen)
					return
				}
				p.logger.Debug("status poll failed, retrying next tick", "error", err)
				if breaker.RecordFailure() {
					p.logger.Warn("backend not answering status polls", "failures", breaker.Failures(), "error", err)
					p.markStalled(gen, true)
				}
				continue
			}
			if breaker.IsTripped() {
				p.markStalled(gen, false)
			}
			breaker.RecordSuccess()
			if p.apply(gen, st) {
				return
			}
		}
	}
}

// apply records one status reading. It reports whether the loop should exit.
func (p *Poller[P, A]) apply(gen int, st Status) bool {
	p.mu.Lock()
	if gen != p.gen || p.job.State != Polling {
		p.mu.Unlock()
		return true
	}
	p.job.Progress = clampProgress(st.Progress)
	snap := p.job
	p.mu.Unlock()

	switch {
	case st.Error != "":
		p.finish(gen, Failed, fmt.Errorf("%w: %s", ErrPollFailed, st.Error))
		return true
	case st.Done:
		p.finish(gen, Done, nil)
		return true
	default:
		p.notify(snap)
		return false
	}
}

func (p *Poller[P, A]) markStalled(gen int, stalled bool) {
	p.mu.Lock()
	if gen != p.gen || p.job.State != Polling {
		p.mu.Unlock()
		return
	}
	p.job.Stalled = stalled
	snap := p.job
	p.mu.Unlock()
	p.notify(snap)
}

func (p *Poller[P, A]) finish(gen int, state State, err error) {
	p.mu.Lock()
	if gen != p.gen || p.job.State != Polling {
		p.mu.Unlock()
		return
	}
	p.job.State = state
	p.job.Err = err
	p.job.FinishedAt = time.Now()
	p.stopLocked()
	cb := p.onFinish
	p.onFinish = nil
	finished := p.finished
	snap := p.job
	p.mu.Unlock()

	p.logger.Debug("job finished", "job_id", snap.ID, "state", snap.State.String(), "progress", snap.Progress)
	p.notify(snap)
	if cb != nil {
		cb(snap)
	}
	// Waiters see the job only after onFinish has run.
	close(finished)
}

func (p *Poller[P, A]) notify(s Snapshot) {
	if p.opts.OnUpdate != nil {
		p.opts.OnUpdate(s)
	}
}
