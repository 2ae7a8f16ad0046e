// Package jobs supervises one asynchronous backend job at a time: submit it,
// poll its status on a fixed interval, and resolve to done or failed.
package jobs

import (
	"errors"
	"fmt"
	"time"
)

// State is the lifecycle position of a job.
type State int

const (
	Idle State = iota
	Submitted
	Polling
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Submitted:
		return "submitted"
	case Polling:
		return "polling"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether s is done or failed.
func (s State) Terminal() bool { return s == Done || s == Failed }

var (
	// ErrNotSubmitted is returned by Start when there is no accepted submission.
	ErrNotSubmitted = errors.New("no submitted job to poll")
	// ErrBusy is returned by Submit while a submission or poll is in progress.
	ErrBusy = errors.New("a job is already in progress")
	// ErrPollFailed wraps an explicit failure reported by the status endpoint.
	ErrPollFailed = errors.New("job failed")
	// ErrStopped marks a job whose polling was cancelled by Stop.
	ErrStopped = errors.New("polling stopped")
)

// PollTimeoutError is returned when polling exceeds the configured ceiling.
type PollTimeoutError struct {
	After time.Duration
}

func (e *PollTimeoutError) Error() string {
	return fmt.Sprintf("job did not finish within %s", e.After)
}

// Status is one reading of the status endpoint.
type Status struct {
	Progress int
	Done     bool
	Error    string // non-empty means the backend reports failure
}

// Snapshot is a copy of the current job.
type Snapshot struct {
	ID         string
	State      State
	Progress   int
	Err        error
	Stalled    bool // consecutive status polls are failing
	StartedAt  time.Time
	FinishedAt time.Time
}

// Elapsed returns how long the job has run, or ran.
func (s Snapshot) Elapsed() time.Duration {
	if s.StartedAt.IsZero() {
		return 0
	}
	if s.FinishedAt.IsZero() {
		return time.Since(s.StartedAt)
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

func clampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
