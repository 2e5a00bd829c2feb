// Package query submits questions as asynchronous jobs and polls them to
// exactly one terminal outcome.
package query

import (
	"context"
	"fmt"
	"time"

	"github.com/ragline-dev/ragline/internal/api"
)

// Outcome is the terminal result of polling one job.
type Outcome int

const (
	OutcomeCompleted Outcome = iota
	OutcomeFailed
	OutcomeTimedOut
)

// String returns the outcome name for logs and messages.
func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomeFailed:
		return "failed"
	case OutcomeTimedOut:
		return "timed_out"
	}
	return "unknown"
}

// Result is the single terminal event emitted for a job. Job is the last
// record fetched; for OutcomeCompleted its Answer is non-nil.
type Result struct {
	Outcome  Outcome
	Job      *api.QueryJob
	Attempts int
	Elapsed  time.Duration
}

// Poller turns a submitted job id into exactly one terminal outcome,
// tolerating arbitrary processing latency. Polls for a job are strictly
// sequential: the next poll is issued only after the previous one has
// resolved and the interval has elapsed, so terminal detection can never
// arrive out of order.
type Poller struct {
	client      *api.Client
	interval    time.Duration
	maxAttempts int // 0 = poll until the job terminates
}

// NewPoller creates a Poller. maxAttempts bounds the loop; 0 disables the
// bound, matching backends that give no completion guarantee.
func NewPoller(client *api.Client, interval time.Duration, maxAttempts int) *Poller {
	return &Poller{client: client, interval: interval, maxAttempts: maxAttempts}
}

// Await polls jobID until it reaches a terminal state, the attempt bound is
// exhausted (OutcomeTimedOut), or ctx is cancelled. Once a terminal
// response is seen no further poll is issued and the single Result is
// returned; a job id is single-use for polling purposes.
//
// A completed job with a null answer is treated as still in flight: the
// answer text is the payload the whole exercise is for, and the backend
// fills it in the same update that flips the status.
func (p *Poller) Await(ctx context.Context, jobID int64) (*Result, error) {
	start := time.Now()
	attempts := 0

	for {
		job, err := p.client.Query(ctx, jobID)
		if err != nil {
			return nil, fmt.Errorf("polling query %d: %w", jobID, err)
		}
		attempts++

		switch {
		case job.Status == api.QueryCompleted && job.Answer != nil:
			return &Result{Outcome: OutcomeCompleted, Job: job, Attempts: attempts, Elapsed: time.Since(start)}, nil
		case job.Status == api.QueryFailed:
			return &Result{Outcome: OutcomeFailed, Job: job, Attempts: attempts, Elapsed: time.Since(start)}, nil
		}

		if p.maxAttempts > 0 && attempts >= p.maxAttempts {
			return &Result{Outcome: OutcomeTimedOut, Job: job, Attempts: attempts, Elapsed: time.Since(start)}, nil
		}

		timer := time.NewTimer(p.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}
