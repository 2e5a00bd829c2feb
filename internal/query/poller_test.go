package query

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ragline-dev/ragline/internal/api"
	"github.com/ragline-dev/ragline/internal/testutil"
)

const testInterval = 2 * time.Millisecond

func TestAwaitPollsUntilCompleted(t *testing.T) {
	backend := testutil.NewBackend(t)
	job := backend.AddJob(1, "What is the contract term?", testutil.JobScript{
		Statuses:    []api.QueryStatus{api.QueryPending, api.QueryPending, api.QueryCompleted},
		Answer:      "12 months",
		Cost:        decimal.NewFromFloat(0.002),
		TotalTokens: 150,
	})

	poller := NewPoller(backend.AuthedClient(), testInterval, 0)
	res, err := poller.Await(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("Await failed: %v", err)
	}

	if res.Outcome != OutcomeCompleted {
		t.Fatalf("Outcome = %v, want completed", res.Outcome)
	}
	if res.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", res.Attempts)
	}
	if res.Job.Answer == nil || *res.Job.Answer != "12 months" {
		t.Errorf("Answer = %v, want %q", res.Job.Answer, "12 months")
	}
	if got := backend.JobPolls(job.ID); got != 3 {
		t.Errorf("backend saw %d polls, want 3", got)
	}
}

func TestNoPollAfterTerminal(t *testing.T) {
	backend := testutil.NewBackend(t)
	job := backend.AddJob(1, "q", testutil.JobScript{
		Statuses: []api.QueryStatus{api.QueryCompleted},
		Answer:   "done",
	})

	poller := NewPoller(backend.AuthedClient(), testInterval, 0)
	if _, err := poller.Await(context.Background(), job.ID); err != nil {
		t.Fatalf("Await failed: %v", err)
	}

	polls := backend.JobPolls(job.ID)
	time.Sleep(5 * testInterval)
	if got := backend.JobPolls(job.ID); got != polls {
		t.Errorf("polls after terminal: %d -> %d, a terminal job must never be polled again", polls, got)
	}
	if polls != 1 {
		t.Errorf("polls = %d, want exactly 1", polls)
	}
}

func TestAwaitFailedJob(t *testing.T) {
	backend := testutil.NewBackend(t)
	job := backend.AddJob(1, "q", testutil.JobScript{
		Statuses: []api.QueryStatus{api.QueryPending, api.QueryFailed},
	})

	poller := NewPoller(backend.AuthedClient(), testInterval, 0)
	res, err := poller.Await(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("Await failed: %v", err)
	}

	if res.Outcome != OutcomeFailed {
		t.Errorf("Outcome = %v, want failed", res.Outcome)
	}
	if res.Job.Answer != nil {
		t.Errorf("Answer = %v, want nil on failure", res.Job.Answer)
	}
}

func TestCompletedWithoutAnswerKeepsPolling(t *testing.T) {
	backend := testutil.NewBackend(t)
	// The processing status stands in for a completed record whose answer
	// has not landed yet; either way the poll must be rescheduled.
	job := backend.AddJob(1, "q", testutil.JobScript{
		Statuses: []api.QueryStatus{api.QueryProcessing, api.QueryProcessing, api.QueryCompleted},
		Answer:   "late answer",
	})

	poller := NewPoller(backend.AuthedClient(), testInterval, 0)
	res, err := poller.Await(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("Await failed: %v", err)
	}
	if res.Outcome != OutcomeCompleted || res.Attempts != 3 {
		t.Errorf("got outcome %v after %d attempts, want completed after 3", res.Outcome, res.Attempts)
	}
}

func TestAwaitTimesOutAfterMaxAttempts(t *testing.T) {
	backend := testutil.NewBackend(t)
	job := backend.AddJob(1, "q", testutil.JobScript{
		Statuses: []api.QueryStatus{api.QueryPending},
	})

	poller := NewPoller(backend.AuthedClient(), testInterval, 4)
	res, err := poller.Await(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("Await failed: %v", err)
	}

	if res.Outcome != OutcomeTimedOut {
		t.Errorf("Outcome = %v, want timed out", res.Outcome)
	}
	if res.Attempts != 4 {
		t.Errorf("Attempts = %d, want 4", res.Attempts)
	}
	if got := backend.JobPolls(job.ID); got != 4 {
		t.Errorf("backend saw %d polls, want exactly the attempt bound", got)
	}
}

func TestAwaitStopsOnContextCancel(t *testing.T) {
	backend := testutil.NewBackend(t)
	job := backend.AddJob(1, "q", testutil.JobScript{
		Statuses: []api.QueryStatus{api.QueryPending},
	})

	ctx, cancel := context.WithCancel(context.Background())
	poller := NewPoller(backend.AuthedClient(), 50*time.Millisecond, 0)

	done := make(chan error, 1)
	go func() {
		_, err := poller.Await(ctx, job.ID)
		done <- err
	}()

	// Let at least one poll land, then tear the loop down.
	for backend.JobPolls(job.ID) == 0 {
		time.Sleep(time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Await returned %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Await did not stop after cancellation")
	}

	polls := backend.JobPolls(job.ID)
	time.Sleep(100 * time.Millisecond)
	if got := backend.JobPolls(job.ID); got != polls {
		t.Errorf("polls after cancel: %d -> %d, cancelled loop must not keep polling", polls, got)
	}
}
