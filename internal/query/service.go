package query

import (
	"context"
	"errors"
	"strings"

	"github.com/ragline-dev/ragline/internal/api"
	"github.com/ragline-dev/ragline/internal/conversation"
	"github.com/ragline-dev/ragline/internal/ledger"
	"github.com/ragline-dev/ragline/internal/log"
	"github.com/ragline-dev/ragline/internal/registry"
)

// Validation errors, rejected before any network call.
var (
	ErrEmptyQuestion      = errors.New("question must not be empty")
	ErrNoDocumentSelected = errors.New("no document selected")
)

// Service runs one question end to end: optimistic user message, job
// submission, polling to a terminal outcome, assistant handoff to the
// conversation log, and the ledger refresh the charge makes necessary.
type Service struct {
	client   *api.Client
	poller   *Poller
	ledger   *ledger.Sync
	registry *registry.Registry
	conv     *conversation.Log
	logger   *log.Logger
}

// NewService wires the service. logger may be nil.
func NewService(client *api.Client, poller *Poller, ledgerSync *ledger.Sync, reg *registry.Registry, conv *conversation.Log, logger *log.Logger) *Service {
	return &Service{
		client:   client,
		poller:   poller,
		ledger:   ledgerSync,
		registry: reg,
		conv:     conv,
		logger:   logger,
	}
}

// Ask validates the question against the current selection, appends the
// optimistic user message, submits the job and awaits its terminal
// outcome.
//
// On completion the assistant message (answer, cost, tokens) is appended;
// on failure or timeout no assistant message is added. Either way the
// ledger is refreshed exactly once: the completed job incurred a charge,
// and a failed one may have partial charges, so refreshing keeps the
// client honest. If submission itself fails the optimistic message is
// retracted and the error returned.
func (s *Service) Ask(ctx context.Context, question string) (*Result, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	doc, ok := s.registry.Selected()
	if !ok {
		return nil, ErrNoDocumentSelected
	}
	s.conv.Bind(doc.ID)

	idx := s.conv.AppendQuestion(question)

	job, err := s.client.CreateQuery(ctx, doc.ID, question)
	if err != nil {
		s.conv.Retract(idx)
		return nil, err
	}

	s.logEvent(log.LogEvent{
		Event:      log.EventQuerySubmitted,
		DocumentID: doc.ID,
		QueryID:    job.ID,
	})

	res, err := s.poller.Await(ctx, job.ID)
	if err != nil {
		// The question was submitted; the optimistic message stays. A
		// poll that died mid-flight still refreshes the ledger unless
		// the whole context is gone.
		if ctx.Err() == nil {
			_ = s.ledger.Refresh(ctx)
		}
		return nil, err
	}

	switch res.Outcome {
	case OutcomeCompleted:
		s.conv.AppendAnswer(*res.Job.Answer, res.Job.Cost, res.Job.TotalTokens)
		s.logEvent(log.LogEvent{
			Event:      log.EventQueryCompleted,
			QueryID:    job.ID,
			Cost:       res.Job.Cost.String(),
			Tokens:     res.Job.TotalTokens,
			Attempts:   res.Attempts,
			DurationMs: res.Elapsed.Milliseconds(),
		})
	case OutcomeFailed:
		s.logEvent(log.LogEvent{
			Event:    log.EventQueryFailed,
			QueryID:  job.ID,
			Attempts: res.Attempts,
		})
	case OutcomeTimedOut:
		s.logEvent(log.LogEvent{
			Event:    log.EventQueryTimeout,
			QueryID:  job.ID,
			Attempts: res.Attempts,
		})
	}

	_ = s.ledger.Refresh(ctx)
	return res, nil
}

func (s *Service) logEvent(event log.LogEvent) {
	if s.logger != nil {
		_ = s.logger.Append(event)
	}
}
