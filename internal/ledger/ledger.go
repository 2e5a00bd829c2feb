// Package ledger keeps a local view of the account balance and transaction
// history consistent with the server-authoritative ledger.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/ragline-dev/ragline/internal/api"
	"github.com/ragline-dev/ragline/internal/log"
)

// Validation errors for top-up amounts, rejected before any network call.
var (
	ErrAmountNotPositive = errors.New("amount must be greater than zero")
	ErrAmountPrecision   = errors.New("amount must have at most cent precision")
)

// Snapshot is one consistent view of the ledger: balance and transaction
// history fetched together. The two are always replaced as a pair so the
// displayed amount can never disagree with the visible history window.
type Snapshot struct {
	Balance      decimal.Decimal
	Transactions []api.Transaction
	FetchedAt    time.Time
}

// Sync mirrors the backend ledger. The balance is only ever overwritten
// wholesale by a fetch, never computed locally from deltas.
type Sync struct {
	client *api.Client
	logger *log.Logger

	mu   sync.RWMutex
	snap Snapshot
	ok   bool
}

// NewSync creates a Sync over the given client. logger may be nil.
func NewSync(client *api.Client, logger *log.Logger) *Sync {
	return &Sync{client: client, logger: logger}
}

// Refresh fetches balance and transaction history in parallel and replaces
// the cached snapshot atomically. On any failure the last-known-good
// snapshot is kept and the error is logged; periodic callers are expected
// to swallow it and stay on schedule.
func (s *Sync) Refresh(ctx context.Context) error {
	var (
		balance decimal.Decimal
		txs     []api.Transaction
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		balance, err = s.client.Balance(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		txs, err = s.client.Transactions(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		if s.logger != nil {
			_ = s.logger.Append(log.LogEvent{
				Event:  log.EventRefreshFailed,
				Source: "ledger",
				Error:  err.Error(),
			})
		}
		return fmt.Errorf("refreshing ledger: %w", err)
	}

	s.mu.Lock()
	s.snap = Snapshot{Balance: balance, Transactions: txs, FetchedAt: time.Now()}
	s.ok = true
	s.mu.Unlock()
	return nil
}

// Snapshot returns the cached view and whether a refresh has ever
// succeeded.
func (s *Sync) Snapshot() (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := s.snap
	snap.Transactions = append([]api.Transaction(nil), s.snap.Transactions...)
	return snap, s.ok
}

// Balance returns the cached balance, zero before the first refresh.
func (s *Sync) Balance() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Balance
}

// Recent returns up to n transactions from the head of the history.
func (s *Sync) Recent(n int) []api.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n > len(s.snap.Transactions) {
		n = len(s.snap.Transactions)
	}
	return append([]api.Transaction(nil), s.snap.Transactions[:n]...)
}

// TopUp credits the account. The amount is validated locally first; on
// backend acceptance the snapshot is refreshed rather than incremented
// optimistically, the ledger being the arbiter of truth.
func (s *Sync) TopUp(ctx context.Context, amount decimal.Decimal) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}

	if _, err := s.client.TopUp(ctx, amount); err != nil {
		return err
	}

	if s.logger != nil {
		_ = s.logger.Append(log.LogEvent{Event: log.EventTopUp, Amount: amount.String()})
	}

	return s.Refresh(ctx)
}

// ValidateAmount checks that a top-up amount is positive with at most cent
// precision.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrAmountNotPositive
	}
	if amount.Exponent() < -2 && !amount.Equal(amount.Round(2)) {
		return ErrAmountPrecision
	}
	return nil
}

// ParseAmount parses a user-entered top-up amount and validates it.
func ParseAmount(input string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(input)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", input)
	}
	if err := ValidateAmount(amount); err != nil {
		return decimal.Zero, err
	}
	return amount, nil
}
