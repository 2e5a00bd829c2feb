package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ragline-dev/ragline/internal/api"
	"github.com/ragline-dev/ragline/internal/testutil"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestRefreshReplacesSnapshotAtomically(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.SetBalance(dec("12.50"))
	backend.SetTransactions([]api.Transaction{
		{ID: 2, Amount: dec("2.50"), Type: api.TransactionCharge, Description: "Query charge"},
		{ID: 1, Amount: dec("15.00"), Type: api.TransactionTopUp, Description: "Balance top-up"},
	})

	sync := NewSync(backend.AuthedClient(), nil)

	if _, ok := sync.Snapshot(); ok {
		t.Fatal("snapshot should not exist before the first refresh")
	}

	if err := sync.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	snap, ok := sync.Snapshot()
	if !ok {
		t.Fatal("snapshot should exist after refresh")
	}
	if !snap.Balance.Equal(dec("12.50")) {
		t.Errorf("Balance = %s, want 12.50", snap.Balance)
	}
	if len(snap.Transactions) != 2 || snap.Transactions[0].ID != 2 {
		t.Errorf("Transactions = %+v, want history newest first", snap.Transactions)
	}
}

func TestFailedRefreshKeepsLastKnownGood(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.SetBalance(dec("10.00"))
	backend.SetTransactions([]api.Transaction{{ID: 1, Amount: dec("10.00"), Type: api.TransactionTopUp}})

	sync := NewSync(backend.AuthedClient(), nil)
	if err := sync.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	// Balance moves on the server but the transaction fetch now fails:
	// neither half of the snapshot may change.
	backend.SetBalance(dec("99.00"))
	backend.FailLedger(false, true)

	if err := sync.Refresh(context.Background()); err == nil {
		t.Fatal("expected refresh error")
	}

	snap, ok := sync.Snapshot()
	if !ok {
		t.Fatal("snapshot should survive a failed refresh")
	}
	if !snap.Balance.Equal(dec("10.00")) {
		t.Errorf("Balance = %s, want stale 10.00 (balance must never move without its history)", snap.Balance)
	}
	if len(snap.Transactions) != 1 {
		t.Errorf("Transactions = %+v, want stale history retained", snap.Transactions)
	}
}

func TestTopUpValidationRejectsWithoutNetworkCall(t *testing.T) {
	backend := testutil.NewBackend(t)
	sync := NewSync(backend.AuthedClient(), nil)

	tests := []struct {
		name   string
		amount string
	}{
		{"zero", "0"},
		{"negative", "-5"},
		{"sub-cent precision", "1.234"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, err := decimal.NewFromString(tt.amount)
			if err != nil {
				t.Fatalf("parsing %q: %v", tt.amount, err)
			}
			if err := sync.TopUp(context.Background(), amount); err == nil {
				t.Error("expected validation error")
			}
		})
	}

	if got := backend.Calls("top_up"); got != 0 {
		t.Errorf("top-up endpoint hit %d times, want 0 for invalid amounts", got)
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"10.00", false},
		{"0.01", false},
		{"25", false},
		{"abc", true},
		{"", true},
		{"0", true},
		{"-1.50", true},
		{"0.001", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := ParseAmount(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseAmount(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestTopUpRefreshesFromServer(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.SetBalance(dec("5.00"))

	sync := NewSync(backend.AuthedClient(), nil)
	if err := sync.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	if err := sync.TopUp(context.Background(), dec("10.00")); err != nil {
		t.Fatalf("TopUp failed: %v", err)
	}

	snap, _ := sync.Snapshot()
	if !snap.Balance.Equal(dec("15.00")) {
		t.Errorf("Balance = %s, want 15.00 from the post-top-up refresh", snap.Balance)
	}
	if len(snap.Transactions) == 0 || snap.Transactions[0].Type != api.TransactionTopUp {
		t.Errorf("Transactions = %+v, want new top_up record at the head", snap.Transactions)
	}
	if snap.FetchedAt.IsZero() || time.Since(snap.FetchedAt) > time.Minute {
		t.Errorf("FetchedAt = %v, want recent", snap.FetchedAt)
	}
}

func TestRecentReadsPrefix(t *testing.T) {
	backend := testutil.NewBackend(t)
	var txs []api.Transaction
	for i := int64(10); i >= 1; i-- {
		txs = append(txs, api.Transaction{ID: i, Amount: dec("1.00"), Type: api.TransactionCharge})
	}
	backend.SetTransactions(txs)

	sync := NewSync(backend.AuthedClient(), nil)
	if err := sync.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	recent := sync.Recent(5)
	if len(recent) != 5 {
		t.Fatalf("Recent(5) returned %d transactions", len(recent))
	}
	if recent[0].ID != 10 {
		t.Errorf("Recent head ID = %d, want 10", recent[0].ID)
	}

	if got := sync.Recent(50); len(got) != 10 {
		t.Errorf("Recent(50) returned %d, want all 10", len(got))
	}
}
