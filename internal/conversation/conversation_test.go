package conversation

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestAppendPreservesInsertionOrder(t *testing.T) {
	l := NewLog()
	l.Bind(1)

	l.AppendQuestion("What is the contract term?")
	l.AppendAnswer("12 months", decimal.NewFromFloat(0.002), 150)
	l.AppendQuestion("Who are the parties?")

	msgs := l.Messages()
	if len(msgs) != 3 {
		t.Fatalf("Len = %d, want 3", len(msgs))
	}
	if msgs[0].Role != RoleUser || msgs[1].Role != RoleAssistant || msgs[2].Role != RoleUser {
		t.Errorf("roles = %v %v %v, want user assistant user", msgs[0].Role, msgs[1].Role, msgs[2].Role)
	}
	if !msgs[1].Billed || msgs[1].Tokens != 150 {
		t.Errorf("assistant message = %+v, want cost metadata attached", msgs[1])
	}
}

func TestBindResetsOnDocumentChange(t *testing.T) {
	l := NewLog()
	l.Bind(1)
	l.AppendQuestion("q1")
	l.AppendAnswer("a1", decimal.Zero, 0)

	// Rebinding the same document keeps the history.
	if l.Bind(1) {
		t.Error("rebinding the same document must not reset")
	}
	if l.Len() != 2 {
		t.Fatalf("Len = %d, want 2 after same-document rebind", l.Len())
	}

	// A different document starts a fresh log.
	if !l.Bind(2) {
		t.Error("binding a different document must reset")
	}
	if l.Len() != 0 {
		t.Errorf("Len = %d, want 0 after document switch", l.Len())
	}
	if l.DocumentID() != 2 {
		t.Errorf("DocumentID = %d, want 2", l.DocumentID())
	}
}

func TestBindToUnboundResets(t *testing.T) {
	l := NewLog()
	l.Bind(1)
	l.AppendQuestion("q1")

	// Clearing the selection (upload, document vanished) unbinds the log.
	if !l.Bind(0) {
		t.Error("unbinding must reset")
	}
	if l.Len() != 0 {
		t.Errorf("Len = %d, want 0 after unbind", l.Len())
	}
}

func TestRetractRollsBackOptimisticTail(t *testing.T) {
	l := NewLog()
	l.Bind(1)

	idx := l.AppendQuestion("doomed question")
	l.Retract(idx)
	if l.Len() != 0 {
		t.Errorf("Len = %d, want 0 after retracting the optimistic message", l.Len())
	}

	// A message that is no longer the tail stays put.
	first := l.AppendQuestion("q1")
	l.AppendAnswer("a1", decimal.Zero, 0)
	l.Retract(first)
	if l.Len() != 2 {
		t.Errorf("Len = %d, want 2: non-tail messages are immutable history", l.Len())
	}
}
