package log

import (
	"testing"
	"time"
)

func TestAppendAndReadAll(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewLogger(dir)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}

	events := []LogEvent{
		{Event: EventLogin, Username: "alice"},
		{Event: EventTopUp, Username: "alice", Amount: "10.00"},
		{Event: EventQueryCompleted, QueryID: 42, Cost: "0.002", Tokens: 150, Attempts: 3},
	}
	for _, ev := range events {
		if err := logger.Append(ev); err != nil {
			t.Fatalf("Append(%s): %v", ev.Event, err)
		}
	}

	got, err := logger.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(got) != len(events) {
		t.Fatalf("ReadAll returned %d events, want %d", len(got), len(events))
	}
	for i, ev := range got {
		if ev.Event != events[i].Event {
			t.Errorf("event %d = %q, want %q", i, ev.Event, events[i].Event)
		}
		if ev.Time.IsZero() {
			t.Errorf("event %d has zero time, want auto-filled", i)
		}
	}
	if got[2].QueryID != 42 || got[2].Tokens != 150 {
		t.Errorf("query event fields not round-tripped: %+v", got[2])
	}
}

func TestReadAllMissingFile(t *testing.T) {
	logger, err := NewLogger(t.TempDir())
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}

	events, err := logger.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll on missing file: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("got %d events from missing file, want 0", len(events))
	}
}

func TestAppendSetsTime(t *testing.T) {
	logger, err := NewLogger(t.TempDir())
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}

	before := time.Now().UTC()
	if err := logger.Append(LogEvent{Event: EventLogout}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	events, err := logger.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Time.Before(before.Add(-time.Second)) {
		t.Errorf("Time = %v, want around %v", events[0].Time, before)
	}
}
