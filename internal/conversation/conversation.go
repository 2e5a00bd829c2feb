// Package conversation holds the append-only message log for the currently
// selected document.
package conversation

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry in the conversation. Cost and Tokens are set only on
// assistant messages carrying a completed answer.
type Message struct {
	Role    Role
	Content string
	Cost    decimal.Decimal
	Tokens  int
	Billed  bool
}

// Log is an append-only ordered sequence of messages scoped to one
// document. It has exactly two producers: the optimistic user message
// appended at submission and the terminal assistant message from the job
// poller. Display order is insertion order; there are no edits and no
// reordering. Binding a different document starts a fresh log.
type Log struct {
	mu         sync.RWMutex
	documentID int64
	messages   []Message
}

// NewLog returns an empty, unbound log.
func NewLog() *Log {
	return &Log{}
}

// Bind scopes the log to a document. When the document changes (including
// to or from the unbound zero id) the log is reset; rebinding the same
// document keeps the history. Returns whether a reset happened.
func (l *Log) Bind(documentID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.documentID == documentID {
		return false
	}
	l.documentID = documentID
	l.messages = nil
	return true
}

// DocumentID returns the document the log is bound to, 0 if unbound.
func (l *Log) DocumentID() int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.documentID
}

// AppendQuestion appends an optimistic user message and returns its index,
// to be passed to Retract if the submission itself fails.
func (l *Log) AppendQuestion(content string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, Message{Role: RoleUser, Content: content})
	return len(l.messages) - 1
}

// AppendAnswer appends the terminal assistant message for a completed job.
func (l *Log) AppendAnswer(content string, cost decimal.Decimal, tokens int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, Message{
		Role:    RoleAssistant,
		Content: content,
		Cost:    cost,
		Tokens:  tokens,
		Billed:  true,
	})
}

// Retract rolls back the optimistic message at index idx. Only the tail
// message can be retracted; anything already followed by another message
// is history and stays.
func (l *Log) Retract(idx int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if idx >= 0 && idx == len(l.messages)-1 {
		l.messages = l.messages[:idx]
	}
}

// Messages returns the conversation in insertion order.
func (l *Log) Messages() []Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Message(nil), l.messages...)
}

// Len returns the number of messages.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.messages)
}
