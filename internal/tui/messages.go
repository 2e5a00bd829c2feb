package tui

import (
	"github.com/ragline-dev/ragline/internal/api"
	"github.com/ragline-dev/ragline/internal/query"
)

// ============================================================================
// Session Messages
// ============================================================================

// BootstrapDoneMsg signals that stored-token validation has resolved.
type BootstrapDoneMsg struct {
	User *api.User
	Err  error
}

// AuthSubmitMsg is emitted by the auth view when the form is submitted.
type AuthSubmitMsg struct {
	Register bool
	Username string
	Email    string
	Password string
}

// AuthResultMsg carries the outcome of a login or register attempt.
type AuthResultMsg struct {
	Gen  int
	User *api.User
	Err  error
}

// LogoutMsg requests ending the session.
type LogoutMsg struct{}

// ============================================================================
// Dashboard Refresh Messages
// ============================================================================

// RefreshTickMsg fires on the periodic dashboard cadence.
type RefreshTickMsg struct {
	Gen int
}

// RefreshDoneMsg signals that a ledger/document refresh pass finished.
// Errors are already logged by the components; the previous cached state
// stays visible either way.
type RefreshDoneMsg struct {
	Gen       int
	LedgerErr error
	DocsErr   error
}

// ============================================================================
// Wallet Messages
// ============================================================================

// TopUpSubmitMsg is emitted by the dashboard when a top-up is entered.
type TopUpSubmitMsg struct {
	Amount string
}

// TopUpResultMsg carries the outcome of a top-up attempt.
type TopUpResultMsg struct {
	Gen    int
	Amount string
	Err    error
}

// ============================================================================
// Document Messages
// ============================================================================

// UploadSubmitMsg is emitted with the path of a file to upload.
type UploadSubmitMsg struct {
	Path string
}

// UploadResultMsg carries the outcome of an upload.
type UploadResultMsg struct {
	Gen      int
	Filename string
	Err      error
}

// SelectDocumentMsg requests moving the selection cursor.
type SelectDocumentMsg struct {
	ID int64
}

// ============================================================================
// Query Messages
// ============================================================================

// AskSubmitMsg is emitted when the user submits a question.
type AskSubmitMsg struct {
	Question string
}

// AskResultMsg carries the single terminal outcome of a question.
type AskResultMsg struct {
	Gen    int
	Result *query.Result
	Err    error
}

// ============================================================================
// Utility Messages
// ============================================================================

// CtrlCResetMsg clears the Ctrl+C confirmation state after its timeout.
type CtrlCResetMsg struct{}
