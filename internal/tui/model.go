package tui

import (
	"github.com/ragline-dev/ragline/internal/config"
	"github.com/ragline-dev/ragline/internal/conversation"
	"github.com/ragline-dev/ragline/internal/ledger"
	"github.com/ragline-dev/ragline/internal/query"
	"github.com/ragline-dev/ragline/internal/registry"
	"github.com/ragline-dev/ragline/internal/session"
)

// ViewState represents the current state of the TUI.
type ViewState int

const (
	StateLoading ViewState = iota // validating a stored token
	StateAuth
	StateDashboard
)

// Services bundles the core components the TUI drives. All of them are
// explicit injected objects so tests can run several side by side.
type Services struct {
	Session      *session.Manager
	Ledger       *ledger.Sync
	Registry     *registry.Registry
	Conversation *conversation.Log
	Query        *query.Service
}

// Model is the top-level TUI state shared across views.
type Model struct {
	State ViewState
	Cfg   *config.Config

	Services Services

	// Gen is bumped on every logout. Messages produced by commands that
	// were dispatched under an older generation are discarded instead of
	// applied to state: a response arriving after logout must not mutate
	// the new session's view.
	Gen int

	// Querying is true while a question is in flight; the submit path is
	// disabled so two jobs can never interleave their assistant messages.
	Querying bool

	// Terminal dimensions.
	Width  int
	Height int

	// Ctrl+C confirmation state.
	CtrlCPending bool
}

// NewModel creates the top-level model.
func NewModel(cfg *config.Config, svcs Services) *Model {
	return &Model{
		State:    StateLoading,
		Cfg:      cfg,
		Services: svcs,
		Width:    80,
		Height:   24,
	}
}
