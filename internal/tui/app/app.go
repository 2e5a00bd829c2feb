// Package app implements the top-level Bubble Tea application that wires
// the views to the core components.
package app

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ragline-dev/ragline/internal/query"
	"github.com/ragline-dev/ragline/internal/tui"
	"github.com/ragline-dev/ragline/internal/tui/commands"
	"github.com/ragline-dev/ragline/internal/tui/views"
)

// App is the root Bubble Tea model.
type App struct {
	model *tui.Model

	auth views.AuthModel
	dash views.DashboardModel

	// askCancel cancels the in-flight question, if any. Logout and
	// teardown call it so a stale job can never keep polling.
	askCancel context.CancelFunc

	notice    string
	noticeErr string
}

// New creates the application from the shared model.
func New(model *tui.Model) *App {
	return &App{
		model: model,
		auth:  views.NewAuthModel(model.Width, model.Height),
		dash:  views.NewDashboardModel(model.Width, model.Height),
	}
}

// Init starts stored-token validation.
func (a *App) Init() tea.Cmd {
	return commands.BootstrapCmd(a.model.Services.Session)
}

// Update handles all application messages.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.model.Width = msg.Width
		a.model.Height = msg.Height
		a.auth.SetSize(msg.Width, msg.Height)
		a.dash.SetSize(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == tui.KeyCtrlC {
			if a.model.CtrlCPending {
				a.teardown()
				return a, tea.Quit
			}
			a.model.CtrlCPending = true
			return a, commands.CtrlCTimeoutCmd()
		}
		a.model.CtrlCPending = false

	case tui.CtrlCResetMsg:
		a.model.CtrlCPending = false
		return a, nil
	}

	switch msg := msg.(type) {
	case tui.BootstrapDoneMsg:
		return a.handleBootstrapDone(msg)
	case tui.AuthSubmitMsg:
		return a, commands.AuthCmd(a.model.Services.Session, a.model.Gen, msg)
	case tui.AuthResultMsg:
		return a.handleAuthResult(msg)
	case tui.LogoutMsg:
		return a.handleLogout()

	case tui.RefreshTickMsg:
		return a.handleRefreshTick(msg)
	case tui.RefreshDoneMsg:
		return a.handleRefreshDone(msg)

	case tui.TopUpSubmitMsg:
		return a, commands.TopUpCmd(a.model.Gen, a.model.Services.Ledger, msg.Amount)
	case tui.TopUpResultMsg:
		return a.handleTopUpResult(msg)

	case tui.UploadSubmitMsg:
		return a, commands.UploadCmd(a.model.Gen, a.model.Services.Registry, msg.Path)
	case tui.UploadResultMsg:
		return a.handleUploadResult(msg)
	case tui.SelectDocumentMsg:
		return a.handleSelectDocument(msg)

	case tui.AskSubmitMsg:
		return a.handleAskSubmit(msg)
	case tui.AskResultMsg:
		return a.handleAskResult(msg)

	case spinner.TickMsg:
		// The optimistic user message lands inside the ask command's
		// goroutine, after submit-time sync. Re-pull component state on
		// each animation frame so the question shows up right away
		// instead of waiting for the terminal result or the next
		// periodic refresh.
		if a.model.Querying {
			a.syncDashboard()
		}
		return a.routeToView(msg)
	}

	return a.routeToView(msg)
}

func (a *App) routeToView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.model.State {
	case tui.StateAuth:
		a.auth, cmd = a.auth.Update(msg)
	case tui.StateDashboard:
		a.dash, cmd = a.dash.Update(msg)
	}
	return a, cmd
}

func (a *App) handleBootstrapDone(msg tui.BootstrapDoneMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil || msg.User == nil {
		a.model.State = tui.StateAuth
		if msg.Err != nil {
			a.auth.SetError(msg.Err.Error())
		}
		return a, nil
	}
	return a.enterDashboard()
}

func (a *App) handleAuthResult(msg tui.AuthResultMsg) (tea.Model, tea.Cmd) {
	if msg.Gen != a.model.Gen {
		return a, nil
	}
	if msg.Err != nil {
		a.auth.SetError(msg.Err.Error())
		return a, nil
	}
	return a.enterDashboard()
}

// enterDashboard switches to the dashboard and starts the refresh loop.
func (a *App) enterDashboard() (tea.Model, tea.Cmd) {
	a.model.State = tui.StateDashboard
	a.dash.Reset()
	a.syncDashboard()
	return a, tea.Batch(
		commands.RefreshCmd(a.model.Gen, a.model.Services.Ledger, a.model.Services.Registry),
		commands.TickCmd(a.model.Gen, a.model.Cfg.RefreshInterval()),
	)
}

func (a *App) handleLogout() (tea.Model, tea.Cmd) {
	a.cancelAsk()
	a.model.Services.Session.Logout()
	a.model.Services.Registry.ClearSelection()
	a.model.Services.Conversation.Bind(0)

	// Everything dispatched before this point resolves under the old
	// generation and gets discarded on arrival.
	a.model.Gen++
	a.model.Querying = false
	a.model.State = tui.StateAuth
	a.notice = ""
	a.noticeErr = ""
	a.auth.Reset()
	return a, nil
}

func (a *App) handleRefreshTick(msg tui.RefreshTickMsg) (tea.Model, tea.Cmd) {
	if msg.Gen != a.model.Gen || a.model.State != tui.StateDashboard {
		return a, nil
	}
	return a, tea.Batch(
		commands.RefreshCmd(a.model.Gen, a.model.Services.Ledger, a.model.Services.Registry),
		commands.TickCmd(a.model.Gen, a.model.Cfg.RefreshInterval()),
	)
}

func (a *App) handleRefreshDone(msg tui.RefreshDoneMsg) (tea.Model, tea.Cmd) {
	if msg.Gen != a.model.Gen {
		return a, nil
	}
	a.syncDashboard()
	return a, nil
}

func (a *App) handleTopUpResult(msg tui.TopUpResultMsg) (tea.Model, tea.Cmd) {
	if msg.Gen != a.model.Gen {
		return a, nil
	}
	if msg.Err != nil {
		a.noticeErr = msg.Err.Error()
	} else {
		a.noticeErr = ""
		a.notice = fmt.Sprintf("Added $%s to balance", msg.Amount)
	}
	a.syncDashboard()
	return a, nil
}

func (a *App) handleUploadResult(msg tui.UploadResultMsg) (tea.Model, tea.Cmd) {
	if msg.Gen != a.model.Gen {
		return a, nil
	}
	if msg.Err != nil {
		a.noticeErr = msg.Err.Error()
		a.syncDashboard()
		return a, nil
	}
	// Upload clears the selection, so the conversation unbinds too.
	a.model.Services.Conversation.Bind(0)
	a.noticeErr = ""
	a.notice = fmt.Sprintf("Uploaded %s, processing", msg.Filename)
	a.syncDashboard()
	return a, nil
}

func (a *App) handleSelectDocument(msg tui.SelectDocumentMsg) (tea.Model, tea.Cmd) {
	if a.model.Querying {
		return a, nil
	}
	if a.model.Services.Registry.Select(msg.ID) {
		a.model.Services.Conversation.Bind(msg.ID)
	}
	a.syncDashboard()
	return a, nil
}

func (a *App) handleAskSubmit(msg tui.AskSubmitMsg) (tea.Model, tea.Cmd) {
	if a.model.Querying {
		return a, nil
	}
	a.model.Querying = true
	a.notice = ""
	a.noticeErr = ""

	ctx, cancel := context.WithCancel(context.Background())
	a.askCancel = cancel
	cmd := commands.AskCmd(ctx, a.model.Gen, a.model.Services.Query, msg.Question)

	// Ask appends the optimistic user message from its own goroutine;
	// the spinner tick handler re-syncs, so it appears within a frame.
	a.syncDashboard()
	return a, tea.Batch(cmd, a.dash.Spin())
}

func (a *App) handleAskResult(msg tui.AskResultMsg) (tea.Model, tea.Cmd) {
	a.cancelAsk()
	if msg.Gen != a.model.Gen {
		return a, nil
	}
	a.model.Querying = false

	switch {
	case msg.Err != nil:
		a.noticeErr = msg.Err.Error()
	case msg.Result.Outcome == query.OutcomeFailed:
		a.noticeErr = "Query failed; balance refreshed"
	case msg.Result.Outcome == query.OutcomeTimedOut:
		a.noticeErr = "Query timed out, check your balance and retry"
	default:
		a.noticeErr = ""
	}

	a.syncDashboard()
	return a, nil
}

// syncDashboard rebuilds the dashboard's render data from the components.
func (a *App) syncDashboard() {
	data := views.DashboardData{
		Querying:   a.model.Querying,
		ErrMsg:     a.noticeErr,
		SuccessMsg: a.notice,
	}
	if user := a.model.Services.Session.CurrentUser(); user != nil {
		data.Username = user.Username
	}
	if snap, ok := a.model.Services.Ledger.Snapshot(); ok {
		data.HasSnapshot = true
		data.Balance = snap.Balance.StringFixed(2)
	}
	data.Transactions = a.model.Services.Ledger.Recent(a.model.Cfg.Dashboard.TransactionLimit)
	data.Documents = a.model.Services.Registry.Documents()
	if doc, ok := a.model.Services.Registry.Selected(); ok {
		data.SelectedID = doc.ID
		data.SelectedName = doc.Filename
	}
	data.Messages = a.model.Services.Conversation.Messages()
	a.dash.SetData(data)
}

func (a *App) cancelAsk() {
	if a.askCancel != nil {
		a.askCancel()
		a.askCancel = nil
	}
}

// teardown releases resources before quitting.
func (a *App) teardown() {
	a.cancelAsk()
}

// View renders the current application state.
func (a *App) View() string {
	switch a.model.State {
	case tui.StateLoading:
		return lipgloss.Place(a.model.Width, a.model.Height,
			lipgloss.Center, lipgloss.Center, "Checking session...")
	case tui.StateAuth:
		return a.auth.View()
	case tui.StateDashboard:
		view := a.dash.View()
		if a.model.CtrlCPending {
			view += "\n" + tui.WarningStyle.Render("Press Ctrl+C again to quit")
		}
		return view
	}
	return ""
}
