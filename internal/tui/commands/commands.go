// Package commands provides Bubble Tea commands for TUI operations.
// Every network call runs inside a command so the update loop never
// blocks; each command resolves to exactly one message.
package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ragline-dev/ragline/internal/ledger"
	"github.com/ragline-dev/ragline/internal/query"
	"github.com/ragline-dev/ragline/internal/registry"
	"github.com/ragline-dev/ragline/internal/session"
	"github.com/ragline-dev/ragline/internal/tui"
)

// BootstrapCmd validates the stored token against the backend.
func BootstrapCmd(mgr *session.Manager) tea.Cmd {
	return func() tea.Msg {
		err := mgr.Bootstrap(context.Background())
		return tui.BootstrapDoneMsg{User: mgr.CurrentUser(), Err: err}
	}
}

// AuthCmd performs a login or register attempt for the given generation.
func AuthCmd(mgr *session.Manager, gen int, msg tui.AuthSubmitMsg) tea.Cmd {
	return func() tea.Msg {
		var err error
		if msg.Register {
			_, err = mgr.Register(context.Background(), msg.Username, msg.Email, msg.Password)
		} else {
			_, err = mgr.Login(context.Background(), msg.Username, msg.Password)
		}
		return tui.AuthResultMsg{Gen: gen, User: mgr.CurrentUser(), Err: err}
	}
}

// RefreshCmd refreshes the ledger and the document registry. Failures are
// logged by the components themselves; the previous cache stays in place
// and the loop continues on schedule.
func RefreshCmd(gen int, led *ledger.Sync, reg *registry.Registry) tea.Cmd {
	return func() tea.Msg {
		msg := tui.RefreshDoneMsg{Gen: gen}
		msg.LedgerErr = led.Refresh(context.Background())
		msg.DocsErr = reg.Refresh(context.Background())
		return msg
	}
}

// TickCmd schedules the next periodic dashboard refresh.
func TickCmd(gen int, every time.Duration) tea.Cmd {
	return tea.Tick(every, func(time.Time) tea.Msg {
		return tui.RefreshTickMsg{Gen: gen}
	})
}

// TopUpCmd parses, validates and submits a top-up. Invalid amounts are
// rejected before any network call.
func TopUpCmd(gen int, led *ledger.Sync, input string) tea.Cmd {
	return func() tea.Msg {
		amount, err := ledger.ParseAmount(input)
		if err != nil {
			return tui.TopUpResultMsg{Gen: gen, Err: err}
		}
		if err := led.TopUp(context.Background(), amount); err != nil {
			return tui.TopUpResultMsg{Gen: gen, Err: err}
		}
		return tui.TopUpResultMsg{Gen: gen, Amount: amount.StringFixed(2)}
	}
}

// UploadCmd reads the file at path and sends it for ingestion.
func UploadCmd(gen int, reg *registry.Registry, path string) tea.Cmd {
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		if err != nil {
			return tui.UploadResultMsg{Gen: gen, Err: fmt.Errorf("reading file: %w", err)}
		}
		resp, err := reg.Upload(context.Background(), filepath.Base(path), data)
		if err != nil {
			return tui.UploadResultMsg{Gen: gen, Err: err}
		}
		return tui.UploadResultMsg{Gen: gen, Filename: resp.Filename}
	}
}

// AskCmd runs one question to its terminal outcome. The context comes from
// the app so logout or teardown cancels the poll loop.
func AskCmd(ctx context.Context, gen int, svc *query.Service, question string) tea.Cmd {
	return func() tea.Msg {
		res, err := svc.Ask(ctx, question)
		return tui.AskResultMsg{Gen: gen, Result: res, Err: err}
	}
}

// CtrlCTimeoutCmd resets the quit confirmation after one second.
func CtrlCTimeoutCmd() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tui.CtrlCResetMsg{}
	})
}
