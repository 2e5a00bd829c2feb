package app

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"

	"github.com/ragline-dev/ragline/internal/api"
	"github.com/ragline-dev/ragline/internal/config"
	"github.com/ragline-dev/ragline/internal/conversation"
	"github.com/ragline-dev/ragline/internal/ledger"
	"github.com/ragline-dev/ragline/internal/query"
	"github.com/ragline-dev/ragline/internal/registry"
	"github.com/ragline-dev/ragline/internal/session"
	"github.com/ragline-dev/ragline/internal/testutil"
	"github.com/ragline-dev/ragline/internal/tui"
)

// newDashboardApp builds an App on the dashboard with document 7 ready
// and selected, backed by the fake backend.
func newDashboardApp(t *testing.T) (*App, *tui.Model, tui.Services) {
	t.Helper()

	backend := testutil.NewBackend(t)
	backend.SetDocuments([]api.Document{
		{ID: 7, Filename: "contract.pdf", Status: api.DocumentReady, PageCount: 12},
	})

	client := backend.AuthedClient()
	svcs := tui.Services{
		Session:      session.NewManager(client, nil, nil),
		Ledger:       ledger.NewSync(client, nil),
		Registry:     registry.NewRegistry(client, nil),
		Conversation: conversation.NewLog(),
	}
	poller := query.NewPoller(client, time.Millisecond, 0)
	svcs.Query = query.NewService(client, poller, svcs.Ledger, svcs.Registry, svcs.Conversation, nil)

	if err := svcs.Registry.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if !svcs.Registry.Select(7) {
		t.Fatal("Select(7) should succeed for a ready document")
	}
	svcs.Conversation.Bind(7)

	model := tui.NewModel(config.DefaultConfig(), svcs)
	model.State = tui.StateDashboard
	return New(model), model, svcs
}

func TestQuestionVisibleWhileJobRuns(t *testing.T) {
	a, model, svcs := newDashboardApp(t)

	// The ask command appends the optimistic user message from its own
	// goroutine while the update loop keeps animating the spinner.
	model.Querying = true
	svcs.Conversation.AppendQuestion("What is the contract term?")

	a.Update(spinner.TickMsg{})

	if view := a.View(); !strings.Contains(view, "What is the contract term?") {
		t.Error("in-flight question should be visible before the job finishes")
	}
}

func TestFailedOutcomeNotice(t *testing.T) {
	a, model, _ := newDashboardApp(t)
	model.Querying = true

	a.Update(tui.AskResultMsg{Result: &query.Result{Outcome: query.OutcomeFailed}})

	view := a.View()
	if strings.Contains(view, "no charge") {
		t.Error("failure notice must not promise that nothing was charged")
	}
	if !strings.Contains(view, "balance refreshed") {
		t.Error("failure notice should say the balance was refreshed")
	}
	if model.Querying {
		t.Error("querying flag should clear on the terminal result")
	}
}
