// services.go wires the core components shared by the CLI commands and
// the TUI. State lives in .ragline/ under the user's home directory.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ragline-dev/ragline/internal/api"
	"github.com/ragline-dev/ragline/internal/config"
	"github.com/ragline-dev/ragline/internal/conversation"
	"github.com/ragline-dev/ragline/internal/ledger"
	"github.com/ragline-dev/ragline/internal/log"
	"github.com/ragline-dev/ragline/internal/query"
	"github.com/ragline-dev/ragline/internal/registry"
	"github.com/ragline-dev/ragline/internal/session"
)

type services struct {
	cfg      *config.Config
	client   *api.Client
	logger   *log.Logger
	store    *session.Store
	session  *session.Manager
	ledger   *ledger.Sync
	registry *registry.Registry
	conv     *conversation.Log
	query    *query.Service
}

func newServices() (*services, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolving home directory: %w", err)
	}

	// Missing or invalid config falls back to defaults; `ragline` works
	// out of the box against a local backend.
	cfg, err := config.ReadConfig(home)
	if err != nil {
		cfg = config.DefaultConfig()
	}

	dir, err := config.Dir(home)
	if err != nil {
		return nil, err
	}

	logger, err := log.NewLogger(home)
	if err != nil {
		return nil, err
	}

	store, err := session.NewStore(filepath.Join(dir, "session.db"))
	if err != nil {
		return nil, err
	}

	client := api.NewClient(cfg.API.BaseURL, cfg.APITimeout())
	mgr := session.NewManager(client, store, logger)
	led := ledger.NewSync(client, logger)
	reg := registry.NewRegistry(client, logger)
	conv := conversation.NewLog()
	poller := query.NewPoller(client, cfg.PollInterval(), cfg.Polling.MaxAttempts)
	svc := query.NewService(client, poller, led, reg, conv, logger)

	return &services{
		cfg:      cfg,
		client:   client,
		logger:   logger,
		store:    store,
		session:  mgr,
		ledger:   led,
		registry: reg,
		conv:     conv,
		query:    svc,
	}, nil
}

// Close releases held resources.
func (s *services) Close() {
	_ = s.store.Close()
}

// requireAuth restores the stored session and fails when none is valid.
func (s *services) requireAuth(ctx context.Context) error {
	if err := s.session.Bootstrap(ctx); err != nil {
		return err
	}
	if !s.session.Authenticated() {
		return fmt.Errorf("not logged in; run: ragline login <username>")
	}
	return nil
}
