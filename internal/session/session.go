package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ragline-dev/ragline/internal/api"
	"github.com/ragline-dev/ragline/internal/log"
)

// Manager is the single source of truth for "is a user authenticated".
// It owns the identity and the bearer token; every other component reads
// authentication state through it. It is an explicit injected object, not
// ambient process state, so tests can run multiple sessions side by side.
type Manager struct {
	client *api.Client
	store  *Store
	logger *log.Logger

	mu      sync.RWMutex
	user    *api.User
	loading bool
}

// NewManager creates a Manager over the given API client and credential
// store. The store may be nil, in which case tokens are not persisted.
// Loading starts true until Bootstrap resolves the stored token.
func NewManager(client *api.Client, store *Store, logger *log.Logger) *Manager {
	return &Manager{
		client:  client,
		store:   store,
		logger:  logger,
		loading: true,
	}
}

// Loading reports whether the initial stored-token validation is still in
// progress.
func (m *Manager) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

// CurrentUser returns the authenticated identity, or nil when anonymous.
func (m *Manager) CurrentUser() *api.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

// Authenticated reports whether a user is logged in.
func (m *Manager) Authenticated() bool {
	return m.CurrentUser() != nil
}

// Bootstrap validates a previously stored token against the backend and
// resolves the session to authenticated or anonymous. A token whose exp
// claim has already passed is discarded without a network call. Always
// clears the loading flag before returning.
func (m *Manager) Bootstrap(ctx context.Context) error {
	defer func() {
		m.mu.Lock()
		m.loading = false
		m.mu.Unlock()
	}()

	if m.store == nil {
		return nil
	}

	cred, err := m.store.LoadCredential()
	if err != nil {
		return fmt.Errorf("loading stored credential: %w", err)
	}
	if cred == nil {
		return nil
	}

	if tokenExpired(cred.Token, time.Now()) {
		_ = m.store.ClearCredentials()
		return nil
	}

	m.client.SetToken(cred.Token)
	user, err := m.client.Me(ctx)
	if err != nil {
		m.client.ClearToken()
		if api.IsAuthError(err) {
			// Token rejected by the server: stale credential, forget it.
			_ = m.store.ClearCredentials()
			return nil
		}
		return fmt.Errorf("validating stored token: %w", err)
	}

	m.mu.Lock()
	m.user = user
	m.mu.Unlock()
	return nil
}

// Login authenticates with the backend. On success the token is stored and
// the identity fetched; on failure the existing session is left untouched
// and the backend's message is returned.
func (m *Manager) Login(ctx context.Context, username, password string) (*api.User, error) {
	username = strings.TrimSpace(username)

	tok, err := m.client.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	return m.adopt(ctx, tok.AccessToken)
}

// Register creates an account and logs it in. Failure leaves any existing
// session untouched.
func (m *Manager) Register(ctx context.Context, username, email, password string) (*api.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	tok, err := m.client.Register(ctx, username, email, password)
	if err != nil {
		return nil, err
	}
	user, err := m.adopt(ctx, tok.AccessToken)
	if err != nil {
		return nil, err
	}
	m.logEvent(log.LogEvent{Event: log.EventRegister, Username: user.Username})
	return user, nil
}

// adopt installs the token, fetches the identity behind it, and persists
// the credential. The session is only mutated once both calls succeeded.
// Persisting is best effort: a store failure costs the next process a
// login, it must not fail a session the backend already accepted.
func (m *Manager) adopt(ctx context.Context, token string) (*api.User, error) {
	previous := m.client.Token()

	m.client.SetToken(token)
	user, err := m.client.Me(ctx)
	if err != nil {
		m.client.SetToken(previous)
		return nil, err
	}

	m.mu.Lock()
	m.user = user
	m.mu.Unlock()

	event := log.LogEvent{Event: log.EventLogin, Username: user.Username}
	if m.store != nil {
		if _, err := m.store.SaveCredential(user.Username, token); err != nil {
			event.Error = fmt.Sprintf("storing credential: %v", err)
		}
	}

	m.logEvent(event)
	return user, nil
}

// Logout clears the token and identity synchronously. Idempotent. In-flight
// requests may still complete against the old token; their responses must
// be discarded by the caller rather than applied to state.
func (m *Manager) Logout() {
	m.mu.Lock()
	wasAuthed := m.user != nil
	var username string
	if m.user != nil {
		username = m.user.Username
	}
	m.user = nil
	m.mu.Unlock()

	m.client.ClearToken()
	if m.store != nil {
		_ = m.store.ClearCredentials()
	}

	if wasAuthed {
		m.logEvent(log.LogEvent{Event: log.EventLogout, Username: username})
	}
}

func (m *Manager) logEvent(event log.LogEvent) {
	if m.logger != nil {
		_ = m.logger.Append(event)
	}
}
