package session

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ragline-dev/ragline/internal/testutil"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// signedToken builds a real JWT with the given expiry so bootstrap's local
// expiry check has something to parse.
func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "1",
		"exp": exp.Unix(),
	})
	signed, err := tok.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return signed
}

func TestLoginSuccess(t *testing.T) {
	backend := testutil.NewBackend(t)
	store := newStore(t)
	mgr := NewManager(backend.Client(), store, nil)

	user, err := mgr.Login(context.Background(), "alice", "secret")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if user.Username != "alice" {
		t.Errorf("Username = %q, want %q", user.Username, "alice")
	}
	if !mgr.Authenticated() {
		t.Error("manager should be authenticated after login")
	}

	cred, err := store.LoadCredential()
	if err != nil {
		t.Fatalf("LoadCredential failed: %v", err)
	}
	if cred == nil || cred.Token != testutil.TestToken {
		t.Errorf("stored credential = %+v, want token %q", cred, testutil.TestToken)
	}
}

func TestLoginSurvivesStoreFailure(t *testing.T) {
	backend := testutil.NewBackend(t)
	store, err := NewStore(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	// Closing the store makes every write fail from here on.
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	mgr := NewManager(backend.Client(), store, nil)
	user, err := mgr.Login(context.Background(), "alice", "secret")
	if err != nil {
		t.Fatalf("Login should succeed when only persistence fails: %v", err)
	}
	if user == nil || user.Username != "alice" {
		t.Fatalf("user = %+v, want alice", user)
	}
	if !mgr.Authenticated() {
		t.Error("manager should be authenticated despite the store failure")
	}
	if got := mgr.client.Token(); got != testutil.TestToken {
		t.Errorf("token = %q, want the accepted token installed", got)
	}
}

func TestLoginFailureLeavesSessionUntouched(t *testing.T) {
	backend := testutil.NewBackend(t)
	store := newStore(t)
	mgr := NewManager(backend.Client(), store, nil)

	if _, err := mgr.Login(context.Background(), "alice", "secret"); err != nil {
		t.Fatalf("initial login failed: %v", err)
	}

	_, err := mgr.Login(context.Background(), "alice", "wrong")
	if err == nil {
		t.Fatal("expected error for bad password")
	}
	if err.Error() != "Incorrect username or password" {
		t.Errorf("error = %q, want backend detail surfaced verbatim", err.Error())
	}

	// The existing session survives the failed attempt.
	if !mgr.Authenticated() {
		t.Error("failed login must not clear the existing session")
	}
	if got := mgr.client.Token(); got != testutil.TestToken {
		t.Errorf("token = %q, want previous token retained", got)
	}
}

func TestLogoutIdempotent(t *testing.T) {
	backend := testutil.NewBackend(t)
	store := newStore(t)
	mgr := NewManager(backend.Client(), store, nil)

	if _, err := mgr.Login(context.Background(), "alice", "secret"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	mgr.Logout()
	mgr.Logout()

	if mgr.Authenticated() {
		t.Error("manager should be anonymous after logout")
	}
	if mgr.client.Token() != "" {
		t.Error("token should be cleared after logout")
	}
	cred, err := store.LoadCredential()
	if err != nil {
		t.Fatalf("LoadCredential failed: %v", err)
	}
	if cred != nil {
		t.Error("stored credential should be cleared after logout")
	}
}

func TestBootstrapNoStoredToken(t *testing.T) {
	backend := testutil.NewBackend(t)
	mgr := NewManager(backend.Client(), newStore(t), nil)

	if !mgr.Loading() {
		t.Error("manager should start in loading state")
	}
	if err := mgr.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}
	if mgr.Loading() {
		t.Error("loading should resolve after bootstrap")
	}
	if mgr.Authenticated() {
		t.Error("manager should stay anonymous without a stored token")
	}
}

func TestBootstrapExpiredTokenSkipsNetwork(t *testing.T) {
	backend := testutil.NewBackend(t)
	store := newStore(t)
	if _, err := store.SaveCredential("alice", signedToken(t, time.Now().Add(-time.Hour))); err != nil {
		t.Fatalf("SaveCredential failed: %v", err)
	}

	mgr := NewManager(backend.Client(), store, nil)
	if err := mgr.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}

	if mgr.Authenticated() {
		t.Error("expired token should resolve to anonymous")
	}
	if backend.Calls("me") != 0 {
		t.Errorf("expired token should be discarded without a network call, got %d calls", backend.Calls("me"))
	}
	cred, _ := store.LoadCredential()
	if cred != nil {
		t.Error("expired credential should be removed from the store")
	}
}

func TestBootstrapRejectedTokenClearsCredential(t *testing.T) {
	backend := testutil.NewBackend(t)
	store := newStore(t)
	// Unexpired but not the token the backend expects.
	if _, err := store.SaveCredential("alice", signedToken(t, time.Now().Add(time.Hour))); err != nil {
		t.Fatalf("SaveCredential failed: %v", err)
	}

	mgr := NewManager(backend.Client(), store, nil)
	if err := mgr.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}

	if mgr.Authenticated() {
		t.Error("rejected token should resolve to anonymous")
	}
	if mgr.client.Token() != "" {
		t.Error("rejected token should not remain installed on the client")
	}
	cred, _ := store.LoadCredential()
	if cred != nil {
		t.Error("rejected credential should be removed from the store")
	}
}

func TestBootstrapValidStoredToken(t *testing.T) {
	backend := testutil.NewBackend(t)
	store := newStore(t)
	if _, err := store.SaveCredential("alice", testutil.TestToken); err != nil {
		t.Fatalf("SaveCredential failed: %v", err)
	}

	mgr := NewManager(backend.Client(), store, nil)
	if err := mgr.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}

	user := mgr.CurrentUser()
	if user == nil || user.Username != "alice" {
		t.Fatalf("CurrentUser = %+v, want alice", user)
	}
}

func TestTokenExpired(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{"expired", signedToken(t, now.Add(-time.Minute)), true},
		{"valid", signedToken(t, now.Add(time.Minute)), false},
		{"opaque token left to server", testutil.TestToken, false},
		{"garbage left to server", "not-a-jwt", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tokenExpired(tt.token, now); got != tt.want {
				t.Errorf("tokenExpired(%q) = %v, want %v", tt.token, got, tt.want)
			}
		})
	}
}
