// Package testutil provides a scripted fake backend for ragline tests.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ragline-dev/ragline/internal/api"
)

// TestToken is the bearer token the fake backend issues and expects.
const TestToken = "test-token"

// JobScript describes how a query job behaves across successive polls:
// Statuses are returned one per poll, and the last value repeats. When the
// reported status is completed, Answer, Cost and TotalTokens are filled in.
type JobScript struct {
	Statuses    []api.QueryStatus
	Answer      string
	Cost        decimal.Decimal
	TotalTokens int
}

// Backend is an in-memory fake of the ragline REST API backed by an
// httptest.Server. All fields are guarded by mu; mutate them only through
// the helper methods once the server is running.
type Backend struct {
	Server *httptest.Server

	mu           sync.Mutex
	user         api.User
	password     string
	balance      decimal.Decimal
	transactions []api.Transaction
	documents    []api.Document
	jobs         map[int64]*api.QueryJob
	scripts      map[int64]*JobScript
	polls        map[int64]int
	nextScript   *JobScript
	calls        map[string]int
	failBalance  bool
	failTx       bool
	nextID       int64
}

// NewBackend starts a fake backend and registers its shutdown with t.
func NewBackend(t *testing.T) *Backend {
	t.Helper()

	b := &Backend{
		user: api.User{
			ID:       1,
			Username: "alice",
			Email:    "alice@example.com",
			IsActive: true,
		},
		password: "secret",
		balance:  decimal.Zero,
		jobs:     make(map[int64]*api.QueryJob),
		scripts:  make(map[int64]*JobScript),
		polls:    make(map[int64]int),
		calls:    make(map[string]int),
		nextID:   100,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/register", b.handleRegister)
	mux.HandleFunc("POST /api/v1/auth/login", b.handleLogin)
	mux.HandleFunc("GET /api/v1/user/me", b.authed("me", b.handleMe))
	mux.HandleFunc("GET /api/v1/user/balance", b.authed("balance", b.handleBalance))
	mux.HandleFunc("POST /api/v1/user/balance/top-up", b.authed("top_up", b.handleTopUp))
	mux.HandleFunc("GET /api/v1/transactions/history", b.authed("transactions", b.handleTransactions))
	mux.HandleFunc("GET /api/v1/documents/", b.authed("documents", b.handleDocuments))
	mux.HandleFunc("GET /api/v1/documents/{id}", b.authed("document", b.handleDocument))
	mux.HandleFunc("POST /api/v1/documents/upload", b.authed("upload", b.handleUpload))
	mux.HandleFunc("POST /api/v1/queries/", b.authed("query_create", b.handleCreateQuery))
	mux.HandleFunc("GET /api/v1/queries/history", b.authed("query_history", b.handleQueryHistory))
	mux.HandleFunc("GET /api/v1/queries/{id}", b.authed("query_get", b.handleGetQuery))

	b.Server = httptest.NewServer(mux)
	t.Cleanup(b.Server.Close)
	return b
}

// URL returns the backend base URL for api.NewClient.
func (b *Backend) URL() string {
	return b.Server.URL
}

// Client returns an api.Client pointed at this backend.
func (b *Backend) Client() *api.Client {
	return api.NewClient(b.URL(), 5*time.Second)
}

// AuthedClient returns a client already carrying the test token.
func (b *Backend) AuthedClient() *api.Client {
	c := b.Client()
	c.SetToken(TestToken)
	return c
}

// Calls returns how many requests hit the named endpoint.
func (b *Backend) Calls(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[name]
}

// SetBalance replaces the reported balance.
func (b *Backend) SetBalance(d decimal.Decimal) {
	b.mu.Lock()
	b.balance = d
	b.mu.Unlock()
}

// SetTransactions replaces the ledger history, newest first.
func (b *Backend) SetTransactions(txs []api.Transaction) {
	b.mu.Lock()
	b.transactions = txs
	b.mu.Unlock()
}

// SetDocuments replaces the document listing.
func (b *Backend) SetDocuments(docs []api.Document) {
	b.mu.Lock()
	b.documents = docs
	b.mu.Unlock()
}

// FailLedger makes balance and/or transaction fetches return 500s.
func (b *Backend) FailLedger(balance, transactions bool) {
	b.mu.Lock()
	b.failBalance = balance
	b.failTx = transactions
	b.mu.Unlock()
}

// AddJob registers a job with the given script and returns it, without
// going through the create endpoint.
func (b *Backend) AddJob(documentID int64, question string, script JobScript) *api.QueryJob {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addJobLocked(documentID, question, &script)
}

// ScriptNextJob sets the script applied to the next job created via
// POST /queries/.
func (b *Backend) ScriptNextJob(script JobScript) {
	b.mu.Lock()
	b.nextScript = &script
	b.mu.Unlock()
}

// JobPolls returns how many times the given job has been polled.
func (b *Backend) JobPolls(id int64) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.polls[id]
}

func (b *Backend) addJobLocked(documentID int64, question string, script *JobScript) *api.QueryJob {
	b.nextID++
	job := &api.QueryJob{
		ID:         b.nextID,
		UserID:     b.user.ID,
		DocumentID: documentID,
		Question:   question,
		Status:     api.QueryPending,
		Timestamp:  time.Now().UTC(),
	}
	b.jobs[job.ID] = job
	if script == nil {
		script = &JobScript{Statuses: []api.QueryStatus{api.QueryPending}}
	}
	b.scripts[job.ID] = script
	return job
}

// authed wraps a handler with bearer-token checking and call counting.
func (b *Backend) authed(name string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.calls[name]++
		b.mu.Unlock()

		if r.Header.Get("Authorization") != "Bearer "+TestToken {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		next(w, r)
	}
}

func (b *Backend) handleRegister(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.calls["register"]++
	b.mu.Unlock()

	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	b.mu.Lock()
	taken := req.Username == b.user.Username
	b.mu.Unlock()
	if taken {
		writeDetail(w, http.StatusBadRequest, "Username already registered")
		return
	}
	writeJSON(w, http.StatusCreated, api.TokenResponse{AccessToken: TestToken, TokenType: "bearer"})
}

func (b *Backend) handleLogin(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.calls["login"]++
	b.mu.Unlock()

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	b.mu.Lock()
	ok := req.Username == b.user.Username && req.Password == b.password
	b.mu.Unlock()
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Incorrect username or password")
		return
	}
	writeJSON(w, http.StatusOK, api.TokenResponse{AccessToken: TestToken, TokenType: "bearer"})
}

func (b *Backend) handleMe(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	u := b.user
	u.Balance = b.balance
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, u)
}

func (b *Backend) handleBalance(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	fail := b.failBalance
	bal := b.balance
	b.mu.Unlock()
	if fail {
		writeDetail(w, http.StatusInternalServerError, "balance unavailable")
		return
	}
	writeJSON(w, http.StatusOK, api.BalanceResponse{Balance: bal})
}

func (b *Backend) handleTopUp(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount decimal.Decimal `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	b.mu.Lock()
	b.balance = b.balance.Add(req.Amount)
	b.nextID++
	tx := api.Transaction{
		ID:          b.nextID,
		UserID:      b.user.ID,
		Amount:      req.Amount,
		Type:        api.TransactionTopUp,
		Status:      "completed",
		Timestamp:   time.Now().UTC(),
		Description: "Balance top-up: " + req.Amount.String(),
	}
	b.transactions = append([]api.Transaction{tx}, b.transactions...)
	bal := b.balance
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, api.BalanceResponse{Balance: bal})
}

func (b *Backend) handleTransactions(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	fail := b.failTx
	txs := append([]api.Transaction(nil), b.transactions...)
	b.mu.Unlock()
	if fail {
		writeDetail(w, http.StatusInternalServerError, "ledger unavailable")
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

func (b *Backend) handleDocuments(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	docs := append([]api.Document(nil), b.documents...)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, docs)
}

func (b *Backend) handleDocument(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, doc := range b.documents {
		if doc.ID == id {
			writeJSON(w, http.StatusOK, doc)
			return
		}
	}
	writeDetail(w, http.StatusNotFound, "Document not found")
}

func (b *Backend) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "file field missing")
		return
	}
	_ = file.Close()

	b.mu.Lock()
	b.nextID++
	doc := api.Document{
		ID:         b.nextID,
		UserID:     b.user.ID,
		Filename:   header.Filename,
		UploadDate: time.Now().UTC(),
		Status:     api.DocumentUploaded,
	}
	b.documents = append(b.documents, doc)
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, api.UploadResponse{
		ID:       doc.ID,
		Filename: doc.Filename,
		Status:   doc.Status,
		Message:  "Document uploaded and queued for processing",
	})
}

func (b *Backend) handleCreateQuery(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DocumentID int64  `json:"document_id"`
		Question   string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeDetail(w, http.StatusBadRequest, "Question must not be empty")
		return
	}

	b.mu.Lock()
	script := b.nextScript
	b.nextScript = nil
	job := b.addJobLocked(req.DocumentID, req.Question, script)
	j := *job
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, j)
}

func (b *Backend) handleQueryHistory(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	jobs := make([]api.QueryJob, 0, len(b.jobs))
	for _, job := range b.jobs {
		jobs = append(jobs, *job)
	}
	b.mu.Unlock()

	// Newest first, matching the transaction history ordering.
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].ID > jobs[j].ID })
	writeJSON(w, http.StatusOK, jobs)
}

func (b *Backend) handleGetQuery(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)

	b.mu.Lock()
	defer b.mu.Unlock()

	job, ok := b.jobs[id]
	if !ok {
		writeDetail(w, http.StatusNotFound, "Query not found")
		return
	}

	script := b.scripts[id]
	idx := b.polls[id]
	b.polls[id]++
	if idx >= len(script.Statuses) {
		idx = len(script.Statuses) - 1
	}

	j := *job
	j.Status = script.Statuses[idx]
	if j.Status == api.QueryCompleted {
		answer := script.Answer
		j.Answer = &answer
		j.Cost = script.Cost
		j.TotalTokens = script.TotalTokens
	}
	writeJSON(w, http.StatusOK, j)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
