// Package api provides the HTTP client for the ragline backend.
// This file implements the client itself: request plumbing, bearer auth,
// and one method per endpoint.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// basePath is the API version prefix shared by all endpoints.
const basePath = "/api/v1"

// Client talks to the ragline backend. The bearer token is the only piece
// of mutable shared state; it is replaced wholesale under the mutex, never
// partially mutated, so in-flight requests at the moment of logout complete
// against the old token.
type Client struct {
	baseURL string
	httpc   *http.Client

	mu    sync.RWMutex
	token string
}

// NewClient creates a Client for the backend at baseURL, e.g.
// "http://localhost:8000". The timeout applies per request.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: timeout},
	}
}

// SetToken replaces the bearer token used by all subsequent requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// ClearToken removes the bearer token; subsequent requests go out
// unauthenticated.
func (c *Client) ClearToken() {
	c.SetToken("")
}

// Token returns the current bearer token, empty if unauthenticated.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// do issues one JSON request and decodes the response into out (unless out
// is nil). Non-2xx responses become *Error with the backend's detail.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+basePath+path, reqBody)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req)

	return c.send(req, out)
}

// authorize attaches the bearer token if one is set.
func (c *Client) authorize(req *http.Request) {
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// send executes the request and decodes the JSON response.
func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newError(resp.StatusCode, data)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

// Register creates a new account and returns its bearer token.
func (c *Client) Register(ctx context.Context, username, email, password string) (*TokenResponse, error) {
	body := map[string]string{"username": username, "email": email, "password": password}
	var tok TokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", body, &tok); err != nil {
		return nil, err
	}
	return &tok, nil
}

// Login authenticates and returns a bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (*TokenResponse, error) {
	body := map[string]string{"username": username, "password": password}
	var tok TokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &tok); err != nil {
		return nil, err
	}
	return &tok, nil
}

// Me fetches the identity behind the current token.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, "/user/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Balance fetches the current account balance.
func (c *Client) Balance(ctx context.Context) (decimal.Decimal, error) {
	var resp BalanceResponse
	if err := c.do(ctx, http.MethodGet, "/user/balance", nil, &resp); err != nil {
		return decimal.Zero, err
	}
	return resp.Balance, nil
}

// TopUp credits the account balance. The caller is expected to have
// validated amount already; the server remains the arbiter of truth.
func (c *Client) TopUp(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error) {
	body := map[string]decimal.Decimal{"amount": amount}
	var resp BalanceResponse
	if err := c.do(ctx, http.MethodPost, "/user/balance/top-up", body, &resp); err != nil {
		return decimal.Zero, err
	}
	return resp.Balance, nil
}

// Transactions fetches the ledger history, newest first.
func (c *Client) Transactions(ctx context.Context) ([]Transaction, error) {
	var txs []Transaction
	if err := c.do(ctx, http.MethodGet, "/transactions/history", nil, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

// Documents fetches all documents owned by the user.
func (c *Client) Documents(ctx context.Context) ([]Document, error) {
	var docs []Document
	if err := c.do(ctx, http.MethodGet, "/documents/", nil, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// Document fetches a single document by id.
func (c *Client) Document(ctx context.Context, id int64) (*Document, error) {
	var doc Document
	if err := c.do(ctx, http.MethodGet, "/documents/"+strconv.FormatInt(id, 10), nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Upload sends a document as multipart form data for ingestion.
func (c *Client) Upload(ctx context.Context, filename string, data []byte) (*UploadResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("creating form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("writing form file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+basePath+"/documents/upload", &buf)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	c.authorize(req)

	var resp UploadResponse
	if err := c.send(req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateQuery submits a question against a document and returns the job
// record, typically still pending.
func (c *Client) CreateQuery(ctx context.Context, documentID int64, question string) (*QueryJob, error) {
	body := map[string]any{"document_id": documentID, "question": question}
	var job QueryJob
	if err := c.do(ctx, http.MethodPost, "/queries/", body, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// Query polls one job by id.
func (c *Client) Query(ctx context.Context, id int64) (*QueryJob, error) {
	var job QueryJob
	if err := c.do(ctx, http.MethodGet, "/queries/"+strconv.FormatInt(id, 10), nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// QueryHistory fetches past jobs for the user.
func (c *Client) QueryHistory(ctx context.Context) ([]QueryJob, error) {
	var jobs []QueryJob
	if err := c.do(ctx, http.MethodGet, "/queries/history", nil, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}
