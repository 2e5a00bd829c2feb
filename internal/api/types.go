// Package api provides the HTTP client for the ragline backend.
// This file defines the wire types shared with the REST API.
package api

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentStatus is the backend-reported lifecycle status of a document.
// The client mirrors these values and never infers status locally.
type DocumentStatus string

const (
	DocumentUploaded   DocumentStatus = "uploaded"
	DocumentProcessing DocumentStatus = "processing"
	DocumentReady      DocumentStatus = "ready"
	DocumentFailed     DocumentStatus = "failed"
)

// Terminal reports whether the status can no longer change.
func (s DocumentStatus) Terminal() bool {
	return s == DocumentReady || s == DocumentFailed
}

// QueryStatus is the backend-reported status of an answer-generation job.
type QueryStatus string

const (
	QueryPending    QueryStatus = "pending"
	QueryProcessing QueryStatus = "processing"
	QueryCompleted  QueryStatus = "completed"
	QueryFailed     QueryStatus = "failed"
)

// Terminal reports whether the job has finished, successfully or not.
// Any other value (including statuses unknown to this client) is treated
// as in-flight and polled again.
func (s QueryStatus) Terminal() bool {
	return s == QueryCompleted || s == QueryFailed
}

// Transaction type values as reported by the ledger.
const (
	TransactionTopUp  = "top_up"
	TransactionCharge = "charge"
)

// TokenResponse is returned by the register and login endpoints.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// User is the authenticated identity returned by /user/me.
type User struct {
	ID        int64           `json:"id"`
	Username  string          `json:"username"`
	Email     string          `json:"email"`
	Balance   decimal.Decimal `json:"balance"`
	Role      string          `json:"role"`
	IsActive  bool            `json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
}

// BalanceResponse carries the server-authoritative account balance.
type BalanceResponse struct {
	Balance decimal.Decimal `json:"balance"`
}

// Transaction is one immutable ledger record. Sign is implied by Type.
type Transaction struct {
	ID             int64           `json:"id"`
	UserID         int64           `json:"user_id"`
	Amount         decimal.Decimal `json:"amount"`
	Type           string          `json:"transaction_type"`
	Status         string          `json:"status"`
	Timestamp      time.Time       `json:"timestamp"`
	Description    string          `json:"description"`
	RelatedQueryID *int64          `json:"related_query_id"`
}

// Document is one uploaded document and its ingestion state.
type Document struct {
	ID         int64          `json:"id"`
	UserID     int64          `json:"user_id"`
	Filename   string         `json:"filename"`
	FilePath   string         `json:"file_path"`
	UploadDate time.Time      `json:"upload_date"`
	Status     DocumentStatus `json:"status"`
	ChunkCount int            `json:"chunk_count"`
	PageCount  int            `json:"page_count"`
	FileSizeMB float64        `json:"file_size_mb"`
}

// UploadResponse is returned by the document upload endpoint.
type UploadResponse struct {
	ID       int64          `json:"id"`
	Filename string         `json:"filename"`
	Status   DocumentStatus `json:"status"`
	Message  string         `json:"message"`
}

// QueryJob is one asynchronous answer-generation job. Answer is present
// iff Status is completed; a job never changes after reaching a terminal
// status.
type QueryJob struct {
	ID           int64           `json:"id"`
	UserID       int64           `json:"user_id"`
	DocumentID   int64           `json:"document_id"`
	Question     string          `json:"question"`
	Answer       *string         `json:"answer"`
	Cost         decimal.Decimal `json:"cost"`
	InputTokens  int             `json:"input_tokens"`
	OutputTokens int             `json:"output_tokens"`
	TotalTokens  int             `json:"total_tokens"`
	Timestamp    time.Time       `json:"timestamp"`
	Status       QueryStatus     `json:"status"`
}
