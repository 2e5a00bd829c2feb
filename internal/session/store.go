// Package session owns the authenticated identity: login, register,
// logout, and the locally stored bearer token.
// This file provides SQLite-backed persistence for stored credentials.
package session

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Credential is a stored bearer token for a previously authenticated user.
type Credential struct {
	ID        string
	Username  string
	Token     string
	CreatedAt time.Time
}

// Store provides SQLite-backed persistence for credentials.
type Store struct {
	db *sql.DB
}

// NewStore opens the SQLite database at dbPath and creates tables if they
// don't exist.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := createTables(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func createTables(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS credentials (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL,
		token TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := db.Exec(schema)
	return err
}

// SaveCredential stores the token for username, replacing any previously
// stored credential. At most one credential is kept.
func (s *Store) SaveCredential(username, token string) (*Credential, error) {
	id := uuid.New().String()
	now := time.Now()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM credentials`); err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("clear credentials: %w", err)
	}
	if _, err := tx.Exec(
		`INSERT INTO credentials (id, username, token, created_at) VALUES (?, ?, ?, ?)`,
		id, username, token, now,
	); err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("insert credential: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return &Credential{ID: id, Username: username, Token: token, CreatedAt: now}, nil
}

// LoadCredential returns the stored credential, or nil if none exists.
func (s *Store) LoadCredential() (*Credential, error) {
	row := s.db.QueryRow(
		`SELECT id, username, token, created_at
		 FROM credentials
		 ORDER BY created_at DESC
		 LIMIT 1`,
	)

	var cred Credential
	err := row.Scan(&cred.ID, &cred.Username, &cred.Token, &cred.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan credential: %w", err)
	}

	return &cred, nil
}

// ClearCredentials removes all stored credentials. Safe to call when none
// exist.
func (s *Store) ClearCredentials() error {
	if _, err := s.db.Exec(`DELETE FROM credentials`); err != nil {
		return fmt.Errorf("delete credentials: %w", err)
	}
	return nil
}
