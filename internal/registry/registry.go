// Package registry mirrors the user's document collection and tracks which
// document questions are asked against.
package registry

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ledongthuc/pdf"

	"github.com/ragline-dev/ragline/internal/api"
	"github.com/ragline-dev/ragline/internal/log"
)

// Upload validation errors, rejected before any network call.
var (
	ErrEmptyFile = errors.New("file is empty")
	ErrNotPDF    = errors.New("only PDF files are supported")
)

// Registry owns the cached document collection and the selection cursor.
// Documents are mutated only by the backend; the client polls and mirrors
// them without inferring status locally.
type Registry struct {
	client *api.Client
	logger *log.Logger

	mu       sync.RWMutex
	docs     []api.Document
	selected int64 // 0 = no selection
}

// NewRegistry creates a Registry over the given client. logger may be nil.
func NewRegistry(client *api.Client, logger *log.Logger) *Registry {
	return &Registry{client: client, logger: logger}
}

// Refresh replaces the cached collection with the backend's listing. If the
// selected document is no longer present the selection is dropped. Failures
// are logged and the previous cache kept.
func (r *Registry) Refresh(ctx context.Context) error {
	docs, err := r.client.Documents(ctx)
	if err != nil {
		if r.logger != nil {
			_ = r.logger.Append(log.LogEvent{
				Event:  log.EventRefreshFailed,
				Source: "documents",
				Error:  err.Error(),
			})
		}
		return fmt.Errorf("refreshing documents: %w", err)
	}

	r.mu.Lock()
	r.docs = docs
	if r.selected != 0 {
		if _, ok := findDoc(docs, r.selected); !ok {
			r.selected = 0
		}
	}
	r.mu.Unlock()
	return nil
}

// Documents returns the cached collection.
func (r *Registry) Documents() []api.Document {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]api.Document(nil), r.docs...)
}

// Select moves the selection cursor to the document with the given id.
// Selecting a document whose status is not ready is a no-op, not an error:
// answering requires a parsed document. Returns whether the selection
// changed.
func (r *Registry) Select(id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, ok := findDoc(r.docs, id)
	if !ok || doc.Status != api.DocumentReady {
		return false
	}
	if r.selected == id {
		return false
	}
	r.selected = id
	return true
}

// Selected returns the currently selected document, if any.
func (r *Registry) Selected() (api.Document, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.selected == 0 {
		return api.Document{}, false
	}
	doc, ok := findDoc(r.docs, r.selected)
	return doc, ok
}

// ClearSelection drops the selection cursor.
func (r *Registry) ClearSelection() {
	r.mu.Lock()
	r.selected = 0
	r.mu.Unlock()
}

// Upload validates the file locally, sends it for ingestion, clears the
// selection (any in-flight conversation is now about a stale document set)
// and refreshes the collection.
func (r *Registry) Upload(ctx context.Context, filename string, data []byte) (*api.UploadResponse, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	if strings.ToLower(filepath.Ext(filename)) != ".pdf" {
		return nil, ErrNotPDF
	}

	resp, err := r.client.Upload(ctx, filename, data)
	if err != nil {
		return nil, err
	}

	if r.logger != nil {
		_ = r.logger.Append(log.LogEvent{
			Event:    log.EventUpload,
			Filename: filename,
			Pages:    pageCount(data),
		})
	}

	r.ClearSelection()
	if err := r.Refresh(ctx); err != nil {
		return resp, err
	}
	return resp, nil
}

// pageCount probes the PDF locally for its page count. Advisory only: the
// backend reports the authoritative count after parsing, so a file this
// reader cannot handle just logs zero pages. The reader panics on some
// malformed files, hence the recover.
func pageCount(data []byte) (n int) {
	defer func() {
		if recover() != nil {
			n = 0
		}
	}()
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0
	}
	return reader.NumPage()
}

func findDoc(docs []api.Document, id int64) (api.Document, bool) {
	for _, doc := range docs {
		if doc.ID == id {
			return doc, true
		}
	}
	return api.Document{}, false
}
