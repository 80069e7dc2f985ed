// Package storage persists each collection as one flat JSON document. The
// document is the single source of truth for its collection: loads parse the
// whole file, saves rewrite it completely. There is no locking here; every
// document is owned by exactly one service, which serializes its own
// read-modify-write cycles.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Document names of the persisted collections.
const (
	DocProducts = "products.json"
	DocOrders   = "orders.json"
	DocUsers    = "users.json"
	DocDeposits = "deposits.json"
	DocSettings = "settings.json"
)

// ErrUnavailable covers every I/O and decode failure of the backing files.
// Callers treat it as a single error kind and never inspect the cause.
var ErrUnavailable = errors.New("storage unavailable")

// Store is the persistence capability handed to each service.
type Store interface {
	// Load decodes the named document into v. An absent document is not an
	// error: v keeps its zero value and the collection starts empty.
	Load(ctx context.Context, doc string, v any) error
	// Save serializes v and overwrites the named document.
	Save(ctx context.Context, doc string, v any) error
}

// JSONStore implements Store over a data directory, one file per document.
type JSONStore struct {
	dir string
}

func NewJSONStore(dir string) (*JSONStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create data dir: %v", ErrUnavailable, err)
	}
	return &JSONStore{dir: dir}, nil
}

func (s *JSONStore) Load(ctx context.Context, doc string, v any) error {
	b, err := os.ReadFile(filepath.Join(s.dir, doc))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", ErrUnavailable, doc, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrUnavailable, doc, err)
	}
	return nil
}

func (s *JSONStore) Save(ctx context.Context, doc string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", ErrUnavailable, doc, err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, doc), b, 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrUnavailable, doc, err)
	}
	return nil
}
