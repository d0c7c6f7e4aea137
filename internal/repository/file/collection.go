// Package file stores shopper collections as JSON files on local disk, the
// backend for development and single-node deployments.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/database"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// Repository implements repository.CollectionRepository with one
// "<kind>-<userID>.json" file per shopper session under dir. Writes are
// serialized within the process and replace the file atomically.
type Repository[T domain.Item] struct {
	dir  string
	kind string
	mu   sync.Mutex
}

// NewRepository creates the data directory if needed and returns a
// repository for the given kind.
func NewRepository[T domain.Item](dir, kind string) (*Repository[T], error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}
	return &Repository[T]{dir: dir, kind: kind}, nil
}

func (r *Repository[T]) path(userID string) (string, error) {
	if userID == "" || strings.ContainsAny(userID, `/\`) || strings.Contains(userID, "..") {
		return "", apperrors.InvalidInput("invalid session id")
	}
	return filepath.Join(r.dir, r.kind+"-"+userID+".json"), nil
}

// Get reads the collection file of userID.
func (r *Repository[T]) Get(ctx context.Context, userID string) (doc *domain.Document[T], err error) {
	_, end := database.TraceOp(ctx, "file", "read", r.kind)
	defer func() { end(err) }()

	path, err := r.path(userID)
	if err != nil {
		return nil, err
	}
	return r.read(path, userID)
}

func (r *Repository[T]) read(path, userID string) (*domain.Document[T], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.NotFound(r.kind, userID)
		}
		return nil, fmt.Errorf("read %s file: %w", r.kind, err)
	}

	var doc domain.Document[T]
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", r.kind, err)
	}
	if doc.Items == nil {
		doc.Items = []T{}
	}
	return &doc, nil
}

// SaveIfVersion writes doc when the file on disk is still at expectedVersion.
func (r *Repository[T]) SaveIfVersion(ctx context.Context, doc *domain.Document[T], expectedVersion int64) (ok bool, err error) {
	_, end := database.TraceOp(ctx, "file", "write", r.kind)
	defer func() { end(err) }()

	path, err := r.path(doc.UserID)
	if err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var current int64
	stored, err := r.read(path, doc.UserID)
	switch {
	case err == nil:
		current = stored.Version
	case errors.Is(err, apperrors.ErrNotFound):
	default:
		return false, err
	}
	if current != expectedVersion {
		return false, nil
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return false, fmt.Errorf("marshal %s: %w", r.kind, err)
	}
	if err := writeAtomic(path, data); err != nil {
		return false, fmt.Errorf("write %s file: %w", r.kind, err)
	}
	return true, nil
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Ping checks the data directory is still present.
func (r *Repository[T]) Ping(context.Context) error {
	info, err := os.Stat(r.dir)
	if err != nil {
		return fmt.Errorf("stat data dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("data dir %s is not a directory", r.dir)
	}
	return nil
}
