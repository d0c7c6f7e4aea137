package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// maxWriteAttempts bounds how often a read-modify-write is retried after
// losing a version race against another request of the same session.
const maxWriteAttempts = 5

// ProductCatalog resolves product ids to catalog entries.
type ProductCatalog interface {
	Lookup(id int) (domain.Product, bool)
}

// EventPublisher publishes collection change events.
type EventPublisher interface {
	PublishCartUpdated(ctx context.Context, cart *domain.Cart) error
	PublishWishlistUpdated(ctx context.Context, wishlist *domain.Wishlist) error
}

// collections runs versioned reads and writes against one repository.
type collections[T domain.Item] struct {
	repo repository.CollectionRepository[T]
	kind string
	now  func() time.Time
}

// get returns the stored collection, or an empty unsaved one.
func (c collections[T]) get(ctx context.Context, userID string) (*domain.Document[T], error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}

	doc, err := c.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.NewDocument[T](userID, c.now().UTC()), nil
		}
		return nil, fmt.Errorf("get %s: %w", c.kind, err)
	}
	if doc.Items == nil {
		doc.Items = []T{}
	}
	return doc, nil
}

// mutate applies change to the current items and saves the result as the
// next version. A lost version race re-reads and re-applies change; an error
// from change aborts without writing.
func (c collections[T]) mutate(ctx context.Context, userID string, change func(items []T) ([]T, error)) (*domain.Document[T], error) {
	for range maxWriteAttempts {
		doc, err := c.get(ctx, userID)
		if err != nil {
			return nil, err
		}

		items, err := change(domain.Clone(doc.Items))
		if err != nil {
			return nil, err
		}

		next := *doc
		next.Items = items
		next.Version = doc.Version + 1
		next.UpdatedAt = c.now().UTC()

		ok, err := c.repo.SaveIfVersion(ctx, &next, doc.Version)
		if err != nil {
			return nil, fmt.Errorf("save %s: %w", c.kind, err)
		}
		if ok {
			return &next, nil
		}
	}
	return nil, apperrors.Conflict(c.kind + " was modified concurrently, please retry")
}
