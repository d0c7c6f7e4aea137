package repository

import (
	"context"

	"github.com/utafrali/storefront/internal/domain"
)

// Kinds of collection a repository can hold. They name keys, files and
// collections in the backing stores.
const (
	KindCart     = "cart"
	KindWishlist = "wishlist"
)

// CollectionRepository defines persistence for one kind of shopper
// collection, keyed by session id.
type CollectionRepository[T domain.Item] interface {
	// Get retrieves the collection of userID. It returns an error wrapping
	// apperrors.ErrNotFound when none was saved.
	Get(ctx context.Context, userID string) (*domain.Document[T], error)

	// SaveIfVersion persists doc only if the stored version still equals
	// expectedVersion (0 meaning "never saved"). It reports false when another
	// writer got there first.
	SaveIfVersion(ctx context.Context, doc *domain.Document[T], expectedVersion int64) (bool, error)

	// Ping checks the backing store is reachable.
	Ping(ctx context.Context) error
}

// CartRepository stores carts.
type CartRepository = CollectionRepository[domain.CartItem]

// WishlistRepository stores wishlists.
type WishlistRepository = CollectionRepository[domain.WishlistItem]
