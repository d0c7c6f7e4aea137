package syncer

import (
	"context"
	"log/slog"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/remote"
	"github.com/utafrali/storefront/internal/repository"
)

// WishlistRemote is the server side of a wishlist.
type WishlistRemote interface {
	Fetcher[domain.WishlistItem]
	Toggle(ctx context.Context, productID int) (remote.Collection[domain.WishlistItem], error)
	Remove(ctx context.Context, productID int) (remote.Collection[domain.WishlistItem], error)
}

// Wishlist synchronizes the session's wishlist.
type Wishlist struct {
	*Synchronizer[domain.WishlistItem]
	remote WishlistRemote
}

// NewWishlist creates a wishlist synchronizer. Call Start to load it.
func NewWishlist(r WishlistRemote, logger *slog.Logger) *Wishlist {
	return &Wishlist{
		Synchronizer: New[domain.WishlistItem](repository.KindWishlist, r, logger),
		remote:       r,
	}
}

// Toggle flips membership of productID. The server decides the outcome, so
// nothing is published until it answers.
func (w *Wishlist) Toggle(ctx context.Context, productID int) error {
	return w.run(ctx, KindToggle, productID, nil, func(ctx context.Context) (remote.Collection[domain.WishlistItem], error) {
		return w.remote.Toggle(ctx, productID)
	})
}

// Remove deletes productID, shown before the server answers.
func (w *Wishlist) Remove(ctx context.Context, productID int) error {
	predict := func(items []domain.WishlistItem) []domain.WishlistItem {
		return domain.Without(items, productID)
	}
	return w.run(ctx, KindRemove, productID, predict, func(ctx context.Context) (remote.Collection[domain.WishlistItem], error) {
		return w.remote.Remove(ctx, productID)
	})
}

// Contains reports whether productID is in the current state.
func (w *Wishlist) Contains(productID int) bool {
	return domain.Contains(w.Snapshot().Items, productID)
}
