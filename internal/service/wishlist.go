package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

const msgItemNotInWishlist = "Item not in wishlist"

// WishlistService implements the business logic for wishlist operations.
type WishlistService struct {
	wishlists collections[domain.WishlistItem]
	catalog   ProductCatalog
	events    EventPublisher
	logger    *slog.Logger
}

// NewWishlistService creates a new wishlist service.
func NewWishlistService(repo repository.WishlistRepository, catalog ProductCatalog, events EventPublisher, logger *slog.Logger) *WishlistService {
	return &WishlistService{
		wishlists: collections[domain.WishlistItem]{repo: repo, kind: repository.KindWishlist, now: time.Now},
		catalog:   catalog,
		events:    events,
		logger:    logger,
	}
}

// GetWishlist retrieves the wishlist of a session, empty when none was saved.
func (s *WishlistService) GetWishlist(ctx context.Context, userID string) (*domain.Wishlist, error) {
	return s.wishlists.get(ctx, userID)
}

// Toggle flips the membership of a catalog product: a saved product is
// removed, any other is appended.
func (s *WishlistService) Toggle(ctx context.Context, userID string, productID int) (*domain.Wishlist, error) {
	product, ok := s.catalog.Lookup(productID)
	if !ok {
		return nil, apperrors.NotFoundMessage(msgProductNotFound)
	}

	var added bool
	wishlist, err := s.wishlists.mutate(ctx, userID, func(items []domain.WishlistItem) ([]domain.WishlistItem, error) {
		if domain.Contains(items, product.ID) {
			added = false
			return domain.Without(items, product.ID), nil
		}
		added = true
		return append(items, product.WishlistItem()), nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, wishlist)
	s.logger.InfoContext(ctx, "wishlist toggled",
		slog.String("user_id", userID),
		slog.Int("product_id", product.ID),
		slog.Bool("added", added),
		slog.Int64("version", wishlist.Version),
	)
	return wishlist, nil
}

// RemoveItem removes a saved product. Removing an absent product is NotFound.
func (s *WishlistService) RemoveItem(ctx context.Context, userID string, productID int) (*domain.Wishlist, error) {
	wishlist, err := s.wishlists.mutate(ctx, userID, func(items []domain.WishlistItem) ([]domain.WishlistItem, error) {
		if !domain.Contains(items, productID) {
			return nil, apperrors.NotFoundMessage(msgItemNotInWishlist)
		}
		return domain.Without(items, productID), nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, wishlist)
	s.logger.InfoContext(ctx, "item removed from wishlist",
		slog.String("user_id", userID),
		slog.Int("product_id", productID),
		slog.Int64("version", wishlist.Version),
	)
	return wishlist, nil
}

func (s *WishlistService) publish(ctx context.Context, wishlist *domain.Wishlist) {
	if err := s.events.PublishWishlistUpdated(ctx, wishlist); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish wishlist.updated event",
			slog.String("user_id", wishlist.UserID),
			slog.String("error", err.Error()),
		)
	}
}
