package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// Cart operation upper-bound limits to prevent abuse.
const (
	// MaxQuantityPerItem is the maximum quantity allowed for a single cart line.
	MaxQuantityPerItem = 100
	// MaxItemsPerCart is the maximum number of distinct lines allowed in a cart.
	MaxItemsPerCart = 50
)

// Messages returned to clients. They match what storefront clients display.
const (
	msgProductNotFound  = "Product not found"
	msgItemNotInCart    = "Item not in cart"
	msgQuantityRequired = "productId and quantity required"
)

// AddItemInput holds the parameters for adding a product to the cart.
type AddItemInput struct {
	ProductID int
	Quantity  int
}

// CartService implements the business logic for cart operations.
type CartService struct {
	carts   collections[domain.CartItem]
	catalog ProductCatalog
	events  EventPublisher
	logger  *slog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(repo repository.CartRepository, catalog ProductCatalog, events EventPublisher, logger *slog.Logger) *CartService {
	return &CartService{
		carts:   collections[domain.CartItem]{repo: repo, kind: repository.KindCart, now: time.Now},
		catalog: catalog,
		events:  events,
		logger:  logger,
	}
}

// GetCart retrieves the cart of a session. A session without a cart gets an
// empty one at version 0.
func (s *CartService) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	return s.carts.get(ctx, userID)
}

// AddItem adds quantity units of a catalog product. An existing line is
// incremented in place; a new line is appended. A quantity below 1 adds one.
func (s *CartService) AddItem(ctx context.Context, userID string, input AddItemInput) (*domain.Cart, error) {
	quantity := max(1, input.Quantity)
	if quantity > MaxQuantityPerItem {
		return nil, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerItem))
	}

	product, ok := s.catalog.Lookup(input.ProductID)
	if !ok {
		return nil, apperrors.NotFoundMessage(msgProductNotFound)
	}

	cart, err := s.carts.mutate(ctx, userID, func(items []domain.CartItem) ([]domain.CartItem, error) {
		if i := domain.IndexOf(items, product.ID); i >= 0 {
			newQty := items[i].Quantity + quantity
			if newQty > MaxQuantityPerItem {
				return nil, apperrors.InvalidInput(fmt.Sprintf("combined quantity must not exceed %d", MaxQuantityPerItem))
			}
			items[i].Quantity = newQty
			return items, nil
		}
		if len(items) >= MaxItemsPerCart {
			return nil, apperrors.InvalidInput(fmt.Sprintf("cart must not contain more than %d items", MaxItemsPerCart))
		}
		return append(items, product.CartItem(quantity)), nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, cart)
	s.logger.InfoContext(ctx, "item added to cart",
		slog.String("user_id", userID),
		slog.Int("product_id", product.ID),
		slog.Int("quantity", quantity),
		slog.Int64("version", cart.Version),
	)
	return cart, nil
}

// UpdateItemQuantity sets the quantity of a cart line. A quantity of zero or
// less removes the line.
func (s *CartService) UpdateItemQuantity(ctx context.Context, userID string, productID, quantity int) (*domain.Cart, error) {
	if productID <= 0 {
		return nil, apperrors.InvalidInput(msgQuantityRequired)
	}
	if quantity > MaxQuantityPerItem {
		return nil, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerItem))
	}

	cart, err := s.carts.mutate(ctx, userID, func(items []domain.CartItem) ([]domain.CartItem, error) {
		if !domain.Contains(items, productID) {
			return nil, apperrors.NotFoundMessage(msgItemNotInCart)
		}
		return domain.WithQuantity(items, productID, quantity), nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, cart)
	s.logger.InfoContext(ctx, "cart item quantity updated",
		slog.String("user_id", userID),
		slog.Int("product_id", productID),
		slog.Int("quantity", quantity),
		slog.Int64("version", cart.Version),
	)
	return cart, nil
}

// RemoveItem removes a cart line. Removing an absent line is NotFound.
func (s *CartService) RemoveItem(ctx context.Context, userID string, productID int) (*domain.Cart, error) {
	cart, err := s.carts.mutate(ctx, userID, func(items []domain.CartItem) ([]domain.CartItem, error) {
		if !domain.Contains(items, productID) {
			return nil, apperrors.NotFoundMessage(msgItemNotInCart)
		}
		return domain.Without(items, productID), nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, cart)
	s.logger.InfoContext(ctx, "item removed from cart",
		slog.String("user_id", userID),
		slog.Int("product_id", productID),
		slog.Int64("version", cart.Version),
	)
	return cart, nil
}

// ClearCart removes every line. The cleared cart keeps counting versions so
// clients never see the version go backwards.
func (s *CartService) ClearCart(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := s.carts.mutate(ctx, userID, func([]domain.CartItem) ([]domain.CartItem, error) {
		return []domain.CartItem{}, nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, cart)
	s.logger.InfoContext(ctx, "cart cleared",
		slog.String("user_id", userID),
		slog.Int64("version", cart.Version),
	)
	return cart, nil
}

func (s *CartService) publish(ctx context.Context, cart *domain.Cart) {
	if err := s.events.PublishCartUpdated(ctx, cart); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.updated event",
			slog.String("user_id", cart.UserID),
			slog.String("error", err.Error()),
		)
	}
}
