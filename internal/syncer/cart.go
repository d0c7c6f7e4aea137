package syncer

import (
	"context"
	"log/slog"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/remote"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// CartRemote is the server side of a cart.
type CartRemote interface {
	Fetcher[domain.CartItem]
	Add(ctx context.Context, productID, quantity int) (remote.Collection[domain.CartItem], error)
	SetQuantity(ctx context.Context, productID, quantity int) (remote.Collection[domain.CartItem], error)
	Remove(ctx context.Context, productID int) (remote.Collection[domain.CartItem], error)
	Clear(ctx context.Context) (remote.Collection[domain.CartItem], error)
}

// clearID is the product id the guard uses for whole-cart operations.
const clearID = 0

// Cart synchronizes the session's cart.
type Cart struct {
	*Synchronizer[domain.CartItem]
	remote CartRemote
}

// NewCart creates a cart synchronizer. Call Start to load it.
func NewCart(r CartRemote, logger *slog.Logger) *Cart {
	return &Cart{
		Synchronizer: New[domain.CartItem](repository.KindCart, r, logger),
		remote:       r,
	}
}

// Add puts one unit of productID in the cart. Nothing is published until the
// server answers.
func (c *Cart) Add(ctx context.Context, productID int) error {
	return c.AddQuantity(ctx, productID, 1)
}

// AddQuantity adds quantity units of productID.
func (c *Cart) AddQuantity(ctx context.Context, productID, quantity int) error {
	return c.run(ctx, KindAdd, productID, nil, func(ctx context.Context) (remote.Collection[domain.CartItem], error) {
		return c.remote.Add(ctx, productID, quantity)
	})
}

// SetQuantity sets the quantity of a line. Zero or less removes it. The new
// quantity is shown before the server answers.
func (c *Cart) SetQuantity(ctx context.Context, productID, quantity int) error {
	predict := func(items []domain.CartItem) []domain.CartItem {
		return domain.WithQuantity(items, productID, quantity)
	}
	return c.run(ctx, KindUpdate, productID, predict, func(ctx context.Context) (remote.Collection[domain.CartItem], error) {
		return c.remote.SetQuantity(ctx, productID, quantity)
	})
}

// Increment raises the quantity of productID by one, adding it when absent.
func (c *Cart) Increment(ctx context.Context, productID int) error {
	q := c.Quantity(productID)
	if q == 0 {
		return c.Add(ctx, productID)
	}
	return c.SetQuantity(ctx, productID, q+1)
}

// Decrement lowers the quantity of productID by one. The last unit removes
// the line. A product absent from the state fails with NotFound, shown in
// the error slot, without calling the server.
func (c *Cart) Decrement(ctx context.Context, productID int) error {
	if c.store.isClosed() {
		return ErrClosed
	}
	q := c.Quantity(productID)
	if q == 0 {
		err := apperrors.NotFoundMessage("Item not in cart")
		c.store.fail(err.Message)
		return err
	}
	return c.SetQuantity(ctx, productID, q-1)
}

// Remove deletes the line for productID, shown before the server answers.
func (c *Cart) Remove(ctx context.Context, productID int) error {
	predict := func(items []domain.CartItem) []domain.CartItem {
		return domain.Without(items, productID)
	}
	return c.run(ctx, KindRemove, productID, predict, func(ctx context.Context) (remote.Collection[domain.CartItem], error) {
		return c.remote.Remove(ctx, productID)
	})
}

// Clear empties the cart, shown before the server answers.
func (c *Cart) Clear(ctx context.Context) error {
	predict := func([]domain.CartItem) []domain.CartItem {
		return []domain.CartItem{}
	}
	return c.run(ctx, KindClear, clearID, predict, c.remote.Clear)
}

// Quantity returns the quantity of productID in the current state, zero when
// absent.
func (c *Cart) Quantity(productID int) int {
	items := c.Snapshot().Items
	if i := domain.IndexOf(items, productID); i >= 0 {
		return items[i].Quantity
	}
	return 0
}

// ItemCount returns the total number of units in the current state.
func (c *Cart) ItemCount() int {
	return domain.ItemCount(c.Snapshot().Items)
}
