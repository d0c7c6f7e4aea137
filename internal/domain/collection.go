package domain

import "time"

// Item is a line in a shopper collection. Items are unique by product id
// within one collection.
type Item interface {
	CartItem | WishlistItem
	ItemID() int
}

// CartItem represents a single line in the cart.
type CartItem struct {
	ProductID int    `json:"productId" bson:"product_id" validate:"gt=0"`
	Name      string `json:"name" bson:"name"`
	Price     string `json:"price" bson:"price"`
	Image     string `json:"image" bson:"image"`
	Quantity  int    `json:"quantity" bson:"quantity" validate:"gte=1"`
}

// ItemID returns the catalog product id of the line.
func (i CartItem) ItemID() int { return i.ProductID }

// WishlistItem represents a product saved in the wishlist.
type WishlistItem struct {
	ProductID int    `json:"productId" bson:"product_id" validate:"gt=0"`
	Name      string `json:"name" bson:"name"`
	Price     string `json:"price" bson:"price"`
	Image     string `json:"image" bson:"image"`
}

func (i WishlistItem) ItemID() int { return i.ProductID }

// Document is the stored form of one shopper's collection. Version is bumped
// by every successful write and is 0 for a collection that was never saved.
type Document[T Item] struct {
	UserID    string    `json:"userId" bson:"user_id"`
	Items     []T       `json:"items" bson:"items"`
	Version   int64     `json:"version" bson:"version"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}

// Cart is the stored cart of a shopper session.
type Cart = Document[CartItem]

// Wishlist is the stored wishlist of a shopper session.
type Wishlist = Document[WishlistItem]

// NewDocument returns an empty, never saved collection for userID.
func NewDocument[T Item](userID string, now time.Time) *Document[T] {
	return &Document[T]{
		UserID:    userID,
		Items:     []T{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IndexOf returns the position of the item with the given product id, or -1.
func IndexOf[T Item](items []T, productID int) int {
	for i := range items {
		if items[i].ItemID() == productID {
			return i
		}
	}
	return -1
}

// Contains reports whether productID is present in items.
func Contains[T Item](items []T, productID int) bool {
	return IndexOf(items, productID) >= 0
}

// Without returns a copy of items with productID removed. Order of the
// remaining items is preserved.
func Without[T Item](items []T, productID int) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if it.ItemID() != productID {
			out = append(out, it)
		}
	}
	return out
}

// Clone returns a copy of items that never aliases the input. A nil input
// yields an empty, non-nil slice.
func Clone[T Item](items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	return out
}

// WithQuantity returns a copy of items where productID has the given
// quantity. A quantity of zero or less removes the line; an absent product
// leaves the items unchanged.
func WithQuantity(items []CartItem, productID, quantity int) []CartItem {
	if quantity <= 0 {
		return Without(items, productID)
	}
	out := Clone(items)
	if i := IndexOf(out, productID); i >= 0 {
		out[i].Quantity = quantity
	}
	return out
}

// ItemCount returns the total number of units in the cart lines.
func ItemCount(items []CartItem) int {
	var count int
	for _, item := range items {
		count += item.Quantity
	}
	return count
}
