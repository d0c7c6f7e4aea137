// Package catalog holds the static storefront catalog: products, recent
// orders and dashboard stats.
package catalog

import (
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/pagination"
	"github.com/utafrali/storefront/pkg/slug"
)

// Catalog is a read-only, in-memory product catalog.
type Catalog struct {
	products []domain.Product
	byID     map[int]int
	orders   []domain.Order
	stats    domain.Stats
}

// New returns the default storefront catalog.
func New() *Catalog {
	return NewWith(defaultProducts(), defaultOrders(), defaultStats)
}

// NewWith builds a catalog from the given data. Featured products without an
// href get their detail path derived from the name.
func NewWith(products []domain.Product, orders []domain.Order, stats domain.Stats) *Catalog {
	c := &Catalog{
		products: make([]domain.Product, len(products)),
		byID:     make(map[int]int, len(products)),
		orders:   orders,
		stats:    stats,
	}
	for i, p := range products {
		if p.Featured && p.Href == "" {
			p.Href = slug.ProductPath(p.Name)
		}
		c.products[i] = p
		c.byID[p.ID] = i
	}
	return c
}

// Lookup returns the product with the given id.
func (c *Catalog) Lookup(id int) (domain.Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return domain.Product{}, false
	}
	return c.products[i], true
}

// Filter selects products by featured flag. A nil flag selects everything.
type Filter struct {
	Featured *bool
}

// Page is one page of products with its pagination block.
type Page struct {
	Products []domain.Product `json:"products"`
	pagination.Result
}

// List returns the requested page of products matching f, in catalog order.
func (c *Catalog) List(f Filter, p pagination.Params) Page {
	matched := make([]domain.Product, 0, len(c.products))
	for _, prod := range c.products {
		if f.Featured != nil && prod.Featured != *f.Featured {
			continue
		}
		matched = append(matched, prod)
	}

	res := p.Clamp(len(matched))
	return Page{Products: pagination.Slice(matched, res), Result: res}
}

// Orders returns the recent orders.
func (c *Catalog) Orders() []domain.Order {
	out := make([]domain.Order, len(c.orders))
	copy(out, c.orders)
	return out
}

// Stats returns the dashboard stats.
func (c *Catalog) Stats() domain.Stats {
	return c.stats
}
