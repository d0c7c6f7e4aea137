package domain

// OrderStatus is the fulfilment state shown on the dashboard.
type OrderStatus string

const (
	StatusDelivered OrderStatus = "Delivered"
	StatusPending   OrderStatus = "Pending"
	StatusCanceled  OrderStatus = "Canceled"
)

// Product is a catalog entry. Price values are preformatted for display.
type Product struct {
	ID            int         `json:"id"`
	Name          string      `json:"name"`
	Variants      string      `json:"variants"`
	Category      string      `json:"category"`
	Price         string      `json:"price"`
	Image         string      `json:"image"`
	Status        OrderStatus `json:"status"`
	Featured      bool        `json:"featured"`
	Description   string      `json:"description,omitempty"`
	OriginalPrice string      `json:"originalPrice,omitempty"`
	Href          string      `json:"href,omitempty"`
	Badge         *string     `json:"badge,omitempty"`
}

// CartItem builds a cart line of the product with the given quantity.
func (p Product) CartItem(quantity int) CartItem {
	return CartItem{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Image:     p.Image,
		Quantity:  quantity,
	}
}

// WishlistItem builds a wishlist entry of the product.
func (p Product) WishlistItem() WishlistItem {
	return WishlistItem{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Image:     p.Image,
	}
}

// Order is a recent order row of the dashboard.
type Order struct {
	ID       int         `json:"id"`
	Name     string      `json:"name"`
	Variants string      `json:"variants"`
	Category string      `json:"category"`
	Price    string      `json:"price"`
	Image    string      `json:"image"`
	Status   OrderStatus `json:"status"`
}

// Stats holds the dashboard headline metrics. Change values are percentages.
type Stats struct {
	Customers       int     `json:"customers"`
	CustomersChange float64 `json:"customersChange"`
	Orders          int     `json:"orders"`
	OrdersChange    float64 `json:"ordersChange"`
}
