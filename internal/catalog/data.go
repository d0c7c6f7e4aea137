package catalog

import "github.com/utafrali/storefront/internal/domain"

var defaultStats = domain.Stats{
	Customers:       3782,
	CustomersChange: 11.01,
	Orders:          5359,
	OrdersChange:    -9.05,
}

func badge(s string) *string { return &s }

func defaultProducts() []domain.Product {
	return []domain.Product{
		{ID: 1, Name: "MacBook Pro 13”", Variants: "2 Variants", Category: "Laptop", Price: "$2399.00", Status: domain.StatusDelivered, Image: "/assets/product-macbook.png"},
		{ID: 2, Name: "Apple Watch Ultra", Variants: "1 Variant", Category: "Watch", Price: "$879.00", Status: domain.StatusPending, Image: "/assets/product-watch.png"},
		{ID: 3, Name: "iPhone 15 Pro Max", Variants: "2 Variants", Category: "SmartPhone", Price: "$1869.00", Status: domain.StatusDelivered, Image: "/assets/product-iphone.png"},
		{ID: 4, Name: "iPad Pro 3rd Gen", Variants: "2 Variants", Category: "Electronics", Price: "$1699.00", Status: domain.StatusCanceled, Image: "/assets/product-ipad.png"},
		{ID: 5, Name: "AirPods Pro 2nd Gen", Variants: "1 Variant", Category: "Accessories", Price: "$240.00", Status: domain.StatusDelivered, Image: "/assets/product-airpods.png"},

		// Landing page showcase.
		{ID: 101, Name: "White Jacket", Variants: "1 Variant", Category: "Apparel", Price: "$249.00", Status: domain.StatusDelivered, Image: "/assets/featured-product-1.png", Featured: true, Description: "Lightweight & water-resistant"},
		{ID: 102, Name: "Denim Jacket", Variants: "1 Variant", Category: "Apparel", Price: "$189.00", Status: domain.StatusDelivered, Image: "/assets/featured-product-2.png", Featured: true, Description: "Classic vintage style", OriginalPrice: "$229.00", Badge: badge("Hot Item")},
		{ID: 103, Name: "Black Hoodie", Variants: "1 Variant", Category: "Apparel", Price: "$129.00", Status: domain.StatusDelivered, Image: "/assets/featured-product-3.png", Featured: true, Description: "Comfortable cotton blend"},
		{ID: 104, Name: "Blue Shirt", Variants: "1 Variant", Category: "Apparel", Price: "$79.00", Status: domain.StatusDelivered, Image: "/assets/featured-product-4.png", Featured: true, Description: "Premium cotton fabric"},
	}
}

// defaultOrders mirrors the non-featured products as the recent order feed.
func defaultOrders() []domain.Order {
	var orders []domain.Order
	for _, p := range defaultProducts() {
		if p.Featured {
			continue
		}
		orders = append(orders, domain.Order{
			ID:       p.ID,
			Name:     p.Name,
			Variants: p.Variants,
			Category: p.Category,
			Price:    p.Price,
			Image:    p.Image,
			Status:   p.Status,
		})
	}
	return orders
}
