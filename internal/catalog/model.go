package catalog

// Product is the catalog view the settlement path needs: current price,
// display name, and remaining stock.
type Product struct {
	ID            string  `json:"productId"`
	StoreID       string  `json:"storeId"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	StockQuantity int     `json:"stockQuantity"`
}

// GiftWrapOption is a purchasable wrapping choice priced per order.
type GiftWrapOption struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}
