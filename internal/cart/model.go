package cart

import "time"

// Item is one cart line joined with the product it references. Price, stock,
// and name are read in the same transaction snapshot the settlement acts on,
// so the values seen here are the values charged and decremented.
type Item struct {
	ID          string            `json:"itemId"`
	ProductID   string            `json:"productId"`
	ProductName string            `json:"productName"`
	UnitPrice   float64           `json:"unitPrice"`
	Stock       int               `json:"stock"`
	Quantity    int               `json:"quantity"`
	Options     map[string]string `json:"options,omitempty"`
}

type Cart struct {
	ID        string    `json:"cartId"`
	UserID    string    `json:"userId"`
	Items     []Item    `json:"items"`
	UpdatedAt time.Time `json:"updatedAt"`
}
