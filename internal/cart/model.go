package cart

import "time"

// Item is one cart line joined with its live catalog row, so the
// storefront can show current price and availability.
type Item struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"userId"`
	ProductID uint      `json:"productId"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	ProductName  string `json:"productName"`
	SalePrice    int64  `json:"salePrice"`
	ProductImage string `json:"productImage,omitempty"`
	TotalStock   int    `json:"totalStock"`
	Active       bool   `json:"active"`
}

type AddItemParams struct {
	UserID    uint `json:"-"`
	ProductID uint `json:"productId"`
	Quantity  int  `json:"quantity"`
}
