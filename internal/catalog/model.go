package catalog

import "time"

// Furniture is the catalog product. TotalStock is a projection of the
// inventory ledger and is never authoritative; CostPrice/SalePrice mirror
// the latest import.
type Furniture struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Material    string    `json:"material"`
	Image       string    `json:"image,omitempty"`
	Active      bool      `json:"active"`
	InStock     bool      `json:"inStock"`
	TotalStock  int       `json:"totalStock"`
	CostPrice   int64     `json:"costPrice"`
	SalePrice   int64     `json:"salePrice"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type UpdateFurnitureParams struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Material    *string `json:"material"`
	Image       *string `json:"image"`
}
