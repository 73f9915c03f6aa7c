package inventory

import (
	"time"

	"github.com/google/uuid"
)

// Batch is one ledger record of received stock. RemainingQuantity is the
// authoritative sellable quantity; it only moves through Allocate and
// Restore. Batches are never deleted.
type Batch struct {
	ID                uint
	ProductID         uint
	Quantity          int
	RemainingQuantity int
	CostPrice         int64
	SalePrice         int64
	Supplier          string
	EntryDate         time.Time
}

// ImportRecord is the append-only audit entry written once per import
// event, independent of the mutable batch it credited.
type ImportRecord struct {
	ID          uuid.UUID
	ProductID   uint
	ProductName string
	Quantity    int
	CostPrice   int64
	SalePrice   int64
	Supplier    string
	EntryDate   time.Time
}

// ImportInput carries one import event. Product fields are used to create
// the catalog entry when the product does not exist yet.
type ImportInput struct {
	ProductName string
	Description string
	Category    string
	Material    string
	Image       string
	Quantity    int
	CostPrice   int64
	SalePrice   int64
	Supplier    string
}

// OverviewRow groups ledger state per product for the stock overview screen.
type OverviewRow struct {
	ProductID       uint      `json:"productId"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Image           string    `json:"image"`
	Category        string    `json:"category"`
	Material        string    `json:"material"`
	TotalQuantity   int       `json:"totalQuantity"`
	LatestCostPrice int64     `json:"latestCostPrice"`
	LatestSalePrice int64     `json:"latestSalePrice"`
	LatestSupplier  string    `json:"latestSupplier"`
	LatestEntryDate time.Time `json:"latestEntryDate"`
}
