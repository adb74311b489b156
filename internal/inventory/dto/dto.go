package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type InventoryFilters struct {
	TenantID    string
	PartID      string
	WarehouseID string
	LowStock    bool // quantity <= min_stock
	Page        int
	PageSize    int
}

type MovementFilters struct {
	TenantID        string
	PartID          string
	InventoryItemID string
	Type            string
	StartDate       *time.Time
	EndDate         *time.Time
	Page            int
	PageSize        int
}

// ReplayReport compares the live stock record against a replay of its full
// movement history from zero.
type ReplayReport struct {
	InventoryItemID     string          `json:"inventory_item_id"`
	MovementCount       int             `json:"movement_count"`
	CurrentQuantity     float64         `json:"current_quantity"`
	ReplayedQuantity    float64         `json:"replayed_quantity"`
	CurrentAverageCost  decimal.Decimal `json:"current_average_cost"`
	ReplayedAverageCost decimal.Decimal `json:"replayed_average_cost"`
	Consistent          bool            `json:"consistent"`
}
