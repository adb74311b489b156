package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type InventoryStatus string

const (
	InventoryActive     InventoryStatus = "ACTIVE"
	InventoryLowStock   InventoryStatus = "LOW_STOCK"
	InventoryOutOfStock InventoryStatus = "OUT_OF_STOCK"
)

// InventoryStatusFor derives the stock status from quantity vs. minimum.
func InventoryStatusFor(quantity, minStock float64) InventoryStatus {
	switch {
	case quantity == 0:
		return InventoryOutOfStock
	case quantity <= minStock:
		return InventoryLowStock
	default:
		return InventoryActive
	}
}

// InventoryItem is the weighted-average stock record, keyed by
// (tenant, part, warehouse). Mutated only through movements.
type InventoryItem struct {
	BaseModel
	TenantID    string          `db:"tenant_id" json:"tenant_id"`
	PartID      string          `db:"part_id" json:"part_id"`
	WarehouseID string          `db:"warehouse_id" json:"warehouse_id"`
	Quantity    float64         `db:"quantity" json:"quantity"`
	MinStock    float64         `db:"min_stock" json:"min_stock"`
	AverageCost decimal.Decimal `db:"average_cost" json:"average_cost"`
	TotalValue  decimal.Decimal `db:"total_value" json:"total_value"`
	Status      InventoryStatus `db:"status" json:"status"`
}

type MovementType string

const (
	MovementPurchase    MovementType = "PURCHASE"
	MovementConsumption MovementType = "CONSUMPTION"
)

// InventoryMovement is the append-only audit record of one stock change.
// Never updated or deleted; the item record must be derivable by replaying
// movements from zero.
type InventoryMovement struct {
	ID                  string          `db:"id" json:"id"`
	TenantID            string          `db:"tenant_id" json:"tenant_id"`
	InventoryItemID     string          `db:"inventory_item_id" json:"inventory_item_id"`
	PartID              string          `db:"part_id" json:"part_id"`
	WarehouseID         string          `db:"warehouse_id" json:"warehouse_id"`
	Type                MovementType    `db:"type" json:"type"`
	Quantity            float64         `db:"quantity" json:"quantity"`
	UnitCost            decimal.Decimal `db:"unit_cost" json:"unit_cost"`
	TotalCost           decimal.Decimal `db:"total_cost" json:"total_cost"`
	PreviousStock       float64         `db:"previous_stock" json:"previous_stock"`
	NewStock            float64         `db:"new_stock" json:"new_stock"`
	PreviousAverageCost decimal.Decimal `db:"previous_average_cost" json:"previous_average_cost"`
	NewAverageCost      decimal.Decimal `db:"new_average_cost" json:"new_average_cost"`
	ReferenceType       *string         `db:"reference_type" json:"reference_type"` // "invoice" | "work_order"
	ReferenceID         *string         `db:"reference_id" json:"reference_id"`
	CreatedBy           *string         `db:"created_by" json:"created_by"`
	CreatedAt           time.Time       `db:"created_at" json:"created_at"`
}
