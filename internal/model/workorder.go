package model

import "github.com/shopspring/decimal"

type WorkOrderStatus string

const (
	WorkOrderPending    WorkOrderStatus = "PENDING"
	WorkOrderInProgress WorkOrderStatus = "IN_PROGRESS"
	WorkOrderCompleted  WorkOrderStatus = "COMPLETED"
	WorkOrderCancelled  WorkOrderStatus = "CANCELLED"
)

type ItemSource string

const (
	ItemSourceExternal      ItemSource = "EXTERNAL"
	ItemSourceInternalStock ItemSource = "INTERNAL_STOCK"
)

type ClosureType string

const (
	ClosurePending         ClosureType = "PENDING"
	ClosureExternalInvoice ClosureType = "EXTERNAL_INVOICE"
	ClosureInternalTicket  ClosureType = "INTERNAL_TICKET"
)

// CanTransitionTo enforces the one-way closure edges:
// PENDING -> {EXTERNAL_INVOICE, INTERNAL_TICKET}, nothing else.
func (c ClosureType) CanTransitionTo(next ClosureType) bool {
	if c != ClosurePending {
		return false
	}
	return next == ClosureExternalInvoice || next == ClosureInternalTicket
}

type WorkOrderItemStatus string

const (
	WorkOrderItemPending   WorkOrderItemStatus = "PENDING"
	WorkOrderItemCompleted WorkOrderItemStatus = "COMPLETED"
	WorkOrderItemCancelled WorkOrderItemStatus = "CANCELLED"
)

type WorkOrder struct {
	BaseModel
	TenantID        string          `db:"tenant_id" json:"tenant_id"`
	VehicleID       string          `db:"vehicle_id" json:"vehicle_id"`
	Description     string          `db:"description" json:"description"`
	Status          WorkOrderStatus `db:"status" json:"status"`
	CreationMileage float64         `db:"creation_mileage" json:"creation_mileage"`
	ActualCost      decimal.Decimal `db:"actual_cost" json:"actual_cost"` // derived: sum of completed items
}

type WorkOrderItem struct {
	BaseModel
	TenantID        string              `db:"tenant_id" json:"tenant_id"`
	WorkOrderID     string              `db:"work_order_id" json:"work_order_id"`
	ProgramItemID   *string             `db:"program_item_id" json:"program_item_id"` // Nullable, keys alert matching
	PartID          *string             `db:"part_id" json:"part_id"`
	InventoryItemID *string             `db:"inventory_item_id" json:"inventory_item_id"` // set when consumed from stock
	Description     string              `db:"description" json:"description"`
	Source          ItemSource          `db:"source" json:"source"`
	ClosureType     ClosureType         `db:"closure_type" json:"closure_type"`
	Status          WorkOrderItemStatus `db:"status" json:"status"`
	Quantity        float64             `db:"quantity" json:"quantity"`
	UnitPrice       decimal.Decimal     `db:"unit_price" json:"unit_price"`
	TotalCost       decimal.Decimal     `db:"total_cost" json:"total_cost"`
	InvoiceNumber   *string             `db:"invoice_number" json:"invoice_number"`
}
