package dto

import (
	"github.com/fekuna/fleetops-maintenance-service/internal/model"
	"github.com/shopspring/decimal"
)

type CreateWorkOrderInput struct {
	TenantID        string
	VehicleID       string
	Description     string
	CreationMileage float64
	AlertIDs        []string // open alerts this work order services
	UserID          string
}

type AddItemInput struct {
	TenantID        string
	WorkOrderID     string
	ProgramItemID   *string
	PartID          *string
	Description     string
	Source          model.ItemSource
	Quantity        float64
	UnitPrice       decimal.Decimal // expected price for EXTERNAL items; ignored for stock
	InventoryItemID *string         // required when Source is INTERNAL_STOCK
	UserID          string
}

type ConsumeBatchLine struct {
	WorkOrderItemID string  `json:"work_order_item_id"`
	InventoryItemID string  `json:"inventory_item_id"`
	Quantity        float64 `json:"quantity"`
}

type ConsumeBatchInput struct {
	TenantID    string
	WorkOrderID string
	Lines       []ConsumeBatchLine
	UserID      string
}
