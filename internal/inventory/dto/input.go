package dto

import "github.com/shopspring/decimal"

type PurchaseInput struct {
	TenantID      string
	PartID        string
	WarehouseID   string
	Quantity      float64
	UnitPrice     decimal.Decimal
	MinStock      *float64 // only applied when the record is first created
	ReferenceType string   // 'invoice'
	ReferenceID   string
	UserID        string
}

type ConsumeInput struct {
	TenantID        string
	InventoryItemID string
	Quantity        float64
	ReferenceType   string // 'work_order'
	ReferenceID     string
	UserID          string
}
