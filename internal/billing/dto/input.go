package dto

import "github.com/shopspring/decimal"

type InvoiceItemInput struct {
	WorkOrderItemID *string
	PartID          *string
	Description     string
	Quantity        float64
	UnitPrice       decimal.Decimal
	TaxRate         float64
}

type CreateInvoiceInput struct {
	TenantID        string
	InvoiceNumber   string
	SupplierID      *string
	WorkOrderID     *string
	PurchaseOrderID *string
	Items           []InvoiceItemInput
	UserID          string
}

type ApproveInvoiceInput struct {
	TenantID   string
	InvoiceID  string
	ApproverID string
}

type PurchaseItemInput struct {
	PartID    string
	Quantity  float64
	UnitPrice decimal.Decimal
	TaxRate   float64
	MinStock  *float64
}

type CreatePurchaseInput struct {
	TenantID      string
	InvoiceNumber string
	SupplierID    string
	WarehouseID   string
	Items         []PurchaseItemInput
	UserID        string
}
