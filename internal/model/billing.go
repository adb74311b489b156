package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type MasterPart struct {
	BaseModel
	TenantID       string           `db:"tenant_id" json:"tenant_id"`
	Code           string           `db:"code" json:"code"`
	Name           string           `db:"name" json:"name"`
	ReferencePrice *decimal.Decimal `db:"reference_price" json:"reference_price"` // Nullable until first priced invoice
}

type InvoiceStatus string

const (
	InvoicePending   InvoiceStatus = "PENDING"
	InvoiceApproved  InvoiceStatus = "APPROVED"
	InvoiceCancelled InvoiceStatus = "CANCELLED"
	InvoicePaid      InvoiceStatus = "PAID"
)

type Invoice struct {
	BaseModel
	TenantID        string          `db:"tenant_id" json:"tenant_id"`
	InvoiceNumber   string          `db:"invoice_number" json:"invoice_number"` // unique per tenant
	SupplierID      *string         `db:"supplier_id" json:"supplier_id"`
	WorkOrderID     *string         `db:"work_order_id" json:"work_order_id"`
	PurchaseOrderID *string         `db:"purchase_order_id" json:"purchase_order_id"`
	Status          InvoiceStatus   `db:"status" json:"status"`
	Subtotal        decimal.Decimal `db:"subtotal" json:"subtotal"`
	TaxTotal        decimal.Decimal `db:"tax_total" json:"tax_total"`
	Total           decimal.Decimal `db:"total" json:"total"`
	ApprovedBy      *string         `db:"approved_by" json:"approved_by"`
	ApprovedAt      *time.Time      `db:"approved_at" json:"approved_at"`
}

type InvoiceItem struct {
	BaseModel
	TenantID        string          `db:"tenant_id" json:"tenant_id"`
	InvoiceID       string          `db:"invoice_id" json:"invoice_id"`
	WorkOrderItemID *string         `db:"work_order_item_id" json:"work_order_item_id"` // Nullable
	PartID          *string         `db:"part_id" json:"part_id"`                       // Nullable
	Description     string          `db:"description" json:"description"`
	Quantity        float64         `db:"quantity" json:"quantity"`
	UnitPrice       decimal.Decimal `db:"unit_price" json:"unit_price"`
	TaxRate         float64         `db:"tax_rate" json:"tax_rate"`
	TotalPrice      decimal.Decimal `db:"total_price" json:"total_price"`
}

type PurchaseOrderStatus string

const (
	PurchaseOrderPending   PurchaseOrderStatus = "PENDING"
	PurchaseOrderPartial   PurchaseOrderStatus = "PARTIAL"
	PurchaseOrderCompleted PurchaseOrderStatus = "COMPLETED"
)

type PurchaseOrder struct {
	BaseModel
	TenantID   string              `db:"tenant_id" json:"tenant_id"`
	SupplierID string              `db:"supplier_id" json:"supplier_id"`
	Status     PurchaseOrderStatus `db:"status" json:"status"`
}

type PurchaseOrderItemStatus string

const (
	PurchaseOrderItemPending   PurchaseOrderItemStatus = "PENDING"
	PurchaseOrderItemCompleted PurchaseOrderItemStatus = "COMPLETED"
)

type PurchaseOrderItem struct {
	BaseModel
	TenantID        string                  `db:"tenant_id" json:"tenant_id"`
	PurchaseOrderID string                  `db:"purchase_order_id" json:"purchase_order_id"`
	WorkOrderItemID *string                 `db:"work_order_item_id" json:"work_order_item_id"` // Nullable
	Description     string                  `db:"description" json:"description"`
	Quantity        float64                 `db:"quantity" json:"quantity"`
	UnitPrice       decimal.Decimal         `db:"unit_price" json:"unit_price"`
	Status          PurchaseOrderItemStatus `db:"status" json:"status"`
}

// PartPriceHistory is an append-only pricing record, one per priced invoice
// item, used for variance analytics.
type PartPriceHistory struct {
	ID         string          `db:"id" json:"id"`
	TenantID   string          `db:"tenant_id" json:"tenant_id"`
	PartID     string          `db:"part_id" json:"part_id"`
	SupplierID *string         `db:"supplier_id" json:"supplier_id"`
	InvoiceID  string          `db:"invoice_id" json:"invoice_id"`
	UnitPrice  decimal.Decimal `db:"unit_price" json:"unit_price"`
	Quantity   float64         `db:"quantity" json:"quantity"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

type FinancialAlertSeverity string

const (
	FinancialSeverityMedium   FinancialAlertSeverity = "MEDIUM"
	FinancialSeverityHigh     FinancialAlertSeverity = "HIGH"
	FinancialSeverityCritical FinancialAlertSeverity = "CRITICAL"
)

type FinancialAlertStatus string

const (
	FinancialAlertPending   FinancialAlertStatus = "PENDING"
	FinancialAlertReviewed  FinancialAlertStatus = "REVIEWED"
	FinancialAlertDismissed FinancialAlertStatus = "DISMISSED"
)

// FinancialAlert is raised by the price deviation watchdog. Its lifecycle is
// independent of the maintenance cascade.
type FinancialAlert struct {
	BaseModel
	TenantID        string                 `db:"tenant_id" json:"tenant_id"`
	Severity        FinancialAlertSeverity `db:"severity" json:"severity"`
	Status          FinancialAlertStatus   `db:"status" json:"status"`
	InvoiceID       string                 `db:"invoice_id" json:"invoice_id"`
	InvoiceItemID   *string                `db:"invoice_item_id" json:"invoice_item_id"`
	WorkOrderItemID *string                `db:"work_order_item_id" json:"work_order_item_id"`
	PartID          *string                `db:"part_id" json:"part_id"`
	ExpectedPrice   decimal.Decimal        `db:"expected_price" json:"expected_price"`
	ActualPrice     decimal.Decimal        `db:"actual_price" json:"actual_price"`
	Deviation       float64                `db:"deviation" json:"deviation"`
	Detail          string                 `db:"detail" json:"detail"`
}
