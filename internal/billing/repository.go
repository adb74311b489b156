package billing

import (
	"context"

	"github.com/fekuna/fleetops-maintenance-service/internal/model"
)

// Repository methods return nil, nil when the entity does not exist;
// mapping absence to an error is usecase policy.
type Repository interface {
	CreateInvoice(ctx context.Context, invoice *model.Invoice) error
	CreateInvoiceItem(ctx context.Context, item *model.InvoiceItem) error
	GetInvoiceByID(ctx context.Context, tenantID, invoiceID string) (*model.Invoice, error)
	GetInvoiceByIDForUpdate(ctx context.Context, tenantID, invoiceID string) (*model.Invoice, error)
	InvoiceNumberExists(ctx context.Context, tenantID, invoiceNumber string) (bool, error)
	UpdateInvoice(ctx context.Context, invoice *model.Invoice) error
	ListInvoiceItems(ctx context.Context, tenantID, invoiceID string) ([]model.InvoiceItem, error)

	GetPart(ctx context.Context, tenantID, partID string) (*model.MasterPart, error)
	UpdatePart(ctx context.Context, part *model.MasterPart) error
	CreatePriceHistory(ctx context.Context, history *model.PartPriceHistory) error

	GetPurchaseOrderForUpdate(ctx context.Context, tenantID, purchaseOrderID string) (*model.PurchaseOrder, error)
	ListPurchaseOrderItems(ctx context.Context, tenantID, purchaseOrderID string) ([]model.PurchaseOrderItem, error)
	UpdatePurchaseOrderItem(ctx context.Context, item *model.PurchaseOrderItem) error
	UpdatePurchaseOrder(ctx context.Context, po *model.PurchaseOrder) error

	CreateFinancialAlert(ctx context.Context, alert *model.FinancialAlert) error
	ListFinancialAlerts(ctx context.Context, tenantID string) ([]model.FinancialAlert, error)
}
