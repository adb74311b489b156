package billing

import (
	"context"

	"github.com/fekuna/fleetops-maintenance-service/internal/billing/dto"
	"github.com/fekuna/fleetops-maintenance-service/internal/model"
)

type UseCase interface {
	// CreateInvoice records a PENDING invoice. When the invoice targets a
	// work order, EXTERNAL pending items referenced by its lines are closed
	// eagerly and the work order is recomputed, the narrow entry point into
	// the same reconciliation the approval runs in full.
	CreateInvoice(ctx context.Context, input *dto.CreateInvoiceInput) (*model.Invoice, error)

	// ApproveInvoice runs the reconciliation cascade as one atomic unit:
	// invoice approval, work order item closure, maintenance alert closure,
	// reference pricing, work order recomputation and purchase order
	// settlement. Any failure rolls back every effect. The price deviation
	// watchdog runs after commit and never blocks the approval.
	ApproveInvoice(ctx context.Context, input *dto.ApproveInvoiceInput) (*model.Invoice, error)

	// CreatePurchase records a supplier purchase invoice and applies each
	// line to inventory immediately.
	CreatePurchase(ctx context.Context, input *dto.CreatePurchaseInput) (*model.Invoice, error)

	GetInvoice(ctx context.Context, tenantID, invoiceID string) (*model.Invoice, []model.InvoiceItem, error)
	ListFinancialAlerts(ctx context.Context, tenantID string) ([]model.FinancialAlert, error)
}
