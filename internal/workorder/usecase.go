package workorder

import (
	"context"

	"github.com/fekuna/fleetops-maintenance-service/internal/model"
	"github.com/fekuna/fleetops-maintenance-service/internal/workorder/dto"
	"github.com/shopspring/decimal"
)

type UseCase interface {
	CreateWorkOrder(ctx context.Context, input *dto.CreateWorkOrderInput) (*model.WorkOrder, error)
	GetWorkOrder(ctx context.Context, tenantID, workOrderID string) (*model.WorkOrder, error)
	GetItem(ctx context.Context, tenantID, itemID string) (*model.WorkOrderItem, error)

	// AddItem appends a ledger line. Stock-sourced items consume inventory
	// synchronously and close as INTERNAL_TICKET; external items stay
	// PENDING until an invoice arrives.
	AddItem(ctx context.Context, input *dto.AddItemInput) (*model.WorkOrderItem, error)

	// ConsumeForWorkOrder closes previously added stock-sourced items in one
	// atomic batch; any short line rejects the whole batch.
	ConsumeForWorkOrder(ctx context.Context, input *dto.ConsumeBatchInput) ([]model.InventoryMovement, error)

	// CloseItemFromInvoice completes one EXTERNAL item against an invoice.
	// Invoked by the reconciliation cascade inside its transaction.
	CloseItemFromInvoice(ctx context.Context, tenantID, workOrderItemID, invoiceNumber string) (*model.WorkOrderItem, error)

	// ReconcileFromItems recomputes the derived actual cost and status from
	// the item ledger. Idempotent; the single aggregation path shared by
	// every entry point that mutates items.
	ReconcileFromItems(ctx context.Context, tenantID, workOrderID string) (*model.WorkOrder, error)
}

// ItemTotal is the ledger line total: quantity at unit price.
func ItemTotal(quantity float64, unitPrice decimal.Decimal) decimal.Decimal {
	return decimal.NewFromFloat(quantity).Mul(unitPrice)
}
