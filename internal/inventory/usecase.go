package inventory

import (
	"context"

	"github.com/fekuna/fleetops-maintenance-service/internal/inventory/dto"
	"github.com/fekuna/fleetops-maintenance-service/internal/model"
)

type UseCase interface {
	// RegisterPurchase applies one incoming stock line using weighted-average
	// costing and records a PURCHASE movement.
	RegisterPurchase(ctx context.Context, input *dto.PurchaseInput) (*model.InventoryItem, *model.InventoryMovement, error)

	// Consume charges stock at the current average cost and records a
	// CONSUMPTION movement. Fails without mutation when stock is short.
	Consume(ctx context.Context, input *dto.ConsumeInput) (*model.InventoryItem, *model.InventoryMovement, error)

	// VerifyMovementReplay recomputes quantity and average cost from the full
	// movement history and reports drift against the live record.
	VerifyMovementReplay(ctx context.Context, tenantID, inventoryItemID string) (*dto.ReplayReport, error)

	GetItem(ctx context.Context, tenantID, inventoryItemID string) (*model.InventoryItem, error)
	ListItems(ctx context.Context, filters *dto.InventoryFilters) ([]model.InventoryItem, error)
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.InventoryMovement, error)
}
