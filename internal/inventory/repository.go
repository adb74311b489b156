package inventory

import (
	"context"

	"github.com/fekuna/fleetops-maintenance-service/internal/inventory/dto"
	"github.com/fekuna/fleetops-maintenance-service/internal/model"
)

type Repository interface {
	// Stock records. The ForUpdate variants take a row lock and only make
	// sense inside a transaction. Lookups return nil, nil when absent.
	GetByPartForUpdate(ctx context.Context, tenantID, partID, warehouseID string) (*model.InventoryItem, error)
	GetByID(ctx context.Context, tenantID, id string) (*model.InventoryItem, error)
	GetByIDForUpdate(ctx context.Context, tenantID, id string) (*model.InventoryItem, error)
	FindAll(ctx context.Context, filters *dto.InventoryFilters) ([]model.InventoryItem, error)
	Create(ctx context.Context, item *model.InventoryItem) error
	Update(ctx context.Context, item *model.InventoryItem) error

	// Movements / Audit. Append-only.
	LogMovement(ctx context.Context, movement *model.InventoryMovement) error
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.InventoryMovement, error)
	ListMovementsByItem(ctx context.Context, tenantID, inventoryItemID string) ([]model.InventoryMovement, error)
}
