package workorder

import (
	"context"

	"github.com/fekuna/fleetops-maintenance-service/internal/model"
)

type Repository interface {
	Create(ctx context.Context, wo *model.WorkOrder) error
	GetByID(ctx context.Context, tenantID, id string) (*model.WorkOrder, error)
	GetByIDForUpdate(ctx context.Context, tenantID, id string) (*model.WorkOrder, error)
	Update(ctx context.Context, wo *model.WorkOrder) error

	CreateItem(ctx context.Context, item *model.WorkOrderItem) error
	GetItem(ctx context.Context, tenantID, itemID string) (*model.WorkOrderItem, error)
	GetItemForUpdate(ctx context.Context, tenantID, itemID string) (*model.WorkOrderItem, error)
	UpdateItem(ctx context.Context, item *model.WorkOrderItem) error
	ListItems(ctx context.Context, tenantID, workOrderID string) ([]model.WorkOrderItem, error)
}
