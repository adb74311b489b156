package usecase

import (
	"context"
	"time"

	"github.com/fekuna/fleetops-maintenance-service/internal/inventory"
	invdto "github.com/fekuna/fleetops-maintenance-service/internal/inventory/dto"
	"github.com/fekuna/fleetops-maintenance-service/internal/maintenance"
	"github.com/fekuna/fleetops-maintenance-service/internal/model"
	"github.com/fekuna/fleetops-maintenance-service/internal/workorder"
	"github.com/fekuna/fleetops-maintenance-service/internal/workorder/dto"
	"github.com/fekuna/fleetops-maintenance-service/pkg/apperr"
	"github.com/fekuna/fleetops-maintenance-service/pkg/logger"
	"github.com/fekuna/fleetops-maintenance-service/pkg/postgres"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type workOrderUseCase struct {
	repo          workorder.Repository
	inventoryUC   inventory.UseCase
	maintenanceUC maintenance.UseCase
	txManager     postgres.TxManager
	logger        logger.Logger
	now           func() time.Time
}

func NewWorkOrderUseCase(
	repo workorder.Repository,
	inventoryUC inventory.UseCase,
	maintenanceUC maintenance.UseCase,
	txManager postgres.TxManager,
	log logger.Logger,
) workorder.UseCase {
	return &workOrderUseCase{
		repo:          repo,
		inventoryUC:   inventoryUC,
		maintenanceUC: maintenanceUC,
		txManager:     txManager,
		logger:        log,
		now:           time.Now,
	}
}

func (uc *workOrderUseCase) CreateWorkOrder(ctx context.Context, input *dto.CreateWorkOrderInput) (*model.WorkOrder, error) {
	if input.VehicleID == "" {
		return nil, apperr.Validation("vehicle id is required")
	}
	if input.CreationMileage < 0 {
		return nil, apperr.Validation("creation mileage must not be negative")
	}

	now := uc.now()
	wo := &model.WorkOrder{
		BaseModel:       model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		TenantID:        input.TenantID,
		VehicleID:       input.VehicleID,
		Description:     input.Description,
		Status:          model.WorkOrderPending,
		CreationMileage: input.CreationMileage,
	}

	err := uc.txManager.RunInTx(ctx, func(ctx context.Context) error {
		if err := uc.repo.Create(ctx, wo); err != nil {
			return err
		}
		for _, alertID := range input.AlertIDs {
			if err := uc.maintenanceUC.AttachWorkOrder(ctx, input.TenantID, alertID, wo.ID, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return wo, nil
}

func (uc *workOrderUseCase) GetWorkOrder(ctx context.Context, tenantID, workOrderID string) (*model.WorkOrder, error) {
	wo, err := uc.repo.GetByID(ctx, tenantID, workOrderID)
	if err != nil {
		return nil, err
	}
	if wo == nil {
		return nil, apperr.NotFound("work order %s not found", workOrderID)
	}
	return wo, nil
}

func (uc *workOrderUseCase) GetItem(ctx context.Context, tenantID, itemID string) (*model.WorkOrderItem, error) {
	item, err := uc.repo.GetItem(ctx, tenantID, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperr.NotFound("work order item %s not found", itemID)
	}
	return item, nil
}

func (uc *workOrderUseCase) AddItem(ctx context.Context, input *dto.AddItemInput) (*model.WorkOrderItem, error) {
	if input.Quantity <= 0 {
		return nil, apperr.Validation("item quantity must be positive")
	}
	if input.Source == model.ItemSourceInternalStock && (input.InventoryItemID == nil || *input.InventoryItemID == "") {
		return nil, apperr.Validation("inventory item id is required for stock-sourced items")
	}

	var created *model.WorkOrderItem
	err := uc.txManager.RunInTx(ctx, func(ctx context.Context) error {
		wo, err := uc.repo.GetByIDForUpdate(ctx, input.TenantID, input.WorkOrderID)
		if err != nil {
			return err
		}
		if wo == nil {
			return apperr.NotFound("work order %s not found", input.WorkOrderID)
		}

		now := uc.now()
		item := &model.WorkOrderItem{
			BaseModel:     model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
			TenantID:      input.TenantID,
			WorkOrderID:   wo.ID,
			ProgramItemID: input.ProgramItemID,
			PartID:        input.PartID,
			Description:   input.Description,
			Source:        input.Source,
			ClosureType:   model.ClosurePending,
			Status:        model.WorkOrderItemPending,
			Quantity:      input.Quantity,
			UnitPrice:     input.UnitPrice,
			TotalCost:     workorder.ItemTotal(input.Quantity, input.UnitPrice),
		}
		if err := uc.repo.CreateItem(ctx, item); err != nil {
			return err
		}

		if input.Source == model.ItemSourceInternalStock {
			if _, err := uc.closeItemFromStock(ctx, item, *input.InventoryItemID, input.Quantity, input.UserID); err != nil {
				return err
			}
		}

		if _, err := uc.ReconcileFromItems(ctx, input.TenantID, wo.ID); err != nil {
			return err
		}

		created = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// closeItemFromStock consumes inventory for one ledger line and closes it as
// an internal ticket, priced at the average cost it was charged.
func (uc *workOrderUseCase) closeItemFromStock(ctx context.Context, item *model.WorkOrderItem, inventoryItemID string, qty float64, userID string) (*model.InventoryMovement, error) {
	if !item.ClosureType.CanTransitionTo(model.ClosureInternalTicket) {
		return nil, apperr.Validation("work order item %s is already closed as %s", item.ID, item.ClosureType)
	}

	_, movement, err := uc.inventoryUC.Consume(ctx, &invdto.ConsumeInput{
		TenantID:        item.TenantID,
		InventoryItemID: inventoryItemID,
		Quantity:        qty,
		ReferenceType:   "work_order",
		ReferenceID:     item.WorkOrderID,
		UserID:          userID,
	})
	if err != nil {
		return nil, err
	}

	item.Source = model.ItemSourceInternalStock
	item.InventoryItemID = &inventoryItemID
	item.ClosureType = model.ClosureInternalTicket
	item.Status = model.WorkOrderItemCompleted
	item.Quantity = qty
	item.UnitPrice = movement.UnitCost
	item.TotalCost = movement.TotalCost
	item.UpdatedAt = uc.now()
	if err := uc.repo.UpdateItem(ctx, item); err != nil {
		return nil, err
	}
	return movement, nil
}

func (uc *workOrderUseCase) ConsumeForWorkOrder(ctx context.Context, input *dto.ConsumeBatchInput) ([]model.InventoryMovement, error) {
	if len(input.Lines) == 0 {
		return nil, apperr.Validation("consumption batch is empty")
	}

	var movements []model.InventoryMovement
	err := uc.txManager.RunInTx(ctx, func(ctx context.Context) error {
		movements = movements[:0]

		wo, err := uc.repo.GetByIDForUpdate(ctx, input.TenantID, input.WorkOrderID)
		if err != nil {
			return err
		}
		if wo == nil {
			return apperr.NotFound("work order %s not found", input.WorkOrderID)
		}

		for _, line := range input.Lines {
			item, err := uc.repo.GetItemForUpdate(ctx, input.TenantID, line.WorkOrderItemID)
			if err != nil {
				return err
			}
			if item == nil {
				return apperr.NotFound("work order item %s not found", line.WorkOrderItemID)
			}
			if item.WorkOrderID != wo.ID {
				return apperr.Validation("work order item %s does not belong to work order %s", item.ID, wo.ID)
			}

			movement, err := uc.closeItemFromStock(ctx, item, line.InventoryItemID, line.Quantity, input.UserID)
			if err != nil {
				return err
			}
			movements = append(movements, *movement)
		}

		if _, err := uc.ReconcileFromItems(ctx, input.TenantID, wo.ID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return movements, nil
}

func (uc *workOrderUseCase) CloseItemFromInvoice(ctx context.Context, tenantID, workOrderItemID, invoiceNumber string) (*model.WorkOrderItem, error) {
	item, err := uc.repo.GetItemForUpdate(ctx, tenantID, workOrderItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperr.CascadeIntegrity("work order item %s referenced by invoice does not exist", workOrderItemID)
	}

	if item.Status == model.WorkOrderItemCompleted {
		// Already closed by the eager path on invoice creation; keep the
		// cascade idempotent.
		return item, nil
	}
	if !item.ClosureType.CanTransitionTo(model.ClosureExternalInvoice) {
		return nil, apperr.CascadeIntegrity("work order item %s cannot close as external invoice from %s", item.ID, item.ClosureType)
	}

	item.ClosureType = model.ClosureExternalInvoice
	item.Status = model.WorkOrderItemCompleted
	item.InvoiceNumber = &invoiceNumber
	item.UpdatedAt = uc.now()
	if err := uc.repo.UpdateItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (uc *workOrderUseCase) ReconcileFromItems(ctx context.Context, tenantID, workOrderID string) (*model.WorkOrder, error) {
	wo, err := uc.repo.GetByIDForUpdate(ctx, tenantID, workOrderID)
	if err != nil {
		return nil, err
	}
	if wo == nil {
		return nil, apperr.NotFound("work order %s not found", workOrderID)
	}

	items, err := uc.repo.ListItems(ctx, tenantID, workOrderID)
	if err != nil {
		return nil, err
	}

	actual := decimal.Zero
	active := 0
	completed := 0
	for _, item := range items {
		switch item.Status {
		case model.WorkOrderItemCompleted:
			actual = actual.Add(item.TotalCost)
			completed++
		case model.WorkOrderItemCancelled:
			// excluded from both cost and the completion predicate
		default:
			active++
		}
	}

	wo.ActualCost = actual
	switch {
	case len(items) == 0:
		// nothing to derive from yet
	case active == 0 && completed > 0:
		wo.Status = model.WorkOrderCompleted
	case active == 0:
		// every item cancelled: the ledger is terminal, not forever active
		wo.Status = model.WorkOrderCancelled
	default:
		wo.Status = model.WorkOrderInProgress
	}
	wo.UpdatedAt = uc.now()

	if err := uc.repo.Update(ctx, wo); err != nil {
		return nil, err
	}

	uc.logger.Debug("work order reconciled",
		zap.String("work_order_id", wo.ID),
		zap.String("status", string(wo.Status)),
		zap.Int("completed_items", completed),
		zap.Int("active_items", active),
	)
	return wo, nil
}
