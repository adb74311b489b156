package usecase

import (
	"context"
	"testing"
	"time"

	invdto "github.com/fekuna/fleetops-maintenance-service/internal/inventory/dto"
	maintdto "github.com/fekuna/fleetops-maintenance-service/internal/maintenance/dto"
	"github.com/fekuna/fleetops-maintenance-service/internal/model"
	"github.com/fekuna/fleetops-maintenance-service/internal/workorder/dto"
	"github.com/fekuna/fleetops-maintenance-service/pkg/apperr"
	"github.com/fekuna/fleetops-maintenance-service/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWorkOrderRepo struct {
	orders map[string]*model.WorkOrder
	items  map[string]*model.WorkOrderItem
}

func newFakeWorkOrderRepo() *fakeWorkOrderRepo {
	return &fakeWorkOrderRepo{
		orders: map[string]*model.WorkOrder{},
		items:  map[string]*model.WorkOrderItem{},
	}
}

func (r *fakeWorkOrderRepo) Create(_ context.Context, wo *model.WorkOrder) error {
	copied := *wo
	r.orders[wo.ID] = &copied
	return nil
}

func (r *fakeWorkOrderRepo) GetByID(_ context.Context, tenantID, id string) (*model.WorkOrder, error) {
	wo, ok := r.orders[id]
	if !ok || wo.TenantID != tenantID {
		return nil, nil
	}
	copied := *wo
	return &copied, nil
}

func (r *fakeWorkOrderRepo) GetByIDForUpdate(ctx context.Context, tenantID, id string) (*model.WorkOrder, error) {
	return r.GetByID(ctx, tenantID, id)
}

func (r *fakeWorkOrderRepo) Update(_ context.Context, wo *model.WorkOrder) error {
	copied := *wo
	r.orders[wo.ID] = &copied
	return nil
}

func (r *fakeWorkOrderRepo) CreateItem(_ context.Context, item *model.WorkOrderItem) error {
	copied := *item
	r.items[item.ID] = &copied
	return nil
}

func (r *fakeWorkOrderRepo) GetItem(_ context.Context, tenantID, itemID string) (*model.WorkOrderItem, error) {
	item, ok := r.items[itemID]
	if !ok || item.TenantID != tenantID {
		return nil, nil
	}
	copied := *item
	return &copied, nil
}

func (r *fakeWorkOrderRepo) GetItemForUpdate(ctx context.Context, tenantID, itemID string) (*model.WorkOrderItem, error) {
	return r.GetItem(ctx, tenantID, itemID)
}

func (r *fakeWorkOrderRepo) UpdateItem(_ context.Context, item *model.WorkOrderItem) error {
	copied := *item
	r.items[item.ID] = &copied
	return nil
}

func (r *fakeWorkOrderRepo) ListItems(_ context.Context, tenantID, workOrderID string) ([]model.WorkOrderItem, error) {
	var out []model.WorkOrderItem
	for _, item := range r.items {
		if item.TenantID == tenantID && item.WorkOrderID == workOrderID {
			out = append(out, *item)
		}
	}
	return out, nil
}

type stockLine struct {
	qty float64
	avg decimal.Decimal
}

// fakeInventoryUC backs Consume with a plain stock map; everything else is
// unused by the work order flow.
type fakeInventoryUC struct {
	stock map[string]*stockLine
}

func (f *fakeInventoryUC) RegisterPurchase(context.Context, *invdto.PurchaseInput) (*model.InventoryItem, *model.InventoryMovement, error) {
	panic("not used")
}

func (f *fakeInventoryUC) Consume(_ context.Context, input *invdto.ConsumeInput) (*model.InventoryItem, *model.InventoryMovement, error) {
	line, ok := f.stock[input.InventoryItemID]
	if !ok {
		return nil, nil, apperr.NotFound("inventory item %s not found", input.InventoryItemID)
	}
	if line.qty < input.Quantity {
		return nil, nil, apperr.InsufficientStock("insufficient stock: have %g, requested %g", line.qty, input.Quantity)
	}
	line.qty -= input.Quantity

	item := &model.InventoryItem{
		BaseModel:   model.BaseModel{ID: input.InventoryItemID},
		TenantID:    input.TenantID,
		Quantity:    line.qty,
		AverageCost: line.avg,
	}
	movement := &model.InventoryMovement{
		ID:              "mov-" + input.InventoryItemID,
		TenantID:        input.TenantID,
		InventoryItemID: input.InventoryItemID,
		Type:            model.MovementConsumption,
		Quantity:        input.Quantity,
		UnitCost:        line.avg,
		TotalCost:       decimal.NewFromFloat(input.Quantity).Mul(line.avg),
	}
	return item, movement, nil
}

func (f *fakeInventoryUC) VerifyMovementReplay(context.Context, string, string) (*invdto.ReplayReport, error) {
	panic("not used")
}

func (f *fakeInventoryUC) GetItem(context.Context, string, string) (*model.InventoryItem, error) {
	panic("not used")
}

func (f *fakeInventoryUC) ListItems(context.Context, *invdto.InventoryFilters) ([]model.InventoryItem, error) {
	panic("not used")
}

func (f *fakeInventoryUC) ListMovements(context.Context, *invdto.MovementFilters) ([]model.InventoryMovement, error) {
	panic("not used")
}

type fakeMaintenanceUC struct {
	attached map[string]string // alert id -> work order id
}

func (f *fakeMaintenanceUC) RecordOdometer(context.Context, *maintdto.RecordOdometerInput) (*model.Vehicle, error) {
	panic("not used")
}

func (f *fakeMaintenanceUC) OnOdometerUpdated(context.Context, string, string, float64) error {
	panic("not used")
}

func (f *fakeMaintenanceUC) CloseAlert(context.Context, *maintdto.CloseAlertInput) (*model.MaintenanceAlert, error) {
	panic("not used")
}

func (f *fakeMaintenanceUC) AttachWorkOrder(_ context.Context, _ string, alertID, workOrderID string, _ time.Time) error {
	if f.attached == nil {
		f.attached = map[string]string{}
	}
	f.attached[alertID] = workOrderID
	return nil
}

func (f *fakeMaintenanceUC) FindAlertForWorkOrderItem(context.Context, string, string, *string) (*model.MaintenanceAlert, error) {
	return nil, nil
}

func (f *fakeMaintenanceUC) CompleteProgramItem(context.Context, string, string, float64) error {
	return nil
}

func (f *fakeMaintenanceUC) UpdateAllActiveAlerts(context.Context, string) (int, error) {
	panic("not used")
}

func (f *fakeMaintenanceUC) ListOpenAlerts(context.Context, string) ([]model.MaintenanceAlert, error) {
	panic("not used")
}

// txStub runs the function inline; rollback behavior is covered by the
// billing cascade tests.
type txStub struct{}

func (txStub) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestUseCase(repo *fakeWorkOrderRepo, inv *fakeInventoryUC, maint *fakeMaintenanceUC) *workOrderUseCase {
	return &workOrderUseCase{
		repo:          repo,
		inventoryUC:   inv,
		maintenanceUC: maint,
		txManager:     txStub{},
		logger:        logger.NewNop(),
		now:           func() time.Time { return time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC) },
	}
}

func seedWorkOrder(repo *fakeWorkOrderRepo) *model.WorkOrder {
	wo := &model.WorkOrder{
		BaseModel:       model.BaseModel{ID: "wo-1"},
		TenantID:        "t1",
		VehicleID:       "veh-1",
		Status:          model.WorkOrderPending,
		CreationMileage: 15100,
	}
	repo.orders[wo.ID] = wo
	return wo
}

func TestCreateWorkOrder_AttachesAlerts(t *testing.T) {
	repo := newFakeWorkOrderRepo()
	maint := &fakeMaintenanceUC{}
	uc := newTestUseCase(repo, &fakeInventoryUC{}, maint)

	wo, err := uc.CreateWorkOrder(context.Background(), &dto.CreateWorkOrderInput{
		TenantID:        "t1",
		VehicleID:       "veh-1",
		Description:     "15k service",
		CreationMileage: 15100,
		AlertIDs:        []string{"alert-1", "alert-2"},
	})
	require.NoError(t, err)

	assert.Equal(t, model.WorkOrderPending, wo.Status)
	assert.Equal(t, wo.ID, maint.attached["alert-1"])
	assert.Equal(t, wo.ID, maint.attached["alert-2"])
}

func TestAddItem_ExternalStaysPending(t *testing.T) {
	repo := newFakeWorkOrderRepo()
	uc := newTestUseCase(repo, &fakeInventoryUC{}, &fakeMaintenanceUC{})
	seedWorkOrder(repo)

	item, err := uc.AddItem(context.Background(), &dto.AddItemInput{
		TenantID:    "t1",
		WorkOrderID: "wo-1",
		Description: "Brake pads front",
		Source:      model.ItemSourceExternal,
		Quantity:    2,
		UnitPrice:   decimal.NewFromInt(150000),
	})
	require.NoError(t, err)

	assert.Equal(t, model.WorkOrderItemPending, item.Status)
	assert.Equal(t, model.ClosurePending, item.ClosureType)
	assert.True(t, item.TotalCost.Equal(decimal.NewFromInt(300000)))

	wo := repo.orders["wo-1"]
	assert.Equal(t, model.WorkOrderInProgress, wo.Status)
	assert.True(t, wo.ActualCost.IsZero(), "pending items carry no actual cost")
}

func TestAddItem_StockSourcedClosesAtAverageCost(t *testing.T) {
	repo := newFakeWorkOrderRepo()
	inv := &fakeInventoryUC{stock: map[string]*stockLine{
		"inv-1": {qty: 10, avg: decimal.NewFromInt(60000)},
	}}
	uc := newTestUseCase(repo, inv, &fakeMaintenanceUC{})
	seedWorkOrder(repo)

	invID := "inv-1"
	item, err := uc.AddItem(context.Background(), &dto.AddItemInput{
		TenantID:        "t1",
		WorkOrderID:     "wo-1",
		Description:     "Oil filter",
		Source:          model.ItemSourceInternalStock,
		Quantity:        3,
		InventoryItemID: &invID,
	})
	require.NoError(t, err)

	assert.Equal(t, model.WorkOrderItemCompleted, item.Status)
	assert.Equal(t, model.ClosureInternalTicket, item.ClosureType)
	assert.True(t, item.UnitPrice.Equal(decimal.NewFromInt(60000)))
	assert.True(t, item.TotalCost.Equal(decimal.NewFromInt(180000)))
	assert.Equal(t, 7.0, inv.stock["inv-1"].qty)

	wo := repo.orders["wo-1"]
	assert.Equal(t, model.WorkOrderCompleted, wo.Status)
	assert.True(t, wo.ActualCost.Equal(decimal.NewFromInt(180000)))
}

func TestAddItem_StockRequiresInventoryItem(t *testing.T) {
	repo := newFakeWorkOrderRepo()
	uc := newTestUseCase(repo, &fakeInventoryUC{}, &fakeMaintenanceUC{})
	seedWorkOrder(repo)

	_, err := uc.AddItem(context.Background(), &dto.AddItemInput{
		TenantID:    "t1",
		WorkOrderID: "wo-1",
		Source:      model.ItemSourceInternalStock,
		Quantity:    1,
	})
	assert.True(t, apperr.IsValidation(err))
}

func TestConsumeForWorkOrder_ShortLineFailsBatch(t *testing.T) {
	repo := newFakeWorkOrderRepo()
	inv := &fakeInventoryUC{stock: map[string]*stockLine{
		"inv-1": {qty: 10, avg: decimal.NewFromInt(1000)},
		"inv-2": {qty: 1, avg: decimal.NewFromInt(2000)},
	}}
	uc := newTestUseCase(repo, inv, &fakeMaintenanceUC{})
	seedWorkOrder(repo)

	repo.items["item-1"] = &model.WorkOrderItem{
		BaseModel: model.BaseModel{ID: "item-1"}, TenantID: "t1", WorkOrderID: "wo-1",
		Source: model.ItemSourceInternalStock, ClosureType: model.ClosurePending,
		Status: model.WorkOrderItemPending,
	}
	repo.items["item-2"] = &model.WorkOrderItem{
		BaseModel: model.BaseModel{ID: "item-2"}, TenantID: "t1", WorkOrderID: "wo-1",
		Source: model.ItemSourceInternalStock, ClosureType: model.ClosurePending,
		Status: model.WorkOrderItemPending,
	}

	movements, err := uc.ConsumeForWorkOrder(context.Background(), &dto.ConsumeBatchInput{
		TenantID:    "t1",
		WorkOrderID: "wo-1",
		Lines: []dto.ConsumeBatchLine{
			{WorkOrderItemID: "item-1", InventoryItemID: "inv-1", Quantity: 2},
			{WorkOrderItemID: "item-2", InventoryItemID: "inv-2", Quantity: 5},
		},
	})
	require.Error(t, err)
	assert.True(t, apperr.IsInsufficientStock(err))
	assert.Nil(t, movements)
}

func TestCloseItemFromInvoice_Transitions(t *testing.T) {
	repo := newFakeWorkOrderRepo()
	uc := newTestUseCase(repo, &fakeInventoryUC{}, &fakeMaintenanceUC{})
	seedWorkOrder(repo)

	repo.items["item-1"] = &model.WorkOrderItem{
		BaseModel: model.BaseModel{ID: "item-1"}, TenantID: "t1", WorkOrderID: "wo-1",
		Source: model.ItemSourceExternal, ClosureType: model.ClosurePending,
		Status: model.WorkOrderItemPending,
	}

	item, err := uc.CloseItemFromInvoice(context.Background(), "t1", "item-1", "INV-001")
	require.NoError(t, err)
	assert.Equal(t, model.ClosureExternalInvoice, item.ClosureType)
	assert.Equal(t, model.WorkOrderItemCompleted, item.Status)
	require.NotNil(t, item.InvoiceNumber)
	assert.Equal(t, "INV-001", *item.InvoiceNumber)

	// Second close of an already completed item is a no-op.
	again, err := uc.CloseItemFromInvoice(context.Background(), "t1", "item-1", "INV-002")
	require.NoError(t, err)
	assert.Equal(t, "INV-001", *again.InvoiceNumber)

	_, err = uc.CloseItemFromInvoice(context.Background(), "t1", "missing", "INV-001")
	assert.True(t, apperr.IsCascadeIntegrity(err))
}

func TestReconcileFromItems_StatusPredicate(t *testing.T) {
	repo := newFakeWorkOrderRepo()
	uc := newTestUseCase(repo, &fakeInventoryUC{}, &fakeMaintenanceUC{})
	seedWorkOrder(repo)

	repo.items["item-1"] = &model.WorkOrderItem{
		BaseModel: model.BaseModel{ID: "item-1"}, TenantID: "t1", WorkOrderID: "wo-1",
		Status: model.WorkOrderItemCompleted, TotalCost: decimal.NewFromInt(100000),
	}
	repo.items["item-2"] = &model.WorkOrderItem{
		BaseModel: model.BaseModel{ID: "item-2"}, TenantID: "t1", WorkOrderID: "wo-1",
		Status: model.WorkOrderItemPending, TotalCost: decimal.NewFromInt(999999),
	}
	repo.items["item-3"] = &model.WorkOrderItem{
		BaseModel: model.BaseModel{ID: "item-3"}, TenantID: "t1", WorkOrderID: "wo-1",
		Status: model.WorkOrderItemCancelled, TotalCost: decimal.NewFromInt(555555),
	}

	wo, err := uc.ReconcileFromItems(context.Background(), "t1", "wo-1")
	require.NoError(t, err)
	assert.Equal(t, model.WorkOrderInProgress, wo.Status)
	// Only completed items count; cancelled and pending are excluded.
	assert.True(t, wo.ActualCost.Equal(decimal.NewFromInt(100000)), "actual %s", wo.ActualCost)

	repo.items["item-2"].Status = model.WorkOrderItemCompleted
	wo, err = uc.ReconcileFromItems(context.Background(), "t1", "wo-1")
	require.NoError(t, err)
	assert.Equal(t, model.WorkOrderCompleted, wo.Status)
	assert.True(t, wo.ActualCost.Equal(decimal.NewFromInt(1099999)))
}

func TestReconcileFromItems_AllCancelledIsTerminal(t *testing.T) {
	repo := newFakeWorkOrderRepo()
	uc := newTestUseCase(repo, &fakeInventoryUC{}, &fakeMaintenanceUC{})
	wo := seedWorkOrder(repo)
	wo.Status = model.WorkOrderInProgress

	repo.items["item-1"] = &model.WorkOrderItem{
		BaseModel: model.BaseModel{ID: "item-1"}, TenantID: "t1", WorkOrderID: "wo-1",
		Status: model.WorkOrderItemCancelled, TotalCost: decimal.NewFromInt(300000),
	}
	repo.items["item-2"] = &model.WorkOrderItem{
		BaseModel: model.BaseModel{ID: "item-2"}, TenantID: "t1", WorkOrderID: "wo-1",
		Status: model.WorkOrderItemCancelled, TotalCost: decimal.NewFromInt(200000),
	}

	wo, err := uc.ReconcileFromItems(context.Background(), "t1", "wo-1")
	require.NoError(t, err)
	assert.Equal(t, model.WorkOrderCancelled, wo.Status)
	assert.True(t, wo.ActualCost.IsZero(), "cancelled items carry no cost")
}

func TestClosureTypeTransitions(t *testing.T) {
	assert.True(t, model.ClosurePending.CanTransitionTo(model.ClosureExternalInvoice))
	assert.True(t, model.ClosurePending.CanTransitionTo(model.ClosureInternalTicket))
	assert.False(t, model.ClosureExternalInvoice.CanTransitionTo(model.ClosureInternalTicket))
	assert.False(t, model.ClosureInternalTicket.CanTransitionTo(model.ClosureExternalInvoice))
	assert.False(t, model.ClosureExternalInvoice.CanTransitionTo(model.ClosurePending))
}
