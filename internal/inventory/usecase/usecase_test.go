package usecase

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/fekuna/fleetops-maintenance-service/internal/inventory/dto"
	"github.com/fekuna/fleetops-maintenance-service/internal/model"
	"github.com/fekuna/fleetops-maintenance-service/pkg/apperr"
	"github.com/fekuna/fleetops-maintenance-service/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInventoryRepo struct {
	items     map[string]*model.InventoryItem
	movements []model.InventoryMovement
}

func newFakeInventoryRepo() *fakeInventoryRepo {
	return &fakeInventoryRepo{items: map[string]*model.InventoryItem{}}
}

func (r *fakeInventoryRepo) GetByPartForUpdate(_ context.Context, tenantID, partID, warehouseID string) (*model.InventoryItem, error) {
	for _, item := range r.items {
		if item.TenantID == tenantID && item.PartID == partID && item.WarehouseID == warehouseID {
			copied := *item
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeInventoryRepo) GetByID(_ context.Context, tenantID, id string) (*model.InventoryItem, error) {
	item, ok := r.items[id]
	if !ok || item.TenantID != tenantID {
		return nil, nil
	}
	copied := *item
	return &copied, nil
}

func (r *fakeInventoryRepo) GetByIDForUpdate(ctx context.Context, tenantID, id string) (*model.InventoryItem, error) {
	return r.GetByID(ctx, tenantID, id)
}

func (r *fakeInventoryRepo) FindAll(_ context.Context, filters *dto.InventoryFilters) ([]model.InventoryItem, error) {
	var out []model.InventoryItem
	for _, item := range r.items {
		if item.TenantID != filters.TenantID {
			continue
		}
		if filters.LowStock && item.Quantity > item.MinStock {
			continue
		}
		out = append(out, *item)
	}
	return out, nil
}

func (r *fakeInventoryRepo) Create(_ context.Context, item *model.InventoryItem) error {
	copied := *item
	r.items[item.ID] = &copied
	return nil
}

func (r *fakeInventoryRepo) Update(_ context.Context, item *model.InventoryItem) error {
	copied := *item
	r.items[item.ID] = &copied
	return nil
}

func (r *fakeInventoryRepo) LogMovement(_ context.Context, movement *model.InventoryMovement) error {
	r.movements = append(r.movements, *movement)
	return nil
}

func (r *fakeInventoryRepo) ListMovements(_ context.Context, filters *dto.MovementFilters) ([]model.InventoryMovement, error) {
	var out []model.InventoryMovement
	for _, m := range r.movements {
		if m.TenantID == filters.TenantID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeInventoryRepo) ListMovementsByItem(_ context.Context, tenantID, inventoryItemID string) ([]model.InventoryMovement, error) {
	var out []model.InventoryMovement
	for _, m := range r.movements {
		if m.TenantID == tenantID && m.InventoryItemID == inventoryItemID {
			out = append(out, m)
		}
	}
	return out, nil
}

func newTestUseCase(repo *fakeInventoryRepo) *inventoryUseCase {
	return &inventoryUseCase{
		repo:   repo,
		cache:  nil, // no distributed lock in unit tests
		logger: logger.NewNop(),
		now:    func() time.Time { return time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC) },
	}
}

// contendedLocker never grants the lock; heldKeys records attempts.
type contendedLocker struct {
	heldKeys []string
}

func (l *contendedLocker) AcquireLock(_ context.Context, key, _ string, _ time.Duration) (bool, error) {
	l.heldKeys = append(l.heldKeys, key)
	return false, nil
}

func (l *contendedLocker) ReleaseLock(context.Context, string, string) error { return nil }

func purchase(t *testing.T, uc *inventoryUseCase, qty float64, price int64) (*model.InventoryItem, *model.InventoryMovement) {
	t.Helper()
	item, movement, err := uc.RegisterPurchase(context.Background(), &dto.PurchaseInput{
		TenantID:      "t1",
		PartID:        "part-1",
		WarehouseID:   "wh-1",
		Quantity:      qty,
		UnitPrice:     decimal.NewFromInt(price),
		ReferenceType: "invoice",
		ReferenceID:   "inv-1",
		UserID:        "u1",
	})
	require.NoError(t, err)
	return item, movement
}

func TestRegisterPurchase_FirstPurchase(t *testing.T) {
	repo := newFakeInventoryRepo()
	uc := newTestUseCase(repo)

	item, movement := purchase(t, uc, 50, 80000)

	assert.Equal(t, 50.0, item.Quantity)
	assert.True(t, item.AverageCost.Equal(decimal.NewFromInt(80000)), "avg %s", item.AverageCost)
	assert.True(t, item.TotalValue.Equal(decimal.NewFromInt(4000000)), "total %s", item.TotalValue)
	assert.Equal(t, model.InventoryActive, item.Status)

	require.Len(t, repo.movements, 1)
	assert.Equal(t, model.MovementPurchase, movement.Type)
	assert.Equal(t, 0.0, movement.PreviousStock)
	assert.Equal(t, 50.0, movement.NewStock)
	assert.True(t, movement.PreviousAverageCost.IsZero())
	assert.True(t, movement.NewAverageCost.Equal(decimal.NewFromInt(80000)))
}

func TestRegisterPurchase_WeightedAverage(t *testing.T) {
	repo := newFakeInventoryRepo()
	uc := newTestUseCase(repo)

	purchase(t, uc, 100, 50000)
	item, movement := purchase(t, uc, 50, 80000)

	assert.Equal(t, 150.0, item.Quantity)
	assert.True(t, item.AverageCost.Equal(decimal.NewFromInt(60000)), "avg %s", item.AverageCost)
	assert.True(t, item.TotalValue.Equal(decimal.NewFromInt(9000000)), "total %s", item.TotalValue)

	assert.True(t, movement.PreviousAverageCost.Equal(decimal.NewFromInt(50000)))
	assert.True(t, movement.NewAverageCost.Equal(decimal.NewFromInt(60000)))
}

func TestConsume_ChargedAtAverageCost(t *testing.T) {
	repo := newFakeInventoryRepo()
	uc := newTestUseCase(repo)

	purchase(t, uc, 100, 50000)
	stocked, _ := purchase(t, uc, 50, 80000)

	item, movement, err := uc.Consume(context.Background(), &dto.ConsumeInput{
		TenantID:        "t1",
		InventoryItemID: stocked.ID,
		Quantity:        30,
		ReferenceType:   "work_order",
		ReferenceID:     "wo-1",
		UserID:          "u1",
	})
	require.NoError(t, err)

	assert.Equal(t, 120.0, item.Quantity)
	// Consumption never moves the average.
	assert.True(t, item.AverageCost.Equal(decimal.NewFromInt(60000)), "avg %s", item.AverageCost)
	assert.True(t, item.TotalValue.Equal(decimal.NewFromInt(7200000)), "total %s", item.TotalValue)

	assert.Equal(t, model.MovementConsumption, movement.Type)
	assert.True(t, movement.UnitCost.Equal(decimal.NewFromInt(60000)))
	assert.True(t, movement.TotalCost.Equal(decimal.NewFromInt(1800000)))
}

func TestConsume_InsufficientStockRejectsWithoutMutation(t *testing.T) {
	repo := newFakeInventoryRepo()
	uc := newTestUseCase(repo)

	stocked, _ := purchase(t, uc, 5, 10000)

	_, _, err := uc.Consume(context.Background(), &dto.ConsumeInput{
		TenantID:        "t1",
		InventoryItemID: stocked.ID,
		Quantity:        10,
	})
	require.Error(t, err)
	assert.True(t, apperr.IsInsufficientStock(err))
	assert.True(t, strings.Contains(err.Error(), "have 5"), err.Error())

	after, err := uc.GetItem(context.Background(), "t1", stocked.ID)
	require.NoError(t, err)
	assert.Equal(t, 5.0, after.Quantity)
	require.Len(t, repo.movements, 1) // only the purchase
}

func TestConsume_DrainToZeroFloorsValue(t *testing.T) {
	repo := newFakeInventoryRepo()
	uc := newTestUseCase(repo)

	stocked, _ := purchase(t, uc, 3, 33333)

	item, _, err := uc.Consume(context.Background(), &dto.ConsumeInput{
		TenantID:        "t1",
		InventoryItemID: stocked.ID,
		Quantity:        3,
	})
	require.NoError(t, err)

	assert.Equal(t, 0.0, item.Quantity)
	assert.True(t, item.TotalValue.IsZero(), "total %s", item.TotalValue)
	assert.Equal(t, model.InventoryOutOfStock, item.Status)
}

func TestConsume_UnknownItem(t *testing.T) {
	uc := newTestUseCase(newFakeInventoryRepo())

	_, _, err := uc.Consume(context.Background(), &dto.ConsumeInput{
		TenantID:        "t1",
		InventoryItemID: "missing",
		Quantity:        1,
	})
	assert.True(t, apperr.IsNotFound(err))
}

func TestRegisterPurchase_Validation(t *testing.T) {
	uc := newTestUseCase(newFakeInventoryRepo())

	_, _, err := uc.RegisterPurchase(context.Background(), &dto.PurchaseInput{
		TenantID: "t1", PartID: "part-1", WarehouseID: "wh-1", Quantity: 0,
	})
	assert.True(t, apperr.IsValidation(err))

	_, _, err = uc.RegisterPurchase(context.Background(), &dto.PurchaseInput{
		TenantID: "t1", PartID: "", WarehouseID: "wh-1", Quantity: 10,
	})
	assert.True(t, apperr.IsValidation(err))
}

func TestRegisterPurchase_LockExhaustionIsRetryable(t *testing.T) {
	repo := newFakeInventoryRepo()
	lock := &contendedLocker{}
	uc := newTestUseCase(repo)
	uc.cache = lock

	_, _, err := uc.RegisterPurchase(context.Background(), &dto.PurchaseInput{
		TenantID:    "t1",
		PartID:      "part-1",
		WarehouseID: "wh-1",
		Quantity:    10,
		UnitPrice:   decimal.NewFromInt(50000),
	})
	require.Error(t, err)
	assert.True(t, apperr.IsResourceBusy(err))
	assert.Equal(t, http.StatusConflict, apperr.HTTPStatus(err))
	assert.Len(t, lock.heldKeys, 3, "gives up after the retry budget")
	assert.Empty(t, repo.movements, "no mutation behind a lost lock")
}

func TestVerifyMovementReplay_Consistent(t *testing.T) {
	repo := newFakeInventoryRepo()
	uc := newTestUseCase(repo)

	purchase(t, uc, 100, 50000)
	stocked, _ := purchase(t, uc, 50, 80000)
	_, _, err := uc.Consume(context.Background(), &dto.ConsumeInput{
		TenantID:        "t1",
		InventoryItemID: stocked.ID,
		Quantity:        70,
	})
	require.NoError(t, err)

	report, err := uc.VerifyMovementReplay(context.Background(), "t1", stocked.ID)
	require.NoError(t, err)

	assert.Equal(t, 3, report.MovementCount)
	assert.Equal(t, 80.0, report.ReplayedQuantity)
	assert.True(t, report.Consistent,
		"replayed qty %g vs %g, avg %s vs %s",
		report.ReplayedQuantity, report.CurrentQuantity,
		report.ReplayedAverageCost, report.CurrentAverageCost)
}

func TestVerifyMovementReplay_DetectsDrift(t *testing.T) {
	repo := newFakeInventoryRepo()
	uc := newTestUseCase(repo)

	stocked, _ := purchase(t, uc, 10, 1000)

	// Corrupt the live record behind the movement log's back.
	repo.items[stocked.ID].Quantity = 9

	report, err := uc.VerifyMovementReplay(context.Background(), "t1", stocked.ID)
	require.NoError(t, err)
	assert.False(t, report.Consistent)
}
