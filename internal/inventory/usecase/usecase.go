package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/fekuna/fleetops-maintenance-service/internal/inventory"
	"github.com/fekuna/fleetops-maintenance-service/internal/inventory/dto"
	"github.com/fekuna/fleetops-maintenance-service/internal/model"
	"github.com/fekuna/fleetops-maintenance-service/pkg/apperr"
	"github.com/fekuna/fleetops-maintenance-service/pkg/cache"
	"github.com/fekuna/fleetops-maintenance-service/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// replayTolerance bounds the relative drift allowed between the live record
// and a replay of its movement history.
const replayTolerance = 1e-6

// locker is the slice of the redis client the usecase needs.
type locker interface {
	AcquireLock(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, value string) error
}

type inventoryUseCase struct {
	repo   inventory.Repository
	cache  locker
	logger logger.Logger
	now    func() time.Time
}

func NewInventoryUseCase(repo inventory.Repository, redisClient *cache.RedisClient, log logger.Logger) inventory.UseCase {
	uc := &inventoryUseCase{
		repo:   repo,
		logger: log,
		now:    time.Now,
	}
	if redisClient != nil {
		uc.cache = redisClient
	}
	return uc
}

// withLock serializes mutations of one (tenant, part, warehouse) record. The
// row lock inside the transaction is the correctness mechanism; the redis
// lock just sheds retry load before the database is touched.
func (uc *inventoryUseCase) withLock(ctx context.Context, tenantID, partID, warehouseID string, fn func() error) error {
	if uc.cache == nil {
		return fn()
	}

	lockKey := fmt.Sprintf("lock:inventory:%s:%s:%s", tenantID, partID, warehouseID)
	lockValue := uuid.New().String()

	acquired := false
	for i := 0; i < 3; i++ {
		ok, err := uc.cache.AcquireLock(ctx, lockKey, lockValue, 5*time.Second)
		if err != nil {
			uc.logger.Error("failed to acquire lock redis error", zap.Error(err))
		}
		if ok {
			acquired = true
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	if !acquired {
		return apperr.ResourceBusy("inventory record %s/%s busy, try again later", partID, warehouseID)
	}
	defer uc.cache.ReleaseLock(ctx, lockKey, lockValue)

	return fn()
}

func (uc *inventoryUseCase) RegisterPurchase(ctx context.Context, input *dto.PurchaseInput) (*model.InventoryItem, *model.InventoryMovement, error) {
	if input.PartID == "" || input.WarehouseID == "" {
		return nil, nil, apperr.Validation("part id and warehouse id are required")
	}
	if input.Quantity <= 0 {
		return nil, nil, apperr.Validation("purchase quantity must be positive")
	}
	if input.UnitPrice.IsNegative() {
		return nil, nil, apperr.Validation("unit price must not be negative")
	}

	var item *model.InventoryItem
	var movement *model.InventoryMovement

	err := uc.withLock(ctx, input.TenantID, input.PartID, input.WarehouseID, func() error {
		existing, err := uc.repo.GetByPartForUpdate(ctx, input.TenantID, input.PartID, input.WarehouseID)
		if err != nil {
			return err
		}

		now := uc.now()
		qty := decimal.NewFromFloat(input.Quantity)
		lineValue := qty.Mul(input.UnitPrice)

		if existing == nil {
			// First purchase: average cost is exactly the unit price.
			minStock := 0.0
			if input.MinStock != nil {
				minStock = *input.MinStock
			}
			item = &model.InventoryItem{
				BaseModel:   model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
				TenantID:    input.TenantID,
				PartID:      input.PartID,
				WarehouseID: input.WarehouseID,
				Quantity:    input.Quantity,
				MinStock:    minStock,
				AverageCost: input.UnitPrice,
				TotalValue:  lineValue,
				Status:      model.InventoryStatusFor(input.Quantity, minStock),
			}
			movement = uc.buildMovement(item, model.MovementPurchase, input.Quantity,
				input.UnitPrice, 0, item.Quantity, decimal.Zero, item.AverageCost,
				input.ReferenceType, input.ReferenceID, input.UserID, now)
			if err := uc.repo.Create(ctx, item); err != nil {
				return err
			}
			return uc.repo.LogMovement(ctx, movement)
		}

		prevStock := existing.Quantity
		prevAvg := existing.AverageCost

		newQty := existing.Quantity + input.Quantity
		newTotal := existing.TotalValue.Add(lineValue)
		newAvg := decimal.Zero
		if newQty != 0 {
			newAvg = newTotal.Div(decimal.NewFromFloat(newQty))
		}

		existing.Quantity = newQty
		existing.AverageCost = newAvg
		existing.TotalValue = newTotal
		existing.Status = model.InventoryStatusFor(newQty, existing.MinStock)
		existing.UpdatedAt = now

		movement = uc.buildMovement(existing, model.MovementPurchase, input.Quantity,
			input.UnitPrice, prevStock, newQty, prevAvg, newAvg,
			input.ReferenceType, input.ReferenceID, input.UserID, now)

		if err := uc.repo.Update(ctx, existing); err != nil {
			return err
		}
		item = existing
		return uc.repo.LogMovement(ctx, movement)
	})
	if err != nil {
		return nil, nil, err
	}
	return item, movement, nil
}

func (uc *inventoryUseCase) Consume(ctx context.Context, input *dto.ConsumeInput) (*model.InventoryItem, *model.InventoryMovement, error) {
	if input.InventoryItemID == "" {
		return nil, nil, apperr.Validation("inventory item id is required")
	}
	if input.Quantity <= 0 {
		return nil, nil, apperr.Validation("consumption quantity must be positive")
	}

	existing, err := uc.repo.GetByID(ctx, input.TenantID, input.InventoryItemID)
	if err != nil {
		return nil, nil, err
	}
	if existing == nil {
		return nil, nil, apperr.NotFound("inventory item %s not found", input.InventoryItemID)
	}

	var item *model.InventoryItem
	var movement *model.InventoryMovement

	err = uc.withLock(ctx, input.TenantID, existing.PartID, existing.WarehouseID, func() error {
		item = nil
		locked, err := uc.repo.GetByIDForUpdate(ctx, input.TenantID, input.InventoryItemID)
		if err != nil {
			return err
		}
		if locked == nil {
			return apperr.NotFound("inventory item %s not found", input.InventoryItemID)
		}

		if locked.Quantity < input.Quantity {
			return apperr.InsufficientStock("insufficient stock for part %s: have %g, requested %g",
				locked.PartID, locked.Quantity, input.Quantity)
		}

		now := uc.now()
		prevStock := locked.Quantity
		prevAvg := locked.AverageCost

		// Egress is charged at the current average cost and never changes it.
		newStock := locked.Quantity - input.Quantity
		consumedValue := decimal.NewFromFloat(input.Quantity).Mul(prevAvg)

		newTotal := locked.TotalValue.Sub(consumedValue)
		if newStock == 0 {
			// Zero-floor: avoid negative residue from rounding.
			newTotal = decimal.Zero
		}

		locked.Quantity = newStock
		locked.TotalValue = newTotal
		locked.Status = model.InventoryStatusFor(newStock, locked.MinStock)
		locked.UpdatedAt = now

		movement = uc.buildMovement(locked, model.MovementConsumption, input.Quantity,
			prevAvg, prevStock, newStock, prevAvg, locked.AverageCost,
			input.ReferenceType, input.ReferenceID, input.UserID, now)

		if err := uc.repo.Update(ctx, locked); err != nil {
			return err
		}
		item = locked
		return uc.repo.LogMovement(ctx, movement)
	})
	if err != nil {
		return nil, nil, err
	}
	return item, movement, nil
}

func (uc *inventoryUseCase) buildMovement(item *model.InventoryItem, typ model.MovementType,
	qty float64, unitCost decimal.Decimal, prevStock, newStock float64,
	prevAvg, newAvg decimal.Decimal, referenceType, referenceID, userID string,
	now time.Time) *model.InventoryMovement {

	var refType, refID, createdBy *string
	if referenceType != "" {
		t := referenceType
		refType = &t
	}
	if referenceID != "" {
		id := referenceID
		refID = &id
	}
	if userID != "" {
		u := userID
		createdBy = &u
	}

	return &model.InventoryMovement{
		ID:                  uuid.New().String(),
		TenantID:            item.TenantID,
		InventoryItemID:     item.ID,
		PartID:              item.PartID,
		WarehouseID:         item.WarehouseID,
		Type:                typ,
		Quantity:            qty,
		UnitCost:            unitCost,
		TotalCost:           decimal.NewFromFloat(qty).Mul(unitCost),
		PreviousStock:       prevStock,
		NewStock:            newStock,
		PreviousAverageCost: prevAvg,
		NewAverageCost:      newAvg,
		ReferenceType:       refType,
		ReferenceID:         refID,
		CreatedBy:           createdBy,
		CreatedAt:           now,
	}
}

func (uc *inventoryUseCase) VerifyMovementReplay(ctx context.Context, tenantID, inventoryItemID string) (*dto.ReplayReport, error) {
	item, err := uc.repo.GetByID(ctx, tenantID, inventoryItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperr.NotFound("inventory item %s not found", inventoryItemID)
	}

	movements, err := uc.repo.ListMovementsByItem(ctx, tenantID, inventoryItemID)
	if err != nil {
		return nil, err
	}

	qty := 0.0
	total := decimal.Zero
	avg := decimal.Zero

	for _, m := range movements {
		switch m.Type {
		case model.MovementPurchase:
			newQty := qty + m.Quantity
			total = total.Add(decimal.NewFromFloat(m.Quantity).Mul(m.UnitCost))
			if newQty != 0 {
				avg = total.Div(decimal.NewFromFloat(newQty))
			} else {
				avg = decimal.Zero
			}
			qty = newQty
		case model.MovementConsumption:
			qty -= m.Quantity
			total = total.Sub(decimal.NewFromFloat(m.Quantity).Mul(avg))
			if qty == 0 {
				total = decimal.Zero
			}
		}
	}

	report := &dto.ReplayReport{
		InventoryItemID:     inventoryItemID,
		MovementCount:       len(movements),
		CurrentQuantity:     item.Quantity,
		ReplayedQuantity:    qty,
		CurrentAverageCost:  item.AverageCost,
		ReplayedAverageCost: avg,
	}
	report.Consistent = math.Abs(item.Quantity-qty) < replayTolerance &&
		withinRelativeTolerance(item.AverageCost, avg)

	if !report.Consistent {
		uc.logger.Warn("inventory replay drift detected",
			zap.String("inventory_item_id", inventoryItemID),
			zap.Float64("current_qty", item.Quantity),
			zap.Float64("replayed_qty", qty),
		)
	}
	return report, nil
}

func withinRelativeTolerance(a, b decimal.Decimal) bool {
	diff, _ := a.Sub(b).Abs().Float64()
	base, _ := a.Abs().Float64()
	if base < 1 {
		base = 1
	}
	return diff/base < replayTolerance
}

func (uc *inventoryUseCase) GetItem(ctx context.Context, tenantID, inventoryItemID string) (*model.InventoryItem, error) {
	item, err := uc.repo.GetByID(ctx, tenantID, inventoryItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperr.NotFound("inventory item %s not found", inventoryItemID)
	}
	return item, nil
}

func (uc *inventoryUseCase) ListItems(ctx context.Context, filters *dto.InventoryFilters) ([]model.InventoryItem, error) {
	return uc.repo.FindAll(ctx, filters)
}

func (uc *inventoryUseCase) ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.InventoryMovement, error) {
	return uc.repo.ListMovements(ctx, filters)
}
