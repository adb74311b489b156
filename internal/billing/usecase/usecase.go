package usecase

import (
	"context"
	"time"

	"github.com/fekuna/fleetops-maintenance-service/internal/billing"
	"github.com/fekuna/fleetops-maintenance-service/internal/billing/dto"
	"github.com/fekuna/fleetops-maintenance-service/internal/inventory"
	invdto "github.com/fekuna/fleetops-maintenance-service/internal/inventory/dto"
	"github.com/fekuna/fleetops-maintenance-service/internal/maintenance"
	maintdto "github.com/fekuna/fleetops-maintenance-service/internal/maintenance/dto"
	"github.com/fekuna/fleetops-maintenance-service/internal/model"
	"github.com/fekuna/fleetops-maintenance-service/internal/workorder"
	"github.com/fekuna/fleetops-maintenance-service/pkg/apperr"
	"github.com/fekuna/fleetops-maintenance-service/pkg/logger"
	"github.com/fekuna/fleetops-maintenance-service/pkg/postgres"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type billingUseCase struct {
	repo          billing.Repository
	workOrderUC   workorder.UseCase
	maintenanceUC maintenance.UseCase
	inventoryUC   inventory.UseCase
	txManager     postgres.TxManager
	watchdog      *priceWatchdog
	logger        logger.Logger
	now           func() time.Time
}

func NewBillingUseCase(
	repo billing.Repository,
	workOrderUC workorder.UseCase,
	maintenanceUC maintenance.UseCase,
	inventoryUC inventory.UseCase,
	txManager postgres.TxManager,
	log logger.Logger,
) billing.UseCase {
	return &billingUseCase{
		repo:          repo,
		workOrderUC:   workOrderUC,
		maintenanceUC: maintenanceUC,
		inventoryUC:   inventoryUC,
		txManager:     txManager,
		watchdog:      newPriceWatchdog(repo, log),
		logger:        log,
		now:           time.Now,
	}
}

func (uc *billingUseCase) CreateInvoice(ctx context.Context, input *dto.CreateInvoiceInput) (*model.Invoice, error) {
	if input.InvoiceNumber == "" {
		return nil, apperr.Validation("invoice number is required")
	}
	if len(input.Items) == 0 {
		return nil, apperr.Validation("invoice must have at least one item")
	}
	for _, line := range input.Items {
		if line.Quantity <= 0 {
			return nil, apperr.Validation("invoice item quantity must be positive")
		}
		if line.UnitPrice.IsNegative() {
			return nil, apperr.Validation("invoice item unit price must not be negative")
		}
	}

	exists, err := uc.repo.InvoiceNumberExists(ctx, input.TenantID, input.InvoiceNumber)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Duplicate("invoice number %s already exists", input.InvoiceNumber)
	}

	now := uc.now()
	invoice := &model.Invoice{
		BaseModel:       model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		TenantID:        input.TenantID,
		InvoiceNumber:   input.InvoiceNumber,
		SupplierID:      input.SupplierID,
		WorkOrderID:     input.WorkOrderID,
		PurchaseOrderID: input.PurchaseOrderID,
		Status:          model.InvoicePending,
	}

	err = uc.txManager.RunInTx(ctx, func(ctx context.Context) error {
		items := uc.buildItems(invoice, input.Items, now)
		if err := uc.repo.CreateInvoice(ctx, invoice); err != nil {
			return err
		}
		for i := range items {
			if err := uc.repo.CreateInvoiceItem(ctx, &items[i]); err != nil {
				return err
			}
		}

		if input.WorkOrderID == nil {
			return nil
		}

		// Narrow closure path: EXTERNAL pending items referenced by this
		// invoice complete right away, without waiting for approval.
		touched := false
		for i := range items {
			item := &items[i]
			if item.WorkOrderItemID == nil {
				continue
			}
			woItem, err := uc.workOrderUC.GetItem(ctx, input.TenantID, *item.WorkOrderItemID)
			if err != nil {
				return err
			}
			if woItem.WorkOrderID != *input.WorkOrderID {
				return apperr.Validation("work order item %s does not belong to work order %s", woItem.ID, *input.WorkOrderID)
			}
			if woItem.Source != model.ItemSourceExternal || woItem.Status != model.WorkOrderItemPending {
				continue
			}
			if _, err := uc.workOrderUC.CloseItemFromInvoice(ctx, input.TenantID, woItem.ID, invoice.InvoiceNumber); err != nil {
				return err
			}
			touched = true
		}
		if touched {
			if _, err := uc.workOrderUC.ReconcileFromItems(ctx, input.TenantID, *input.WorkOrderID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

func (uc *billingUseCase) ApproveInvoice(ctx context.Context, input *dto.ApproveInvoiceInput) (*model.Invoice, error) {
	if input.InvoiceID == "" {
		return nil, apperr.Validation("invoice id is required")
	}

	var invoice *model.Invoice
	var candidates []deviationCandidate

	err := uc.txManager.RunInTx(ctx, func(ctx context.Context) error {
		candidates = candidates[:0]

		var err error
		invoice, err = uc.repo.GetInvoiceByIDForUpdate(ctx, input.TenantID, input.InvoiceID)
		if err != nil {
			return err
		}
		if invoice == nil {
			return apperr.NotFound("invoice %s not found", input.InvoiceID)
		}
		if invoice.Status != model.InvoicePending {
			return apperr.Validation("invoice %s is %s, only pending invoices can be approved", invoice.ID, invoice.Status)
		}

		now := uc.now()
		invoice.Status = model.InvoiceApproved
		invoice.ApprovedBy = &input.ApproverID
		invoice.ApprovedAt = &now
		invoice.UpdatedAt = now
		if err := uc.repo.UpdateInvoice(ctx, invoice); err != nil {
			return err
		}

		items, err := uc.repo.ListInvoiceItems(ctx, input.TenantID, invoice.ID)
		if err != nil {
			return err
		}

		workOrders := map[string]struct{}{}
		if invoice.WorkOrderID != nil {
			workOrders[*invoice.WorkOrderID] = struct{}{}
		}

		for i := range items {
			item := &items[i]
			if item.WorkOrderItemID == nil {
				continue
			}

			woItem, err := uc.workOrderUC.CloseItemFromInvoice(ctx, input.TenantID, *item.WorkOrderItemID, invoice.InvoiceNumber)
			if err != nil {
				return err
			}
			workOrders[woItem.WorkOrderID] = struct{}{}

			if woItem.UnitPrice.IsPositive() {
				candidates = append(candidates, deviationCandidate{
					invoiceID:       invoice.ID,
					invoiceItemID:   item.ID,
					workOrderItemID: item.WorkOrderItemID,
					partID:          item.PartID,
					expected:        woItem.UnitPrice,
					actual:          item.UnitPrice,
				})
			}

			if err := uc.settleAlert(ctx, invoice, item, woItem); err != nil {
				return err
			}
		}

		for i := range items {
			item := &items[i]
			if item.PartID == nil {
				continue
			}
			if err := uc.recordPartPrice(ctx, invoice, item, now); err != nil {
				return err
			}
		}

		for workOrderID := range workOrders {
			if _, err := uc.workOrderUC.ReconcileFromItems(ctx, input.TenantID, workOrderID); err != nil {
				return err
			}
		}

		if invoice.PurchaseOrderID != nil {
			if err := uc.settlePurchaseOrder(ctx, invoice, items, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.watchdog.Run(ctx, invoice.TenantID, candidates)

	uc.logger.Info("invoice approved",
		zap.String("invoice_id", invoice.ID),
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("approved_by", input.ApproverID),
	)
	return invoice, nil
}

// settleAlert closes the maintenance alert the completed work order item
// resolves, and cascade-completes its program item at the work order's
// creation mileage.
func (uc *billingUseCase) settleAlert(ctx context.Context, invoice *model.Invoice, item *model.InvoiceItem, woItem *model.WorkOrderItem) error {
	alert, err := uc.maintenanceUC.FindAlertForWorkOrderItem(ctx, invoice.TenantID, woItem.WorkOrderID, woItem.ProgramItemID)
	if err != nil {
		return err
	}
	if alert == nil {
		return nil
	}

	wo, err := uc.workOrderUC.GetWorkOrder(ctx, invoice.TenantID, woItem.WorkOrderID)
	if err != nil {
		return err
	}

	actualCost := workorder.ItemTotal(item.Quantity, item.UnitPrice)
	if _, err := uc.maintenanceUC.CloseAlert(ctx, &maintdto.CloseAlertInput{
		TenantID:    invoice.TenantID,
		AlertID:     alert.ID,
		WorkOrderID: woItem.WorkOrderID,
		ActualCost:  &actualCost,
	}); err != nil {
		return err
	}
	return uc.maintenanceUC.CompleteProgramItem(ctx, invoice.TenantID, alert.ProgramItemID, wo.CreationMileage)
}

func (uc *billingUseCase) recordPartPrice(ctx context.Context, invoice *model.Invoice, item *model.InvoiceItem, now time.Time) error {
	part, err := uc.repo.GetPart(ctx, invoice.TenantID, *item.PartID)
	if err != nil {
		return err
	}
	if part == nil {
		return apperr.CascadeIntegrity("invoice item %s references unknown part %s", item.ID, *item.PartID)
	}

	history := &model.PartPriceHistory{
		ID:         uuid.New().String(),
		TenantID:   invoice.TenantID,
		PartID:     part.ID,
		SupplierID: invoice.SupplierID,
		InvoiceID:  invoice.ID,
		UnitPrice:  item.UnitPrice,
		Quantity:   item.Quantity,
		CreatedAt:  now,
	}
	if err := uc.repo.CreatePriceHistory(ctx, history); err != nil {
		return err
	}

	price := item.UnitPrice
	part.ReferencePrice = &price
	part.UpdatedAt = now
	return uc.repo.UpdatePart(ctx, part)
}

// settlePurchaseOrder matches invoice lines to purchase order items, by work
// order item linkage first and description equality as the fallback.
func (uc *billingUseCase) settlePurchaseOrder(ctx context.Context, invoice *model.Invoice, items []model.InvoiceItem, now time.Time) error {
	po, err := uc.repo.GetPurchaseOrderForUpdate(ctx, invoice.TenantID, *invoice.PurchaseOrderID)
	if err != nil {
		return err
	}
	if po == nil {
		return apperr.CascadeIntegrity("invoice %s references unknown purchase order %s", invoice.ID, *invoice.PurchaseOrderID)
	}

	poItems, err := uc.repo.ListPurchaseOrderItems(ctx, invoice.TenantID, po.ID)
	if err != nil {
		return err
	}

	for i := range items {
		matched := matchPurchaseOrderItem(poItems, &items[i])
		if matched == nil || matched.Status == model.PurchaseOrderItemCompleted {
			continue
		}
		matched.Status = model.PurchaseOrderItemCompleted
		matched.UpdatedAt = now
		if err := uc.repo.UpdatePurchaseOrderItem(ctx, matched); err != nil {
			return err
		}
	}

	po.Status = model.PurchaseOrderPartial
	if allPurchaseOrderItemsCompleted(poItems) {
		po.Status = model.PurchaseOrderCompleted
	}
	po.UpdatedAt = now
	return uc.repo.UpdatePurchaseOrder(ctx, po)
}

func matchPurchaseOrderItem(poItems []model.PurchaseOrderItem, line *model.InvoiceItem) *model.PurchaseOrderItem {
	if line.WorkOrderItemID != nil {
		for i := range poItems {
			if poItems[i].WorkOrderItemID != nil && *poItems[i].WorkOrderItemID == *line.WorkOrderItemID {
				return &poItems[i]
			}
		}
	}
	for i := range poItems {
		if poItems[i].Description == line.Description {
			return &poItems[i]
		}
	}
	return nil
}

func allPurchaseOrderItemsCompleted(poItems []model.PurchaseOrderItem) bool {
	if len(poItems) == 0 {
		return false
	}
	for i := range poItems {
		if poItems[i].Status != model.PurchaseOrderItemCompleted {
			return false
		}
	}
	return true
}

func (uc *billingUseCase) CreatePurchase(ctx context.Context, input *dto.CreatePurchaseInput) (*model.Invoice, error) {
	if input.InvoiceNumber == "" {
		return nil, apperr.Validation("invoice number is required")
	}
	if input.SupplierID == "" {
		return nil, apperr.Validation("supplier id is required")
	}
	if input.WarehouseID == "" {
		return nil, apperr.Validation("warehouse id is required")
	}
	if len(input.Items) == 0 {
		return nil, apperr.Validation("purchase must have at least one item")
	}
	for _, line := range input.Items {
		if line.PartID == "" {
			return nil, apperr.Validation("purchase item part id is required")
		}
		if line.Quantity <= 0 {
			return nil, apperr.Validation("purchase item quantity must be positive")
		}
		if !line.UnitPrice.IsPositive() {
			return nil, apperr.Validation("purchase item unit price must be positive")
		}
	}

	exists, err := uc.repo.InvoiceNumberExists(ctx, input.TenantID, input.InvoiceNumber)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Duplicate("invoice number %s already exists", input.InvoiceNumber)
	}

	now := uc.now()
	supplierID := input.SupplierID
	invoice := &model.Invoice{
		BaseModel:     model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		TenantID:      input.TenantID,
		InvoiceNumber: input.InvoiceNumber,
		SupplierID:    &supplierID,
		Status:        model.InvoiceApproved,
		ApprovedBy:    &input.UserID,
		ApprovedAt:    &now,
	}

	var candidates []deviationCandidate

	err = uc.txManager.RunInTx(ctx, func(ctx context.Context) error {
		candidates = candidates[:0]

		if err := uc.repo.CreateInvoice(ctx, invoice); err != nil {
			return err
		}

		for _, line := range input.Items {
			part, err := uc.repo.GetPart(ctx, input.TenantID, line.PartID)
			if err != nil {
				return err
			}
			if part == nil {
				return apperr.NotFound("part %s not found", line.PartID)
			}

			partID := line.PartID
			lineTotal := workorder.ItemTotal(line.Quantity, line.UnitPrice)
			tax := lineTotal.Mul(decimal.NewFromFloat(line.TaxRate))
			item := &model.InvoiceItem{
				BaseModel:   model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
				TenantID:    input.TenantID,
				InvoiceID:   invoice.ID,
				PartID:      &partID,
				Description: part.Name,
				Quantity:    line.Quantity,
				UnitPrice:   line.UnitPrice,
				TaxRate:     line.TaxRate,
				TotalPrice:  lineTotal.Add(tax),
			}
			if err := uc.repo.CreateInvoiceItem(ctx, item); err != nil {
				return err
			}
			invoice.Subtotal = invoice.Subtotal.Add(lineTotal)
			invoice.TaxTotal = invoice.TaxTotal.Add(tax)
			invoice.Total = invoice.Total.Add(item.TotalPrice)

			if _, _, err := uc.inventoryUC.RegisterPurchase(ctx, &invdto.PurchaseInput{
				TenantID:      input.TenantID,
				PartID:        line.PartID,
				WarehouseID:   input.WarehouseID,
				Quantity:      line.Quantity,
				UnitPrice:     line.UnitPrice,
				MinStock:      line.MinStock,
				ReferenceType: "invoice",
				ReferenceID:   invoice.ID,
				UserID:        input.UserID,
			}); err != nil {
				return err
			}

			if err := uc.repo.CreatePriceHistory(ctx, &model.PartPriceHistory{
				ID:         uuid.New().String(),
				TenantID:   input.TenantID,
				PartID:     part.ID,
				SupplierID: invoice.SupplierID,
				InvoiceID:  invoice.ID,
				UnitPrice:  line.UnitPrice,
				Quantity:   line.Quantity,
				CreatedAt:  now,
			}); err != nil {
				return err
			}

			// Compare against the reference price as it stood before this
			// purchase; a part without one has no baseline to deviate from.
			if part.ReferencePrice != nil && part.ReferencePrice.IsPositive() {
				candidates = append(candidates, deviationCandidate{
					invoiceID:     invoice.ID,
					invoiceItemID: item.ID,
					partID:        &partID,
					expected:      *part.ReferencePrice,
					actual:        line.UnitPrice,
					purchase:      true,
				})
			}
		}

		return uc.repo.UpdateInvoice(ctx, invoice)
	})
	if err != nil {
		return nil, err
	}

	uc.watchdog.Run(ctx, invoice.TenantID, candidates)
	return invoice, nil
}

func (uc *billingUseCase) GetInvoice(ctx context.Context, tenantID, invoiceID string) (*model.Invoice, []model.InvoiceItem, error) {
	invoice, err := uc.repo.GetInvoiceByID(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, nil, err
	}
	if invoice == nil {
		return nil, nil, apperr.NotFound("invoice %s not found", invoiceID)
	}
	items, err := uc.repo.ListInvoiceItems(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, nil, err
	}
	return invoice, items, nil
}

func (uc *billingUseCase) ListFinancialAlerts(ctx context.Context, tenantID string) ([]model.FinancialAlert, error) {
	return uc.repo.ListFinancialAlerts(ctx, tenantID)
}

// buildItems materializes invoice items and accumulates the invoice totals.
func (uc *billingUseCase) buildItems(invoice *model.Invoice, lines []dto.InvoiceItemInput, now time.Time) []model.InvoiceItem {
	items := make([]model.InvoiceItem, 0, len(lines))
	for _, line := range lines {
		lineTotal := workorder.ItemTotal(line.Quantity, line.UnitPrice)
		tax := lineTotal.Mul(decimal.NewFromFloat(line.TaxRate))
		items = append(items, model.InvoiceItem{
			BaseModel:       model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
			TenantID:        invoice.TenantID,
			InvoiceID:       invoice.ID,
			WorkOrderItemID: line.WorkOrderItemID,
			PartID:          line.PartID,
			Description:     line.Description,
			Quantity:        line.Quantity,
			UnitPrice:       line.UnitPrice,
			TaxRate:         line.TaxRate,
			TotalPrice:      lineTotal.Add(tax),
		})
		invoice.Subtotal = invoice.Subtotal.Add(lineTotal)
		invoice.TaxTotal = invoice.TaxTotal.Add(tax)
		invoice.Total = invoice.Total.Add(lineTotal.Add(tax))
	}
	return items
}
