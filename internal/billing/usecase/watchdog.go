package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/fleetops-maintenance-service/internal/billing"
	"github.com/fekuna/fleetops-maintenance-service/internal/model"
	"github.com/fekuna/fleetops-maintenance-service/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	// Invoiced price vs the linked work order item's expected price.
	workOrderPriceTolerance = 0.20
	// Invoiced price vs the part's reference price on the purchase path.
	purchasePriceTolerance = 0.10
	// At or above this a work-order deviation escalates from HIGH to CRITICAL.
	criticalDeviation = 0.5
)

// deviationCandidate is one invoice line with a known expected price,
// collected inside the reconciliation transaction and evaluated after commit.
type deviationCandidate struct {
	invoiceID       string
	invoiceItemID   string
	workOrderItemID *string
	partID          *string
	expected        decimal.Decimal
	actual          decimal.Decimal
	purchase        bool
}

// priceWatchdog is observational only. It runs outside the reconciliation
// transaction and a failed alert write is logged, never surfaced.
type priceWatchdog struct {
	repo   billing.Repository
	logger logger.Logger
	now    func() time.Time
}

func newPriceWatchdog(repo billing.Repository, log logger.Logger) *priceWatchdog {
	return &priceWatchdog{repo: repo, logger: log, now: time.Now}
}

func (w *priceWatchdog) Run(ctx context.Context, tenantID string, candidates []deviationCandidate) {
	for _, c := range candidates {
		if !c.expected.IsPositive() {
			continue
		}

		deviation, _ := c.actual.Sub(c.expected).Abs().Div(c.expected).Float64()

		tolerance := workOrderPriceTolerance
		if c.purchase {
			tolerance = purchasePriceTolerance
		}
		if deviation <= tolerance {
			continue
		}

		severity := model.FinancialSeverityHigh
		switch {
		case c.purchase:
			severity = model.FinancialSeverityMedium
		case deviation >= criticalDeviation:
			severity = model.FinancialSeverityCritical
		}

		detail, _ := json.Marshal(struct {
			ExpectedPrice decimal.Decimal `json:"expected_price"`
			ActualPrice   decimal.Decimal `json:"actual_price"`
			Deviation     float64         `json:"deviation"`
		}{c.expected, c.actual, deviation})

		now := w.now()
		alert := &model.FinancialAlert{
			BaseModel:       model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
			TenantID:        tenantID,
			Severity:        severity,
			Status:          model.FinancialAlertPending,
			InvoiceID:       c.invoiceID,
			InvoiceItemID:   &c.invoiceItemID,
			WorkOrderItemID: c.workOrderItemID,
			PartID:          c.partID,
			ExpectedPrice:   c.expected,
			ActualPrice:     c.actual,
			Deviation:       deviation,
			Detail:          string(detail),
		}
		if err := w.repo.CreateFinancialAlert(ctx, alert); err != nil {
			w.logger.Error("price deviation alert write failed",
				zap.String("invoice_id", c.invoiceID),
				zap.String("invoice_item_id", c.invoiceItemID),
				zap.Float64("deviation", deviation),
				zap.Error(err),
			)
			continue
		}

		w.logger.Warn("price deviation detected",
			zap.String("invoice_id", c.invoiceID),
			zap.String("invoice_item_id", c.invoiceItemID),
			zap.String("severity", string(severity)),
			zap.Float64("deviation", deviation),
		)
	}
}
