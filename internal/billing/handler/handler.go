package handler

import (
	"net/http"

	"github.com/fekuna/fleetops-maintenance-service/internal/auth"
	"github.com/fekuna/fleetops-maintenance-service/internal/billing"
	"github.com/fekuna/fleetops-maintenance-service/internal/billing/dto"
	"github.com/fekuna/fleetops-maintenance-service/internal/model"
	"github.com/fekuna/fleetops-maintenance-service/internal/rest"
	"github.com/fekuna/fleetops-maintenance-service/pkg/logger"
	"github.com/shopspring/decimal"
)

type BillingHandler struct {
	uc     billing.UseCase
	logger logger.Logger
}

func NewBillingHandler(uc billing.UseCase, log logger.Logger) *BillingHandler {
	return &BillingHandler{uc: uc, logger: log}
}

func (h *BillingHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/invoices", h.CreateInvoice)
	mux.HandleFunc("GET /api/v1/invoices/{id}", h.GetInvoice)
	mux.HandleFunc("POST /api/v1/invoices/{id}/approve", h.ApproveInvoice)
	mux.HandleFunc("POST /api/v1/purchases", h.CreatePurchase)
	mux.HandleFunc("GET /api/v1/financial-alerts", h.ListFinancialAlerts)
}

type invoiceItemRequest struct {
	WorkOrderItemID *string `json:"work_order_item_id"`
	PartID          *string `json:"part_id"`
	Description     string  `json:"description"`
	Quantity        float64 `json:"quantity"`
	UnitPrice       float64 `json:"unit_price"`
	TaxRate         float64 `json:"tax_rate"`
}

type createInvoiceRequest struct {
	InvoiceNumber   string               `json:"invoice_number"`
	SupplierID      *string              `json:"supplier_id"`
	WorkOrderID     *string              `json:"work_order_id"`
	PurchaseOrderID *string              `json:"purchase_order_id"`
	Items           []invoiceItemRequest `json:"items"`
}

func (h *BillingHandler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	var req createInvoiceRequest
	if err := rest.Decode(r, &req); err != nil {
		rest.Error(w, err)
		return
	}

	items := make([]dto.InvoiceItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, dto.InvoiceItemInput{
			WorkOrderItemID: item.WorkOrderItemID,
			PartID:          item.PartID,
			Description:     item.Description,
			Quantity:        item.Quantity,
			UnitPrice:       decimal.NewFromFloat(item.UnitPrice),
			TaxRate:         item.TaxRate,
		})
	}

	invoice, err := h.uc.CreateInvoice(r.Context(), &dto.CreateInvoiceInput{
		TenantID:        auth.GetTenantID(r.Context()),
		InvoiceNumber:   req.InvoiceNumber,
		SupplierID:      req.SupplierID,
		WorkOrderID:     req.WorkOrderID,
		PurchaseOrderID: req.PurchaseOrderID,
		Items:           items,
		UserID:          auth.GetUserID(r.Context()),
	})
	if err != nil {
		rest.Error(w, err)
		return
	}
	rest.JSON(w, http.StatusCreated, invoice)
}

type invoiceResponse struct {
	*model.Invoice
	Items []model.InvoiceItem `json:"items"`
}

func (h *BillingHandler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	invoice, items, err := h.uc.GetInvoice(r.Context(), auth.GetTenantID(r.Context()), r.PathValue("id"))
	if err != nil {
		rest.Error(w, err)
		return
	}
	rest.JSON(w, http.StatusOK, invoiceResponse{Invoice: invoice, Items: items})
}

func (h *BillingHandler) ApproveInvoice(w http.ResponseWriter, r *http.Request) {
	invoice, err := h.uc.ApproveInvoice(r.Context(), &dto.ApproveInvoiceInput{
		TenantID:   auth.GetTenantID(r.Context()),
		InvoiceID:  r.PathValue("id"),
		ApproverID: auth.GetUserID(r.Context()),
	})
	if err != nil {
		rest.Error(w, err)
		return
	}
	rest.JSON(w, http.StatusOK, invoice)
}

type purchaseItemRequest struct {
	PartID    string   `json:"part_id"`
	Quantity  float64  `json:"quantity"`
	UnitPrice float64  `json:"unit_price"`
	TaxRate   float64  `json:"tax_rate"`
	MinStock  *float64 `json:"min_stock"`
}

type createPurchaseRequest struct {
	InvoiceNumber string                `json:"invoice_number"`
	SupplierID    string                `json:"supplier_id"`
	WarehouseID   string                `json:"warehouse_id"`
	Items         []purchaseItemRequest `json:"items"`
}

func (h *BillingHandler) CreatePurchase(w http.ResponseWriter, r *http.Request) {
	var req createPurchaseRequest
	if err := rest.Decode(r, &req); err != nil {
		rest.Error(w, err)
		return
	}

	items := make([]dto.PurchaseItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, dto.PurchaseItemInput{
			PartID:    item.PartID,
			Quantity:  item.Quantity,
			UnitPrice: decimal.NewFromFloat(item.UnitPrice),
			TaxRate:   item.TaxRate,
			MinStock:  item.MinStock,
		})
	}

	invoice, err := h.uc.CreatePurchase(r.Context(), &dto.CreatePurchaseInput{
		TenantID:      auth.GetTenantID(r.Context()),
		InvoiceNumber: req.InvoiceNumber,
		SupplierID:    req.SupplierID,
		WarehouseID:   req.WarehouseID,
		Items:         items,
		UserID:        auth.GetUserID(r.Context()),
	})
	if err != nil {
		rest.Error(w, err)
		return
	}
	rest.JSON(w, http.StatusCreated, invoice)
}

func (h *BillingHandler) ListFinancialAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.uc.ListFinancialAlerts(r.Context(), auth.GetTenantID(r.Context()))
	if err != nil {
		rest.Error(w, err)
		return
	}
	rest.JSON(w, http.StatusOK, alerts)
}
