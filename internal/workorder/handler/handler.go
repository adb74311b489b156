package handler

import (
	"net/http"

	"github.com/fekuna/fleetops-maintenance-service/internal/auth"
	"github.com/fekuna/fleetops-maintenance-service/internal/model"
	"github.com/fekuna/fleetops-maintenance-service/internal/rest"
	"github.com/fekuna/fleetops-maintenance-service/internal/workorder"
	"github.com/fekuna/fleetops-maintenance-service/internal/workorder/dto"
	"github.com/fekuna/fleetops-maintenance-service/pkg/apperr"
	"github.com/fekuna/fleetops-maintenance-service/pkg/logger"
	"github.com/shopspring/decimal"
)

type WorkOrderHandler struct {
	uc     workorder.UseCase
	logger logger.Logger
}

func NewWorkOrderHandler(uc workorder.UseCase, log logger.Logger) *WorkOrderHandler {
	return &WorkOrderHandler{uc: uc, logger: log}
}

func (h *WorkOrderHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/workorders", h.Create)
	mux.HandleFunc("GET /api/v1/workorders/{id}", h.Get)
	mux.HandleFunc("POST /api/v1/workorders/{id}/items", h.AddItem)
	mux.HandleFunc("POST /api/v1/workorders/{id}/consume", h.Consume)
}

type createWorkOrderRequest struct {
	VehicleID       string   `json:"vehicle_id"`
	Description     string   `json:"description"`
	CreationMileage float64  `json:"creation_mileage"`
	AlertIDs        []string `json:"alert_ids"`
}

func (h *WorkOrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createWorkOrderRequest
	if err := rest.Decode(r, &req); err != nil {
		rest.Error(w, err)
		return
	}

	wo, err := h.uc.CreateWorkOrder(r.Context(), &dto.CreateWorkOrderInput{
		TenantID:        auth.GetTenantID(r.Context()),
		VehicleID:       req.VehicleID,
		Description:     req.Description,
		CreationMileage: req.CreationMileage,
		AlertIDs:        req.AlertIDs,
		UserID:          auth.GetUserID(r.Context()),
	})
	if err != nil {
		rest.Error(w, err)
		return
	}
	rest.JSON(w, http.StatusCreated, wo)
}

func (h *WorkOrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	wo, err := h.uc.GetWorkOrder(r.Context(), auth.GetTenantID(r.Context()), r.PathValue("id"))
	if err != nil {
		rest.Error(w, err)
		return
	}
	rest.JSON(w, http.StatusOK, wo)
}

type addItemRequest struct {
	ProgramItemID   *string `json:"program_item_id"`
	PartID          *string `json:"part_id"`
	Description     string  `json:"description"`
	Source          string  `json:"source"`
	Quantity        float64 `json:"quantity"`
	UnitPrice       float64 `json:"unit_price"`
	InventoryItemID *string `json:"inventory_item_id"`
}

func (h *WorkOrderHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := rest.Decode(r, &req); err != nil {
		rest.Error(w, err)
		return
	}

	source := model.ItemSource(req.Source)
	if source != model.ItemSourceExternal && source != model.ItemSourceInternalStock {
		rest.Error(w, apperr.Validation("source must be EXTERNAL or INTERNAL_STOCK"))
		return
	}

	item, err := h.uc.AddItem(r.Context(), &dto.AddItemInput{
		TenantID:        auth.GetTenantID(r.Context()),
		WorkOrderID:     r.PathValue("id"),
		ProgramItemID:   req.ProgramItemID,
		PartID:          req.PartID,
		Description:     req.Description,
		Source:          source,
		Quantity:        req.Quantity,
		UnitPrice:       decimal.NewFromFloat(req.UnitPrice),
		InventoryItemID: req.InventoryItemID,
		UserID:          auth.GetUserID(r.Context()),
	})
	if err != nil {
		rest.Error(w, err)
		return
	}
	rest.JSON(w, http.StatusCreated, item)
}

type consumeRequest struct {
	Lines []dto.ConsumeBatchLine `json:"lines"`
}

func (h *WorkOrderHandler) Consume(w http.ResponseWriter, r *http.Request) {
	var req consumeRequest
	if err := rest.Decode(r, &req); err != nil {
		rest.Error(w, err)
		return
	}

	movements, err := h.uc.ConsumeForWorkOrder(r.Context(), &dto.ConsumeBatchInput{
		TenantID:    auth.GetTenantID(r.Context()),
		WorkOrderID: r.PathValue("id"),
		Lines:       req.Lines,
		UserID:      auth.GetUserID(r.Context()),
	})
	if err != nil {
		rest.Error(w, err)
		return
	}
	rest.JSON(w, http.StatusOK, movements)
}
