package handler

import (
	"net/http"
	"strconv"

	"github.com/fekuna/fleetops-maintenance-service/internal/auth"
	"github.com/fekuna/fleetops-maintenance-service/internal/inventory"
	"github.com/fekuna/fleetops-maintenance-service/internal/inventory/dto"
	"github.com/fekuna/fleetops-maintenance-service/internal/rest"
	"github.com/fekuna/fleetops-maintenance-service/pkg/logger"
)

type InventoryHandler struct {
	uc     inventory.UseCase
	logger logger.Logger
}

func NewInventoryHandler(uc inventory.UseCase, log logger.Logger) *InventoryHandler {
	return &InventoryHandler{uc: uc, logger: log}
}

func (h *InventoryHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/inventory", h.ListItems)
	mux.HandleFunc("GET /api/v1/inventory/{id}", h.GetItem)
	mux.HandleFunc("GET /api/v1/inventory/{id}/replay", h.VerifyReplay)
	mux.HandleFunc("GET /api/v1/inventory/movements", h.ListMovements)
}

func (h *InventoryHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))

	items, err := h.uc.ListItems(r.Context(), &dto.InventoryFilters{
		TenantID:    auth.GetTenantID(r.Context()),
		PartID:      q.Get("part_id"),
		WarehouseID: q.Get("warehouse_id"),
		LowStock:    q.Get("low_stock") == "true",
		Page:        page,
		PageSize:    pageSize,
	})
	if err != nil {
		rest.Error(w, err)
		return
	}
	rest.JSON(w, http.StatusOK, items)
}

func (h *InventoryHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.uc.GetItem(r.Context(), auth.GetTenantID(r.Context()), r.PathValue("id"))
	if err != nil {
		rest.Error(w, err)
		return
	}
	rest.JSON(w, http.StatusOK, item)
}

func (h *InventoryHandler) VerifyReplay(w http.ResponseWriter, r *http.Request) {
	report, err := h.uc.VerifyMovementReplay(r.Context(), auth.GetTenantID(r.Context()), r.PathValue("id"))
	if err != nil {
		rest.Error(w, err)
		return
	}
	rest.JSON(w, http.StatusOK, report)
}

func (h *InventoryHandler) ListMovements(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))

	movements, err := h.uc.ListMovements(r.Context(), &dto.MovementFilters{
		TenantID:        auth.GetTenantID(r.Context()),
		PartID:          q.Get("part_id"),
		InventoryItemID: q.Get("inventory_item_id"),
		Type:            q.Get("type"),
		Page:            page,
		PageSize:        pageSize,
	})
	if err != nil {
		rest.Error(w, err)
		return
	}
	rest.JSON(w, http.StatusOK, movements)
}
