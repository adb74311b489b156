package handler

import (
	"net/http"

	"github.com/fekuna/fleetops-maintenance-service/internal/auth"
	"github.com/fekuna/fleetops-maintenance-service/internal/maintenance"
	"github.com/fekuna/fleetops-maintenance-service/internal/maintenance/dto"
	"github.com/fekuna/fleetops-maintenance-service/internal/rest"
	"github.com/fekuna/fleetops-maintenance-service/pkg/logger"
)

type MaintenanceHandler struct {
	uc     maintenance.UseCase
	logger logger.Logger
}

func NewMaintenanceHandler(uc maintenance.UseCase, log logger.Logger) *MaintenanceHandler {
	return &MaintenanceHandler{uc: uc, logger: log}
}

func (h *MaintenanceHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/vehicles/{id}/odometer", h.RecordOdometer)
	mux.HandleFunc("GET /api/v1/alerts", h.ListAlerts)
	mux.HandleFunc("POST /api/v1/alerts/sweep", h.Sweep)
}

type recordOdometerRequest struct {
	Km       float64 `json:"km"`
	DriverID string  `json:"driver_id"`
}

func (h *MaintenanceHandler) RecordOdometer(w http.ResponseWriter, r *http.Request) {
	var req recordOdometerRequest
	if err := rest.Decode(r, &req); err != nil {
		rest.Error(w, err)
		return
	}

	vehicle, err := h.uc.RecordOdometer(r.Context(), &dto.RecordOdometerInput{
		TenantID:  auth.GetTenantID(r.Context()),
		VehicleID: r.PathValue("id"),
		Km:        req.Km,
		DriverID:  req.DriverID,
	})
	if err != nil {
		rest.Error(w, err)
		return
	}
	rest.JSON(w, http.StatusOK, vehicle)
}

func (h *MaintenanceHandler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.uc.ListOpenAlerts(r.Context(), auth.GetTenantID(r.Context()))
	if err != nil {
		rest.Error(w, err)
		return
	}
	rest.JSON(w, http.StatusOK, alerts)
}

func (h *MaintenanceHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	touched, err := h.uc.UpdateAllActiveAlerts(r.Context(), auth.GetTenantID(r.Context()))
	if err != nil {
		rest.Error(w, err)
		return
	}
	rest.JSON(w, http.StatusOK, map[string]int{"updated": touched})
}
