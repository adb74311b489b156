package usecase

import (
	"context"
	"time"

	"github.com/fekuna/fleetops-maintenance-service/internal/maintenance"
	"github.com/fekuna/fleetops-maintenance-service/internal/maintenance/dto"
	"github.com/fekuna/fleetops-maintenance-service/internal/maintenance/threshold"
	"github.com/fekuna/fleetops-maintenance-service/internal/model"
	"github.com/fekuna/fleetops-maintenance-service/pkg/apperr"
	"github.com/fekuna/fleetops-maintenance-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type maintenanceUseCase struct {
	repo   maintenance.Repository
	logger logger.Logger
	now    func() time.Time
}

func NewMaintenanceUseCase(repo maintenance.Repository, log logger.Logger) maintenance.UseCase {
	return &maintenanceUseCase{
		repo:   repo,
		logger: log,
		now:    time.Now,
	}
}

func (uc *maintenanceUseCase) RecordOdometer(ctx context.Context, input *dto.RecordOdometerInput) (*model.Vehicle, error) {
	if input.VehicleID == "" {
		return nil, apperr.Validation("vehicle id is required")
	}
	if input.Km <= 0 {
		return nil, apperr.Validation("odometer reading must be positive")
	}

	vehicle, err := uc.repo.GetVehicle(ctx, input.TenantID, input.VehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle == nil {
		return nil, apperr.NotFound("vehicle %s not found", input.VehicleID)
	}
	if input.Km < vehicle.CurrentKm {
		return nil, apperr.Validation("odometer reading %0.f is below current %0.f", input.Km, vehicle.CurrentKm)
	}

	now := uc.now()
	vehicle.CurrentKm = input.Km
	vehicle.LastOdometerAt = &now
	vehicle.UpdatedAt = now
	if err := uc.repo.UpdateVehicle(ctx, vehicle); err != nil {
		return nil, err
	}

	// Alert generation must never block the odometer write that triggered it.
	if err := uc.OnOdometerUpdated(ctx, input.TenantID, input.VehicleID, input.Km); err != nil {
		uc.logger.Error("alert generation failed after odometer update",
			zap.String("vehicle_id", input.VehicleID),
			zap.Float64("km", input.Km),
			zap.Error(err),
		)
	}

	return vehicle, nil
}

func (uc *maintenanceUseCase) OnOdometerUpdated(ctx context.Context, tenantID, vehicleID string, currentKm float64) error {
	program, err := uc.repo.GetActiveProgram(ctx, tenantID, vehicleID)
	if err != nil {
		return err
	}
	if program == nil {
		return nil
	}

	items, err := uc.repo.ListPendingScheduledItems(ctx, tenantID, program.ID)
	if err != nil {
		return err
	}

	for i := range items {
		item := &items[i]
		kmToMaintenance := *item.ScheduledKm - currentKm
		if !threshold.InHorizon(kmToMaintenance) {
			continue
		}

		res := threshold.Classify(kmToMaintenance, threshold.InferCategory(item.Name))

		existing, err := uc.repo.GetOpenAlertByProgramItem(ctx, tenantID, item.ID)
		if err != nil {
			return err
		}

		if existing != nil {
			// Update in place, never create a duplicate.
			existing.CurrentKm = currentKm
			existing.ScheduledKm = *item.ScheduledKm
			existing.KmToMaintenance = kmToMaintenance
			existing.Level = res.Level
			existing.Type = res.Type
			existing.Priority = res.Priority
			existing.PriorityScore = res.PriorityScore
			existing.UpdatedAt = uc.now()
			if err := uc.repo.UpdateAlert(ctx, existing); err != nil {
				return err
			}
			continue
		}

		now := uc.now()
		alert := &model.MaintenanceAlert{
			BaseModel:           model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
			TenantID:            tenantID,
			VehicleID:           vehicleID,
			ProgramItemID:       item.ID,
			CurrentKm:           currentKm,
			CurrentKmAtCreation: currentKm,
			ScheduledKm:         *item.ScheduledKm,
			KmToMaintenance:     kmToMaintenance,
			Level:               res.Level,
			Type:                res.Type,
			Priority:            res.Priority,
			PriorityScore:       res.PriorityScore,
			Status:              model.AlertPending,
			EstimatedCost:       item.EstimatedCost,
		}
		if err := uc.repo.CreateAlert(ctx, alert); err != nil {
			return err
		}
	}

	return nil
}

func (uc *maintenanceUseCase) CloseAlert(ctx context.Context, input *dto.CloseAlertInput) (*model.MaintenanceAlert, error) {
	alert, err := uc.repo.GetOpenAlertByID(ctx, input.TenantID, input.AlertID)
	if err != nil {
		return nil, err
	}
	if alert == nil {
		return nil, apperr.NotFound("alert %s not found or already closed", input.AlertID)
	}

	now := uc.now()

	// On-time is judged against the distance last persisted on the alert,
	// not the vehicle's mileage at closure.
	wasOnTime := alert.KmToMaintenance >= 0
	alert.WasOnTime = &wasOnTime

	if alert.WorkOrderCreatedAt != nil {
		response := alert.WorkOrderCreatedAt.Sub(alert.CreatedAt).Minutes()
		alert.ResponseTimeMinutes = &response
		completion := now.Sub(*alert.WorkOrderCreatedAt).Hours()
		alert.CompletionTimeHours = &completion
	}

	if input.ActualCost != nil && alert.EstimatedCost != nil {
		variance := input.ActualCost.Sub(*alert.EstimatedCost)
		alert.CostVariance = &variance
	}

	if input.WorkOrderID != "" {
		alert.WorkOrderID = &input.WorkOrderID
	}
	alert.Status = model.AlertClosed
	alert.ClosedAt = &now
	alert.UpdatedAt = now

	if err := uc.repo.UpdateAlert(ctx, alert); err != nil {
		return nil, err
	}
	return alert, nil
}

func (uc *maintenanceUseCase) AttachWorkOrder(ctx context.Context, tenantID, alertID, workOrderID string, workOrderCreatedAt time.Time) error {
	alert, err := uc.repo.GetOpenAlertByID(ctx, tenantID, alertID)
	if err != nil {
		return err
	}
	if alert == nil {
		return apperr.NotFound("alert %s not found or already closed", alertID)
	}

	alert.WorkOrderID = &workOrderID
	alert.WorkOrderCreatedAt = &workOrderCreatedAt
	alert.UpdatedAt = uc.now()
	return uc.repo.UpdateAlert(ctx, alert)
}

func (uc *maintenanceUseCase) FindAlertForWorkOrderItem(ctx context.Context, tenantID, workOrderID string, programItemID *string) (*model.MaintenanceAlert, error) {
	if programItemID != nil && *programItemID != "" {
		return uc.repo.GetOpenAlertByProgramItem(ctx, tenantID, *programItemID)
	}

	alerts, err := uc.repo.ListOpenAlertsByWorkOrder(ctx, tenantID, workOrderID)
	if err != nil {
		return nil, err
	}
	switch len(alerts) {
	case 0:
		return nil, nil
	case 1:
		return &alerts[0], nil
	default:
		return nil, apperr.CascadeIntegrity("work order %s has %d open alerts and the item carries no program item linkage", workOrderID, len(alerts))
	}
}

func (uc *maintenanceUseCase) CompleteProgramItem(ctx context.Context, tenantID, programItemID string, executedKm float64) error {
	item, err := uc.repo.GetProgramItem(ctx, tenantID, programItemID)
	if err != nil {
		return err
	}
	if item == nil {
		return apperr.CascadeIntegrity("program item %s referenced by cascade does not exist", programItemID)
	}

	now := uc.now()
	item.Status = model.ProgramItemCompleted
	item.ExecutedKm = &executedKm
	item.ExecutedDate = &now
	item.UpdatedAt = now
	return uc.repo.UpdateProgramItem(ctx, item)
}

func (uc *maintenanceUseCase) UpdateAllActiveAlerts(ctx context.Context, tenantID string) (int, error) {
	alerts, err := uc.repo.ListOpenAlerts(ctx, tenantID)
	if err != nil {
		return 0, err
	}

	vehicleKm := map[string]float64{}
	touched := 0

	for i := range alerts {
		alert := &alerts[i]

		km, ok := vehicleKm[alert.VehicleID]
		if !ok {
			vehicle, err := uc.repo.GetVehicle(ctx, tenantID, alert.VehicleID)
			if err != nil {
				return touched, err
			}
			if vehicle == nil {
				uc.logger.Warn("open alert references missing vehicle",
					zap.String("alert_id", alert.ID),
					zap.String("vehicle_id", alert.VehicleID),
				)
				continue
			}
			km = vehicle.CurrentKm
			vehicleKm[alert.VehicleID] = km
		}

		item, err := uc.repo.GetProgramItem(ctx, tenantID, alert.ProgramItemID)
		if err != nil {
			return touched, err
		}
		if item == nil || item.ScheduledKm == nil {
			continue
		}

		now := uc.now()
		kmToMaintenance := *item.ScheduledKm - km
		if !threshold.InHorizon(kmToMaintenance) {
			// Program was rescheduled out of the horizon; the alert no
			// longer applies.
			alert.Status = model.AlertClosed
			alert.ClosedAt = &now
			alert.UpdatedAt = now
			if err := uc.repo.UpdateAlert(ctx, alert); err != nil {
				return touched, err
			}
			touched++
			continue
		}

		res := threshold.Classify(kmToMaintenance, threshold.InferCategory(item.Name))
		alert.CurrentKm = km
		alert.ScheduledKm = *item.ScheduledKm
		alert.KmToMaintenance = kmToMaintenance
		alert.Level = res.Level
		alert.Type = res.Type
		alert.Priority = res.Priority
		alert.PriorityScore = res.PriorityScore
		alert.UpdatedAt = now
		if err := uc.repo.UpdateAlert(ctx, alert); err != nil {
			return touched, err
		}
		touched++
	}

	return touched, nil
}

func (uc *maintenanceUseCase) ListOpenAlerts(ctx context.Context, tenantID string) ([]model.MaintenanceAlert, error) {
	return uc.repo.ListOpenAlerts(ctx, tenantID)
}
