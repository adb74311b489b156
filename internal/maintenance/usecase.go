package maintenance

import (
	"context"
	"time"

	"github.com/fekuna/fleetops-maintenance-service/internal/maintenance/dto"
	"github.com/fekuna/fleetops-maintenance-service/internal/model"
)

type UseCase interface {
	// RecordOdometer persists the reading and triggers alert generation as a
	// best-effort side channel: alert failures never fail the reading.
	RecordOdometer(ctx context.Context, input *dto.RecordOdometerInput) (*model.Vehicle, error)

	// OnOdometerUpdated re-evaluates the vehicle's pending program items and
	// creates or updates at most one open alert per item.
	OnOdometerUpdated(ctx context.Context, tenantID, vehicleID string, currentKm float64) error

	// CloseAlert finalizes an open alert with timing and cost-variance
	// derivations. Calling it for a closed or unknown alert is a not-found
	// error, never a silent no-op.
	CloseAlert(ctx context.Context, input *dto.CloseAlertInput) (*model.MaintenanceAlert, error)

	// AttachWorkOrder links an open alert to the work order servicing it.
	AttachWorkOrder(ctx context.Context, tenantID, alertID, workOrderID string, workOrderCreatedAt time.Time) error

	// FindAlertForWorkOrderItem resolves the open alert a completed work
	// order item settles: by program-item linkage when the item carries one,
	// otherwise by the work order's single open alert. More than one
	// candidate without a linkage is an integrity error, never an arbitrary
	// pick. Returns nil, nil when no alert applies.
	FindAlertForWorkOrderItem(ctx context.Context, tenantID, workOrderID string, programItemID *string) (*model.MaintenanceAlert, error)

	// CompleteProgramItem marks a scheduled task executed at the given mileage.
	CompleteProgramItem(ctx context.Context, tenantID, programItemID string, executedKm float64) error

	// UpdateAllActiveAlerts is the scheduled sweep reconciling every open
	// alert against its vehicle's current mileage. Returns the number of
	// alerts touched.
	UpdateAllActiveAlerts(ctx context.Context, tenantID string) (int, error)

	ListOpenAlerts(ctx context.Context, tenantID string) ([]model.MaintenanceAlert, error)
}
