package maintenance

import (
	"context"

	"github.com/fekuna/fleetops-maintenance-service/internal/model"
)

type Repository interface {
	// Vehicles
	GetVehicle(ctx context.Context, tenantID, vehicleID string) (*model.Vehicle, error)
	UpdateVehicle(ctx context.Context, v *model.Vehicle) error

	// Programs
	GetActiveProgram(ctx context.Context, tenantID, vehicleID string) (*model.MaintenanceProgram, error)
	ListPendingScheduledItems(ctx context.Context, tenantID, programID string) ([]model.MaintenanceProgramItem, error)
	GetProgramItem(ctx context.Context, tenantID, itemID string) (*model.MaintenanceProgramItem, error)
	UpdateProgramItem(ctx context.Context, item *model.MaintenanceProgramItem) error

	// Alerts. "Open" means status in PENDING/ACKNOWLEDGED/SNOOZED. The
	// lookups return nil, nil when absent.
	GetOpenAlertByProgramItem(ctx context.Context, tenantID, programItemID string) (*model.MaintenanceAlert, error)
	GetOpenAlertByID(ctx context.Context, tenantID, alertID string) (*model.MaintenanceAlert, error)
	ListOpenAlerts(ctx context.Context, tenantID string) ([]model.MaintenanceAlert, error)
	ListOpenAlertsByWorkOrder(ctx context.Context, tenantID, workOrderID string) ([]model.MaintenanceAlert, error)
	CreateAlert(ctx context.Context, alert *model.MaintenanceAlert) error
	UpdateAlert(ctx context.Context, alert *model.MaintenanceAlert) error
}
