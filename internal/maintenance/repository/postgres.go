package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fekuna/fleetops-maintenance-service/internal/model"
	"github.com/fekuna/fleetops-maintenance-service/pkg/postgres"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) q(ctx context.Context) postgres.Querier {
	return postgres.QuerierFrom(ctx, r.DB)
}

func (r *PGRepository) GetVehicle(ctx context.Context, tenantID, vehicleID string) (*model.Vehicle, error) {
	var v model.Vehicle
	err := sqlx.GetContext(ctx, r.q(ctx), &v,
		`SELECT * FROM vehicles WHERE tenant_id = $1 AND id = $2`, tenantID, vehicleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

func (r *PGRepository) UpdateVehicle(ctx context.Context, v *model.Vehicle) error {
	query := `
        UPDATE vehicles SET
            current_km = :current_km,
            last_odometer_at = :last_odometer_at,
            is_active = :is_active,
            updated_at = :updated_at
        WHERE tenant_id = :tenant_id AND id = :id
    `
	_, err := sqlx.NamedExecContext(ctx, r.q(ctx), query, v)
	return err
}

func (r *PGRepository) GetActiveProgram(ctx context.Context, tenantID, vehicleID string) (*model.MaintenanceProgram, error) {
	var p model.MaintenanceProgram
	err := sqlx.GetContext(ctx, r.q(ctx), &p, `
        SELECT * FROM maintenance_programs
        WHERE tenant_id = $1 AND vehicle_id = $2 AND is_active = true
        LIMIT 1`, tenantID, vehicleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *PGRepository) ListPendingScheduledItems(ctx context.Context, tenantID, programID string) ([]model.MaintenanceProgramItem, error) {
	var items []model.MaintenanceProgramItem
	err := sqlx.SelectContext(ctx, r.q(ctx), &items, `
        SELECT * FROM maintenance_program_items
        WHERE tenant_id = $1 AND program_id = $2
          AND status = $3 AND scheduled_km IS NOT NULL
        ORDER BY scheduled_km ASC`, tenantID, programID, model.ProgramItemPending)
	return items, err
}

func (r *PGRepository) GetProgramItem(ctx context.Context, tenantID, itemID string) (*model.MaintenanceProgramItem, error) {
	var item model.MaintenanceProgramItem
	err := sqlx.GetContext(ctx, r.q(ctx), &item,
		`SELECT * FROM maintenance_program_items WHERE tenant_id = $1 AND id = $2`, tenantID, itemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *PGRepository) UpdateProgramItem(ctx context.Context, item *model.MaintenanceProgramItem) error {
	query := `
        UPDATE maintenance_program_items SET
            status = :status,
            scheduled_km = :scheduled_km,
            estimated_cost = :estimated_cost,
            executed_km = :executed_km,
            executed_date = :executed_date,
            updated_at = :updated_at
        WHERE tenant_id = :tenant_id AND id = :id
    `
	_, err := sqlx.NamedExecContext(ctx, r.q(ctx), query, item)
	return err
}

func (r *PGRepository) GetOpenAlertByProgramItem(ctx context.Context, tenantID, programItemID string) (*model.MaintenanceAlert, error) {
	var a model.MaintenanceAlert
	err := sqlx.GetContext(ctx, r.q(ctx), &a, `
        SELECT * FROM maintenance_alerts
        WHERE tenant_id = $1 AND program_item_id = $2 AND status = ANY($3)
        LIMIT 1`, tenantID, programItemID, pq.Array(model.OpenAlertStatuses))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *PGRepository) GetOpenAlertByID(ctx context.Context, tenantID, alertID string) (*model.MaintenanceAlert, error) {
	var a model.MaintenanceAlert
	err := sqlx.GetContext(ctx, r.q(ctx), &a, `
        SELECT * FROM maintenance_alerts
        WHERE tenant_id = $1 AND id = $2 AND status = ANY($3)
        FOR UPDATE`, tenantID, alertID, pq.Array(model.OpenAlertStatuses))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *PGRepository) ListOpenAlerts(ctx context.Context, tenantID string) ([]model.MaintenanceAlert, error) {
	var alerts []model.MaintenanceAlert
	err := sqlx.SelectContext(ctx, r.q(ctx), &alerts, `
        SELECT * FROM maintenance_alerts
        WHERE tenant_id = $1 AND status = ANY($2)
        ORDER BY priority_score DESC`, tenantID, pq.Array(model.OpenAlertStatuses))
	return alerts, err
}

func (r *PGRepository) ListOpenAlertsByWorkOrder(ctx context.Context, tenantID, workOrderID string) ([]model.MaintenanceAlert, error) {
	var alerts []model.MaintenanceAlert
	err := sqlx.SelectContext(ctx, r.q(ctx), &alerts, `
        SELECT * FROM maintenance_alerts
        WHERE tenant_id = $1 AND work_order_id = $2 AND status = ANY($3)`,
		tenantID, workOrderID, pq.Array(model.OpenAlertStatuses))
	return alerts, err
}

func (r *PGRepository) CreateAlert(ctx context.Context, alert *model.MaintenanceAlert) error {
	query := `
        INSERT INTO maintenance_alerts (
            id, tenant_id, vehicle_id, program_item_id, work_order_id,
            work_order_created_at, current_km, current_km_at_creation,
            scheduled_km, km_to_maintenance, level, type, priority,
            priority_score, status, estimated_cost, closed_at, was_on_time,
            response_time_minutes, completion_time_hours, cost_variance,
            created_at, updated_at
        ) VALUES (
            :id, :tenant_id, :vehicle_id, :program_item_id, :work_order_id,
            :work_order_created_at, :current_km, :current_km_at_creation,
            :scheduled_km, :km_to_maintenance, :level, :type, :priority,
            :priority_score, :status, :estimated_cost, :closed_at, :was_on_time,
            :response_time_minutes, :completion_time_hours, :cost_variance,
            :created_at, :updated_at
        )
    `
	// The partial unique index on (program_item_id) WHERE status in open
	// states is what prevents duplicate open alerts under race.
	_, err := sqlx.NamedExecContext(ctx, r.q(ctx), query, alert)
	return err
}

func (r *PGRepository) UpdateAlert(ctx context.Context, alert *model.MaintenanceAlert) error {
	query := `
        UPDATE maintenance_alerts SET
            work_order_id = :work_order_id,
            work_order_created_at = :work_order_created_at,
            current_km = :current_km,
            scheduled_km = :scheduled_km,
            km_to_maintenance = :km_to_maintenance,
            level = :level,
            type = :type,
            priority = :priority,
            priority_score = :priority_score,
            status = :status,
            closed_at = :closed_at,
            was_on_time = :was_on_time,
            response_time_minutes = :response_time_minutes,
            completion_time_hours = :completion_time_hours,
            cost_variance = :cost_variance,
            updated_at = :updated_at
        WHERE tenant_id = :tenant_id AND id = :id
    `
	_, err := sqlx.NamedExecContext(ctx, r.q(ctx), query, alert)
	return err
}
