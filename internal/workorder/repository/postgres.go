package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fekuna/fleetops-maintenance-service/internal/model"
	"github.com/fekuna/fleetops-maintenance-service/pkg/postgres"
	"github.com/jmoiron/sqlx"
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

func (r *PGRepository) Create(ctx context.Context, wo *model.WorkOrder) error {
	query := `
        INSERT INTO work_orders (
            id, tenant_id, vehicle_id, description, status, creation_mileage,
            actual_cost, created_at, updated_at
        ) VALUES (
            :id, :tenant_id, :vehicle_id, :description, :status, :creation_mileage,
            :actual_cost, :created_at, :updated_at
        )
    `
	_, err := sqlx.NamedExecContext(ctx, r.q(ctx), query, wo)
	return err
}

func (r *PGRepository) getWorkOrder(ctx context.Context, query, tenantID, id string) (*model.WorkOrder, error) {
	var wo model.WorkOrder
	err := sqlx.GetContext(ctx, r.q(ctx), &wo, query, tenantID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &wo, nil
}

func (r *PGRepository) GetByID(ctx context.Context, tenantID, id string) (*model.WorkOrder, error) {
	return r.getWorkOrder(ctx,
		`SELECT * FROM work_orders WHERE tenant_id = $1 AND id = $2`, tenantID, id)
}

func (r *PGRepository) GetByIDForUpdate(ctx context.Context, tenantID, id string) (*model.WorkOrder, error) {
	return r.getWorkOrder(ctx,
		`SELECT * FROM work_orders WHERE tenant_id = $1 AND id = $2 FOR UPDATE`, tenantID, id)
}

func (r *PGRepository) Update(ctx context.Context, wo *model.WorkOrder) error {
	query := `
        UPDATE work_orders SET
            description = :description,
            status = :status,
            actual_cost = :actual_cost,
            updated_at = :updated_at
        WHERE tenant_id = :tenant_id AND id = :id
    `
	_, err := sqlx.NamedExecContext(ctx, r.q(ctx), query, wo)
	return err
}

func (r *PGRepository) CreateItem(ctx context.Context, item *model.WorkOrderItem) error {
	query := `
        INSERT INTO work_order_items (
            id, tenant_id, work_order_id, program_item_id, part_id,
            inventory_item_id, description, source, closure_type, status,
            quantity, unit_price, total_cost, invoice_number,
            created_at, updated_at
        ) VALUES (
            :id, :tenant_id, :work_order_id, :program_item_id, :part_id,
            :inventory_item_id, :description, :source, :closure_type, :status,
            :quantity, :unit_price, :total_cost, :invoice_number,
            :created_at, :updated_at
        )
    `
	_, err := sqlx.NamedExecContext(ctx, r.q(ctx), query, item)
	return err
}

func (r *PGRepository) getItem(ctx context.Context, query, tenantID, itemID string) (*model.WorkOrderItem, error) {
	var item model.WorkOrderItem
	err := sqlx.GetContext(ctx, r.q(ctx), &item, query, tenantID, itemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *PGRepository) GetItem(ctx context.Context, tenantID, itemID string) (*model.WorkOrderItem, error) {
	return r.getItem(ctx,
		`SELECT * FROM work_order_items WHERE tenant_id = $1 AND id = $2`, tenantID, itemID)
}

func (r *PGRepository) GetItemForUpdate(ctx context.Context, tenantID, itemID string) (*model.WorkOrderItem, error) {
	return r.getItem(ctx,
		`SELECT * FROM work_order_items WHERE tenant_id = $1 AND id = $2 FOR UPDATE`, tenantID, itemID)
}

func (r *PGRepository) UpdateItem(ctx context.Context, item *model.WorkOrderItem) error {
	query := `
        UPDATE work_order_items SET
            program_item_id = :program_item_id,
            part_id = :part_id,
            inventory_item_id = :inventory_item_id,
            description = :description,
            source = :source,
            closure_type = :closure_type,
            status = :status,
            quantity = :quantity,
            unit_price = :unit_price,
            total_cost = :total_cost,
            invoice_number = :invoice_number,
            updated_at = :updated_at
        WHERE tenant_id = :tenant_id AND id = :id
    `
	_, err := sqlx.NamedExecContext(ctx, r.q(ctx), query, item)
	return err
}

func (r *PGRepository) ListItems(ctx context.Context, tenantID, workOrderID string) ([]model.WorkOrderItem, error) {
	var items []model.WorkOrderItem
	err := sqlx.SelectContext(ctx, r.q(ctx), &items, `
        SELECT * FROM work_order_items
        WHERE tenant_id = $1 AND work_order_id = $2
        ORDER BY created_at ASC`, tenantID, workOrderID)
	return items, err
}
