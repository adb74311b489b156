package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/fleetops-maintenance-service/internal/inventory/dto"
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

func (r *PGRepository) getOne(ctx context.Context, query string, args ...interface{}) (*model.InventoryItem, error) {
	var item model.InventoryItem
	err := sqlx.GetContext(ctx, r.q(ctx), &item, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *PGRepository) GetByPartForUpdate(ctx context.Context, tenantID, partID, warehouseID string) (*model.InventoryItem, error) {
	return r.getOne(ctx, `
        SELECT * FROM inventory_items
        WHERE tenant_id = $1 AND part_id = $2 AND warehouse_id = $3
        FOR UPDATE`, tenantID, partID, warehouseID)
}

func (r *PGRepository) GetByID(ctx context.Context, tenantID, id string) (*model.InventoryItem, error) {
	return r.getOne(ctx,
		`SELECT * FROM inventory_items WHERE tenant_id = $1 AND id = $2`, tenantID, id)
}

func (r *PGRepository) GetByIDForUpdate(ctx context.Context, tenantID, id string) (*model.InventoryItem, error) {
	return r.getOne(ctx,
		`SELECT * FROM inventory_items WHERE tenant_id = $1 AND id = $2 FOR UPDATE`, tenantID, id)
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.InventoryFilters) ([]model.InventoryItem, error) {
	conditions := []string{"tenant_id = :tenant_id"}
	args := map[string]interface{}{"tenant_id": f.TenantID}

	if f.PartID != "" {
		conditions = append(conditions, "part_id = :part_id")
		args["part_id"] = f.PartID
	}
	if f.WarehouseID != "" {
		conditions = append(conditions, "warehouse_id = :warehouse_id")
		args["warehouse_id"] = f.WarehouseID
	}
	if f.LowStock {
		conditions = append(conditions, "quantity <= min_stock")
	}

	query := "SELECT * FROM inventory_items WHERE " + strings.Join(conditions, " AND ") +
		" ORDER BY updated_at DESC"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	query, argList, err := sqlx.Named(query, args)
	if err != nil {
		return nil, err
	}
	q := r.q(ctx)
	query = q.Rebind(query)

	var items []model.InventoryItem
	err = sqlx.SelectContext(ctx, q, &items, query, argList...)
	return items, err
}

func (r *PGRepository) Create(ctx context.Context, item *model.InventoryItem) error {
	query := `
        INSERT INTO inventory_items (
            id, tenant_id, part_id, warehouse_id, quantity, min_stock,
            average_cost, total_value, status, created_at, updated_at
        ) VALUES (
            :id, :tenant_id, :part_id, :warehouse_id, :quantity, :min_stock,
            :average_cost, :total_value, :status, :created_at, :updated_at
        )
    `
	_, err := sqlx.NamedExecContext(ctx, r.q(ctx), query, item)
	return err
}

func (r *PGRepository) Update(ctx context.Context, item *model.InventoryItem) error {
	query := `
        UPDATE inventory_items SET
            quantity = :quantity,
            min_stock = :min_stock,
            average_cost = :average_cost,
            total_value = :total_value,
            status = :status,
            updated_at = :updated_at
        WHERE tenant_id = :tenant_id AND id = :id
    `
	_, err := sqlx.NamedExecContext(ctx, r.q(ctx), query, item)
	return err
}

func (r *PGRepository) LogMovement(ctx context.Context, m *model.InventoryMovement) error {
	query := `
        INSERT INTO inventory_movements (
            id, tenant_id, inventory_item_id, part_id, warehouse_id, type,
            quantity, unit_cost, total_cost, previous_stock, new_stock,
            previous_average_cost, new_average_cost, reference_type,
            reference_id, created_by, created_at
        ) VALUES (
            :id, :tenant_id, :inventory_item_id, :part_id, :warehouse_id, :type,
            :quantity, :unit_cost, :total_cost, :previous_stock, :new_stock,
            :previous_average_cost, :new_average_cost, :reference_type,
            :reference_id, :created_by, :created_at
        )
    `
	_, err := sqlx.NamedExecContext(ctx, r.q(ctx), query, m)
	return err
}

func (r *PGRepository) ListMovements(ctx context.Context, f *dto.MovementFilters) ([]model.InventoryMovement, error) {
	conditions := []string{"tenant_id = :tenant_id"}
	args := map[string]interface{}{"tenant_id": f.TenantID}

	if f.PartID != "" {
		conditions = append(conditions, "part_id = :part_id")
		args["part_id"] = f.PartID
	}
	if f.InventoryItemID != "" {
		conditions = append(conditions, "inventory_item_id = :inventory_item_id")
		args["inventory_item_id"] = f.InventoryItemID
	}
	if f.Type != "" {
		conditions = append(conditions, "type = :type")
		args["type"] = f.Type
	}
	if f.StartDate != nil {
		conditions = append(conditions, "created_at >= :start_date")
		args["start_date"] = *f.StartDate
	}
	if f.EndDate != nil {
		conditions = append(conditions, "created_at <= :end_date")
		args["end_date"] = *f.EndDate
	}

	query := "SELECT * FROM inventory_movements WHERE " + strings.Join(conditions, " AND ") +
		" ORDER BY created_at DESC"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	query, argList, err := sqlx.Named(query, args)
	if err != nil {
		return nil, err
	}
	q := r.q(ctx)
	query = q.Rebind(query)

	var movements []model.InventoryMovement
	err = sqlx.SelectContext(ctx, q, &movements, query, argList...)
	return movements, err
}

func (r *PGRepository) ListMovementsByItem(ctx context.Context, tenantID, inventoryItemID string) ([]model.InventoryMovement, error) {
	var movements []model.InventoryMovement
	err := sqlx.SelectContext(ctx, r.q(ctx), &movements, `
        SELECT * FROM inventory_movements
        WHERE tenant_id = $1 AND inventory_item_id = $2
        ORDER BY created_at ASC`, tenantID, inventoryItemID)
	return movements, err
}
