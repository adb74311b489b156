package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fekuna/fleetops-maintenance-service/internal/inventory/dto"
	"github.com/fekuna/fleetops-maintenance-service/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*PGRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPGRepository(sqlx.NewDb(db, "postgres")), mock
}

func itemColumns() []string {
	return []string{
		"id", "tenant_id", "part_id", "warehouse_id", "quantity", "min_stock",
		"average_cost", "total_value", "status", "created_at", "updated_at",
	}
}

func TestGetByID_ScopesByTenant(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT \* FROM inventory_items WHERE tenant_id = \$1 AND id = \$2`).
		WithArgs("t1", "inv-1").
		WillReturnRows(sqlmock.NewRows(itemColumns()).AddRow(
			"inv-1", "t1", "part-1", "wh-1", 150.0, 10.0,
			"60000", "9000000", "ACTIVE", now, now,
		))

	item, err := repo.GetByID(context.Background(), "t1", "inv-1")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, "part-1", item.PartID)
	assert.Equal(t, 150.0, item.Quantity)
	assert.True(t, item.AverageCost.Equal(decimal.NewFromInt(60000)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_AbsentIsNilNil(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT \* FROM inventory_items WHERE tenant_id = \$1 AND id = \$2`).
		WithArgs("t1", "missing").
		WillReturnRows(sqlmock.NewRows(itemColumns()))

	item, err := repo.GetByID(context.Background(), "t1", "missing")
	require.NoError(t, err)
	assert.Nil(t, item)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByPartForUpdate_TakesRowLock(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT \* FROM inventory_items\s+WHERE tenant_id = \$1 AND part_id = \$2 AND warehouse_id = \$3\s+FOR UPDATE`).
		WithArgs("t1", "part-1", "wh-1").
		WillReturnRows(sqlmock.NewRows(itemColumns()).AddRow(
			"inv-1", "t1", "part-1", "wh-1", 5.0, 1.0,
			"10000", "50000", "ACTIVE", now, now,
		))

	item, err := repo.GetByPartForUpdate(context.Background(), "t1", "part-1", "wh-1")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogMovement_InsertsAllAuditColumns(t *testing.T) {
	repo, mock := newMockRepo(t)

	refType := "work_order"
	refID := "wo-1"
	movement := &model.InventoryMovement{
		ID:                  "mov-1",
		TenantID:            "t1",
		InventoryItemID:     "inv-1",
		PartID:              "part-1",
		WarehouseID:         "wh-1",
		Type:                model.MovementConsumption,
		Quantity:            30,
		UnitCost:            decimal.NewFromInt(60000),
		TotalCost:           decimal.NewFromInt(1800000),
		PreviousStock:       150,
		NewStock:            120,
		PreviousAverageCost: decimal.NewFromInt(60000),
		NewAverageCost:      decimal.NewFromInt(60000),
		ReferenceType:       &refType,
		ReferenceID:         &refID,
		CreatedAt:           time.Now(),
	}

	mock.ExpectExec(`INSERT INTO inventory_movements`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.LogMovement(context.Background(), movement))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindAll_LowStockFilter(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT \* FROM inventory_items WHERE tenant_id = \$1 AND quantity <= min_stock ORDER BY updated_at DESC`).
		WithArgs("t1").
		WillReturnRows(sqlmock.NewRows(itemColumns()))

	_, err := repo.FindAll(context.Background(), &dto.InventoryFilters{TenantID: "t1", LowStock: true})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
