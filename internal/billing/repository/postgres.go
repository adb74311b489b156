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

func (r *PGRepository) CreateInvoice(ctx context.Context, invoice *model.Invoice) error {
	query := `
        INSERT INTO invoices (
            id, tenant_id, invoice_number, supplier_id, work_order_id,
            purchase_order_id, status, subtotal, tax_total, total,
            approved_by, approved_at, created_at, updated_at
        ) VALUES (
            :id, :tenant_id, :invoice_number, :supplier_id, :work_order_id,
            :purchase_order_id, :status, :subtotal, :tax_total, :total,
            :approved_by, :approved_at, :created_at, :updated_at
        )
    `
	_, err := sqlx.NamedExecContext(ctx, r.q(ctx), query, invoice)
	return err
}

func (r *PGRepository) CreateInvoiceItem(ctx context.Context, item *model.InvoiceItem) error {
	query := `
        INSERT INTO invoice_items (
            id, tenant_id, invoice_id, work_order_item_id, part_id,
            description, quantity, unit_price, tax_rate, total_price,
            created_at, updated_at
        ) VALUES (
            :id, :tenant_id, :invoice_id, :work_order_item_id, :part_id,
            :description, :quantity, :unit_price, :tax_rate, :total_price,
            :created_at, :updated_at
        )
    `
	_, err := sqlx.NamedExecContext(ctx, r.q(ctx), query, item)
	return err
}

func (r *PGRepository) getInvoice(ctx context.Context, query, tenantID, id string) (*model.Invoice, error) {
	var invoice model.Invoice
	err := sqlx.GetContext(ctx, r.q(ctx), &invoice, query, tenantID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &invoice, nil
}

func (r *PGRepository) GetInvoiceByID(ctx context.Context, tenantID, id string) (*model.Invoice, error) {
	return r.getInvoice(ctx,
		`SELECT * FROM invoices WHERE tenant_id = $1 AND id = $2`, tenantID, id)
}

func (r *PGRepository) GetInvoiceByIDForUpdate(ctx context.Context, tenantID, id string) (*model.Invoice, error) {
	return r.getInvoice(ctx,
		`SELECT * FROM invoices WHERE tenant_id = $1 AND id = $2 FOR UPDATE`, tenantID, id)
}

func (r *PGRepository) InvoiceNumberExists(ctx context.Context, tenantID, invoiceNumber string) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, r.q(ctx), &exists,
		`SELECT EXISTS (SELECT 1 FROM invoices WHERE tenant_id = $1 AND invoice_number = $2)`,
		tenantID, invoiceNumber)
	return exists, err
}

func (r *PGRepository) UpdateInvoice(ctx context.Context, invoice *model.Invoice) error {
	query := `
        UPDATE invoices SET
            status = :status,
            subtotal = :subtotal,
            tax_total = :tax_total,
            total = :total,
            approved_by = :approved_by,
            approved_at = :approved_at,
            updated_at = :updated_at
        WHERE tenant_id = :tenant_id AND id = :id
    `
	_, err := sqlx.NamedExecContext(ctx, r.q(ctx), query, invoice)
	return err
}

func (r *PGRepository) ListInvoiceItems(ctx context.Context, tenantID, invoiceID string) ([]model.InvoiceItem, error) {
	items := []model.InvoiceItem{}
	err := sqlx.SelectContext(ctx, r.q(ctx), &items,
		`SELECT * FROM invoice_items WHERE tenant_id = $1 AND invoice_id = $2 ORDER BY created_at`,
		tenantID, invoiceID)
	return items, err
}

func (r *PGRepository) GetPart(ctx context.Context, tenantID, partID string) (*model.MasterPart, error) {
	var part model.MasterPart
	err := sqlx.GetContext(ctx, r.q(ctx), &part,
		`SELECT * FROM master_parts WHERE tenant_id = $1 AND id = $2`, tenantID, partID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &part, nil
}

func (r *PGRepository) UpdatePart(ctx context.Context, part *model.MasterPart) error {
	query := `
        UPDATE master_parts SET
            reference_price = :reference_price,
            updated_at = :updated_at
        WHERE tenant_id = :tenant_id AND id = :id
    `
	_, err := sqlx.NamedExecContext(ctx, r.q(ctx), query, part)
	return err
}

func (r *PGRepository) CreatePriceHistory(ctx context.Context, history *model.PartPriceHistory) error {
	query := `
        INSERT INTO part_price_history (
            id, tenant_id, part_id, supplier_id, invoice_id,
            unit_price, quantity, created_at
        ) VALUES (
            :id, :tenant_id, :part_id, :supplier_id, :invoice_id,
            :unit_price, :quantity, :created_at
        )
    `
	_, err := sqlx.NamedExecContext(ctx, r.q(ctx), query, history)
	return err
}

func (r *PGRepository) GetPurchaseOrderForUpdate(ctx context.Context, tenantID, purchaseOrderID string) (*model.PurchaseOrder, error) {
	var po model.PurchaseOrder
	err := sqlx.GetContext(ctx, r.q(ctx), &po,
		`SELECT * FROM purchase_orders WHERE tenant_id = $1 AND id = $2 FOR UPDATE`,
		tenantID, purchaseOrderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &po, nil
}

func (r *PGRepository) ListPurchaseOrderItems(ctx context.Context, tenantID, purchaseOrderID string) ([]model.PurchaseOrderItem, error) {
	items := []model.PurchaseOrderItem{}
	err := sqlx.SelectContext(ctx, r.q(ctx), &items,
		`SELECT * FROM purchase_order_items WHERE tenant_id = $1 AND purchase_order_id = $2 ORDER BY created_at`,
		tenantID, purchaseOrderID)
	return items, err
}

func (r *PGRepository) UpdatePurchaseOrderItem(ctx context.Context, item *model.PurchaseOrderItem) error {
	query := `
        UPDATE purchase_order_items SET
            status = :status,
            updated_at = :updated_at
        WHERE tenant_id = :tenant_id AND id = :id
    `
	_, err := sqlx.NamedExecContext(ctx, r.q(ctx), query, item)
	return err
}

func (r *PGRepository) UpdatePurchaseOrder(ctx context.Context, po *model.PurchaseOrder) error {
	query := `
        UPDATE purchase_orders SET
            status = :status,
            updated_at = :updated_at
        WHERE tenant_id = :tenant_id AND id = :id
    `
	_, err := sqlx.NamedExecContext(ctx, r.q(ctx), query, po)
	return err
}

func (r *PGRepository) CreateFinancialAlert(ctx context.Context, alert *model.FinancialAlert) error {
	query := `
        INSERT INTO financial_alerts (
            id, tenant_id, severity, status, invoice_id, invoice_item_id,
            work_order_item_id, part_id, expected_price, actual_price,
            deviation, detail, created_at, updated_at
        ) VALUES (
            :id, :tenant_id, :severity, :status, :invoice_id, :invoice_item_id,
            :work_order_item_id, :part_id, :expected_price, :actual_price,
            :deviation, :detail, :created_at, :updated_at
        )
    `
	_, err := sqlx.NamedExecContext(ctx, r.q(ctx), query, alert)
	return err
}

func (r *PGRepository) ListFinancialAlerts(ctx context.Context, tenantID string) ([]model.FinancialAlert, error) {
	alerts := []model.FinancialAlert{}
	err := sqlx.SelectContext(ctx, r.q(ctx), &alerts,
		`SELECT * FROM financial_alerts WHERE tenant_id = $1 ORDER BY created_at DESC`,
		tenantID)
	return alerts, err
}
