package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"facturabot/internal/common"
	"facturabot/internal/entity"
)

// InvoiceRepository persists customers and their invoices.
type InvoiceRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewInvoiceRepository(db *DB, logger *slog.Logger) *InvoiceRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &InvoiceRepository{db: db, logger: logger}
}

// FindOrCreateCustomer returns the customer with the given RFC, creating the
// row on first contact. RFC is assumed to be validated and upper-cased.
func (r *InvoiceRepository) FindOrCreateCustomer(ctx context.Context, rfc string) (*entity.Customer, error) {
	row := r.db.QueryRowContext(ctx,
		r.db.Rebind(`SELECT id, rfc, nombre, created_at FROM clientes WHERE rfc = ?`), rfc)
	c, err := scanCustomer(row)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, common.NewAppError("DB_ERROR", "failed to scan customer row", err)
	}

	now := time.Now().UTC()
	row = r.db.QueryRowContext(ctx,
		r.db.Rebind(`INSERT INTO clientes (rfc, nombre, created_at) VALUES (?, ?, ?) RETURNING id`),
		rfc, "", now.Format(time.RFC3339))
	var id int64
	if err := row.Scan(&id); err != nil {
		return nil, common.NewAppError("DB_ERROR", "failed to insert customer", err)
	}
	r.logger.Info("registered new customer", "rfc", rfc)
	return &entity.Customer{ID: id, RFC: rfc, CreatedAt: now}, nil
}

// CreateInvoice inserts one invoice row per priced line item and returns it
// with its assigned id.
func (r *InvoiceRepository) CreateInvoice(ctx context.Context, inv entity.Invoice) (*entity.Invoice, error) {
	if inv.IssuedAt.IsZero() {
		inv.IssuedAt = time.Now().UTC()
	}
	row := r.db.QueryRowContext(ctx,
		r.db.Rebind(`INSERT INTO facturas (cliente_id, producto, cantidad, precio_unitario, total, fecha_emision, documento_path)
			VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`),
		inv.CustomerID, inv.ProductName, inv.Quantity,
		inv.UnitPrice.String(), inv.Total.String(),
		inv.IssuedAt.Format(time.RFC3339), inv.DocumentPath)
	if err := row.Scan(&inv.ID); err != nil {
		return nil, common.NewAppError("DB_ERROR", "failed to insert invoice", err)
	}
	return &inv, nil
}

// CreateInvoiceBatch inserts all rows of one billed message inside a single
// transaction, so a mid-batch failure leaves no partial invoice behind.
func (r *InvoiceRepository) CreateInvoiceBatch(ctx context.Context, invoices []entity.Invoice) ([]entity.Invoice, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.NewAppError("DB_ERROR", "failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := r.db.Rebind(`INSERT INTO facturas (cliente_id, producto, cantidad, precio_unitario, total, fecha_emision, documento_path)
		VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`)
	out := make([]entity.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if inv.IssuedAt.IsZero() {
			inv.IssuedAt = time.Now().UTC()
		}
		row := tx.QueryRowContext(ctx, query,
			inv.CustomerID, inv.ProductName, inv.Quantity,
			inv.UnitPrice.String(), inv.Total.String(),
			inv.IssuedAt.Format(time.RFC3339), inv.DocumentPath)
		if err := row.Scan(&inv.ID); err != nil {
			return nil, common.NewAppError("DB_ERROR", "failed to insert invoice", err)
		}
		out = append(out, inv)
	}
	if err := tx.Commit(); err != nil {
		return nil, common.NewAppError("DB_ERROR", "failed to commit invoices", err)
	}
	return out, nil
}

// ListByRFC returns all invoices issued to the customer with the given RFC,
// newest first.
func (r *InvoiceRepository) ListByRFC(ctx context.Context, rfc string) ([]entity.Invoice, error) {
	rows, err := r.db.QueryContext(ctx,
		r.db.Rebind(`SELECT f.id, f.cliente_id, f.producto, f.cantidad, f.precio_unitario, f.total, f.fecha_emision, f.documento_path
			FROM facturas f JOIN clientes c ON c.id = f.cliente_id
			WHERE c.rfc = ? ORDER BY f.id DESC`), rfc)
	if err != nil {
		return nil, common.NewAppError("DB_ERROR", "failed to list invoices", err)
	}
	defer rows.Close()

	var invoices []entity.Invoice
	for rows.Next() {
		var inv entity.Invoice
		var unitPrice, total, issuedAt string
		if err := rows.Scan(&inv.ID, &inv.CustomerID, &inv.ProductName, &inv.Quantity,
			&unitPrice, &total, &issuedAt, &inv.DocumentPath); err != nil {
			return nil, common.NewAppError("DB_ERROR", "failed to scan invoice row", err)
		}
		if inv.UnitPrice, err = decimal.NewFromString(unitPrice); err != nil {
			return nil, common.NewAppError("DB_ERROR", "invalid stored unit price", err)
		}
		if inv.Total, err = decimal.NewFromString(total); err != nil {
			return nil, common.NewAppError("DB_ERROR", "invalid stored total", err)
		}
		if inv.IssuedAt, err = time.Parse(time.RFC3339, issuedAt); err != nil {
			return nil, common.NewAppError("DB_ERROR", "invalid stored issue date", err)
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

func scanCustomer(row *sql.Row) (*entity.Customer, error) {
	var c entity.Customer
	var createdAt string
	if err := row.Scan(&c.ID, &c.RFC, &c.Name, &createdAt); err != nil {
		return nil, err
	}
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		c.CreatedAt = t
	}
	return &c, nil
}
