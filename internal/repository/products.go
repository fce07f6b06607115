package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/shopspring/decimal"

	"facturabot/internal/common"
	"facturabot/internal/entity"
)

// ProductRepository reads and writes the product catalog. It satisfies
// catalog.Source.
type ProductRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewProductRepository(db *DB, logger *slog.Logger) *ProductRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProductRepository{db: db, logger: logger}
}

// ListProducts returns the full catalog.
func (r *ProductRepository) ListProducts(ctx context.Context) ([]entity.Product, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, codigo, nombre, precio_unitario FROM productos ORDER BY id`)
	if err != nil {
		return nil, common.NewAppError("DB_ERROR", "failed to list products", err)
	}
	defer rows.Close()

	var products []entity.Product
	for rows.Next() {
		var p entity.Product
		var price string
		if err := rows.Scan(&p.ID, &p.Code, &p.Name, &price); err != nil {
			return nil, common.NewAppError("DB_ERROR", "failed to scan product row", err)
		}
		p.UnitPrice, err = decimal.NewFromString(price)
		if err != nil {
			return nil, common.NewAppError("DB_ERROR", "invalid stored unit price", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// FindByName returns the product with the exact stored name, or ErrNotFound.
func (r *ProductRepository) FindByName(ctx context.Context, name string) (*entity.Product, error) {
	row := r.db.QueryRowContext(ctx, r.db.Rebind(`SELECT id, codigo, nombre, precio_unitario FROM productos WHERE nombre = ?`), name)
	var p entity.Product
	var price string
	err := row.Scan(&p.ID, &p.Code, &p.Name, &price)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, common.NewAppError("DB_ERROR", "failed to scan product row", err)
	}
	p.UnitPrice, err = decimal.NewFromString(price)
	if err != nil {
		return nil, common.NewAppError("DB_ERROR", "invalid stored unit price", err)
	}
	return &p, nil
}

// FindOrCreate returns the product named name, inserting it with unitPrice
// when it does not exist yet. New rows record products the assistant had to
// assume a price for.
func (r *ProductRepository) FindOrCreate(ctx context.Context, name string, unitPrice decimal.Decimal) (*entity.Product, error) {
	p, err := r.FindByName(ctx, name)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	row := r.db.QueryRowContext(ctx,
		r.db.Rebind(`INSERT INTO productos (codigo, nombre, precio_unitario) VALUES (?, ?, ?) RETURNING id`),
		"", name, unitPrice.String())
	var id int64
	if err := row.Scan(&id); err != nil {
		return nil, common.NewAppError("DB_ERROR", "failed to insert product", err)
	}
	r.logger.Info("created catalog product", "name", name, "unit_price", unitPrice.String())
	return &entity.Product{ID: id, Name: name, UnitPrice: unitPrice}, nil
}
