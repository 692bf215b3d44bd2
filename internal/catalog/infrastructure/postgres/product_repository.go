package postgres

import (
	"context"
	"database/sql"
	"errors"

	catalog "hardware-backoffice/internal/catalog/domain"
	"hardware-backoffice/internal/money"
)

// ProductRepository reads and adjusts inventory rows.
type ProductRepository struct {
	db    *sql.DB
	table string
}

// NewProductRepository constructs a repository.
func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db, table: "products"}
}

// List returns all products ordered by sku.
func (r *ProductRepository) List(ctx context.Context) ([]catalog.Product, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("product repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, sku, name, unit_price, stock_qty, updated_at
FROM `+r.table+`
ORDER BY sku ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []catalog.Product
	for rows.Next() {
		var (
			p     catalog.Product
			price sql.NullFloat64
		)
		if err := rows.Scan(&p.ID, &p.SKU, &p.Name, &price, &p.StockQty, &p.UpdatedAt); err != nil {
			return nil, err
		}
		p.UnitPrice = money.Round2(price.Float64)
		result = append(result, p)
	}
	return result, rows.Err()
}

// GetByID loads one product.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (catalog.Product, error) {
	if r == nil || r.db == nil {
		return catalog.Product{}, errors.New("product repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT id, sku, name, unit_price, stock_qty, updated_at
FROM `+r.table+`
WHERE id = $1
LIMIT 1`, id)
	var (
		p     catalog.Product
		price sql.NullFloat64
	)
	if err := row.Scan(&p.ID, &p.SKU, &p.Name, &price, &p.StockQty, &p.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return catalog.Product{}, catalog.ErrNotFound
		}
		return catalog.Product{}, err
	}
	p.UnitPrice = money.Round2(price.Float64)
	return p, nil
}

// AdjustStock changes a product's stock by delta. The guard in the
// UPDATE keeps stock from going negative under concurrent adjustments.
func (r *ProductRepository) AdjustStock(ctx context.Context, id string, delta int) error {
	if r == nil || r.db == nil {
		return errors.New("product repo: nil db")
	}
	res, err := r.db.ExecContext(ctx, `
UPDATE `+r.table+`
SET stock_qty = stock_qty + $2, updated_at = NOW()
WHERE id = $1 AND stock_qty + $2 >= 0`, id, delta)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return catalog.ErrInsufficientStock
	}
	return nil
}
