package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"hardware-backoffice/internal/money"
	orders "hardware-backoffice/internal/orders/domain"
)

// OrderRepository reads and writes orders. Nullable monetary columns
// and the joined customer fields are normalized here, before rows reach
// ledger or schedule logic.
type OrderRepository struct {
	db    *sql.DB
	table string
}

// NewOrderRepository constructs a repository.
func NewOrderRepository(db *sql.DB, opts ...OrderRepositoryOption) *OrderRepository {
	repo := &OrderRepository{db: db, table: "orders"}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// OrderRepositoryOption configures the repository.
type OrderRepositoryOption func(*OrderRepository)

// WithOrderTable overrides the default table.
func WithOrderTable(table string) OrderRepositoryOption {
	return func(repo *OrderRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

const orderColumns = `
o.id, o.customer_id, COALESCE(c.full_name, ''), COALESCE(o.invoice_code, ''),
o.status, o.created_at, o.total, o.grand_total_with_interest,
o.shipping_fee, o.sales_tax, o.payment_terms, o.term_amount`

// GetByID loads one order with its joined customer fields.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (orders.Order, error) {
	if r == nil || r.db == nil {
		return orders.Order{}, errors.New("order repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT `+orderColumns+`
FROM `+r.table+` o
LEFT JOIN customers c ON c.id = o.customer_id
WHERE o.id = $1
LIMIT 1`, id)
	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return orders.Order{}, orders.ErrNotFound
		}
		return orders.Order{}, err
	}
	return order, nil
}

// ListCompletedBetween returns completed orders created within
// [start, end], ordered by creation time. Zero bounds mean unbounded.
func (r *OrderRepository) ListCompletedBetween(ctx context.Context, start, end time.Time) ([]orders.Order, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("order repo: nil db")
	}
	query := `
SELECT ` + orderColumns + `
FROM ` + r.table + ` o
LEFT JOIN customers c ON c.id = o.customer_id
WHERE o.status = $1
  AND ($2::timestamptz IS NULL OR o.created_at >= $2)
  AND ($3::timestamptz IS NULL OR o.created_at <= $3)
ORDER BY o.created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, orders.StatusCompleted, nullTime(start), nullTime(end))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []orders.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, order)
	}
	return result, rows.Err()
}

// UpdateStatus applies a status transition.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id, to string) error {
	if r == nil || r.db == nil {
		return errors.New("order repo: nil db")
	}
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !orders.ValidTransition(current.Status, to) {
		return orders.ErrBadTransition
	}
	_, err = r.db.ExecContext(ctx, `
UPDATE `+r.table+` SET status = $2, updated_at = NOW() WHERE id = $1`, id, to)
	return err
}

// UpdateTotals mutates monetary fields. Completed orders are immutable:
// the guarded statement refuses the write and the caller gets
// ErrCompletedImmutable.
func (r *OrderRepository) UpdateTotals(ctx context.Context, id string, grandTotal, shippingFee, salesTax float64) error {
	if r == nil || r.db == nil {
		return errors.New("order repo: nil db")
	}
	res, err := r.db.ExecContext(ctx, `
UPDATE `+r.table+`
SET grand_total_with_interest = $2, shipping_fee = $3, sales_tax = $4, updated_at = NOW()
WHERE id = $1 AND status <> $5`, id, grandTotal, shippingFee, salesTax, orders.StatusCompleted)
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
		return orders.ErrCompletedImmutable
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (orders.Order, error) {
	var (
		order      orders.Order
		total      sql.NullFloat64
		grandTotal sql.NullFloat64
		shipping   sql.NullFloat64
		tax        sql.NullFloat64
		terms      sql.NullInt64
		termAmount sql.NullFloat64
	)
	err := row.Scan(
		&order.ID, &order.CustomerID, &order.CustomerName, &order.InvoiceCode,
		&order.Status, &order.CreatedAt, &total, &grandTotal,
		&shipping, &tax, &terms, &termAmount,
	)
	if err != nil {
		return orders.Order{}, err
	}
	order.Total = money.Round2(total.Float64)
	order.GrandTotalWithInterest = money.Round2(grandTotal.Float64)
	order.ShippingFee = money.Round2(shipping.Float64)
	order.SalesTax = money.Round2(tax.Float64)
	order.PaymentTerms = int(terms.Int64)
	order.TermAmount = money.Round2(termAmount.Float64)
	return order, nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
