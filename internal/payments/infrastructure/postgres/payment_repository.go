package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"hardware-backoffice/internal/money"
	payments "hardware-backoffice/internal/payments/domain"
)

// PaymentRepository reads and writes payments.
type PaymentRepository struct {
	db    *sql.DB
	table string
}

// NewPaymentRepository constructs a repository.
func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db, table: "payments"}
}

// Insert stores a new payment in pending status and returns it with its
// generated id.
func (r *PaymentRepository) Insert(ctx context.Context, p payments.Payment) (payments.Payment, error) {
	if r == nil || r.db == nil {
		return payments.Payment{}, errors.New("payment repo: nil db")
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Status == "" {
		p.Status = payments.StatusPending
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO `+r.table+` (id, order_id, customer_id, amount, method, bank, reference, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.OrderID, p.CustomerID, p.Amount, p.Method, p.Bank, p.Reference, p.Status, p.CreatedAt)
	if err != nil {
		return payments.Payment{}, err
	}
	return p, nil
}

// GetByID loads one payment.
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (payments.Payment, error) {
	if r == nil || r.db == nil {
		return payments.Payment{}, errors.New("payment repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT id, order_id, customer_id, amount, method, bank, reference, status, created_at, received_at
FROM `+r.table+`
WHERE id = $1
LIMIT 1`, id)
	p, err := scanPayment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return payments.Payment{}, payments.ErrNotFound
		}
		return payments.Payment{}, err
	}
	return p, nil
}

// ListByOrder returns an order's payments ordered by creation time.
func (r *PaymentRepository) ListByOrder(ctx context.Context, orderID string) ([]payments.Payment, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("payment repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, order_id, customer_id, amount, method, bank, reference, status, created_at, received_at
FROM `+r.table+`
WHERE order_id = $1
ORDER BY created_at ASC`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []payments.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// SetStatus transitions a payment out of pending. receivedAt is stored
// only when the new status is received.
func (r *PaymentRepository) SetStatus(ctx context.Context, id, status string, receivedAt time.Time) error {
	if r == nil || r.db == nil {
		return errors.New("payment repo: nil db")
	}
	var received sql.NullTime
	if status == payments.StatusReceived && !receivedAt.IsZero() {
		received = sql.NullTime{Time: receivedAt.UTC(), Valid: true}
	}
	res, err := r.db.ExecContext(ctx, `
UPDATE `+r.table+`
SET status = $2, received_at = COALESCE($3, received_at)
WHERE id = $1 AND status = $4`, id, status, received, payments.StatusPending)
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
		return payments.ErrAlreadySettled
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPayment(row rowScanner) (payments.Payment, error) {
	var (
		p        payments.Payment
		amount   sql.NullFloat64
		bank     sql.NullString
		ref      sql.NullString
		received sql.NullTime
	)
	err := row.Scan(&p.ID, &p.OrderID, &p.CustomerID, &amount, &p.Method, &bank, &ref, &p.Status, &p.CreatedAt, &received)
	if err != nil {
		return payments.Payment{}, err
	}
	p.Amount = money.Round2(amount.Float64)
	p.Bank = bank.String
	p.Reference = ref.String
	if received.Valid {
		p.ReceivedAt = received.Time
	}
	return p, nil
}
