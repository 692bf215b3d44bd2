package postgres

import (
	"context"
	"database/sql"
	"errors"

	billing "hardware-backoffice/internal/billing/domain"
	"hardware-backoffice/internal/money"
)

// InstallmentRepository reads and updates installment rows.
type InstallmentRepository struct {
	db    *sql.DB
	table string
}

// NewInstallmentRepository constructs a repository.
func NewInstallmentRepository(db *sql.DB) *InstallmentRepository {
	return &InstallmentRepository{db: db, table: "order_installments"}
}

// ListByOrder returns installment rows ordered by term number.
func (r *InstallmentRepository) ListByOrder(ctx context.Context, orderID string) ([]billing.Installment, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("installment repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT order_id, term_no, due_date, amount_due, amount_paid, COALESCE(status, 'pending')
FROM `+r.table+`
WHERE order_id = $1
ORDER BY term_no ASC`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []billing.Installment
	for rows.Next() {
		var (
			row  billing.Installment
			due  sql.NullFloat64
			paid sql.NullFloat64
		)
		if err := rows.Scan(&row.OrderID, &row.TermNo, &row.DueDate, &due, &paid, &row.Status); err != nil {
			return nil, err
		}
		row.AmountDue = money.Round2(due.Float64)
		row.AmountPaid = money.Round2(paid.Float64)
		result = append(result, row)
	}
	return result, rows.Err()
}

// Allocate distributes a received amount across the order's unpaid
// terms in term order, marking terms paid as they are covered. Rows are
// locked for the duration so two concurrent receipts cannot double
// allocate.
func (r *InstallmentRepository) Allocate(ctx context.Context, orderID string, amount float64) error {
	if r == nil || r.db == nil {
		return errors.New("installment repo: nil db")
	}
	if amount <= 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, `
SELECT term_no, amount_due, amount_paid
FROM `+r.table+`
WHERE order_id = $1
ORDER BY term_no ASC
FOR UPDATE`, orderID)
	if err != nil {
		return err
	}

	type termRow struct {
		termNo int
		due    float64
		paid   float64
	}
	var terms []termRow
	for rows.Next() {
		var (
			t    termRow
			due  sql.NullFloat64
			paid sql.NullFloat64
		)
		if err := rows.Scan(&t.termNo, &due, &paid); err != nil {
			rows.Close()
			return err
		}
		t.due = due.Float64
		t.paid = paid.Float64
		terms = append(terms, t)
	}
	if err := rows.Close(); err != nil {
		return err
	}
	if err := rows.Err(); err != nil {
		return err
	}

	remaining := amount
	for _, t := range terms {
		if remaining <= 0 {
			break
		}
		open := money.Round2(t.due - t.paid)
		if open <= 0 {
			continue
		}
		applied := remaining
		if applied > open {
			applied = open
		}
		newPaid := money.Round2(t.paid + applied)
		status := billing.TermPending
		if newPaid >= t.due {
			status = billing.TermPaid
		}
		_, err := tx.ExecContext(ctx, `
UPDATE `+r.table+`
SET amount_paid = $3, status = $4
WHERE order_id = $1 AND term_no = $2`, orderID, t.termNo, newPaid, status)
		if err != nil {
			return err
		}
		remaining = money.Round2(remaining - applied)
	}

	return tx.Commit()
}
