package billing

import (
	"time"

	"hardware-backoffice/internal/money"
	"hardware-backoffice/internal/phtime"
)

// paidEpsilon absorbs floating rounding when comparing paid vs due.
const paidEpsilon = 1e-6

const (
	TermPaid    = "paid"
	TermPending = "pending"
	TermOverdue = "overdue"
)

// Installment is one scheduled partial payment of an order, identified
// by a 1-based term number and a calendar due date.
type Installment struct {
	OrderID    string    `json:"order_id"`
	TermNo     int       `json:"term_no"`
	DueDate    time.Time `json:"due_date"`
	AmountDue  float64   `json:"amount_due"`
	AmountPaid float64   `json:"amount_paid"`
	Status     string    `json:"status"`
}

// TermView is an installment with its derived classification.
type TermView struct {
	Installment
	Classification string `json:"classification"`
}

// NextTerm identifies the lowest unpaid term.
type NextTerm struct {
	TermNo  int  `json:"term_no"`
	Overdue bool `json:"overdue"`
}

// Schedule is the computed installment view for one order.
type Schedule struct {
	Terms     []TermView `json:"terms"`
	TotalDue  float64    `json:"total_due"`
	TotalPaid float64    `json:"total_paid"`
	Remaining float64    `json:"remaining"`
	Next      *NextTerm  `json:"next,omitempty"`
}

// ClassifyTerm derives a term's status for a given "today". A term is
// paid when its stored status says so or the paid amount covers the due
// amount; otherwise overdue when the due date's day is before today's
// day; otherwise pending. Re-evaluating with a later today can only
// move pending to overdue, never backward.
func ClassifyTerm(row Installment, today time.Time) string {
	if row.Status == TermPaid || row.AmountPaid+paidEpsilon >= row.AmountDue {
		return TermPaid
	}
	if phtime.StartOfDay(row.DueDate).Before(phtime.StartOfDay(today)) {
		return TermOverdue
	}
	return TermPending
}

// BuildSchedule classifies each term and computes aggregates and the
// next actionable term. Rows are expected ordered by term number; the
// function is a pure function of rows and today.
func BuildSchedule(rows []Installment, today time.Time) Schedule {
	view := Schedule{Terms: make([]TermView, 0, len(rows))}

	var due, paid float64
	for _, row := range rows {
		classification := ClassifyTerm(row, today)
		view.Terms = append(view.Terms, TermView{Installment: row, Classification: classification})
		due += row.AmountDue
		paid += row.AmountPaid
		if classification != TermPaid && view.Next == nil {
			view.Next = &NextTerm{TermNo: row.TermNo, Overdue: classification == TermOverdue}
		}
	}

	view.TotalDue = money.Round2(due)
	view.TotalPaid = money.Round2(paid)
	remaining := money.Round2(view.TotalDue - view.TotalPaid)
	if remaining < 0 {
		remaining = 0
	}
	view.Remaining = remaining
	return view
}
