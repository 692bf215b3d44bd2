package orders

import (
	"time"

	"hardware-backoffice/internal/money"
)

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusRejected  = "rejected"
)

// Order is a customer order as read from the store. Monetary fields of
// uncertain presence are normalized to zero at the repository boundary.
type Order struct {
	ID                     string
	CustomerID             string
	CustomerName           string
	InvoiceCode            string
	Status                 string
	CreatedAt              time.Time
	Total                  float64
	GrandTotalWithInterest float64
	ShippingFee            float64
	SalesTax               float64
	PaymentTerms           int
	TermAmount             float64
}

// ChargeTotal is the authoritative amount owed for ledger purposes:
// the stored grand total when present and positive, otherwise
// subtotal + tax, plus the shipping fee.
func (o Order) ChargeTotal() float64 {
	base := o.GrandTotalWithInterest
	if base <= 0 {
		base = o.Total + o.SalesTax
	}
	return money.Round2(base + o.ShippingFee)
}

// IsCompleted reports whether the order reached terminal completed state.
func (o Order) IsCompleted() bool { return o.Status == StatusCompleted }

// ValidTransition reports whether a status change is allowed:
// pending may become completed or rejected; terminal states stay put.
func ValidTransition(from, to string) bool {
	if from == to {
		return true
	}
	return from == StatusPending && (to == StatusCompleted || to == StatusRejected)
}
