package payments

import "time"

const (
	StatusPending  = "pending"
	StatusReceived = "received"
	StatusRejected = "rejected"
)

const (
	MethodCash        = "cash"
	MethodDepositSlip = "deposit_slip"
	// MethodCheque survives from the legacy data; new submissions use
	// deposit_slip.
	MethodCheque = "cheque"
)

// Payment is a staff-recorded payment against an order.
type Payment struct {
	ID         string
	OrderID    string
	CustomerID string
	Amount     float64
	Method     string
	Bank       string
	Reference  string
	Status     string
	CreatedAt  time.Time
	ReceivedAt time.Time
}

// CountsTowardBalance reports whether the payment reduces the order
// balance. Only received payments count; pending and rejected payments
// are recorded but excluded from balance math.
func (p Payment) CountsTowardBalance() bool { return p.Status == StatusReceived }

// ValidMethod reports whether a method is accepted on submission.
func ValidMethod(method string) bool {
	switch method {
	case MethodCash, MethodDepositSlip, MethodCheque:
		return true
	}
	return false
}
