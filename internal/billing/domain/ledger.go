package billing

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"hardware-backoffice/internal/money"
	orders "hardware-backoffice/internal/orders/domain"
	payments "hardware-backoffice/internal/payments/domain"
	"hardware-backoffice/internal/phtime"
)

// LedgerEntry is one derived debit or credit line with a running balance.
// Entries are never persisted; the ledger is recomputed from order and
// payment rows on every load.
type LedgerEntry struct {
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	Debit       float64   `json:"debit"`
	Credit      float64   `json:"credit"`
	Balance     float64   `json:"balance"`
	Status      string    `json:"status"`
}

// Ledger is the computed view for one order.
type Ledger struct {
	Entries        []LedgerEntry `json:"entries"`
	TotalCredits   float64       `json:"total_credits"`
	CurrentBalance float64       `json:"current_balance"`
}

// BuildLedger folds an order and its payments into a chronologically
// sorted ledger. The fold is pure and deterministic: identical inputs
// always yield an identical ledger, so recomputing on every change
// notification is safe.
//
// Every payment renders as a credit row, but only received payments
// reduce the running balance and count toward TotalCredits.
func BuildLedger(order orders.Order, pays []payments.Payment) Ledger {
	entries := make([]LedgerEntry, 0, len(pays)+1)

	entries = append(entries, LedgerEntry{
		Date:        order.CreatedAt,
		Description: fmt.Sprintf("Invoice %s", order.InvoiceCode),
		Debit:       order.ChargeTotal(),
		Status:      strings.ToUpper(order.Status),
	})

	for _, p := range pays {
		entries = append(entries, LedgerEntry{
			Date:        p.CreatedAt,
			Description: paymentDescription(p),
			Credit:      money.Round2(p.Amount),
			Status:      strings.ToUpper(p.Status),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.Before(entries[j].Date)
	})

	var balance, credits float64
	for i := range entries {
		e := &entries[i]
		balance = money.Round2(balance + e.Debit)
		if e.Credit > 0 && e.Status == strings.ToUpper(payments.StatusReceived) {
			balance = money.Round2(balance - e.Credit)
			credits = money.Round2(credits + e.Credit)
		}
		e.Balance = balance
	}

	ledger := Ledger{Entries: entries, TotalCredits: credits}
	if len(entries) > 0 {
		ledger.CurrentBalance = entries[len(entries)-1].Balance
	}
	return ledger
}

func paymentDescription(p payments.Payment) string {
	parts := []string{"Payment", methodLabel(p.Method)}
	if p.Reference != "" {
		parts = append(parts, "Ref "+p.Reference)
	}
	if p.Bank != "" {
		parts = append(parts, p.Bank)
	}
	parts = append(parts, phtime.FormatDate(p.CreatedAt))
	return strings.Join(parts, " · ")
}

func methodLabel(method string) string {
	switch method {
	case payments.MethodCash:
		return "Cash"
	case payments.MethodDepositSlip:
		return "Deposit Slip"
	case payments.MethodCheque:
		return "Cheque"
	}
	return method
}
