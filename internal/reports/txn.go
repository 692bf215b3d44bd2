// Package reports derives transaction-history exports from completed
// orders. Everything here is a pure formatting concern; the "completed
// only" predicate and date filtering happen in the order repository.
package reports

import (
	"strings"

	orders "hardware-backoffice/internal/orders/domain"
	"hardware-backoffice/internal/phtime"
)

// TransactionCode derives the human-facing display code for an order.
// The code is deterministic but only collision tolerant, never used as
// a stored identifier.
func TransactionCode(o orders.Order) string {
	return "TXN-" + o.CreatedAt.In(phtime.Location).Format("20060102") + "-" + idFragment(o.ID)
}

// idFragment takes the first 8 hex characters of the id, uppercased.
// UUID dashes are skipped so the fragment stays dense.
func idFragment(id string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(id) {
		if (r >= '0' && r <= '9') || (r >= 'A' && r <= 'F') {
			b.WriteRune(r)
			if b.Len() == 8 {
				break
			}
		}
	}
	return b.String()
}
