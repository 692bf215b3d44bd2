package orders

import "testing"

func TestChargeTotalPrefersStoredGrandTotal(t *testing.T) {
	o := Order{Total: 10000, SalesTax: 1200, GrandTotalWithInterest: 12500, ShippingFee: 300}
	if got := o.ChargeTotal(); got != 12800 {
		t.Fatalf("ChargeTotal = %v, want 12800", got)
	}
}

func TestChargeTotalFallsBackToSubtotalPlusTax(t *testing.T) {
	o := Order{Total: 10000, SalesTax: 0, GrandTotalWithInterest: 0, ShippingFee: 1200}
	if got := o.ChargeTotal(); got != 11200 {
		t.Fatalf("ChargeTotal = %v, want 11200", got)
	}
}

func TestChargeTotalIsRounded(t *testing.T) {
	o := Order{Total: 0.1, SalesTax: 0.2, ShippingFee: 0}
	if got := o.ChargeTotal(); got != 0.3 {
		t.Fatalf("ChargeTotal = %v, want 0.3", got)
	}
}

func TestValidTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{StatusPending, StatusCompleted, true},
		{StatusPending, StatusRejected, true},
		{StatusCompleted, StatusPending, false},
		{StatusRejected, StatusCompleted, false},
		{StatusCompleted, StatusCompleted, true},
	}
	for _, c := range cases {
		if got := ValidTransition(c.from, c.to); got != c.want {
			t.Fatalf("ValidTransition(%s, %s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}
