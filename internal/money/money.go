package money

import (
	"math"
	"strconv"
	"strings"
)

// epsilon counters binary floating-point representation error before
// rounding (0.1 + 0.2 must round to 0.3, not 0.30000000000000004).
const epsilon = 1e-9

// Round2 rounds a monetary amount to 2 decimal places, half up.
// Non-finite input coerces to 0 so arithmetic chains stay total.
func Round2(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	if x < 0 {
		return -math.Round((-x+epsilon)*100) / 100
	}
	return math.Round((x+epsilon)*100) / 100
}

// Coalesce resolves an optional amount to a concrete value.
func Coalesce(v *float64) float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0
	}
	return *v
}

// FormatPHP renders an amount as Philippine peso currency with
// thousands separators and 2 decimals, e.g. ₱11,200.00.
func FormatPHP(x float64) string {
	x = Round2(x)
	negative := x < 0
	if negative {
		x = -x
	}
	raw := strconv.FormatFloat(x, 'f', 2, 64)
	whole, frac, _ := strings.Cut(raw, ".")

	var b strings.Builder
	if negative {
		b.WriteString("-")
	}
	b.WriteString("₱")
	for i, digit := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}
