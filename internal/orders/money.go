package orders

import "math"

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

func subtotal(unitPrice float64, quantity int) float64 {
	return roundCents(unitPrice * float64(quantity))
}

// orderTotal sums the per-line subtotals. The result always equals the sum of
// the stored line subtotals.
func orderTotal(subtotals []float64) float64 {
	var total float64
	for _, s := range subtotals {
		total += s
	}
	return roundCents(total)
}
