// Package billing holds the rate arithmetic behind every invoice: clock
// parsing, elapsed-duration calculation, and the derived cost fields.
package billing

import "math"

// Totals derives the monetary fields of an invoice from its duration, rate
// and amount received.
//
// The total is rounded to the nearest whole currency unit here, at the
// moment of record creation or edit, and is never re-rounded afterwards:
// re-running Totals on a stored invoice's own duration and rate must
// reproduce its stored total exactly.
//
// The pending amount is deliberately not clamped at zero; a negative value
// records an overpayment.
func Totals(durationMinutes int, ratePerMinute, amountReceived float64) (totalCost, amountPending float64) {
	totalCost = math.Round(float64(durationMinutes) * ratePerMinute)
	amountPending = totalCost - amountReceived
	return totalCost, amountPending
}
