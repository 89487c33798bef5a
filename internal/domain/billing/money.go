// Package billing computes invoice amounts from a job's pricing model and
// aggregates the invoices already issued against a job.
//
// Monetary values are float64 rounded to cents at every multiplication
// boundary, not once at the end. Stored totals must equal the per-line
// figures displayed to the customer, so full-precision summation would be
// wrong here even though it is the more usual accounting practice.
package billing

import "math"

// Round2 rounds to cents, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
