package dashboard

import "math"

// Trend reports the month-over-month percentage change. A prior month of
// zero cannot divide: zero-to-zero reports 0, zero-to-anything reports a
// fixed 100.
func Trend(prior, current float64) float64 {
	if prior == 0 {
		if current == 0 {
			return 0
		}
		return 100
	}
	return math.Round((current - prior) / prior * 100)
}
