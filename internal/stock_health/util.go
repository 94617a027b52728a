package stock_health

import (
	"math"
	"time"
)

// roundHalfUp rounds halves towards positive infinity, so 2.5 => 3 and -2.5 => -2.
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}

// roundFloat rounds v to the given number of decimal places.
func roundFloat(v float64, decimals int) float64 {
	if decimals <= 0 {
		return roundHalfUp(v)
	}

	factor := math.Pow(10, float64(decimals))
	return roundHalfUp(v*factor) / factor
}

// calendarDay truncates t to midnight in its own location.
func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
