package stock_health

import (
	"math"

	"github.com/andresuchdata/stockpilot/internal/domain"
)

// DemandStats summarises a demand series at full precision.
type DemandStats struct {
	Mean   float64
	StdDev float64
}

// computeStats returns the population mean and standard deviation of series.
func computeStats(series []domain.DemandPoint) DemandStats {
	if len(series) == 0 {
		return DemandStats{}
	}

	n := float64(len(series))
	var sum float64
	for _, p := range series {
		sum += float64(p.Value)
	}
	mean := sum / n

	var sq float64
	for _, p := range series {
		d := float64(p.Value) - mean
		sq += d * d
	}

	return DemandStats{Mean: mean, StdDev: math.Sqrt(sq / n)}
}
