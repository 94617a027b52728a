package stock_health

import "math"

const (
	// DefaultPrice is used when a product has no price.
	DefaultPrice = 50.0
	// DaysCoverUnbounded is reported when average daily usage is zero.
	DaysCoverUnbounded = 999.0

	serviceLevelZ      = 1.65 // 95% service level
	annualHoldingRate  = 0.40
	daysPerYear        = 365.0
	eoqOverstockFactor = 1.5
)

// InventoryMetrics holds calculated inventory control quantities
type InventoryMetrics struct {
	HoldingCost       float64 // Daily holding cost per unit
	SafetyStock       int     // Buffer for demand variability over the lead time
	ReorderPoint      int     // Lead time demand plus safety stock
	EOQ               int     // Economic order quantity
	EOQReviewRequired bool    // EOQ undefined because holding cost is not positive
	DaysCover         float64 // Days the current stock lasts, or DaysCoverUnbounded
}

// InventoryCalculator derives safety stock, reorder point and EOQ from demand statistics.
type InventoryCalculator struct {
	serviceLevelZ float64
	holdingRate   float64
}

// NewInventoryCalculator creates a calculator for a 95% service level and a
// 40% annual holding cost.
func NewInventoryCalculator() *InventoryCalculator {
	return &InventoryCalculator{
		serviceLevelZ: serviceLevelZ,
		holdingRate:   annualHoldingRate,
	}
}

// Calculate computes all inventory metrics for one product.
func (ic *InventoryCalculator) Calculate(stats DemandStats, profile DemandProfile, price float64, stock int) InventoryMetrics {
	metrics := InventoryMetrics{}
	leadTime := float64(profile.LeadTimeDays)

	// 1. Holding cost per unit per day
	metrics.HoldingCost = price * ic.holdingRate / daysPerYear

	// 2. Safety stock = z × σ × √L
	safetyStock := ic.serviceLevelZ * stats.StdDev * math.Sqrt(leadTime)
	metrics.SafetyStock = int(math.Ceil(math.Max(0, safetyStock)))

	// 3. Reorder point = (Daily usage × Lead time) + Safety stock
	reorderPoint := stats.Mean*leadTime + float64(metrics.SafetyStock)
	metrics.ReorderPoint = int(math.Ceil(math.Max(0, reorderPoint)))

	// 4. EOQ = √(2 × annual demand × order cost / holding cost)
	if metrics.HoldingCost > 0 {
		annualDemand := stats.Mean * daysPerYear
		eoq := math.Sqrt(2 * annualDemand * profile.OrderCost / metrics.HoldingCost)
		metrics.EOQ = int(roundHalfUp(eoq))
	} else {
		metrics.EOQReviewRequired = true
	}

	// 5. Current days of stock cover; unbounded whenever the reported
	// usage rounds to zero
	if roundFloat(stats.Mean, 1) > 0 {
		metrics.DaysCover = roundFloat(float64(stock)/stats.Mean, 1)
	} else {
		metrics.DaysCover = DaysCoverUnbounded
	}

	return metrics
}
