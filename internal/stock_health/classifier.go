package stock_health

import (
	"fmt"
	"math"

	"github.com/andresuchdata/stockpilot/internal/domain"
)

const (
	maxReorderRisk = 95
	optimalRisk    = 5
)

// Classification is the urgency tier of a product with its risk estimate.
type Classification struct {
	Status         domain.Status
	StockoutRisk   int
	Recommendation string
}

// Classify assigns a status from stock, reorder point and EOQ. Rules are
// checked in order and the first match wins.
func Classify(stock, reorderPoint, eoq int) Classification {
	switch {
	case stock <= 0:
		return Classification{
			Status:         domain.StatusCritical,
			StockoutRisk:   100,
			Recommendation: "IMMEDIATE REORDER REQUIRED. Stockout active.",
		}
	case stock <= reorderPoint:
		risk := int(roundHalfUp((1 - float64(stock)/float64(reorderPoint)) * 100))
		qty := eoq
		if shortfall := reorderPoint - stock; shortfall > qty {
			qty = shortfall
		}
		return Classification{
			Status:       domain.StatusReorder,
			StockoutRisk: int(math.Min(maxReorderRisk, float64(risk))),
			Recommendation: fmt.Sprintf("Stock is at or below the reorder point of %d units. Reorder %d units now.",
				reorderPoint, qty),
		}
	case float64(stock) > float64(reorderPoint)+float64(eoq)*eoqOverstockFactor:
		return Classification{
			Status:         domain.StatusOverstock,
			StockoutRisk:   0,
			Recommendation: "Overstocked. Reduce upcoming orders or run a promotion to clear excess stock.",
		}
	default:
		return Classification{
			Status:         domain.StatusOptimal,
			StockoutRisk:   optimalRisk,
			Recommendation: "Stock levels healthy.",
		}
	}
}
