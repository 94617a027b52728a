package stock_health

import (
	"sort"
	"time"

	"github.com/andresuchdata/stockpilot/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Analyzer turns product records into analyzed products. It holds no
// per-product state and is safe for concurrent use.
type Analyzer struct {
	calculator *InventoryCalculator
	now        func() time.Time
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithClock overrides the clock used to date the demand series.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) {
		if now != nil {
			a.now = now
		}
	}
}

// NewAnalyzer creates a new analyzer
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{
		calculator: NewInventoryCalculator(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Today returns the calendar day analyses are anchored to.
func (a *Analyzer) Today() time.Time {
	return calendarDay(a.now())
}

// AnalyzeProduct analyzes a single product as of today.
func (a *Analyzer) AnalyzeProduct(p domain.ProductRecord) domain.AnalyzedProduct {
	return a.AnalyzeProductAt(p, a.Today())
}

// AnalyzeProductAt analyzes a single product with its series anchored at day.
// Only the dates depend on day; every value depends on the id, price and quantity.
func (a *Analyzer) AnalyzeProductAt(p domain.ProductRecord, day time.Time) domain.AnalyzedProduct {
	day = calendarDay(day)
	price := effectivePrice(p.Price)

	gen := NewGenerator(DeriveSeed(p.ID))
	profile := drawProfile(gen)
	history := synthesizeHistory(gen, profile, day)
	forecast := synthesizeForecast(profile, day)

	stats := computeStats(history)
	metrics := a.calculator.Calculate(stats, profile, price.InexactFloat64(), p.Quantity)
	if metrics.EOQReviewRequired {
		log.Warn().
			Str("product_id", p.ID).
			Str("price", price.String()).
			Msg("stock health: eoq undefined for non-positive price, flagged for review")
	}

	class := Classify(p.Quantity, metrics.ReorderPoint, metrics.EOQ)

	log.Debug().
		Str("product_id", p.ID).
		Str("status", string(class.Status)).
		Int("reorder_point", metrics.ReorderPoint).
		Int("eoq", metrics.EOQ).
		Msg("stock health: product analyzed")

	return domain.AnalyzedProduct{
		ID:                p.ID,
		Scope:             p.Scope,
		Name:              p.Name,
		Stock:             p.Quantity,
		IncomingStock:     p.IncomingStock,
		Price:             price,
		AverageDailyUsage: roundFloat(stats.Mean, 1),
		StandardDeviation: roundFloat(stats.StdDev, 2),
		LeadTimeDays:      profile.LeadTimeDays,
		SafetyStock:       metrics.SafetyStock,
		ReorderPoint:      metrics.ReorderPoint,
		EOQ:               metrics.EOQ,
		EOQReviewRequired: metrics.EOQReviewRequired,
		StockoutRisk:      class.StockoutRisk,
		DaysCover:         metrics.DaysCover,
		SalesHistory:      history,
		Forecast:          forecast,
		Status:            class.Status,
		Recommendation:    class.Recommendation,
	}
}

// AnalyzeInventory analyzes every product against the same day and returns
// them sorted by urgency.
func (a *Analyzer) AnalyzeInventory(products []domain.ProductRecord) []domain.AnalyzedProduct {
	day := a.Today()
	results := make([]domain.AnalyzedProduct, 0, len(products))
	for _, p := range products {
		results = append(results, a.AnalyzeProductAt(p, day))
	}
	SortByUrgency(results)
	return results
}

// SortByUrgency orders products CRITICAL, REORDER, OVERSTOCK, OPTIMAL.
// Products with the same status keep their relative order.
func SortByUrgency(items []domain.AnalyzedProduct) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Status.Urgency() < items[j].Status.Urgency()
	})
}

func effectivePrice(price *decimal.Decimal) decimal.Decimal {
	if price == nil {
		return decimal.NewFromFloat(DefaultPrice)
	}
	return *price
}
