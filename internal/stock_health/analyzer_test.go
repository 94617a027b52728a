package stock_health

import (
	"fmt"
	"testing"
	"time"

	"github.com/andresuchdata/stockpilot/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedDay = time.Date(2024, time.January, 15, 13, 45, 0, 0, time.UTC)

func fixedAnalyzer() *Analyzer {
	return NewAnalyzer(WithClock(func() time.Time { return fixedDay }))
}

func price(v float64) *decimal.Decimal {
	d := decimal.NewFromFloat(v)
	return &d
}

func values(points []domain.DemandPoint) []int {
	out := make([]int, len(points))
	for i, p := range points {
		out[i] = p.Value
	}
	return out
}

func TestAnalyzeProduct_GoldenVectors(t *testing.T) {
	cases := []struct {
		id           string
		history      []int
		forecast     []int
		avg          float64
		stdDev       float64
		leadTime     int
		safetyStock  int
		reorderPoint int
		eoq          int
		daysCover    float64
	}{
		{
			id: "test-001",
			history: []int{
				2, 3, 2, 4, 2, 3, 2, 3, 1, 2, 2, 2, 2, 3, 2, 3, 1, 2, 3, 2, 1, 1, 1, 1, 1, 2, 3, 2, 1, 2,
				3, 3, 2, 2, 3, 2, 4, 3, 4, 3, 3, 4, 3, 2, 4, 4, 4, 4, 3, 3, 3, 4, 4, 5, 4, 5, 3, 4, 5, 4,
				5, 4, 5, 5, 4, 4, 4, 4, 4, 3, 4, 4, 5, 5, 5, 4, 4, 5, 3, 4, 5, 3, 4, 4, 4, 4, 4, 2, 3, 3,
			},
			forecast:     []int{3, 3, 3, 3, 3, 4, 4, 4, 4, 4, 4, 4, 4, 4},
			avg:          3.2,
			stdDev:       1.16,
			leadTime:     3,
			safetyStock:  4,
			reorderPoint: 14,
			eoq:          328,
			daysCover:    6.3,
		},
		{
			id: "test-002",
			history: []int{
				1, 0, 2, 1, 1, 2, 2, 0, 0, 2, 1, 1, 1, 1, 0, 1, 0, 0, 0, 2, 1, 1, 0, 0, 0, 1, 1, 1, 1, 1,
				0, 1, 0, 0, 0, 1, 1, 2, 1, 0, 1, 2, 1, 2, 1, 2, 1, 1, 0, 1, 2, 1, 1, 1, 2, 2, 2, 2, 3, 2,
				2, 3, 1, 3, 1, 1, 1, 2, 3, 2, 2, 2, 1, 2, 2, 1, 2, 2, 2, 1, 2, 1, 2, 1, 1, 0, 2, 1, 1, 1,
			},
			forecast:     []int{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1},
			avg:          1.2,
			stdDev:       0.8,
			leadTime:     2,
			safetyStock:  2,
			reorderPoint: 5,
			eoq:          354,
			daysCover:    16.5,
		},
	}

	a := fixedAnalyzer()
	for _, tc := range cases {
		t.Run(tc.id, func(t *testing.T) {
			got := a.AnalyzeProduct(domain.ProductRecord{ID: tc.id, Name: tc.id, Price: price(50), Quantity: 20})

			assert.Equal(t, tc.history, values(got.SalesHistory))
			assert.Equal(t, tc.forecast, values(got.Forecast))
			assert.InDelta(t, tc.avg, got.AverageDailyUsage, 1e-9)
			assert.InDelta(t, tc.stdDev, got.StandardDeviation, 1e-9)
			assert.Equal(t, tc.leadTime, got.LeadTimeDays)
			assert.Equal(t, tc.safetyStock, got.SafetyStock)
			assert.Equal(t, tc.reorderPoint, got.ReorderPoint)
			assert.Equal(t, tc.eoq, got.EOQ)
			assert.InDelta(t, tc.daysCover, got.DaysCover, 1e-9)
			assert.Equal(t, domain.StatusOptimal, got.Status)
			assert.Equal(t, 5, got.StockoutRisk)
			assert.Equal(t, "Stock levels healthy.", got.Recommendation)
		})
	}
}

func TestAnalyzeProduct_Deterministic(t *testing.T) {
	a := fixedAnalyzer()
	p := domain.ProductRecord{ID: "prod-42", Name: "Lip Tint", Price: price(89.5), Quantity: 12, IncomingStock: 3}

	first := a.AnalyzeProduct(p)
	second := a.AnalyzeProduct(p)
	assert.Equal(t, first, second)

	// A different day only moves the dates.
	later := NewAnalyzer(WithClock(func() time.Time { return fixedDay.AddDate(0, 3, 0) })).AnalyzeProduct(p)
	assert.Equal(t, values(first.SalesHistory), values(later.SalesHistory))
	assert.Equal(t, values(first.Forecast), values(later.Forecast))
	assert.Equal(t, first.ReorderPoint, later.ReorderPoint)
	assert.Equal(t, first.EOQ, later.EOQ)
	assert.NotEqual(t, first.SalesHistory[0].Date, later.SalesHistory[0].Date)
}

func TestAnalyzeProduct_SeriesShape(t *testing.T) {
	a := fixedAnalyzer()

	for i := 0; i < 200; i++ {
		got := a.AnalyzeProduct(domain.ProductRecord{ID: fmt.Sprintf("shape-%d", i), Quantity: i})

		require.Len(t, got.SalesHistory, HistoryDays)
		require.Len(t, got.Forecast, ForecastDays)
		assert.Equal(t, "2024-01-15", got.SalesHistory[HistoryDays-1].Date)
		assert.Equal(t, "2023-10-18", got.SalesHistory[0].Date)
		assert.Equal(t, "2024-01-16", got.Forecast[0].Date)
		assert.Equal(t, "2024-01-29", got.Forecast[ForecastDays-1].Date)

		series := append(append([]domain.DemandPoint{}, got.SalesHistory...), got.Forecast...)
		for j, point := range series {
			assert.GreaterOrEqual(t, point.Value, 0)
			if j == 0 {
				continue
			}
			prev, err := time.Parse(dateLayout, series[j-1].Date)
			require.NoError(t, err)
			cur, err := time.Parse(dateLayout, point.Date)
			require.NoError(t, err)
			assert.Equal(t, 24*time.Hour, cur.Sub(prev), "dates must be contiguous")
		}

		assert.GreaterOrEqual(t, got.StockoutRisk, 0)
		assert.LessOrEqual(t, got.StockoutRisk, 100)
		assert.GreaterOrEqual(t, got.LeadTimeDays, 1)
		assert.LessOrEqual(t, got.LeadTimeDays, 3)
	}
}

func TestAnalyzeProduct_StockoutIsCritical(t *testing.T) {
	a := fixedAnalyzer()

	for _, id := range []string{"test-001", "test-002", "sku-0012", "anything"} {
		got := a.AnalyzeProduct(domain.ProductRecord{ID: id, Price: price(12), Quantity: 0})
		assert.Equal(t, domain.StatusCritical, got.Status, id)
		assert.Equal(t, 100, got.StockoutRisk, id)
		assert.Equal(t, "IMMEDIATE REORDER REQUIRED. Stockout active.", got.Recommendation, id)
	}
}

func TestAnalyzeProduct_Overstock(t *testing.T) {
	a := fixedAnalyzer()
	p := domain.ProductRecord{ID: "test-001", Price: price(50), Quantity: 1}

	dry := a.AnalyzeProduct(p)
	p.Quantity = dry.ReorderPoint + dry.EOQ*2
	got := a.AnalyzeProduct(p)

	assert.Equal(t, domain.StatusOverstock, got.Status)
	assert.Equal(t, 0, got.StockoutRisk)
}

func TestAnalyzeProduct_Reorder(t *testing.T) {
	got := fixedAnalyzer().AnalyzeProduct(domain.ProductRecord{ID: "test-001", Price: price(50), Quantity: 10})

	assert.Equal(t, domain.StatusReorder, got.Status)
	assert.Equal(t, 29, got.StockoutRisk)
	assert.Contains(t, got.Recommendation, "reorder point of 14")
	assert.Contains(t, got.Recommendation, "Reorder 328 units")
	assert.Equal(t, 328, got.RestockQuantity())
}

func TestAnalyzeProduct_ZeroUsageSentinel(t *testing.T) {
	a := fixedAnalyzer()

	got := a.AnalyzeProduct(domain.ProductRecord{ID: "sku-0012", Price: price(50), Quantity: 5})
	assert.Equal(t, 0.0, got.AverageDailyUsage)
	assert.Equal(t, DaysCoverUnbounded, got.DaysCover)
	assert.Equal(t, 0, got.ReorderPoint)
	assert.Equal(t, 0, got.EOQ)
	assert.Equal(t, domain.StatusOverstock, got.Status)

	for i := 0; i < 500; i++ {
		got := a.AnalyzeProduct(domain.ProductRecord{ID: fmt.Sprintf("sku-%04d", i), Quantity: 7})
		if got.AverageDailyUsage == 0 {
			assert.Equal(t, DaysCoverUnbounded, got.DaysCover, got.ID)
		}
	}
}

func TestAnalyzeProduct_ReportedZeroUsageIsUnbounded(t *testing.T) {
	a := fixedAnalyzer()

	// sparse histories (a handful of units in 90 days) round to 0.0/day
	for i := 0; i < 3000; i++ {
		got := a.AnalyzeProduct(domain.ProductRecord{ID: fmt.Sprintf("p-%d", i), Price: price(50), Quantity: 9})
		if got.AverageDailyUsage == 0 {
			assert.Equal(t, DaysCoverUnbounded, got.DaysCover, got.ID)
		} else {
			assert.NotEqual(t, DaysCoverUnbounded, got.DaysCover, got.ID)
		}
	}
}

func TestAnalyzeProduct_EOQDecreasesWithPrice(t *testing.T) {
	a := fixedAnalyzer()
	prices := []float64{1, 10, 50, 100, 1000}
	want := []int{2320, 734, 328, 232, 73}

	prev := -1
	for i, v := range prices {
		got := a.AnalyzeProduct(domain.ProductRecord{ID: "test-001", Price: price(v), Quantity: 20})
		assert.Equal(t, want[i], got.EOQ, "price %v", v)
		if prev >= 0 {
			assert.Less(t, got.EOQ, prev)
		}
		prev = got.EOQ
	}
}

func TestAnalyzeProduct_DefaultPrice(t *testing.T) {
	a := fixedAnalyzer()

	withDefault := a.AnalyzeProduct(domain.ProductRecord{ID: "test-001", Quantity: 20})
	explicit := a.AnalyzeProduct(domain.ProductRecord{ID: "test-001", Price: price(50), Quantity: 20})

	assert.True(t, decimal.NewFromInt(50).Equal(withDefault.Price))
	assert.Equal(t, explicit.EOQ, withDefault.EOQ)
}

func TestAnalyzeProduct_NonPositivePriceFlagsEOQ(t *testing.T) {
	a := fixedAnalyzer()

	for _, v := range []float64{0, -10} {
		got := a.AnalyzeProduct(domain.ProductRecord{ID: "test-001", Price: price(v), Quantity: 20})
		assert.Equal(t, 0, got.EOQ)
		assert.True(t, got.EOQReviewRequired)
		assert.Equal(t, 14, got.ReorderPoint)
	}
}

func TestAnalyzeInventory_SortsByUrgency(t *testing.T) {
	a := fixedAnalyzer()
	overstockQty := func(id string) int {
		dry := a.AnalyzeProduct(domain.ProductRecord{ID: id, Quantity: 1})
		return dry.ReorderPoint + dry.EOQ*2
	}

	products := []domain.ProductRecord{
		{ID: "test-002", Quantity: 50},                         // OPTIMAL
		{ID: "sku-0004", Quantity: 0},                          // CRITICAL
		{ID: "sku-0003", Quantity: overstockQty("sku-0003")},   // OVERSTOCK
		{ID: "test-001", Quantity: 10},                         // REORDER
		{ID: "sku-0001", Quantity: 0},                          // CRITICAL, after sku-0004
	}

	got := a.AnalyzeInventory(products)
	require.Len(t, got, len(products))

	ids := make([]string, len(got))
	statuses := make([]domain.Status, len(got))
	for i, item := range got {
		ids[i] = item.ID
		statuses[i] = item.Status
	}

	assert.Equal(t, []domain.Status{
		domain.StatusCritical, domain.StatusCritical, domain.StatusReorder,
		domain.StatusOverstock, domain.StatusOptimal,
	}, statuses)
	assert.Equal(t, []string{"sku-0004", "sku-0001", "test-001", "sku-0003", "test-002"}, ids)
}
