package stock_health

import (
	"math"
	"time"

	"github.com/andresuchdata/stockpilot/internal/domain"
)

const (
	HistoryDays  = 90
	ForecastDays = 14

	dateLayout = "2006-01-02"

	historySeasonAmplitude  = 0.4
	forecastSeasonAmplitude = 0.3
	seasonPeriodDivisor     = 15.0
)

// DemandProfile holds the per-product parameters drawn before any daily
// demand. The draw order is fixed: base demand, seasonality, volatility,
// lead time, order cost.
type DemandProfile struct {
	BaseDemand   float64 // Baseline units per day, [0.2, 3.2)
	Seasonal     bool    // Whether a sinusoidal season is applied
	Volatility   float64 // Noise amplitude, [0.3, 1.0)
	LeadTimeDays int     // Days between order and receipt, 1..3
	OrderCost    float64 // Fixed cost per order, [2, 10)
}

func drawProfile(g *Generator) DemandProfile {
	var p DemandProfile
	p.BaseDemand = g.Next()*3 + 0.2
	p.Seasonal = g.Next() > 0.5
	p.Volatility = g.Next()*0.7 + 0.3
	p.LeadTimeDays = 1 + int(math.Floor(g.Next()*3))
	p.OrderCost = g.Next()*8 + 2
	return p
}

func (p DemandProfile) seasonFactor(day int, amplitude float64) float64 {
	if !p.Seasonal {
		return 0
	}
	return math.Sin(float64(day)/seasonPeriodDivisor) * amplitude
}

// synthesizeHistory produces HistoryDays of demand ending at today, oldest first.
// It consumes one draw per day.
func synthesizeHistory(g *Generator, p DemandProfile, today time.Time) []domain.DemandPoint {
	history := make([]domain.DemandPoint, 0, HistoryDays)
	for i := HistoryDays - 1; i >= 0; i-- {
		noise := (g.Next() - 0.5) * 2 * p.Volatility
		demand := roundHalfUp(p.BaseDemand * (1 + p.seasonFactor(i, historySeasonAmplitude) + noise))
		history = append(history, domain.DemandPoint{
			Date:  today.AddDate(0, 0, -i).Format(dateLayout),
			Value: int(math.Max(0, demand)),
		})
	}
	return history
}

// synthesizeForecast produces ForecastDays of expected demand starting tomorrow.
// The forecast is noise free and consumes no draws.
func synthesizeForecast(p DemandProfile, today time.Time) []domain.DemandPoint {
	forecast := make([]domain.DemandPoint, 0, ForecastDays)
	for i := 1; i <= ForecastDays; i++ {
		demand := roundHalfUp(p.BaseDemand * (1 + p.seasonFactor(i, forecastSeasonAmplitude)))
		forecast = append(forecast, domain.DemandPoint{
			Date:  today.AddDate(0, 0, i).Format(dateLayout),
			Value: int(math.Max(0, demand)),
		})
	}
	return forecast
}
