package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ProductRecord is the input to the analytics engine. It is owned by the
// persistence layer; the engine only reads it.
type ProductRecord struct {
	ID            string           `json:"id" db:"id"`
	Scope         string           `json:"scope" db:"scope"`
	Name          string           `json:"name" db:"name"`
	Price         *decimal.Decimal `json:"price,omitempty" db:"price"`
	Quantity      int              `json:"quantity" db:"quantity"`
	IncomingStock int              `json:"incoming_stock" db:"incoming_stock"`
}

// Validate checks the caller-side preconditions of the engine.
func (p ProductRecord) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidProduct)
	}
	if p.Quantity < 0 {
		return fmt.Errorf("%w: product %s has negative quantity %d", ErrInvalidProduct, p.ID, p.Quantity)
	}
	if p.IncomingStock < 0 {
		return fmt.Errorf("%w: product %s has negative incoming stock %d", ErrInvalidProduct, p.ID, p.IncomingStock)
	}
	return nil
}

// DemandPoint is one day of historical or forecast demand.
type DemandPoint struct {
	Date  string `json:"date"`
	Value int    `json:"value"`
}

// AnalyzedProduct is the ephemeral result of analyzing one ProductRecord.
type AnalyzedProduct struct {
	ID                string          `json:"id"`
	Scope             string          `json:"scope,omitempty"`
	Name              string          `json:"name"`
	Stock             int             `json:"stock"`
	IncomingStock     int             `json:"incoming_stock"`
	Price             decimal.Decimal `json:"price"`
	AverageDailyUsage float64         `json:"average_daily_usage"`
	StandardDeviation float64         `json:"standard_deviation"`
	LeadTimeDays      int             `json:"lead_time_days"`
	SafetyStock       int             `json:"safety_stock"`
	ReorderPoint      int             `json:"reorder_point"`
	EOQ               int             `json:"eoq"`
	EOQReviewRequired bool            `json:"eoq_review_required,omitempty"`
	StockoutRisk      int             `json:"stockout_risk"`
	DaysCover         float64         `json:"days_cover"`
	SalesHistory      []DemandPoint   `json:"sales_history"`
	Forecast          []DemandPoint   `json:"forecast"`
	Status            Status          `json:"status"`
	Recommendation    string          `json:"recommendation"`
}

// NeedsRestock reports whether the product should trigger a restock request.
func (a AnalyzedProduct) NeedsRestock() bool {
	return a.Status == StatusCritical || a.Status == StatusReorder
}

// RestockQuantity is the suggested order size: the EOQ, or the shortfall to
// the reorder point when that is larger.
func (a AnalyzedProduct) RestockQuantity() int {
	shortfall := a.ReorderPoint - a.Stock
	if a.EOQ > shortfall {
		return a.EOQ
	}
	return shortfall
}
