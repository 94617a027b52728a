package pipeline

import (
	"time"

	"github.com/andresuchdata/stockpilot/internal/domain"
)

// PlanRestocks builds a restock request for every REORDER or CRITICAL product,
// preserving the urgency order of items.
func PlanRestocks(items []domain.AnalyzedProduct, now time.Time) []domain.RestockRequest {
	requests := make([]domain.RestockRequest, 0)
	for _, item := range items {
		if !item.NeedsRestock() {
			continue
		}
		qty := item.RestockQuantity()
		if qty <= 0 {
			continue
		}
		requests = append(requests, domain.RestockRequest{
			ProductID:   item.ID,
			Scope:       item.Scope,
			Quantity:    qty,
			Status:      item.Status,
			RequestedAt: now,
		})
	}
	return requests
}

// FilterAlerts returns the products that are not OPTIMAL.
func FilterAlerts(items []domain.AnalyzedProduct) []domain.AnalyzedProduct {
	alerts := make([]domain.AnalyzedProduct, 0)
	for _, item := range items {
		if item.Status != domain.StatusOptimal {
			alerts = append(alerts, item)
		}
	}
	return alerts
}
