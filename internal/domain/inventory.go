package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RestockRequest asks the inventory layer to order more units of a product.
type RestockRequest struct {
	ID          int64     `json:"id,omitempty" db:"id"`
	ProductID   string    `json:"product_id" db:"product_id"`
	Scope       string    `json:"scope" db:"scope"`
	Quantity    int       `json:"quantity" db:"quantity"`
	Status      Status    `json:"status" db:"status"`
	RequestedAt time.Time `json:"requested_at" db:"requested_at"`
}

// InventoryFilter represents filters for inventory analytics queries
type InventoryFilter struct {
	Scope    string `json:"scope"`
	Status   Status `json:"status"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
}

// StatusCount is the number of products in one status.
type StatusCount struct {
	Status Status `json:"status"`
	Count  int    `json:"count"`
}

// InventorySummary aggregates an analyzed inventory for dashboard cards.
type InventorySummary struct {
	Scope         string          `json:"scope"`
	Date          string          `json:"date"`
	TotalProducts int             `json:"total_products"`
	Statuses      []StatusCount   `json:"statuses"`
	RestockUnits  int             `json:"restock_units"`
	RestockValue  decimal.Decimal `json:"restock_value"`
}
