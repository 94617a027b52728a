package repository

import (
	"context"

	"github.com/andresuchdata/stockpilot/internal/domain"
)

// ProductRepository reads product records for analysis. An empty scope
// means every product.
type ProductRepository interface {
	ListProducts(ctx context.Context, scope string) ([]domain.ProductRecord, error)
	GetProduct(ctx context.Context, id string) (*domain.ProductRecord, error)
}

// ProductWriter stores imported product records.
type ProductWriter interface {
	UpsertProducts(ctx context.Context, products []domain.ProductRecord) error
}

// RestockRepository records restock requests and increments the incoming
// stock of the affected products.
type RestockRepository interface {
	CreateRestockRequests(ctx context.Context, requests []domain.RestockRequest) ([]domain.RestockRequest, error)
}
