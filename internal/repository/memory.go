package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/andresuchdata/stockpilot/internal/domain"
)

// MemoryRepository is an in-process product store used by the CLI and tests.
type MemoryRepository struct {
	mu        sync.RWMutex
	products  map[string]domain.ProductRecord
	order     []string
	restocks  []domain.RestockRequest
	restockID int64
}

// NewMemoryRepository creates a store seeded with products.
func NewMemoryRepository(products []domain.ProductRecord) *MemoryRepository {
	r := &MemoryRepository{products: make(map[string]domain.ProductRecord)}
	r.put(products)
	return r
}

func (r *MemoryRepository) ListProducts(ctx context.Context, scope string) ([]domain.ProductRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.ProductRecord, 0, len(r.order))
	for _, id := range r.order {
		p := r.products[id]
		if scope != "" && p.Scope != scope {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *MemoryRepository) GetProduct(ctx context.Context, id string) (*domain.ProductRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", id, domain.ErrProductNotFound)
	}
	return &p, nil
}

func (r *MemoryRepository) UpsertProducts(ctx context.Context, products []domain.ProductRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.put(products)
	return nil
}

// put stores products keeping first-insertion order. Callers hold mu.
func (r *MemoryRepository) put(products []domain.ProductRecord) {
	for _, p := range products {
		if _, exists := r.products[p.ID]; !exists {
			r.order = append(r.order, p.ID)
		}
		r.products[p.ID] = p
	}
}

func (r *MemoryRepository) CreateRestockRequests(ctx context.Context, requests []domain.RestockRequest) ([]domain.RestockRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, req := range requests {
		if _, ok := r.products[req.ProductID]; !ok {
			return nil, fmt.Errorf("restock %s: %w", req.ProductID, domain.ErrProductNotFound)
		}
	}

	created := make([]domain.RestockRequest, 0, len(requests))
	for _, req := range requests {
		p := r.products[req.ProductID]
		p.IncomingStock += req.Quantity
		r.products[req.ProductID] = p

		r.restockID++
		req.ID = r.restockID
		r.restocks = append(r.restocks, req)
		created = append(created, req)
	}
	return created, nil
}

// RestockRequests returns every recorded request, newest last.
func (r *MemoryRepository) RestockRequests() []domain.RestockRequest {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := append([]domain.RestockRequest(nil), r.restocks...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

var (
	_ ProductRepository = (*MemoryRepository)(nil)
	_ ProductWriter     = (*MemoryRepository)(nil)
	_ RestockRepository = (*MemoryRepository)(nil)
)
