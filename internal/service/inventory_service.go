package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/stockpilot/internal/cache"
	"github.com/andresuchdata/stockpilot/internal/domain"
	"github.com/andresuchdata/stockpilot/internal/pipeline"
	"github.com/andresuchdata/stockpilot/internal/repository"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// InventoryAnalyticsService serves analyzed inventories and turns urgent
// products into restock requests.
type InventoryAnalyticsService struct {
	products     repository.ProductRepository
	restocks     repository.RestockRepository
	runner       *pipeline.Runner
	cache        cache.InventoryCache
	defaultScope string
}

func NewInventoryAnalyticsService(
	products repository.ProductRepository,
	restocks repository.RestockRepository,
	runner *pipeline.Runner,
	cacheImpl cache.InventoryCache,
	defaultScope string,
) *InventoryAnalyticsService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopInventoryCache()
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, pipeline.DefaultRunnerConfig())
	}
	return &InventoryAnalyticsService{
		products:     products,
		restocks:     restocks,
		runner:       runner,
		cache:        cacheImpl,
		defaultScope: strings.TrimSpace(defaultScope),
	}
}

func (s *InventoryAnalyticsService) scope(scope string) string {
	if scope = strings.TrimSpace(scope); scope != "" {
		return scope
	}
	return s.defaultScope
}

// AnalyzeInventory returns every product in scope analyzed and sorted by urgency.
func (s *InventoryAnalyticsService) AnalyzeInventory(ctx context.Context, scope string) ([]domain.AnalyzedProduct, error) {
	scope = s.scope(scope)

	products, err := s.products.ListProducts(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	key := cache.InventoryKey{Scope: scope, Date: s.runner.Today(), Fingerprint: cache.Fingerprint(products)}
	if items, ok, err := s.cache.GetInventory(ctx, key); err == nil && ok {
		return items, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("inventory analytics: cache get failed")
	}

	result, err := s.runner.Run(ctx, products)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetInventory(ctx, key, result.Items); err != nil {
		log.Warn().Err(err).Msg("inventory analytics: cache set failed")
	}

	return result.Items, nil
}

// ListInventory returns one page of the analyzed inventory, optionally
// restricted to a status, along with the total number of matches.
func (s *InventoryAnalyticsService) ListInventory(ctx context.Context, filter domain.InventoryFilter) ([]domain.AnalyzedProduct, int, error) {
	items, err := s.AnalyzeInventory(ctx, filter.Scope)
	if err != nil {
		return nil, 0, err
	}

	if filter.Status != "" {
		filtered := make([]domain.AnalyzedProduct, 0, len(items))
		for _, item := range items {
			if item.Status == filter.Status {
				filtered = append(filtered, item)
			}
		}
		items = filtered
	}

	total := len(items)
	if filter.PageSize <= 0 {
		return items, total, nil
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	start := (page - 1) * filter.PageSize
	if start >= total {
		return []domain.AnalyzedProduct{}, total, nil
	}
	end := start + filter.PageSize
	if end > total {
		end = total
	}

	return items[start:end], total, nil
}

// GetAlerts returns every product that is not OPTIMAL, most urgent first.
func (s *InventoryAnalyticsService) GetAlerts(ctx context.Context, scope string) ([]domain.AnalyzedProduct, error) {
	items, err := s.AnalyzeInventory(ctx, scope)
	if err != nil {
		return nil, err
	}
	return pipeline.FilterAlerts(items), nil
}

// GetSummary counts products per status and totals the suggested restock.
func (s *InventoryAnalyticsService) GetSummary(ctx context.Context, scope string) (*domain.InventorySummary, error) {
	scope = s.scope(scope)
	items, err := s.AnalyzeInventory(ctx, scope)
	if err != nil {
		return nil, err
	}

	counts := make(map[domain.Status]int, len(domain.Statuses))
	summary := &domain.InventorySummary{
		Scope:         scope,
		Date:          s.runner.Today().Format("2006-01-02"),
		TotalProducts: len(items),
		RestockValue:  decimal.Zero,
	}
	for _, item := range items {
		counts[item.Status]++
		if item.NeedsRestock() {
			qty := item.RestockQuantity()
			summary.RestockUnits += qty
			summary.RestockValue = summary.RestockValue.Add(item.Price.Mul(decimal.NewFromInt(int64(qty))))
		}
	}
	for _, status := range domain.Statuses {
		summary.Statuses = append(summary.Statuses, domain.StatusCount{Status: status, Count: counts[status]})
	}

	return summary, nil
}

// AnalyzeProduct analyzes one product by id.
func (s *InventoryAnalyticsService) AnalyzeProduct(ctx context.Context, id string) (*domain.AnalyzedProduct, error) {
	product, err := s.products.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	analyzed, err := s.runner.Analyze(*product)
	if err != nil {
		return nil, err
	}
	return &analyzed, nil
}

// RestockProduct issues a restock request for one REORDER or CRITICAL product.
func (s *InventoryAnalyticsService) RestockProduct(ctx context.Context, id string) (*domain.RestockRequest, error) {
	analyzed, err := s.AnalyzeProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	requests := pipeline.PlanRestocks([]domain.AnalyzedProduct{*analyzed}, time.Now().UTC())
	if len(requests) == 0 {
		return nil, fmt.Errorf("product %s is %s: %w", id, analyzed.Status, domain.ErrNothingToRestock)
	}

	created, err := s.submit(ctx, requests)
	if err != nil {
		return nil, err
	}
	return &created[0], nil
}

// RestockAll issues restock requests for every REORDER or CRITICAL product in scope.
func (s *InventoryAnalyticsService) RestockAll(ctx context.Context, scope string) ([]domain.RestockRequest, error) {
	items, err := s.AnalyzeInventory(ctx, scope)
	if err != nil {
		return nil, err
	}

	requests := pipeline.PlanRestocks(items, time.Now().UTC())
	if len(requests) == 0 {
		return []domain.RestockRequest{}, nil
	}
	return s.submit(ctx, requests)
}

func (s *InventoryAnalyticsService) submit(ctx context.Context, requests []domain.RestockRequest) ([]domain.RestockRequest, error) {
	if s.restocks == nil {
		return nil, fmt.Errorf("restock requests are not supported by this deployment")
	}

	created, err := s.restocks.CreateRestockRequests(ctx, requests)
	if err != nil {
		return nil, fmt.Errorf("create restock requests: %w", err)
	}

	scopes := map[string]struct{}{"": {}}
	for _, req := range created {
		scopes[req.Scope] = struct{}{}
	}
	for scope := range scopes {
		if err := s.cache.InvalidateScope(ctx, scope); err != nil {
			log.Warn().Err(err).Str("scope", scope).Msg("inventory analytics: cache invalidate failed")
		}
	}

	log.Info().Int("requests", len(created)).Msg("inventory analytics: restock requests created")
	return created, nil
}
