package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/stockpilot/internal/domain"
	"github.com/andresuchdata/stockpilot/internal/stock_health"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Runner analyzes a collection of products with a bounded worker pool.
// Every product in a run is anchored to the same calendar day.
type Runner struct {
	analyzer *stock_health.Analyzer
	config   RunnerConfig
}

// NewRunner creates a new batch runner
func NewRunner(analyzer *stock_health.Analyzer, config RunnerConfig) *Runner {
	if analyzer == nil {
		analyzer = stock_health.NewAnalyzer()
	}
	if config.WorkerCount < 1 {
		config.WorkerCount = 1
	}
	return &Runner{analyzer: analyzer, config: config}
}

// Today returns the calendar day the next run will be anchored to.
func (r *Runner) Today() time.Time {
	return r.analyzer.Today()
}

// Analyze analyzes a single product after validating it.
func (r *Runner) Analyze(p domain.ProductRecord) (domain.AnalyzedProduct, error) {
	if err := p.Validate(); err != nil {
		return domain.AnalyzedProduct{}, err
	}
	return r.analyzer.AnalyzeProduct(p), nil
}

// Run validates and analyzes products concurrently. Invalid records are
// skipped and reported in the result. The output order depends only on the
// inputs, never on worker scheduling.
func (r *Runner) Run(ctx context.Context, products []domain.ProductRecord) (*RunResult, error) {
	start := time.Now()
	day := r.analyzer.Today()

	valid := make([]domain.ProductRecord, 0, len(products))
	var skipped []SkippedProduct
	for _, p := range products {
		if err := p.Validate(); err != nil {
			log.Warn().Err(err).Str("product_id", p.ID).Msg("pipeline: skipping invalid product")
			skipped = append(skipped, SkippedProduct{ProductID: p.ID, Reason: err.Error()})
			continue
		}
		valid = append(valid, p)
	}

	items := make([]domain.AnalyzedProduct, len(valid))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.config.WorkerCount)

	for i := range valid {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			items[i] = r.analyzer.AnalyzeProductAt(valid[i], day)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("analysis run cancelled: %w", err)
	}

	stock_health.SortByUrgency(items)

	result := &RunResult{
		Date:     day,
		Items:    items,
		Skipped:  skipped,
		Duration: time.Since(start),
	}

	log.Debug().
		Int("products", len(items)).
		Int("skipped", len(skipped)).
		Int("workers", r.config.WorkerCount).
		Dur("duration", result.Duration).
		Msg("pipeline: analysis run completed")

	return result, nil
}
