package pipeline

import (
	"time"

	"github.com/andresuchdata/stockpilot/internal/domain"
)

// RunnerConfig holds configuration for a batch analysis run
type RunnerConfig struct {
	WorkerCount int // Number of concurrent analysis workers
}

// DefaultRunnerConfig returns sensible defaults
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		WorkerCount: 4,
	}
}

// RunResult is the urgency-sorted output of one batch run.
type RunResult struct {
	Date     time.Time
	Items    []domain.AnalyzedProduct
	Skipped  []SkippedProduct
	Duration time.Duration
}

// SkippedProduct records an input that failed validation and was not analyzed.
type SkippedProduct struct {
	ProductID string `json:"product_id"`
	Reason    string `json:"reason"`
}
