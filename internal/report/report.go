package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/stockpilot/internal/domain"
	"github.com/andresuchdata/stockpilot/internal/storage"
)

var header = []string{
	"id",
	"scope",
	"name",
	"status",
	"stock",
	"incoming_stock",
	"price",
	"average_daily_usage",
	"standard_deviation",
	"lead_time_days",
	"safety_stock",
	"reorder_point",
	"eoq",
	"eoq_review_required",
	"stockout_risk",
	"days_cover",
	"restock_quantity",
	"recommendation",
}

// WriteCSV renders one row per analyzed product. Demand series are omitted.
func WriteCSV(w io.Writer, items []domain.AnalyzedProduct) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write report header: %w", err)
	}

	for _, item := range items {
		restock := 0
		if item.NeedsRestock() {
			restock = item.RestockQuantity()
		}
		row := []string{
			item.ID,
			item.Scope,
			item.Name,
			string(item.Status),
			strconv.Itoa(item.Stock),
			strconv.Itoa(item.IncomingStock),
			item.Price.String(),
			strconv.FormatFloat(item.AverageDailyUsage, 'f', -1, 64),
			strconv.FormatFloat(item.StandardDeviation, 'f', -1, 64),
			strconv.Itoa(item.LeadTimeDays),
			strconv.Itoa(item.SafetyStock),
			strconv.Itoa(item.ReorderPoint),
			strconv.Itoa(item.EOQ),
			strconv.FormatBool(item.EOQReviewRequired),
			strconv.Itoa(item.StockoutRisk),
			strconv.FormatFloat(item.DaysCover, 'f', -1, 64),
			strconv.Itoa(restock),
			item.Recommendation,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write report row %s: %w", item.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ObjectKey builds <prefix>/<scope>/<YYYYMMDD>.csv. An empty scope is
// stored as "all".
func ObjectKey(prefix, scope string, day time.Time) string {
	return path.Join(strings.Trim(prefix, "/"), scopeDir(scope), day.Format("20060102")+".csv")
}

// ScopePrefix is the listing prefix for one scope's reports, or for every
// report when scope is empty.
func ScopePrefix(prefix, scope string) string {
	prefix = strings.Trim(prefix, "/")
	if strings.TrimSpace(scope) == "" {
		if prefix == "" {
			return ""
		}
		return prefix + "/"
	}
	return path.Join(prefix, scopeDir(scope)) + "/"
}

func scopeDir(scope string) string {
	scope = strings.TrimSpace(scope)
	if scope == "" {
		return "all"
	}
	return scope
}

// Upload renders items and stores them in object storage, returning the key.
func Upload(ctx context.Context, store storage.ObjectStorage, prefix, scope string, day time.Time, items []domain.AnalyzedProduct) (string, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, items); err != nil {
		return "", err
	}

	key := ObjectKey(prefix, scope, day)
	if err := store.UploadObject(ctx, key, buf.Bytes()); err != nil {
		return "", err
	}
	return key, nil
}
