package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/andresuchdata/stockpilot/internal/config"
	"github.com/andresuchdata/stockpilot/internal/domain"
	"github.com/andresuchdata/stockpilot/internal/pipeline"
	"github.com/andresuchdata/stockpilot/internal/report"
	"github.com/andresuchdata/stockpilot/internal/stock_health"
	"github.com/andresuchdata/stockpilot/internal/storage"
	"github.com/andresuchdata/stockpilot/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"
)

func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:  "analyze",
		Usage: "Analyze every product and print them most urgent first",
		Flags: append(sourceFlags(),
			&cli.StringFlag{
				Name:  "format",
				Usage: "Output format: table, json or csv",
				Value: "table",
			},
			&cli.BoolFlag{
				Name:  "alerts",
				Usage: "Only print products that are not OPTIMAL",
			},
		),
		Action: func(c *cli.Context) error {
			result, err := runAnalysis(c)
			if err != nil {
				return err
			}

			items := result.Items
			if c.Bool("alerts") {
				items = pipeline.FilterAlerts(items)
			}
			return printItems(os.Stdout, c.String("format"), items)
		},
	}
}

func runAnalysis(c *cli.Context) (*pipeline.RunResult, error) {
	store, err := openStore(c)
	if err != nil {
		return nil, err
	}

	analyzer, err := newAnalyzer(c)
	if err != nil {
		return nil, err
	}

	products, err := store.products.ListProducts(c.Context, c.String("scope"))
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	runner := pipeline.NewRunner(analyzer, pipeline.RunnerConfig{WorkerCount: c.Int("workers")})
	result, err := runner.Run(c.Context, products)
	if err != nil {
		return nil, err
	}

	for _, skipped := range result.Skipped {
		logger.Log.Warn().Str("product_id", skipped.ProductID).Str("reason", skipped.Reason).Msg("product skipped")
	}
	logger.Log.Info().
		Str("date", result.Date.Format("2006-01-02")).
		Int("products", len(result.Items)).
		Dur("duration", result.Duration).
		Msg("analysis completed")

	return result, nil
}

func printItems(w io.Writer, format string, items []domain.AnalyzedProduct) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	case "csv":
		return report.WriteCSV(w, items)
	case "table", "":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tSTATUS\tSTOCK\tROP\tEOQ\tRISK\tCOVER\tRECOMMENDATION")
		for _, item := range items {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d%%\t%.1f\t%s\n",
				item.ID, item.Status, item.Stock, item.ReorderPoint, item.EOQ,
				item.StockoutRisk, item.DaysCover, item.Recommendation)
		}
		return tw.Flush()
	}
	return fmt.Errorf("unknown format %q", format)
}

func goldenCommand() *cli.Command {
	return &cli.Command{
		Name:  "golden",
		Usage: "Print the reference analysis of fixed product ids, for cross-checking implementations",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "id",
				Usage: "Product ids to analyze",
				Value: cli.NewStringSlice("test-001", "test-002"),
			},
			&cli.StringFlag{
				Name:  "date",
				Usage: "Anchor day (YYYY-MM-DD)",
				Value: "2024-01-15",
			},
			&cli.IntFlag{
				Name:  "quantity",
				Usage: "Stock on hand for every product",
				Value: 20,
			},
			&cli.Float64Flag{
				Name:  "price",
				Usage: "Unit price for every product",
				Value: stock_health.DefaultPrice,
			},
		},
		Action: func(c *cli.Context) error {
			analyzer, err := newAnalyzer(c)
			if err != nil {
				return err
			}

			price := decimal.NewFromFloat(c.Float64("price"))
			type golden struct {
				Seed    stock_health.Seed      `json:"seed"`
				Product domain.AnalyzedProduct `json:"product"`
			}
			out := make([]golden, 0)
			for _, id := range c.StringSlice("id") {
				out = append(out, golden{
					Seed: stock_health.DeriveSeed(id),
					Product: analyzer.AnalyzeProduct(domain.ProductRecord{
						ID:       id,
						Name:     id,
						Price:    &price,
						Quantity: c.Int("quantity"),
					}),
				})
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
}

func exportCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Write the analysis as a CSV report to a file or to object storage",
		Flags: append(sourceFlags(),
			&cli.StringFlag{
				Name:  "out",
				Usage: "Local file to write; when empty the report is uploaded to object storage",
			},
		),
		Action: func(c *cli.Context) error {
			result, err := runAnalysis(c)
			if err != nil {
				return err
			}

			if path := c.String("out"); path != "" {
				f, err := os.Create(path)
				if err != nil {
					return fmt.Errorf("create %s: %w", path, err)
				}
				defer f.Close()

				if err := report.WriteCSV(f, result.Items); err != nil {
					return err
				}
				logger.Log.Info().Str("path", path).Msg("report written")
				return nil
			}

			store, err := newObjectStorage(cfg)
			if err != nil {
				return err
			}
			key, err := report.Upload(c.Context, store, cfg.Storage.ReportPrefix, c.String("scope"), result.Date, result.Items)
			if err != nil {
				return err
			}
			logger.Log.Info().Str("key", key).Msg("report uploaded")
			return nil
		},
	}
}

func reportsCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "reports",
		Usage: "Browse reports stored in object storage",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List stored reports",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "scope", Usage: "Only list reports for this scope"},
				},
				Action: func(c *cli.Context) error {
					store, err := newObjectStorage(cfg)
					if err != nil {
						return err
					}

					objects, err := store.ListObjects(c.Context, report.ScopePrefix(cfg.Storage.ReportPrefix, c.String("scope")))
					if err != nil {
						return err
					}
					for _, object := range objects {
						fmt.Printf("%s\t%d\t%s\n", object.Key, object.Size, object.LastModified.Format(time.RFC3339))
					}
					return nil
				},
			},
			{
				Name:  "get",
				Usage: "Download a stored report",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "key", Usage: "Object key", Required: true},
					&cli.StringFlag{Name: "out", Usage: "Destination file", Required: true},
				},
				Action: func(c *cli.Context) error {
					store, err := newObjectStorage(cfg)
					if err != nil {
						return err
					}
					return store.DownloadObject(c.Context, c.String("key"), c.String("out"))
				},
			},
		},
	}
}

func newObjectStorage(cfg *config.Config) (storage.ObjectStorage, error) {
	client, err := storage.NewMinioClient(storage.MinioConfig{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		UseSSL:    cfg.Storage.UseSSL,
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}
