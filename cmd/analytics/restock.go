package main

import (
	"fmt"
	"os"

	"github.com/andresuchdata/stockpilot/internal/config"
	"github.com/andresuchdata/stockpilot/internal/drive"
	"github.com/andresuchdata/stockpilot/internal/pipeline"
	"github.com/andresuchdata/stockpilot/internal/repository"
	"github.com/andresuchdata/stockpilot/internal/service"
	"github.com/andresuchdata/stockpilot/pkg/logger"
	"github.com/urfave/cli/v2"
)

func restockCommand() *cli.Command {
	return &cli.Command{
		Name:  "restock",
		Usage: "Create restock requests for every REORDER or CRITICAL product",
		Flags: append(sourceFlags(),
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Print the planned requests without recording them",
			},
		),
		Action: func(c *cli.Context) error {
			if c.Bool("dry-run") {
				result, err := runAnalysis(c)
				if err != nil {
					return err
				}
				for _, req := range pipeline.PlanRestocks(result.Items, result.Date) {
					fmt.Printf("%s\t%s\t%d\n", req.ProductID, req.Status, req.Quantity)
				}
				return nil
			}

			store, err := openStore(c)
			if err != nil {
				return err
			}
			analyzer, err := newAnalyzer(c)
			if err != nil {
				return err
			}

			runner := pipeline.NewRunner(analyzer, pipeline.RunnerConfig{WorkerCount: c.Int("workers")})
			svc := service.NewInventoryAnalyticsService(store.products, store.restocks, runner, nil, "")

			created, err := svc.RestockAll(c.Context, c.String("scope"))
			if err != nil {
				return err
			}
			for _, req := range created {
				fmt.Printf("%d\t%s\t%s\t%d\n", req.ID, req.ProductID, req.Status, req.Quantity)
			}
			logger.Log.Info().Int("requests", len(created)).Msg("restock requests created")
			return nil
		},
	}
}

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Load products from a CSV file into the database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Usage:    "CSV file with id, scope, name, price, quantity and incoming_stock columns",
				Required: true,
			},
		},
		Action: func(c *cli.Context) error {
			if c.String("db-url") == "" {
				return fmt.Errorf("seed requires --db-url")
			}
			store, err := openStore(c)
			if err != nil {
				return err
			}

			f, err := os.Open(c.String("file"))
			if err != nil {
				return fmt.Errorf("open %s: %w", c.String("file"), err)
			}
			defer f.Close()

			products, err := repository.ParseProductsCSV(f)
			if err != nil {
				return err
			}

			if err := store.writer.UpsertProducts(c.Context, products); err != nil {
				return fmt.Errorf("seed products: %w", err)
			}
			logger.Log.Info().Int("products", len(products)).Msg("products seeded")
			return nil
		},
	}
}

func importDriveCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "import-drive",
		Usage: "Import every product sheet in a Google Drive folder into the database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "folder-id",
				Usage:   "Google Drive folder ID containing product sheets",
				Value:   cfg.Drive.FolderID,
				EnvVars: []string{"GOOGLE_DRIVE_FOLDER_ID"},
			},
		},
		Action: func(c *cli.Context) error {
			if c.String("db-url") == "" {
				return fmt.Errorf("import-drive requires --db-url")
			}
			store, err := openStore(c)
			if err != nil {
				return err
			}

			driveService, err := drive.NewService(c.Context, cfg.Drive.CredentialsJSON)
			if err != nil {
				return err
			}

			result, err := drive.NewProductImporter(driveService, store.writer, nil).ImportFolder(c.Context, c.String("folder-id"))
			if err != nil {
				return err
			}

			logger.Log.Info().
				Int("files", result.Files).
				Int("products", result.Products).
				Strs("skipped", result.Skipped).
				Msg("drive import completed")
			return nil
		},
	}
}
