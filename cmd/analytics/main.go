package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/andresuchdata/stockpilot/internal/config"
	"github.com/andresuchdata/stockpilot/internal/repository"
	"github.com/andresuchdata/stockpilot/internal/repository/postgres"
	"github.com/andresuchdata/stockpilot/internal/stock_health"
	"github.com/andresuchdata/stockpilot/pkg/logger"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/urfave/cli/v2"
)

type dbKey struct{}

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "db-url",
		Usage:   "Database connection string",
		EnvVars: []string{"DATABASE_URL"},
	}
}

func initDB(c *cli.Context) error {
	logger.SetLevel(c.String("log-level"))

	dbURL := c.String("db-url")
	if dbURL == "" {
		return nil
	}

	conn, err := sql.Open("pgx", dbURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := conn.PingContext(c.Context); err != nil {
		conn.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	db := postgres.Wrap(sqlx.NewDb(conn, "pgx"), c.Int("max-tx"))
	if err := db.EnsureSchema(c.Context); err != nil {
		db.Close()
		return err
	}

	c.Context = context.WithValue(c.Context, dbKey{}, db)
	return nil
}

func closeDB(c *cli.Context) error {
	if db, ok := c.Context.Value(dbKey{}).(*postgres.DB); ok && db != nil {
		return db.Close()
	}
	return nil
}

// productStore is the product source a command runs against: a CSV file
// loaded into memory, or the database.
type productStore struct {
	products repository.ProductRepository
	writer   repository.ProductWriter
	restocks repository.RestockRepository
}

func openStore(c *cli.Context) (*productStore, error) {
	if path := c.String("csv"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()

		products, err := repository.ParseProductsCSV(f)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		repo := repository.NewMemoryRepository(products)
		return &productStore{products: repo, writer: repo, restocks: repo}, nil
	}

	if db, ok := c.Context.Value(dbKey{}).(*postgres.DB); ok && db != nil {
		repo := postgres.NewProductRepository(db)
		return &productStore{products: repo, writer: repo, restocks: repo}, nil
	}

	return nil, fmt.Errorf("either --csv or --db-url is required")
}

func newAnalyzer(c *cli.Context) (*stock_health.Analyzer, error) {
	raw := c.String("date")
	if raw == "" {
		return stock_health.NewAnalyzer(), nil
	}

	day, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid --date %q: %w", raw, err)
	}
	return stock_health.NewAnalyzer(stock_health.WithClock(func() time.Time { return day })), nil
}

func sourceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "csv",
			Usage: "Read products from a CSV file instead of the database",
		},
		&cli.StringFlag{
			Name:  "scope",
			Usage: "Only analyze products in this scope",
		},
		&cli.StringFlag{
			Name:  "date",
			Usage: "Anchor the demand series to this day (YYYY-MM-DD) instead of today",
		},
		&cli.IntFlag{
			Name:    "workers",
			Usage:   "Number of concurrent analysis workers",
			Value:   runtime.NumCPU(),
			EnvVars: []string{"ANALYTICS_WORKER_COUNT"},
		},
	}
}

func main() {
	cfg := config.Load()

	app := &cli.App{
		Name:  "analytics",
		Usage: "Inventory analytics: stock health, reorder points and restock planning",
		Flags: []cli.Flag{
			newDBURLFlag(),
			&cli.IntFlag{
				Name:    "max-tx",
				Usage:   "Concurrent write transactions against the database",
				Value:   cfg.Database.MaxConcurrentTx,
				EnvVars: []string{"DB_MAX_CONCURRENT_TX"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   cfg.Server.LogLevel,
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Before: initDB,
		After:  closeDB,
		Commands: []*cli.Command{
			analyzeCommand(),
			goldenCommand(),
			exportCommand(cfg),
			reportsCommand(cfg),
			restockCommand(),
			seedCommand(),
			importDriveCommand(cfg),
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("analytics command failed")
	}
}
