package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/andresuchdata/stockpilot/internal/config"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
)

const (
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 5
	defaultConnMaxLifetime = 5 * time.Minute
	defaultMaxConcurrentTx = 10
)

// DB is the shared product store connection. Write transactions are bounded
// so a bulk restock cannot exhaust the pool.
type DB struct {
	*sqlx.DB
	sem *semaphore.Weighted
}

var (
	dbInstance *DB
	once       sync.Once
)

type poolSettings struct {
	maxOpen     int
	maxIdle     int
	maxLifetime time.Duration
	maxTx       int64
}

func poolSettingsFrom(cfg *config.DatabaseConfig) poolSettings {
	ps := poolSettings{
		maxOpen:     cfg.MaxOpenConns,
		maxIdle:     cfg.MaxIdleConns,
		maxLifetime: time.Duration(cfg.ConnMaxLifetimeMin) * time.Minute,
		maxTx:       int64(cfg.MaxConcurrentTx),
	}
	if ps.maxOpen <= 0 {
		ps.maxOpen = defaultMaxOpenConns
	}
	if ps.maxIdle <= 0 {
		ps.maxIdle = defaultMaxIdleConns
	}
	if ps.maxIdle > ps.maxOpen {
		ps.maxIdle = ps.maxOpen
	}
	if ps.maxLifetime <= 0 {
		ps.maxLifetime = defaultConnMaxLifetime
	}
	if ps.maxTx <= 0 {
		ps.maxTx = defaultMaxConcurrentTx
	}
	return ps
}

func connString(cfg *config.DatabaseConfig) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)
}

// NewDB opens the process-wide product store over lib/pq.
func NewDB(cfg *config.DatabaseConfig) (*DB, error) {
	var err error
	once.Do(func() {
		var db *sqlx.DB
		db, err = sqlx.Connect("postgres", connString(cfg))
		if err != nil {
			err = fmt.Errorf("connect to %s@%s:%s: %w", cfg.DBName, cfg.Host, cfg.Port, err)
			return
		}

		ps := poolSettingsFrom(cfg)
		db.SetMaxOpenConns(ps.maxOpen)
		db.SetMaxIdleConns(ps.maxIdle)
		db.SetConnMaxLifetime(ps.maxLifetime)

		dbInstance = Wrap(db, int(ps.maxTx))
		log.Info().
			Str("database", cfg.DBName).
			Int("max_open_conns", ps.maxOpen).
			Int64("max_concurrent_tx", ps.maxTx).
			Msg("product store connected")
	})

	return dbInstance, err
}

// Wrap adapts an existing pool, e.g. one opened through the pgx stdlib
// driver. maxTx <= 0 uses the default transaction limit.
func Wrap(db *sqlx.DB, maxTx int) *DB {
	if maxTx <= 0 {
		maxTx = defaultMaxConcurrentTx
	}
	return &DB{
		DB:  db,
		sem: semaphore.NewWeighted(int64(maxTx)),
	}
}

// WithTx runs fn in a transaction. name labels failures in logs and errors.
func (db *DB) WithTx(ctx context.Context, name string, fn func(tx *sqlx.Tx) error) error {
	if err := db.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("%s: wait for transaction slot: %w", name, err)
	}
	defer db.sem.Release(1)

	tx, err := db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("%s: begin transaction: %w", name, err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error().Err(rbErr).Str("tx", name).Msg("rollback failed")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", name, err)
	}

	return nil
}
