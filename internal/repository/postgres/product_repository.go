package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/andresuchdata/stockpilot/internal/domain"
	"github.com/andresuchdata/stockpilot/internal/repository"
	"github.com/jmoiron/sqlx"
)

type productRepository struct {
	db *DB
}

// NewProductRepository returns a repository that reads products and records
// restock requests in PostgreSQL.
func NewProductRepository(db *DB) *productRepository {
	return &productRepository{db: db}
}

const productColumns = `id, scope, name, price, quantity, incoming_stock`

func (r *productRepository) ListProducts(ctx context.Context, scope string) ([]domain.ProductRecord, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE 1=1`

	var args []interface{}
	if scope != "" {
		query += " AND scope = $1"
		args = append(args, scope)
	}
	query += " ORDER BY id"

	var products []domain.ProductRecord
	if err := r.db.SelectContext(ctx, &products, query, args...); err != nil {
		return nil, fmt.Errorf("error listing products: %w", err)
	}

	return products, nil
}

func (r *productRepository) GetProduct(ctx context.Context, id string) (*domain.ProductRecord, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	var product domain.ProductRecord
	if err := r.db.GetContext(ctx, &product, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("product %s: %w", id, domain.ErrProductNotFound)
		}
		return nil, fmt.Errorf("error getting product %s: %w", id, err)
	}

	return &product, nil
}

func (r *productRepository) UpsertProducts(ctx context.Context, products []domain.ProductRecord) error {
	return r.db.WithTx(ctx, "upsert products", func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO products (id, scope, name, price, quantity, incoming_stock, created_at, updated_at)
			VALUES (:id, :scope, :name, :price, :quantity, :incoming_stock, NOW(), NOW())
			ON CONFLICT (id)
			DO UPDATE SET
				scope = EXCLUDED.scope,
				name = EXCLUDED.name,
				price = EXCLUDED.price,
				quantity = EXCLUDED.quantity,
				incoming_stock = EXCLUDED.incoming_stock,
				updated_at = NOW()
		`

		stmt, err := tx.PrepareNamedContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, p := range products {
			if _, err := stmt.ExecContext(ctx, p); err != nil {
				return fmt.Errorf("failed to upsert product %s: %w", p.ID, err)
			}
		}

		return nil
	})
}

func (r *productRepository) CreateRestockRequests(ctx context.Context, requests []domain.RestockRequest) ([]domain.RestockRequest, error) {
	created := make([]domain.RestockRequest, 0, len(requests))

	err := r.db.WithTx(ctx, "create restock requests", func(tx *sqlx.Tx) error {
		insert := `
			INSERT INTO restock_requests (product_id, scope, quantity, status, requested_at)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`
		update := `
			UPDATE products
			SET incoming_stock = incoming_stock + $1, updated_at = NOW()
			WHERE id = $2
		`

		for _, req := range requests {
			res, err := tx.ExecContext(ctx, update, req.Quantity, req.ProductID)
			if err != nil {
				return fmt.Errorf("failed to increment incoming stock for %s: %w", req.ProductID, err)
			}
			if n, err := res.RowsAffected(); err == nil && n == 0 {
				return fmt.Errorf("restock %s: %w", req.ProductID, domain.ErrProductNotFound)
			}

			if err := tx.QueryRowxContext(ctx, insert,
				req.ProductID, req.Scope, req.Quantity, string(req.Status), req.RequestedAt,
			).Scan(&req.ID); err != nil {
				return fmt.Errorf("failed to insert restock request for %s: %w", req.ProductID, err)
			}
			created = append(created, req)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

var (
	_ repository.ProductRepository = (*productRepository)(nil)
	_ repository.ProductWriter     = (*productRepository)(nil)
	_ repository.RestockRepository = (*productRepository)(nil)
)
