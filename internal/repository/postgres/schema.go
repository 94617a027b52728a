package postgres

import (
	"context"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS products (
	id             TEXT PRIMARY KEY,
	scope          TEXT NOT NULL DEFAULT '',
	name           TEXT NOT NULL DEFAULT '',
	price          NUMERIC(14, 2),
	quantity       INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
	incoming_stock INTEGER NOT NULL DEFAULT 0 CHECK (incoming_stock >= 0),
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_products_scope ON products (scope);

CREATE TABLE IF NOT EXISTS restock_requests (
	id           BIGSERIAL PRIMARY KEY,
	product_id   TEXT NOT NULL REFERENCES products (id),
	scope        TEXT NOT NULL DEFAULT '',
	quantity     INTEGER NOT NULL CHECK (quantity > 0),
	status       TEXT NOT NULL,
	requested_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// EnsureSchema creates the tables the analytics service reads and writes.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
