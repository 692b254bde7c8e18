package database

import (
	"context"
	"fmt"
)

// schemaStatements is the full DDL for a fresh database. Every statement is
// idempotent so EnsureSchema can run on every startup.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS stores (
		id             TEXT PRIMARY KEY,
		name           TEXT NOT NULL,
		address        TEXT,
		city           TEXT,
		chain          TEXT NOT NULL,
		external_id    TEXT NOT NULL,
		profile        TEXT,
		offers_url     TEXT,
		last_synced_at TIMESTAMPTZ,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_stores_chain ON stores(chain)`,
	`CREATE TABLE IF NOT EXISTS offers (
		id                TEXT PRIMARY KEY,
		name              TEXT NOT NULL,
		brand             TEXT,
		description       TEXT,
		original_price    NUMERIC(10,2),
		offer_price       NUMERIC(10,2) NOT NULL,
		quantity          INTEGER,
		quantity_price    NUMERIC(10,2),
		unit              TEXT,
		savings           TEXT,
		image_url         TEXT,
		offer_url         TEXT,
		store_id          TEXT NOT NULL REFERENCES stores(id) ON DELETE CASCADE,
		chain             TEXT NOT NULL,
		category          TEXT,
		max_per_household INTEGER,
		member_only       BOOLEAN NOT NULL DEFAULT false,
		scraped_at        TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_offers_store_id ON offers(store_id)`,
	`CREATE INDEX IF NOT EXISTS idx_offers_chain_category ON offers(chain, category)`,
}

// EnsureSchema creates the tables and indexes if they do not exist yet.
func (db *DB) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}
