package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/matkollen/offerscraper/internal/models"
)

// StoreRow is the persisted shape of a store. Address, profile and the
// offers URL may be refreshed on re-seed; everything else is immutable once
// written.
type StoreRow struct {
	ID           string         `db:"id"`
	Name         string         `db:"name"`
	Address      sql.NullString `db:"address"`
	City         sql.NullString `db:"city"`
	Chain        string         `db:"chain"`
	ExternalID   string         `db:"external_id"`
	Profile      sql.NullString `db:"profile"`
	OffersURL    sql.NullString `db:"offers_url"`
	LastSyncedAt sql.NullTime   `db:"last_synced_at"`
	CreatedAt    time.Time      `db:"created_at"`
}

// UpsertStore inserts a store or refreshes its mutable columns.
func (db *DB) UpsertStore(ctx context.Context, s models.Store) error {
	query := `
		INSERT INTO stores (id, name, address, city, chain, external_id, profile, offers_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			address = EXCLUDED.address,
			city = EXCLUDED.city,
			profile = EXCLUDED.profile,
			offers_url = EXCLUDED.offers_url`

	_, err := db.pool.Exec(ctx, query,
		s.ID, s.Name, nullString(s.Address), nullString(s.City),
		string(s.Chain), s.ExternalID, nullString(s.Profile), nullString(s.OffersURL),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert store: %w", err)
	}
	return nil
}

// GetStore retrieves a single store by internal id; nil when not found.
func (db *DB) GetStore(ctx context.Context, id string) (*models.Store, error) {
	query := `
		SELECT id, name, address, city, chain, external_id, profile, offers_url
		FROM stores
		WHERE id = $1`

	row := StoreRow{}
	err := db.pool.QueryRow(ctx, query, id).Scan(
		&row.ID, &row.Name, &row.Address, &row.City,
		&row.Chain, &row.ExternalID, &row.Profile, &row.OffersURL,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get store: %w", err)
	}

	store := rowToStore(row)
	return &store, nil
}

// ListStores returns every store for one chain.
func (db *DB) ListStores(ctx context.Context, chain models.Chain) ([]models.Store, error) {
	query := `
		SELECT id, name, address, city, chain, external_id, profile, offers_url
		FROM stores
		WHERE chain = $1
		ORDER BY name ASC`

	rows, err := db.pool.Query(ctx, query, string(chain))
	if err != nil {
		return nil, fmt.Errorf("failed to query stores: %w", err)
	}
	defer rows.Close()

	var stores []models.Store
	for rows.Next() {
		row := StoreRow{}
		err := rows.Scan(
			&row.ID, &row.Name, &row.Address, &row.City,
			&row.Chain, &row.ExternalID, &row.Profile, &row.OffersURL,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan store: %w", err)
		}
		stores = append(stores, rowToStore(row))
	}

	return stores, nil
}

func rowToStore(row StoreRow) models.Store {
	return models.Store{
		ID:         row.ID,
		Name:       row.Name,
		Address:    row.Address.String,
		City:       row.City.String,
		Chain:      models.Chain(row.Chain),
		ExternalID: row.ExternalID,
		Profile:    row.Profile.String,
		OffersURL:  row.OffersURL.String,
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
