package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/matkollen/offerscraper/internal/models"
)

// ReplaceStoreOffers swaps a store's whole offer set inside one transaction:
// delete old rows, insert the new batch, stamp the store's last sync time.
// Any failure rolls the whole swap back so previously-good offers survive a
// failed scrape.
func (db *DB) ReplaceStoreOffers(ctx context.Context, storeID string, offers []models.Offer, syncedAt time.Time) error {
	return db.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM offers WHERE store_id = $1`, storeID); err != nil {
			return fmt.Errorf("failed to delete old offers: %w", err)
		}

		batch := &pgx.Batch{}
		for _, o := range offers {
			batch.Queue(`
				INSERT INTO offers (
					id, name, brand, description, original_price, offer_price,
					quantity, quantity_price, unit, savings, image_url, offer_url,
					store_id, chain, category, max_per_household, member_only, scraped_at
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
				o.ID, o.Name, nullString(o.Brand), nullString(o.Description),
				o.OriginalPrice, o.OfferPrice, o.Quantity, o.QuantityPrice,
				nullString(o.Unit), nullString(o.Savings), nullString(o.ImageURL),
				nullString(o.OfferURL), o.StoreID, string(o.Chain),
				nullString(o.Category), o.MaxPerHousehold, o.MemberOnly, o.ScrapedAt,
			)
		}

		results := tx.SendBatch(ctx, batch)
		for range offers {
			if _, err := results.Exec(); err != nil {
				results.Close()
				return fmt.Errorf("failed to insert offer: %w", err)
			}
		}
		if err := results.Close(); err != nil {
			return fmt.Errorf("failed to close batch: %w", err)
		}

		if _, err := tx.Exec(ctx,
			`UPDATE stores SET last_synced_at = $2 WHERE id = $1`,
			storeID, syncedAt,
		); err != nil {
			return fmt.Errorf("failed to update store sync time: %w", err)
		}

		return nil
	})
}

// ListOffers returns the current offer snapshot for a store.
func (db *DB) ListOffers(ctx context.Context, storeID string) ([]models.Offer, error) {
	query := `
		SELECT id, name, brand, description, original_price, offer_price,
			   quantity, quantity_price, unit, savings, image_url, offer_url,
			   store_id, chain, category, max_per_household, member_only, scraped_at
		FROM offers
		WHERE store_id = $1
		ORDER BY name ASC`

	rows, err := db.pool.Query(ctx, query, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query offers: %w", err)
	}
	defer rows.Close()

	var offers []models.Offer
	for rows.Next() {
		var o models.Offer
		var brand, description, unit, savings, imageURL, offerURL, chain, categoryTag sql.NullString
		err := rows.Scan(
			&o.ID, &o.Name, &brand, &description, &o.OriginalPrice, &o.OfferPrice,
			&o.Quantity, &o.QuantityPrice, &unit, &savings, &imageURL, &offerURL,
			&o.StoreID, &chain, &categoryTag, &o.MaxPerHousehold, &o.MemberOnly, &o.ScrapedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan offer: %w", err)
		}
		o.Brand = brand.String
		o.Description = description.String
		o.Unit = unit.String
		o.Savings = savings.String
		o.ImageURL = imageURL.String
		o.OfferURL = offerURL.String
		o.Chain = models.Chain(chain.String)
		o.Category = categoryTag.String
		offers = append(offers, o)
	}

	return offers, nil
}

// CountOffers returns how many offers a store currently has.
func (db *DB) CountOffers(ctx context.Context, storeID string) (int, error) {
	var count int
	err := db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM offers WHERE store_id = $1`, storeID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count offers: %w", err)
	}
	return count, nil
}
