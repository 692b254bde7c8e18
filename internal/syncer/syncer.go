// Package syncer drives per-store offer refreshes. Each store's refresh is
// an all-or-nothing transactional swap: a failed scrape never destroys
// previously-good data, and one store's failure never blocks the rest of the
// batch.
package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/matkollen/offerscraper/internal/models"
)

// OfferSource produces offers for a store. Satisfied by every chain scraper.
type OfferSource interface {
	Chain() models.Chain
	GetOffers(ctx context.Context, store models.Store) models.ScraperResult[[]models.Offer]
}

// OfferStore persists a store's offer snapshot atomically. Satisfied by
// database.DB.
type OfferStore interface {
	ReplaceStoreOffers(ctx context.Context, storeID string, offers []models.Offer, syncedAt time.Time) error
}

// StoreReport is the per-store outcome of one sync run.
type StoreReport struct {
	StoreID    string        `json:"store_id"`
	OfferCount int           `json:"offer_count"`
	Error      string        `json:"error,omitempty"`
	Duration   time.Duration `json:"duration"`
}

// RunReport summarizes a whole sync run.
type RunReport struct {
	RunID      string        `json:"run_id"`
	Chain      models.Chain  `json:"chain"`
	Stores     []StoreReport `json:"stores"`
	Succeeded  int           `json:"succeeded"`
	Failed     int           `json:"failed"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
}

type Syncer struct {
	store  OfferStore
	logger *slog.Logger
}

func New(store OfferStore) *Syncer {
	return &Syncer{
		store:  store,
		logger: slog.Default().With("component", "syncer"),
	}
}

// SyncStores refreshes the given stores sequentially. Cooldown filtering
// (skip stores synced recently) is a caller concern and happens before this
// call. Any per-store failure is recorded in the report and the run moves on.
func (s *Syncer) SyncStores(ctx context.Context, source OfferSource, stores []models.Store) RunReport {
	report := RunReport{
		RunID:     uuid.NewString(),
		Chain:     source.Chain(),
		StartedAt: time.Now(),
	}

	for _, store := range stores {
		select {
		case <-ctx.Done():
			report.FinishedAt = time.Now()
			return report
		default:
		}

		storeReport := s.syncStore(ctx, source, store)
		report.Stores = append(report.Stores, storeReport)
		if storeReport.Error == "" {
			report.Succeeded++
		} else {
			report.Failed++
		}
	}

	report.FinishedAt = time.Now()
	s.logger.Info("sync run finished",
		"run_id", report.RunID,
		"chain", report.Chain,
		"succeeded", report.Succeeded,
		"failed", report.Failed,
	)
	return report
}

// syncStore scrapes one store and swaps its offers transactionally. The
// scrape happens before the transaction opens, so a scrape failure never
// touches the database at all; a write failure rolls the swap back.
func (s *Syncer) syncStore(ctx context.Context, source OfferSource, store models.Store) StoreReport {
	start := time.Now()
	report := StoreReport{StoreID: store.ID}

	result := source.GetOffers(ctx, store)
	if !result.Success {
		report.Error = fmt.Sprintf("scrape failed: %s", result.Error)
		report.Duration = time.Since(start)
		s.logger.Warn("store sync skipped, scrape failed",
			"store_id", store.ID, "error", result.Error)
		return report
	}

	if err := s.store.ReplaceStoreOffers(ctx, store.ID, result.Data, result.ScrapedAt); err != nil {
		report.Error = fmt.Sprintf("persist failed: %s", err)
		report.Duration = time.Since(start)
		s.logger.Error("store sync rolled back",
			"store_id", store.ID, "error", err)
		return report
	}

	report.OfferCount = len(result.Data)
	report.Duration = time.Since(start)
	s.logger.Info("store synced",
		"store_id", store.ID, "offers", report.OfferCount, "duration", report.Duration)
	return report
}
