// Package scraper holds the per-chain offer extractors and the contract
// they all satisfy. Every public operation is wrapped in a timing and
// error-capturing envelope so callers branch on Success instead of handling
// raw navigation or DOM failures.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/matkollen/offerscraper/internal/models"
)

var (
	ErrUnknownChain  = errors.New("unknown chain")
	ErrNoOffersFound = errors.New("no offers found on page")
	ErrStoreNotFound = errors.New("store not found")
	ErrBrowserClosed = errors.New("browser is closed")
)

// Scraper is the three-operation contract every chain implementation
// satisfies. SearchStores and GetOffers are full scrapes; Validate is a
// cheap independent smoke test that loads a known URL and checks a handful
// of page-intact markers, to flag upstream redesigns early.
type Scraper interface {
	Chain() models.Chain
	SearchStores(ctx context.Context, query string) models.ScraperResult[[]models.Store]
	GetOffers(ctx context.Context, store models.Store) models.ScraperResult[[]models.Offer]
	Validate(ctx context.Context) models.ScraperResult[models.ValidationResult]
	Close() error
}

// run executes an operation body inside the result envelope: it times the
// call, converts any error or panic into {Success:false, Error} and stamps
// the result. Callers of scraper operations never see a raw error.
func run[T any](logger *slog.Logger, op string, fn func() (T, error)) (result models.ScraperResult[T]) {
	start := time.Now()
	result.ScrapedAt = start

	defer func() {
		result.Duration = time.Since(start)
		if r := recover(); r != nil {
			result.Success = false
			result.Error = fmt.Sprintf("panic in %s: %v", op, r)
		}
		if result.Success {
			logger.Info("operation completed", "op", op, "duration", result.Duration)
		} else {
			logger.Warn("operation failed", "op", op, "error", result.Error, "duration", result.Duration)
		}
	}()

	data, err := fn()
	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.Success = true
	result.Data = data
	return result
}
