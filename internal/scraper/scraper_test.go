package scraper

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matkollen/offerscraper/internal/models"
)

func TestRunEnvelopeSuccess(t *testing.T) {
	result := run(slog.Default(), "op", func() (int, error) {
		return 42, nil
	})

	assert.True(t, result.Success)
	assert.Equal(t, 42, result.Data)
	assert.Empty(t, result.Error)
	assert.False(t, result.ScrapedAt.IsZero())
	assert.GreaterOrEqual(t, result.Duration, time.Duration(0))
}

func TestRunEnvelopeError(t *testing.T) {
	result := run(slog.Default(), "op", func() ([]models.Offer, error) {
		return nil, errors.New("navigation timed out")
	})

	assert.False(t, result.Success)
	assert.Equal(t, "navigation timed out", result.Error)
	assert.Nil(t, result.Data)
}

func TestRunEnvelopeRecoversPanic(t *testing.T) {
	result := run(slog.Default(), "getOffers", func() (string, error) {
		panic("nil locator")
	})

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "panic in getOffers")
	assert.Contains(t, result.Error, "nil locator")
}

func TestDedupSet(t *testing.T) {
	d := dedupSet{}

	a := models.Offer{Name: "Kycklingfilé", OfferPrice: 79.9}
	assert.True(t, d.accept(&a))
	assert.False(t, d.accept(&a))

	// Same name with different price is a distinct offer.
	b := models.Offer{Name: "Kycklingfilé", OfferPrice: 89.9}
	assert.True(t, d.accept(&b))

	// Case and surrounding whitespace do not defeat the dedup.
	c := models.Offer{Name: "  KYCKLINGFILÉ ", OfferPrice: 79.9}
	assert.False(t, d.accept(&c))
}

func TestFactory(t *testing.T) {
	for _, chain := range models.Chains() {
		s, err := New(chain, nil)
		require.NoError(t, err)
		assert.Equal(t, chain, s.Chain())
	}

	_, err := New(models.Chain("willys"), nil)
	assert.ErrorIs(t, err, ErrUnknownChain)
}

func TestNewAll(t *testing.T) {
	scrapers := NewAll(nil)
	require.Len(t, scrapers, len(models.Chains()))

	seen := map[models.Chain]bool{}
	for _, s := range scrapers {
		seen[s.Chain()] = true
	}
	assert.Len(t, seen, len(models.Chains()))
}
