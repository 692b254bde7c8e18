package scraper

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matkollen/offerscraper/internal/models"
)

var testStore = models.Store{
	ID:    "ica-12345",
	Name:  "ICA Maxi Lindhagen",
	Chain: models.ChainICA,
}

func TestAssembleOfferPlainPrice(t *testing.T) {
	raw := rawOffer{
		Name:         "Kycklingfilé 925g",
		Brand:        "Kronfågel",
		PriceText:    "79,90 kr",
		OrdinaryText: "Ord. pris 109,90 kr",
		UnitText:     "/st",
	}

	offer, ok := assembleOffer(slog.Default(), raw, testStore, time.Now(), nil)
	require.True(t, ok)

	assert.Equal(t, "Kycklingfilé 925g", offer.Name)
	assert.Equal(t, "Kronfågel", offer.Brand)
	assert.InDelta(t, 79.9, offer.OfferPrice, 0.001)
	require.NotNil(t, offer.OriginalPrice)
	assert.InDelta(t, 109.9, *offer.OriginalPrice, 0.001)
	assert.Equal(t, "st", offer.Unit)
	assert.Equal(t, "kott-chark", offer.Category)
	assert.Equal(t, testStore.ID, offer.StoreID)
	assert.Equal(t, models.ChainICA, offer.Chain)
	assert.NotEmpty(t, offer.ID)
	assert.Nil(t, offer.Quantity)
	assert.False(t, offer.MemberOnly)
}

func TestAssembleOfferMultiBuy(t *testing.T) {
	raw := rawOffer{
		Name:         "Festis 1L",
		MultiBuyText: "3 för 25 kr",
	}

	offer, ok := assembleOffer(slog.Default(), raw, testStore, time.Now(), nil)
	require.True(t, ok)

	// Offer price is the bundle total; the per-unit price rides alongside.
	assert.InDelta(t, 25, offer.OfferPrice, 0.001)
	require.NotNil(t, offer.Quantity)
	assert.Equal(t, 3, *offer.Quantity)
	require.NotNil(t, offer.QuantityPrice)
	assert.InDelta(t, 8.33, *offer.QuantityPrice, 0.001)
}

func TestAssembleOfferColonPrice(t *testing.T) {
	raw := rawOffer{
		Name:      "Laxfilé",
		PriceText: "149:-/kg",
	}

	offer, ok := assembleOffer(slog.Default(), raw, testStore, time.Now(), nil)
	require.True(t, ok)
	assert.InDelta(t, 149, offer.OfferPrice, 0.001)
	assert.Equal(t, "kg", offer.Unit)
	assert.Equal(t, "fisk-skaldjur", offer.Category)
}

func TestAssembleOfferMemberAndCap(t *testing.T) {
	raw := rawOffer{
		Name:        "Kaffe Mellanrost 450g",
		PriceText:   "39,90 kr",
		Description: "Klubbpris. Max 2 köp per hushåll.",
	}

	offer, ok := assembleOffer(slog.Default(), raw, testStore, time.Now(), nil)
	require.True(t, ok)
	assert.True(t, offer.MemberOnly)
	require.NotNil(t, offer.MaxPerHousehold)
	assert.Equal(t, 2, *offer.MaxPerHousehold)
}

func TestAssembleOfferRejections(t *testing.T) {
	tests := []struct {
		name string
		raw  rawOffer
	}{
		{name: "missing name", raw: rawOffer{PriceText: "29,90 kr"}},
		{name: "no price anywhere", raw: rawOffer{Name: "Mystery", Description: "veckans vara"}},
		{name: "price below band", raw: rawOffer{Name: "Tuggummi", PriceText: "0,50 kr"}},
		{name: "price above band", raw: rawOffer{Name: "Artikelnummer", PriceText: "8818344 kr"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := assembleOffer(slog.Default(), tt.raw, testStore, time.Now(), nil)
			assert.False(t, ok)
		})
	}
}

func TestAssembleOfferBestPriceFallback(t *testing.T) {
	// No clean price field. The smallest plausible number across the whole
	// card is taken as the discounted price.
	raw := rawOffer{
		Name:        "Rågbröd",
		Description: "Nu 19:90, ord. 24,90",
	}

	offer, ok := assembleOffer(slog.Default(), raw, testStore, time.Now(), nil)
	require.True(t, ok)
	assert.InDelta(t, 19.9, offer.OfferPrice, 0.001)
}

func TestAssembleOfferOriginalMustExceedOffer(t *testing.T) {
	raw := rawOffer{
		Name:         "Mjölk",
		PriceText:    "19,90 kr",
		OrdinaryText: "15,00 kr",
	}

	offer, ok := assembleOffer(slog.Default(), raw, testStore, time.Now(), nil)
	require.True(t, ok)
	assert.Nil(t, offer.OriginalPrice)
}

func TestAssembleOfferImageAllowlist(t *testing.T) {
	raw := rawOffer{
		Name:      "Gurka",
		PriceText: "9,90 kr",
		ImageURL:  "https://tracker.example.net/pixel.png",
	}

	offer, ok := assembleOffer(slog.Default(), raw, testStore, time.Now(), []string{"assets.icanet.se"})
	require.True(t, ok)
	assert.Empty(t, offer.ImageURL)

	raw.ImageURL = "https://assets.icanet.se/t_product/gurka.jpg"
	offer, ok = assembleOffer(slog.Default(), raw, testStore, time.Now(), []string{"assets.icanet.se"})
	require.True(t, ok)
	assert.Equal(t, raw.ImageURL, offer.ImageURL)
}
