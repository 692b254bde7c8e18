package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/matkollen/offerscraper/internal/pricing"
)

func TestCombineMultiBuy(t *testing.T) {
	s := NewHemkopScraper(nil)

	tests := []struct {
		name      string
		multiText string
		priceText string
		want      string
	}{
		{name: "stitches splash", multiText: "2 FÖR", priceText: "45", want: "2 FÖR 45 kr"},
		{name: "colon splash becomes comma decimal", multiText: "2 FÖR", priceText: "29:90", want: "2 FÖR 29,90 kr"},
		{name: "already complete phrase passes through", multiText: "3 för 89 kr", priceText: "89", want: "3 för 89 kr"},
		{name: "empty multi", multiText: "", priceText: "45", want: ""},
		{name: "empty price", multiText: "2 FÖR", priceText: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.combineMultiBuy(tt.multiText, tt.priceText))
		})
	}
}

func TestCombinedMultiBuyParses(t *testing.T) {
	s := NewHemkopScraper(nil)

	// The stitched phrase must round-trip through the shared parser with the
	// splash read as the bundle total, not as the quantity.
	qty, total, ok := pricing.ParseMultiBuy(s.combineMultiBuy("2 FÖR", "29:90"))
	assert.True(t, ok)
	assert.Equal(t, 2, qty)
	assert.InDelta(t, 29.9, total, 0.001)
}
