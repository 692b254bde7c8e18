package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fallbackFixture = `
<html><body>
<main>
  <div class="promotion-grid">
    <article class="offer-card">
      <h3>Kycklingfilé 925g</h3>
      <span class="price-splash">79,90 kr</span>
      <img src="https://assets.example.se/kyckling.jpg">
      <a href="/erbjudanden/kyckling">Se erbjudande</a>
    </article>
    <article class="offer-card">
      <h3>Festis 1L</h3>
      <span>3 för 25</span>
    </article>
    <article class="offer-card">
      <h3>Laxfilé</h3>
      <span>149:-/kg</span>
    </article>
    <article class="offer-card">
      <h3>Utan pris</h3>
      <span>Veckans vara</span>
    </article>
    <article class="offer-card">
      <span>Bara 19,90 kr och ingen rubrik</span>
    </article>
  </div>
  <div class="footer-card">
    <strong>Kundservice</strong>
    <span>Öppet vardagar</span>
  </div>
</main>
</body></html>`

func TestExtractCardsFromHTML(t *testing.T) {
	raws, err := extractCardsFromHTML(fallbackFixture)
	require.NoError(t, err)

	// Cards without a price or a heading are dropped, and the grid wrapper
	// containing the cards is not itself treated as a card.
	require.Len(t, raws, 3)

	byName := map[string]rawOffer{}
	for _, r := range raws {
		byName[r.Name] = r
	}

	kyckling, ok := byName["Kycklingfilé 925g"]
	require.True(t, ok)
	assert.Equal(t, "79,90 kr", kyckling.PriceText)
	assert.Equal(t, "https://assets.example.se/kyckling.jpg", kyckling.ImageURL)
	assert.Equal(t, "/erbjudanden/kyckling", kyckling.OfferURL)

	festis, ok := byName["Festis 1L"]
	require.True(t, ok)
	assert.Equal(t, "3 för 25", festis.PriceText)

	lax, ok := byName["Laxfilé"]
	require.True(t, ok)
	assert.Equal(t, "149:-", lax.PriceText)
}

func TestExtractCardsFromHTMLEmptyPage(t *testing.T) {
	raws, err := extractCardsFromHTML("<html><body><p>Underhåll pågår</p></body></html>")
	require.NoError(t, err)
	assert.Empty(t, raws)
}

func TestNormalizeSpace(t *testing.T) {
	assert.Equal(t, "a b c", normalizeSpace("  a \n\t b   c "))
	assert.Equal(t, "", normalizeSpace("   "))
}
