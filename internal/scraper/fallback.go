package scraper

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/playwright-community/playwright-go"
)

// priceShapedRe recognizes any price-looking token: "12,50 kr", "50:-",
// "3 för 89 kr", "149:-/kg".
var priceShapedRe = regexp.MustCompile(`(?i)\d+\s*(?:[,.:]\d{2})?\s*(?:kr|:-)|\d+\s*f[öo]r\s+\d+`)

// cardSelectors are the card-like containers the generic pass scans. The
// structured per-chain selectors are precise but brittle; this pass is noisy
// but survives retailer redesigns.
const cardSelectors = "article, li[class*='product'], li[class*='offer'], " +
	"div[class*='product-card'], div[class*='offer-card'], div[class*='promotion'], " +
	"div[class*='card']"

// extractGenericCards is the low-quality tier of the extraction cascade: it
// scans all card-like elements in the rendered HTML for any price-shaped
// text and any heading-like text, pairing them positionally.
func extractGenericCards(page playwright.Page) ([]rawOffer, error) {
	html, err := page.Content()
	if err != nil {
		return nil, fmt.Errorf("failed to get page content: %w", err)
	}
	return extractCardsFromHTML(html)
}

func extractCardsFromHTML(html string) ([]rawOffer, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page HTML: %w", err)
	}

	var raws []rawOffer
	doc.Find(cardSelectors).Each(func(i int, card *goquery.Selection) {
		// Skip wrappers that contain other cards; only leaf cards carry a
		// single offer.
		if card.Find(cardSelectors).Length() > 0 {
			return
		}

		text := normalizeSpace(card.Text())
		priceText := priceShapedRe.FindString(text)
		if priceText == "" {
			return
		}

		name := headingText(card)
		if name == "" {
			return
		}

		raw := rawOffer{
			Name:      name,
			PriceText: priceText,
			// The whole card text doubles as description input so member
			// keywords and household caps are still detected.
			Description: text,
		}

		if img := card.Find("img").First(); img.Length() > 0 {
			if src, ok := img.Attr("src"); ok {
				raw.ImageURL = src
			}
		}
		if a := card.Find("a[href]").First(); a.Length() > 0 {
			raw.OfferURL, _ = a.Attr("href")
		}

		raws = append(raws, raw)
	})

	return raws, nil
}

// headingText finds the most heading-like text inside a card.
func headingText(card *goquery.Selection) string {
	for _, sel := range []string{"h1", "h2", "h3", "h4", "strong", "b", "[class*='title']", "[class*='name']"} {
		if t := normalizeSpace(card.Find(sel).First().Text()); t != "" && !priceShapedRe.MatchString(t) {
			return t
		}
	}
	return ""
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
