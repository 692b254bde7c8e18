package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/matkollen/offerscraper/internal/browser"
	"github.com/matkollen/offerscraper/internal/models"
	"github.com/matkollen/offerscraper/internal/pricing"
)

const (
	hemkopStoreSearchURL = "https://www.hemkop.se/hitta-butik"
	hemkopOffersBaseURL  = "https://www.hemkop.se/erbjudanden"
)

var hemkopImageCDNs = []string{"assets.axfood.se", "hemkop.se", "d1ax9fcfm4rjrf.cloudfront.net"}

// HemkopScraper extracts stores and offers from hemkop.se. The store's
// product list lives behind a dynamically selected tab whose index is not
// fixed, so offer extraction clicks candidate tabs until a target container
// count appears.
type HemkopScraper struct {
	*base
}

func NewHemkopScraper(opts *browser.Options) *HemkopScraper {
	return &HemkopScraper{base: newBase(models.ChainHemkop, opts)}
}

func (s *HemkopScraper) SearchStores(ctx context.Context, query string) models.ScraperResult[[]models.Store] {
	return run(s.logger, "searchStores", func() ([]models.Store, error) {
		page, err := s.newPage()
		if err != nil {
			return nil, err
		}
		defer page.Close()

		if err := s.navigate(page, hemkopStoreSearchURL); err != nil {
			return nil, err
		}

		s.acceptCookies(page,
			"#onetrust-accept-btn-handler",
			"button:has-text('Godkänn alla')",
		)

		// Typing a query filters the list server-side; missing search box
		// means the full list is already rendered.
		input := page.Locator("input[type='search'], input[placeholder*='Sök']").First()
		if count, err := input.Count(); err == nil && count > 0 {
			if err := input.Fill(query); err == nil {
				input.Press("Enter")
				time.Sleep(1500 * time.Millisecond)
			}
		}

		s.scrollToLoad(ctx, page, defaultScrollOptions("[data-testid='store-card'], li[class*='store']", 10))

		cards := page.Locator("[data-testid='store-card'], li[class*='store']")
		count, err := cards.Count()
		if err != nil {
			return nil, fmt.Errorf("failed to count store cards: %w", err)
		}

		var stores []models.Store
		for i := 0; i < count; i++ {
			card := cards.Nth(i)

			name, err := textOf(card, "[data-testid='store-name'], h2, h3")
			if err != nil || name == "" {
				continue
			}

			address, _ := textOf(card, "[data-testid='store-address'], address, p")

			externalID := slugify(name)
			stores = append(stores, models.Store{
				ID:         models.NewStoreID(models.ChainHemkop, externalID),
				Name:       name,
				Address:    address,
				Chain:      models.ChainHemkop,
				ExternalID: externalID,
				OffersURL:  hemkopOffersBaseURL,
			})
		}

		return filterStoresByQuery(stores, query), nil
	})
}

func (s *HemkopScraper) GetOffers(ctx context.Context, store models.Store) models.ScraperResult[[]models.Offer] {
	return run(s.logger, "getOffers", func() ([]models.Offer, error) {
		url := store.OffersURL
		if url == "" {
			url = hemkopOffersBaseURL
		}

		page, err := s.newPage()
		if err != nil {
			return nil, err
		}
		defer page.Close()

		if err := s.navigate(page, url); err != nil {
			return nil, err
		}

		s.acceptCookies(page,
			"#onetrust-accept-btn-handler",
			"button:has-text('Godkänn alla')",
		)

		s.selectOffersTab(page)

		s.scrollToLoad(ctx, page, scrollOptions{
			TargetSelector:   "[data-testid='product-container'], article[class*='product']",
			MinCount:         40,
			MaxRounds:        15,
			Settle:           1200 * time.Millisecond,
			LoadMoreSelector: "button:has-text('Visa fler')",
		})

		scrapedAt := time.Now()
		raws, err := s.extractStructured(page)
		if err != nil || len(raws) < 3 {
			s.logger.Info("structured Hemköp extraction thin, running generic fallback", "structured", len(raws))
			fallback, ferr := extractGenericCards(page)
			if ferr == nil && len(fallback) > len(raws) {
				raws = fallback
			}
		}

		seen := dedupSet{}
		var offers []models.Offer
		for _, raw := range raws {
			offer, ok := assembleOffer(s.logger, raw, store, scrapedAt, hemkopImageCDNs)
			if !ok {
				continue
			}
			if !seen.accept(&offer) {
				continue
			}
			offers = append(offers, offer)
		}

		if len(offers) == 0 {
			return nil, ErrNoOffersFound
		}
		return offers, nil
	})
}

// selectOffersTab clicks candidate tab elements until the product container
// count materializes. The desired tab's position shifts between deploys, so
// each candidate is tried in turn.
func (s *HemkopScraper) selectOffersTab(page playwright.Page) {
	tabs := page.Locator("[role='tab'], button[class*='tab']")
	count, err := tabs.Count()
	if err != nil || count == 0 {
		return
	}

	for i := 0; i < count && i < 6; i++ {
		tab := tabs.Nth(i)
		if err := tab.Click(playwright.LocatorClickOptions{
			Timeout: playwright.Float(3000),
		}); err != nil {
			continue
		}
		time.Sleep(1 * time.Second)

		products, err := page.Locator("[data-testid='product-container'], article[class*='product']").Count()
		if err == nil && products >= 5 {
			s.logger.Debug("offers tab found", "index", i, "products", products)
			return
		}
	}
}

// extractStructured reads Hemköp's product containers. Price and multi-buy
// quantity live in separate paragraphs: a "29:90" style splash followed by a
// "2 FÖR" paragraph when the promotion is a multi-buy.
func (s *HemkopScraper) extractStructured(page playwright.Page) ([]rawOffer, error) {
	cards := page.Locator("[data-testid='product-container'], article[class*='product']")
	count, err := cards.Count()
	if err != nil {
		return nil, fmt.Errorf("failed to count product containers: %w", err)
	}

	var raws []rawOffer
	for i := 0; i < count; i++ {
		card := cards.Nth(i)

		name, err := textOf(card, "[data-testid='product-title'], h3, [class*='title']")
		if err != nil || name == "" {
			continue
		}

		raw := rawOffer{Name: name}
		raw.Brand, _ = textOf(card, "[data-testid='product-brand'], [class*='brand']")
		raw.Description, _ = textOf(card, "[data-testid='product-description'], p[class*='description']")
		raw.PriceText, _ = textOf(card, "[data-testid='price-splash'], [class*='splash']")
		raw.OrdinaryText, _ = textOf(card, "[data-testid='ordinary-price'], s, del")
		raw.UnitText, _ = textOf(card, "[data-testid='compare-price'], [class*='compare']")
		raw.Savings, _ = textOf(card, "[data-testid='save-label'], [class*='save']")

		// The multi-buy count is its own paragraph right after the price.
		if multi, _ := textOf(card, "p:has-text('FÖR'), [class*='multi']"); multi != "" {
			raw.MultiBuyText = s.combineMultiBuy(multi, raw.PriceText)
		}

		if img := card.Locator("img").First(); img != nil {
			if src, err := img.GetAttribute("src"); err == nil {
				raw.ImageURL = src
			}
		}

		raws = append(raws, raw)
	}

	return raws, nil
}

// combineMultiBuy stitches a standalone "2 FÖR" paragraph together with the
// price splash so the shared parser sees one "2 för 45 kr" phrase.
func (s *HemkopScraper) combineMultiBuy(multiText, priceText string) string {
	multiText = strings.TrimSpace(multiText)
	if multiText == "" || priceText == "" {
		return ""
	}
	if !strings.HasSuffix(strings.ToUpper(multiText), "FÖR") {
		return multiText
	}
	// Colon splashes like "29:90" have to become "29,90" before the shared
	// multi-buy pattern can read the stitched phrase.
	if p, ok := pricing.ParseColonPrice(priceText); ok {
		priceText = strings.Replace(fmt.Sprintf("%.2f", p), ".", ",", 1)
	}
	return multiText + " " + priceText + " kr"
}

func (s *HemkopScraper) Validate(ctx context.Context) models.ScraperResult[models.ValidationResult] {
	return run(s.logger, "validate", func() (models.ValidationResult, error) {
		return s.validateMarkers(ctx, hemkopOffersBaseURL, []string{
			"header",
			"main",
			"a[href*='erbjudanden']",
		})
	})
}
