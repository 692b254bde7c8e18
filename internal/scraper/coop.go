package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/matkollen/offerscraper/internal/browser"
	"github.com/matkollen/offerscraper/internal/models"
)

const (
	coopStoreSearchURL = "https://www.coop.se/hitta-butik/"
	coopOffersURL      = "https://www.coop.se/erbjudanden/"
)

var coopImageCDNs = []string{"res.cloudinary.com/coop", "coop.se", "cloudinary.com"}

// CoopScraper extracts stores and offers from coop.se. Most Coop flows have
// no store-specific offer pages; the national offers page is scraped and
// attributed to whichever store the caller passed in. Coop prices lean on
// the colon notation ("50:-", "149:-/kg") which the shared parser handles.
type CoopScraper struct {
	*base
}

func NewCoopScraper(opts *browser.Options) *CoopScraper {
	return &CoopScraper{base: newBase(models.ChainCoop, opts)}
}

func (s *CoopScraper) SearchStores(ctx context.Context, query string) models.ScraperResult[[]models.Store] {
	return run(s.logger, "searchStores", func() ([]models.Store, error) {
		page, err := s.newPage()
		if err != nil {
			return nil, err
		}
		defer page.Close()

		if err := s.navigate(page, coopStoreSearchURL); err != nil {
			return nil, err
		}

		s.acceptCookies(page,
			"#cmpwelcomebtnyes",
			"button:has-text('Godkänn alla cookies')",
			"button:has-text('Acceptera')",
		)

		input := page.Locator("input[type='search'], input[placeholder*='Sök']").First()
		if count, err := input.Count(); err == nil && count > 0 {
			if err := input.Fill(query); err == nil {
				input.Press("Enter")
				time.Sleep(1500 * time.Millisecond)
			}
		}

		s.scrollToLoad(ctx, page, defaultScrollOptions("li[class*='store'], [data-testid='store-item']", 10))

		items := page.Locator("li[class*='store'], [data-testid='store-item']")
		count, err := items.Count()
		if err != nil {
			return nil, fmt.Errorf("failed to count store items: %w", err)
		}

		var stores []models.Store
		for i := 0; i < count; i++ {
			item := items.Nth(i)

			name, err := textOf(item, "h2, h3, [class*='name']")
			if err != nil || name == "" {
				continue
			}

			address, _ := textOf(item, "address, [class*='address'], p")

			externalID := slugify(name)
			stores = append(stores, models.Store{
				ID:         models.NewStoreID(models.ChainCoop, externalID),
				Name:       name,
				Address:    address,
				Chain:      models.ChainCoop,
				ExternalID: externalID,
				OffersURL:  coopOffersURL,
			})
		}

		return filterStoresByQuery(stores, query), nil
	})
}

func (s *CoopScraper) GetOffers(ctx context.Context, store models.Store) models.ScraperResult[[]models.Offer] {
	return run(s.logger, "getOffers", func() ([]models.Offer, error) {
		page, err := s.newPage()
		if err != nil {
			return nil, err
		}
		defer page.Close()

		if err := s.navigate(page, coopOffersURL); err != nil {
			return nil, err
		}

		s.acceptCookies(page,
			"#cmpwelcomebtnyes",
			"button:has-text('Godkänn alla cookies')",
		)

		// Selecting a store scopes part of the page to store offers; the
		// picker is optional and national offers remain the bulk either way.
		if s.clickIfPresent(page, "button:has-text('Välj butik')") {
			time.Sleep(1 * time.Second)
			input := page.Locator("input[placeholder*='Sök butik']").First()
			if count, err := input.Count(); err == nil && count > 0 {
				if err := input.Fill(store.Name); err == nil {
					time.Sleep(1 * time.Second)
					s.clickIfPresent(page, "li[class*='result'] button, li[class*='result'] a")
				}
			}
		}

		s.scrollToLoad(ctx, page, defaultScrollOptions("[data-testid='offer-card'], article[class*='ItemTeaser'], div[class*='offer-card']", 30))

		scrapedAt := time.Now()
		raws, err := s.extractStructured(page)
		if err != nil || len(raws) < 3 {
			s.logger.Info("structured Coop extraction thin, running generic fallback", "structured", len(raws))
			fallback, ferr := extractGenericCards(page)
			if ferr == nil && len(fallback) > len(raws) {
				raws = fallback
			}
		}

		seen := dedupSet{}
		var offers []models.Offer
		for _, raw := range raws {
			offer, ok := assembleOffer(s.logger, raw, store, scrapedAt, coopImageCDNs)
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

func (s *CoopScraper) extractStructured(page playwright.Page) ([]rawOffer, error) {
	cards := page.Locator("[data-testid='offer-card'], article[class*='ItemTeaser'], div[class*='offer-card']")
	count, err := cards.Count()
	if err != nil {
		return nil, fmt.Errorf("failed to count offer cards: %w", err)
	}

	var raws []rawOffer
	for i := 0; i < count; i++ {
		card := cards.Nth(i)

		name, err := textOf(card, "h3, [class*='Title'], [class*='title']")
		if err != nil || name == "" {
			continue
		}

		raw := rawOffer{Name: name}
		raw.Brand, _ = textOf(card, "[class*='Brand'], [class*='manufacturer']")
		raw.Description, _ = textOf(card, "p[class*='Description'], p[class*='description']")
		raw.PriceText, _ = textOf(card, "[class*='Splash'], [class*='price']")
		raw.OrdinaryText, _ = textOf(card, "s, del, [class*='ordinary']")
		raw.UnitText, _ = textOf(card, "[class*='unit'], [class*='compare']")
		raw.Savings, _ = textOf(card, "[class*='save'], [class*='Save']")

		if img := card.Locator("img").First(); img != nil {
			if src, err := img.GetAttribute("src"); err == nil {
				raw.ImageURL = src
			}
		}
		if link := card.Locator("a[href]").First(); link != nil {
			if href, err := link.GetAttribute("href"); err == nil {
				raw.OfferURL = absoluteURL("https://www.coop.se", href)
			}
		}

		raws = append(raws, raw)
	}

	return raws, nil
}

func (s *CoopScraper) Validate(ctx context.Context) models.ScraperResult[models.ValidationResult] {
	return run(s.logger, "validate", func() (models.ValidationResult, error) {
		return s.validateMarkers(ctx, coopOffersURL, []string{
			"header",
			"main",
			"a[href*='erbjudanden']",
		})
	})
}
