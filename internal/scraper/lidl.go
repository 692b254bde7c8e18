package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/matkollen/offerscraper/internal/browser"
	"github.com/matkollen/offerscraper/internal/models"
)

const lidlOffersURL = "https://www.lidl.se/c/erbjudanden"

var lidlImageCDNs = []string{"lidl-content", "lidl.se", "schwarz-media"}

// LidlScraper extracts offers from lidl.se. Lidl runs chain-national weekly
// offers with no store-specific pages, so store search returns a single
// synthetic "national" store placeholder that all offers attach to.
type LidlScraper struct {
	*base
}

func NewLidlScraper(opts *browser.Options) *LidlScraper {
	return &LidlScraper{base: newBase(models.ChainLidl, opts)}
}

// NationalStore is the placeholder every Lidl offer is attributed to.
func (s *LidlScraper) NationalStore() models.Store {
	return models.Store{
		ID:         models.NewStoreID(models.ChainLidl, "national"),
		Name:       "Lidl Sverige",
		Chain:      models.ChainLidl,
		ExternalID: "national",
		OffersURL:  lidlOffersURL,
	}
}

func (s *LidlScraper) SearchStores(ctx context.Context, query string) models.ScraperResult[[]models.Store] {
	return run(s.logger, "searchStores", func() ([]models.Store, error) {
		return filterStoresByQuery([]models.Store{s.NationalStore()}, query), nil
	})
}

func (s *LidlScraper) GetOffers(ctx context.Context, store models.Store) models.ScraperResult[[]models.Offer] {
	return run(s.logger, "getOffers", func() ([]models.Offer, error) {
		page, err := s.newPage()
		if err != nil {
			return nil, err
		}
		defer page.Close()

		if err := s.navigate(page, lidlOffersURL); err != nil {
			return nil, err
		}

		s.acceptCookies(page,
			"#onetrust-accept-btn-handler",
			"button:has-text('ACCEPTERA')",
			"button:has-text('Acceptera')",
		)

		s.scrollToLoad(ctx, page, scrollOptions{
			TargetSelector:   "[data-grid-item], article[class*='product'], div[class*='product-grid-box']",
			MinCount:         40,
			MaxRounds:        15,
			Settle:           1200 * time.Millisecond,
			LoadMoreSelector: "button:has-text('Visa mer'), a[class*='load-more']",
		})

		scrapedAt := time.Now()
		raws, err := s.extractStructured(page)
		if err != nil || len(raws) < 3 {
			s.logger.Info("structured Lidl extraction thin, running generic fallback", "structured", len(raws))
			fallback, ferr := extractGenericCards(page)
			if ferr == nil && len(fallback) > len(raws) {
				raws = fallback
			}
		}

		seen := dedupSet{}
		var offers []models.Offer
		for _, raw := range raws {
			offer, ok := assembleOffer(s.logger, raw, store, scrapedAt, lidlImageCDNs)
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

func (s *LidlScraper) extractStructured(page playwright.Page) ([]rawOffer, error) {
	cards := page.Locator("[data-grid-item], article[class*='product'], div[class*='product-grid-box']")
	count, err := cards.Count()
	if err != nil {
		return nil, fmt.Errorf("failed to count product boxes: %w", err)
	}

	var raws []rawOffer
	for i := 0; i < count; i++ {
		card := cards.Nth(i)

		name, err := textOf(card, "h3[class*='title'], [class*='grid-box__title'], h3")
		if err != nil || name == "" {
			continue
		}

		raw := rawOffer{Name: name}
		raw.Brand, _ = textOf(card, "[class*='brand']")
		raw.Description, _ = textOf(card, "[class*='keyfacts'], [class*='description']")
		raw.PriceText, _ = textOf(card, "[class*='price'] [class*='value'], [class*='lidl-m-pricebox__price']")
		raw.OrdinaryText, _ = textOf(card, "s, del, [class*='strikethrough'], [class*='deleted-price']")
		raw.UnitText, _ = textOf(card, "[class*='basic-quantity'], [class*='price-footer']")
		raw.Savings, _ = textOf(card, "[class*='discount'], [class*='highlight']")

		if img := card.Locator("img").First(); img != nil {
			if src, err := img.GetAttribute("src"); err == nil {
				raw.ImageURL = src
			}
		}
		if link := card.Locator("a[href]").First(); link != nil {
			if href, err := link.GetAttribute("href"); err == nil {
				raw.OfferURL = absoluteURL("https://www.lidl.se", href)
			}
		}

		raws = append(raws, raw)
	}

	return raws, nil
}

func (s *LidlScraper) Validate(ctx context.Context) models.ScraperResult[models.ValidationResult] {
	return run(s.logger, "validate", func() (models.ValidationResult, error) {
		return s.validateMarkers(ctx, lidlOffersURL, []string{
			"header",
			"main",
			"img",
		})
	})
}
