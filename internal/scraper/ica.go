package scraper

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/playwright-community/playwright-go"

	"github.com/matkollen/offerscraper/internal/browser"
	"github.com/matkollen/offerscraper/internal/models"
)

const (
	icaStoreSearchURL = "https://www.ica.se/butiker/"
	icaOffersBaseURL  = "https://www.ica.se/erbjudanden/"
)

var icaImageCDNs = []string{"assets.icanet.se", "icanet.se", "ica.se"}

// ICAScraper extracts stores and offers from ica.se. Store search is
// two-stage: the page's own undocumented JSON search API is discovered by
// intercepting the live session's network traffic and then paged directly;
// pure DOM scraping of the search page is the fallback.
type ICAScraper struct {
	*base
	http *resty.Client
}

func NewICAScraper(opts *browser.Options) *ICAScraper {
	return &ICAScraper{
		base: newBase(models.ChainICA, opts),
		http: resty.New().
			SetTimeout(15 * time.Second).
			SetHeader("Accept", "application/json"),
	}
}

// icaSession is the explicit session context captured from the browser's own
// network traffic. The store-search API is not callable without a
// session-derived token, so the scraper observes one live request before it
// can page the API directly.
type icaSession struct {
	Token     string
	SearchURL string
}

func (s *ICAScraper) SearchStores(ctx context.Context, query string) models.ScraperResult[[]models.Store] {
	return run(s.logger, "searchStores", func() ([]models.Store, error) {
		page, err := s.newPage()
		if err != nil {
			return nil, err
		}
		defer page.Close()

		session := s.interceptSession(page)

		if err := s.navigate(page, icaStoreSearchURL); err != nil {
			return nil, err
		}

		s.acceptCookies(page,
			"#onetrust-accept-btn-handler",
			"button:has-text('Acceptera alla')",
			"button:has-text('Godkänn')",
		)

		s.typeSearchQuery(page, query)

		// Give the page a moment to fire its own search request so the
		// interception has something to observe.
		time.Sleep(2 * time.Second)

		if sess := session(); sess != nil {
			stores, err := s.searchViaAPI(ctx, sess, query)
			if err == nil && len(stores) > 0 {
				return stores, nil
			}
			s.logger.Warn("ICA store API path failed, falling back to DOM", "error", err)
		} else {
			s.logger.Info("no ICA session captured, using DOM fallback")
		}

		return s.searchViaDOM(ctx, page, query)
	})
}

// interceptSession registers a response listener and returns a getter for
// the captured session. Capture is one-time: the first store-search request
// the page makes supplies the token and the exact API URL.
func (s *ICAScraper) interceptSession(page playwright.Page) func() *icaSession {
	var mu sync.Mutex
	var captured *icaSession

	page.OnResponse(func(resp playwright.Response) {
		url := resp.URL()
		if !strings.Contains(url, "/api/store-search") && !strings.Contains(url, "/stores/search") {
			return
		}

		mu.Lock()
		defer mu.Unlock()
		if captured != nil {
			return
		}

		headers, err := resp.Request().AllHeaders()
		if err != nil {
			return
		}
		token := headers["authorization"]
		if token == "" {
			token = headers["x-auth-token"]
		}
		if token == "" {
			return
		}

		captured = &icaSession{Token: token, SearchURL: url}
		s.logger.Debug("captured ICA search session", "url", url)
	})

	return func() *icaSession {
		mu.Lock()
		defer mu.Unlock()
		return captured
	}
}

type icaStoreSearchResponse struct {
	Results []struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Profile string `json:"profile"`
		Address struct {
			Street string `json:"street"`
			City   string `json:"city"`
		} `json:"address"`
	} `json:"results"`
	Page       int `json:"page"`
	TotalPages int `json:"totalPages"`
}

// searchViaAPI pages the captured search endpoint directly, reusing the
// session token, starting past the first page the browser already loaded.
func (s *ICAScraper) searchViaAPI(ctx context.Context, sess *icaSession, query string) ([]models.Store, error) {
	var stores []models.Store

	for pageNum := 1; pageNum <= 20; pageNum++ {
		var body icaStoreSearchResponse
		resp, err := s.http.R().
			SetContext(ctx).
			SetHeader("Authorization", sess.Token).
			SetQueryParam("q", query).
			SetQueryParam("page", fmt.Sprintf("%d", pageNum)).
			SetResult(&body).
			Get(sess.SearchURL)
		if err != nil {
			return nil, fmt.Errorf("ICA store API request failed: %w", err)
		}
		if resp.StatusCode() != 200 {
			return nil, fmt.Errorf("ICA store API returned status %d", resp.StatusCode())
		}

		for _, r := range body.Results {
			if r.ID == "" || r.Name == "" {
				continue
			}
			stores = append(stores, models.Store{
				ID:         models.NewStoreID(models.ChainICA, r.ID),
				Name:       r.Name,
				Address:    r.Address.Street,
				City:       r.Address.City,
				Chain:      models.ChainICA,
				ExternalID: r.ID,
				Profile:    r.Profile,
				OffersURL:  icaOffersBaseURL + r.ID + "/",
			})
		}

		if body.TotalPages == 0 || pageNum >= body.TotalPages || len(body.Results) == 0 {
			break
		}
	}

	return stores, nil
}

// searchViaDOM scrapes the store cards rendered on the search page itself.
func (s *ICAScraper) searchViaDOM(ctx context.Context, page playwright.Page, query string) ([]models.Store, error) {
	s.scrollToLoad(ctx, page, defaultScrollOptions("[data-test='store-card'], a[href*='/butiker/']", 10))

	cards := page.Locator("[data-test='store-card'], li[class*='store-list'] a[href*='/butiker/']")
	count, err := cards.Count()
	if err != nil {
		return nil, fmt.Errorf("failed to count store cards: %w", err)
	}

	var stores []models.Store
	for i := 0; i < count; i++ {
		card := cards.Nth(i)

		name, err := textOf(card, "[data-test='store-name'], h2, h3")
		if err != nil || name == "" {
			continue
		}

		href, _ := card.GetAttribute("href")
		externalID := icaStoreIDFromHref(href)
		if externalID == "" {
			externalID = slugify(name)
		}

		address, _ := textOf(card, "[data-test='store-address'], address, p")

		stores = append(stores, models.Store{
			ID:         models.NewStoreID(models.ChainICA, externalID),
			Name:       name,
			Address:    address,
			Chain:      models.ChainICA,
			ExternalID: externalID,
			Profile:    icaProfileFromName(name),
			OffersURL:  icaOffersBaseURL + externalID + "/",
		})
	}

	return filterStoresByQuery(stores, query), nil
}

func (s *ICAScraper) GetOffers(ctx context.Context, store models.Store) models.ScraperResult[[]models.Offer] {
	return run(s.logger, "getOffers", func() ([]models.Offer, error) {
		url := store.OffersURL
		if url == "" {
			url = icaOffersBaseURL + store.ExternalID + "/"
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
			"button:has-text('Acceptera alla')",
		)

		// The store page defaults to national offers; the in-store set
		// lives behind a tab. Best effort, missing tab is normal.
		s.clickIfPresent(page, "button:has-text('Butikens erbjudanden')")

		s.scrollToLoad(ctx, page, defaultScrollOptions("[data-test='offer-card'], article[class*='offer']", 30))

		scrapedAt := time.Now()
		raws, err := s.extractStructured(page)
		if err != nil || len(raws) < 3 {
			s.logger.Info("structured ICA extraction thin, running generic fallback", "structured", len(raws))
			fallback, ferr := extractGenericCards(page)
			if ferr == nil && len(fallback) > len(raws) {
				raws = fallback
			}
		}

		seen := dedupSet{}
		var offers []models.Offer
		for _, raw := range raws {
			offer, ok := assembleOffer(s.logger, raw, store, scrapedAt, icaImageCDNs)
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

// extractStructured is the precise tier: ICA's offer cards carry data-test
// attributes that yield clean fields.
func (s *ICAScraper) extractStructured(page playwright.Page) ([]rawOffer, error) {
	cards := page.Locator("[data-test='offer-card'], article[class*='offer-card']")
	count, err := cards.Count()
	if err != nil {
		return nil, fmt.Errorf("failed to count offer cards: %w", err)
	}

	var raws []rawOffer
	for i := 0; i < count; i++ {
		card := cards.Nth(i)

		name, err := textOf(card, "[data-test='offer-title'], h3")
		if err != nil || name == "" {
			continue
		}

		raw := rawOffer{Name: name}
		raw.Brand, _ = textOf(card, "[data-test='offer-brand']")
		raw.Description, _ = textOf(card, "[data-test='offer-description'], p[class*='description']")
		raw.PriceText, _ = textOf(card, "[data-test='price-splash'], [class*='price-splash']")
		raw.OrdinaryText, _ = textOf(card, "[data-test='ordinary-price'], s, del")
		raw.UnitText, _ = textOf(card, "[data-test='price-unit'], [class*='unit']")
		raw.Savings, _ = textOf(card, "[data-test='save-text'], [class*='save']")
		raw.StoreCategory, _ = textOf(card, "[data-test='offer-category']")

		if img := card.Locator("img").First(); img != nil {
			if src, err := img.GetAttribute("src"); err == nil {
				raw.ImageURL = src
			}
		}
		if link := card.Locator("a[href]").First(); link != nil {
			if href, err := link.GetAttribute("href"); err == nil {
				raw.OfferURL = absoluteURL("https://www.ica.se", href)
			}
		}

		raws = append(raws, raw)
	}

	return raws, nil
}

func (s *ICAScraper) Validate(ctx context.Context) models.ScraperResult[models.ValidationResult] {
	return run(s.logger, "validate", func() (models.ValidationResult, error) {
		return s.validateMarkers(ctx, icaOffersBaseURL, []string{
			"header",
			"a[href*='/butiker/']",
			"main",
		})
	})
}

// typeSearchQuery submits the store search form. Both steps are best
// effort: a missing search box means the page already lists stores.
func (s *ICAScraper) typeSearchQuery(page playwright.Page, query string) {
	input := page.Locator("input[type='search'], input[placeholder*='Sök']").First()
	count, err := input.Count()
	if err != nil || count == 0 {
		return
	}
	if err := input.Fill(query); err != nil {
		return
	}
	input.Press("Enter")
	time.Sleep(1500 * time.Millisecond)
}

func icaStoreIDFromHref(href string) string {
	href = strings.Trim(href, "/")
	parts := strings.Split(href, "/")
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}

// icaProfileFromName pulls the store format out of the display name, e.g.
// "ICA Maxi Lindhagen" -> "Maxi".
func icaProfileFromName(name string) string {
	for _, profile := range []string{"Maxi", "Kvantum", "Supermarket", "Nära"} {
		if strings.Contains(name, profile) {
			return profile
		}
	}
	return ""
}
