package scraper

import (
	"log/slog"
	"strings"
	"time"

	"github.com/matkollen/offerscraper/internal/category"
	"github.com/matkollen/offerscraper/internal/models"
	"github.com/matkollen/offerscraper/internal/pricing"
)

// rawOffer carries the text fragments one card extraction yields before any
// parsing. Chains split price, quantity and unit across different elements,
// so each field is its own blob.
type rawOffer struct {
	Name          string
	Brand         string
	Description   string
	PriceText     string
	OrdinaryText  string
	MultiBuyText  string
	UnitText      string
	Savings       string
	ImageURL      string
	OfferURL      string
	StoreCategory string
}

var memberKeywords = []string{"klubbpris", "stammis", "medlemspris", "för medlemmar", "coop-medlem"}

// assembleOffer resolves a rawOffer into a validated Offer. It returns false
// when the card lacks a name or a plausible price; callers skip such cards
// without aborting the batch.
func assembleOffer(logger *slog.Logger, raw rawOffer, store models.Store, scrapedAt time.Time, cdnAllowlist []string) (models.Offer, bool) {
	name := strings.TrimSpace(raw.Name)
	if name == "" {
		return models.Offer{}, false
	}

	offer := models.Offer{
		Name:        name,
		Brand:       strings.TrimSpace(raw.Brand),
		Description: strings.TrimSpace(raw.Description),
		Savings:     strings.TrimSpace(raw.Savings),
		OfferURL:    raw.OfferURL,
		StoreID:     store.ID,
		Chain:       store.Chain,
		ScrapedAt:   scrapedAt,
	}

	// Multi-buy interpretation takes priority over any plain decimal found
	// elsewhere on the card.
	multiText := raw.MultiBuyText
	if multiText == "" {
		multiText = raw.PriceText
	}
	if qty, total, ok := pricing.ParseMultiBuy(multiText); ok {
		perUnit, _ := pricing.ParsePrice(multiText)
		offer.OfferPrice = total
		offer.Quantity = &qty
		offer.QuantityPrice = &perUnit
	} else if p, ok := pricing.ParseColonPrice(raw.PriceText); ok && models.PlausiblePrice(p) {
		offer.OfferPrice = p
	} else if p, ok := pricing.ParsePrice(raw.PriceText); ok && models.PlausiblePrice(p) {
		offer.OfferPrice = p
	} else {
		// Last resort: pick the minimum plausible decimal anywhere on the
		// card, assuming the smallest number is the discounted price.
		candidates := pricing.CandidatePrices(cardText(raw))
		best, ok := pricing.BestPrice(candidates)
		if !ok {
			return models.Offer{}, false
		}
		if len(candidates) > 2 {
			logger.Debug("ambiguous price candidates on card", "name", name, "candidates", len(candidates))
		}
		offer.OfferPrice = best
	}

	if !models.PlausiblePrice(offer.OfferPrice) {
		return models.Offer{}, false
	}

	if p, ok := pricing.ParsePrice(raw.OrdinaryText); ok && models.PlausiblePrice(p) && p > offer.OfferPrice {
		offer.OriginalPrice = &p
	}

	if unit, ok := pricing.ParseUnit(raw.UnitText); ok {
		offer.Unit = unit
	} else if unit, ok := pricing.ParseUnit(raw.PriceText); ok {
		offer.Unit = unit
	}

	lower := strings.ToLower(cardText(raw))
	for _, kw := range memberKeywords {
		if strings.Contains(lower, kw) {
			offer.MemberOnly = true
			break
		}
	}

	if max, ok := pricing.ParseMaxPerHousehold(lower); ok {
		offer.MaxPerHousehold = &max
	}

	if raw.ImageURL != "" && allowedImage(raw.ImageURL, cdnAllowlist) {
		offer.ImageURL = raw.ImageURL
	}

	offer.Category = string(category.Classify(raw.StoreCategory, name, store.Chain))
	offer.ID = models.NewOfferID(store.Chain, store.ID, name, scrapedAt)

	return offer, true
}

// allowedImage prefers primary-CDN image sources over third-party and
// placeholder hosts. An empty allowlist accepts everything.
func allowedImage(url string, allowlist []string) bool {
	if len(allowlist) == 0 {
		return true
	}
	for _, host := range allowlist {
		if strings.Contains(url, host) {
			return true
		}
	}
	return false
}

func cardText(raw rawOffer) string {
	return strings.Join([]string{
		raw.Name, raw.Description, raw.PriceText, raw.OrdinaryText,
		raw.MultiBuyText, raw.UnitText, raw.Savings,
	}, " ")
}
