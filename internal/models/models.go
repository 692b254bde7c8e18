package models

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Chain identifies a grocery retailer brand.
type Chain string

const (
	ChainICA    Chain = "ica"
	ChainHemkop Chain = "hemkop"
	ChainCoop   Chain = "coop"
	ChainLidl   Chain = "lidl"
)

// Chains lists every supported chain in display order.
func Chains() []Chain {
	return []Chain{ChainICA, ChainHemkop, ChainCoop, ChainLidl}
}

// ParseChain validates a chain identifier from user input.
func ParseChain(s string) (Chain, bool) {
	switch Chain(strings.ToLower(strings.TrimSpace(s))) {
	case ChainICA:
		return ChainICA, true
	case ChainHemkop:
		return ChainHemkop, true
	case ChainCoop:
		return ChainCoop, true
	case ChainLidl:
		return ChainLidl, true
	}
	return "", false
}

// Store is a physical or logical retail outlet. Offers reference stores by
// ID but never own them.
type Store struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Address    string `json:"address,omitempty"`
	City       string `json:"city,omitempty"`
	Chain      Chain  `json:"chain"`
	ExternalID string `json:"external_id"`
	Profile    string `json:"profile,omitempty"`
	OffersURL  string `json:"offers_url,omitempty"`
}

// NewStoreID builds the chain-prefixed internal store id.
func NewStoreID(chain Chain, externalID string) string {
	return fmt.Sprintf("%s-%s", chain, externalID)
}

// Offer is a single promotional product listing scraped at a point in time.
// Offer IDs are regenerated on every scrape; there is no stable identity for
// the same promotion across two scrape passes.
type Offer struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Brand           string    `json:"brand,omitempty"`
	Description     string    `json:"description,omitempty"`
	OriginalPrice   *float64  `json:"original_price,omitempty"`
	OfferPrice      float64   `json:"offer_price"`
	Quantity        *int      `json:"quantity,omitempty"`
	QuantityPrice   *float64  `json:"quantity_price,omitempty"`
	Unit            string    `json:"unit,omitempty"`
	Savings         string    `json:"savings,omitempty"`
	ImageURL        string    `json:"image_url,omitempty"`
	OfferURL        string    `json:"offer_url,omitempty"`
	StoreID         string    `json:"store_id"`
	Chain           Chain     `json:"chain"`
	Category        string    `json:"category,omitempty"`
	MaxPerHousehold *int      `json:"max_per_household,omitempty"`
	MemberOnly      bool      `json:"member_only"`
	ScrapedAt       time.Time `json:"scraped_at"`
}

// NewOfferID derives an offer id from chain, store, product name and scrape
// time. The name is hashed so ids stay short and url-safe.
func NewOfferID(chain Chain, storeID, name string, scrapedAt time.Time) string {
	sum := sha1.Sum([]byte(strings.ToLower(strings.TrimSpace(name))))
	return fmt.Sprintf("%s:%s:%s:%d", chain, storeID, hex.EncodeToString(sum[:6]), scrapedAt.Unix())
}

const (
	// MinOfferPrice and MaxOfferPrice bound the accepted price band. Values
	// outside it are parse noise: 0,00 artifacts below, page numbers and
	// article codes above.
	MinOfferPrice = 1.0
	MaxOfferPrice = 10000.0
)

// PlausiblePrice reports whether p falls inside the accepted offer price band.
func PlausiblePrice(p float64) bool {
	return p >= MinOfferPrice && p <= MaxOfferPrice
}

// ScraperResult wraps any scraper operation outcome. Exactly one of Data and
// Error is meaningful on a terminal result.
type ScraperResult[T any] struct {
	Success   bool          `json:"success"`
	Data      T             `json:"data,omitempty"`
	Error     string        `json:"error,omitempty"`
	ScrapedAt time.Time     `json:"scraped_at"`
	Duration  time.Duration `json:"duration"`
}

// ValidationResult is a lightweight synthetic health check, distinct from a
// real scrape. It exists to detect upstream site redesigns early.
type ValidationResult struct {
	Chain     Chain     `json:"chain"`
	Valid     bool      `json:"valid"`
	Message   string    `json:"message"`
	CheckedAt time.Time `json:"checked_at"`
}
