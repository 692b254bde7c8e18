package scraper

import (
	"fmt"

	"github.com/matkollen/offerscraper/internal/browser"
	"github.com/matkollen/offerscraper/internal/models"
)

// New returns the scraper for a chain. This is the central point for adding
// a new chain: implement the Scraper interface and register it here.
func New(chain models.Chain, opts *browser.Options) (Scraper, error) {
	switch chain {
	case models.ChainICA:
		return NewICAScraper(opts), nil
	case models.ChainHemkop:
		return NewHemkopScraper(opts), nil
	case models.ChainCoop:
		return NewCoopScraper(opts), nil
	case models.ChainLidl:
		return NewLidlScraper(opts), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownChain, chain)
}

// NewAll builds one scraper per supported chain.
func NewAll(opts *browser.Options) []Scraper {
	scrapers := make([]Scraper, 0, len(models.Chains()))
	for _, chain := range models.Chains() {
		s, _ := New(chain, opts)
		scrapers = append(scrapers, s)
	}
	return scrapers
}
