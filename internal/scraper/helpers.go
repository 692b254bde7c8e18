package scraper

import (
	"regexp"
	"strings"

	"github.com/playwright-community/playwright-go"

	"github.com/matkollen/offerscraper/internal/models"
)

// textOf reads the trimmed text of the first element matching selector
// inside root. A missing element is an empty string, not an error worth
// aborting a card for.
func textOf(root playwright.Locator, selector string) (string, error) {
	loc := root.Locator(selector).First()
	count, err := loc.Count()
	if err != nil || count == 0 {
		return "", err
	}
	text, err := loc.TextContent()
	if err != nil {
		return "", err
	}
	return strings.Join(strings.Fields(text), " "), nil
}

// filterStoresByQuery keeps stores whose name, city or address contains the
// query, case-insensitively. Used by the DOM fallback search paths, which
// scrape full store listings rather than server-filtered results.
func filterStoresByQuery(stores []models.Store, query string) []models.Store {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return stores
	}

	var matched []models.Store
	for _, store := range stores {
		haystack := strings.ToLower(store.Name + " " + store.City + " " + store.Address)
		if strings.Contains(haystack, q) {
			matched = append(matched, store)
		}
	}
	return matched
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(s string) string {
	s = strings.ToLower(s)
	replacer := strings.NewReplacer("å", "a", "ä", "a", "ö", "o", "é", "e", "ô", "o")
	s = replacer.Replace(s)
	return strings.Trim(slugRe.ReplaceAllString(s, "-"), "-")
}

func absoluteURL(base, href string) string {
	if href == "" || strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return base + href
}
