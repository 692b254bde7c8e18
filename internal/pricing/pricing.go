// Package pricing converts localized Swedish price strings into canonical
// numeric values. Retail sites mix several encodings on a single offer card:
// comma decimals ("12,50 kr"), colon notation ("50:-", "12:50", "149:-/kg")
// and multi-buy phrasing ("3 för 89 kr"). Each chain extractor layers its own
// variants on top of these shared primitives, because real page markup splits
// price, quantity and unit across different elements per retailer.
package pricing

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	multiBuyRe = regexp.MustCompile(`(?i)(\d+)\s*(?:st\s+)?f[öo]r\s+(\d+(?:[.,]\d{1,2})?)\s*(?:kr|:-)?`)
	decimalRe  = regexp.MustCompile(`(\d+(?:[.,]\d{1,2})?)`)
	colonRe    = regexp.MustCompile(`(\d+)\s*:\s*(-|\d{2})`)
	unitRe     = regexp.MustCompile(`/\s*([a-zA-ZåäöÅÄÖ]+)`)
	maxBuyRe   = regexp.MustCompile(`(?i)max\s+(\d+)\s+k[öo]p`)
)

// ParsePrice extracts a canonical price from free text. A multi-buy phrase
// takes priority and yields the per-unit price, rounded to two decimals.
// Otherwise the first decimal-or-comma numeral wins.
func ParsePrice(text string) (float64, bool) {
	if qty, total, ok := ParseMultiBuy(text); ok && qty > 0 {
		return round2(total / float64(qty)), true
	}

	m := decimalRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	return parseFloat(m[1])
}

// ParseMultiBuy matches "N för M kr" phrasing and returns the unit count and
// the total price for the bundle.
func ParseMultiBuy(text string) (qty int, total float64, ok bool) {
	m := multiBuyRe.FindStringSubmatch(text)
	if m == nil {
		return 0, 0, false
	}
	qty, err := strconv.Atoi(m[1])
	if err != nil || qty == 0 {
		return 0, 0, false
	}
	total, ok = parseFloat(m[2])
	if !ok {
		return 0, 0, false
	}
	return qty, total, true
}

// ParseColonPrice handles the colon notations "50:-" (whole kr) and "12:50"
// (kronor:öre), optionally followed by a unit like "149:-/kg".
func ParseColonPrice(text string) (float64, bool) {
	m := colonRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	whole, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	if m[2] == "-" {
		return float64(whole), true
	}
	ore, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, false
	}
	return float64(whole) + float64(ore)/100, true
}

// ParseUnit extracts a trailing "/unit" token such as "/kg" or "/st".
func ParseUnit(text string) (string, bool) {
	m := unitRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return strings.ToLower(m[1]), true
}

// ParseMaxPerHousehold matches the "Max N köp" household cap phrase.
func ParseMaxPerHousehold(text string) (int, bool) {
	m := maxBuyRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n == 0 {
		return 0, false
	}
	return n, true
}

// BestPrice picks the offer price among several candidates found on one card.
// The minimum plausible value wins, on the assumption that the smallest
// number on a discount card is the discounted price. This is a documented
// heuristic: a card carrying an unrelated smaller number can misfire it.
func BestPrice(candidates []float64) (float64, bool) {
	best := 0.0
	found := false
	for _, c := range candidates {
		if c < 1 || c > 10000 {
			continue
		}
		if !found || c < best {
			best = c
			found = true
		}
	}
	return best, found
}

// CandidatePrices collects every plausible decimal price in a blob of card
// text, colon notations included.
func CandidatePrices(text string) []float64 {
	var out []float64
	for _, m := range colonRe.FindAllStringSubmatch(text, -1) {
		if p, ok := ParseColonPrice(m[0]); ok {
			out = append(out, p)
		}
	}
	// Strip colon matches so their digits are not re-counted as decimals.
	stripped := colonRe.ReplaceAllString(text, " ")
	for _, m := range decimalRe.FindAllStringSubmatch(stripped, -1) {
		if p, ok := parseFloat(m[1]); ok {
			out = append(out, p)
		}
	}
	return out
}

func parseFloat(s string) (float64, bool) {
	s = strings.Replace(strings.TrimSpace(s), ",", ".", 1)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
