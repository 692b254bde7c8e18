// Package category maps free-text store categories and product names onto a
// fixed taxonomy of eleven standard tags. Classification is pure: no match is
// a normal return value, never an error.
package category

import (
	"regexp"
	"strings"

	"github.com/matkollen/offerscraper/internal/models"
)

// Category is one of the eleven standard taxonomy tags.
type Category string

const (
	KottChark     Category = "kott-chark"
	Mejeri        Category = "mejeri"
	FruktGront    Category = "frukt-gront"
	FiskSkaldjur  Category = "fisk-skaldjur"
	BrodBageri    Category = "brod-bageri"
	Fryst         Category = "fryst"
	Skafferi      Category = "skafferi"
	Dryck         Category = "dryck"
	GodisSnacks   Category = "godis-snacks"
	HygienHushall Category = "hygien-hushall"
	Ovrigt        Category = "ovrigt"
)

// icaTable covers both ICA and Hemköp, which use the same Axfood-style
// category vocabulary on their offer pages.
var icaTable = map[string]Category{
	"kött & chark":        KottChark,
	"kött, chark & fågel": KottChark,
	"chark":               KottChark,
	"mejeri":              Mejeri,
	"mejeri & ost":        Mejeri,
	"mejeri, ost & ägg":   Mejeri,
	"frukt & grönt":       FruktGront,
	"frukt och grönt":     FruktGront,
	"grönsaker":           FruktGront,
	"fisk & skaldjur":     FiskSkaldjur,
	"fisk och skaldjur":   FiskSkaldjur,
	"bröd & bageri":       BrodBageri,
	"bröd & kakor":        BrodBageri,
	"fryst":               Fryst,
	"frysta varor":        Fryst,
	"skafferi":            Skafferi,
	"skafferiet":          Skafferi,
	"dryck":               Dryck,
	"drycker":             Dryck,
	"godis & snacks":      GodisSnacks,
	"godis":               GodisSnacks,
	"snacks":              GodisSnacks,
	"hygien":              HygienHushall,
	"hushåll":             HygienHushall,
	"städ & tvätt":        HygienHushall,
	"apotek & hälsa":      HygienHushall,
}

var coopTable = map[string]Category{
	"kött, fågel & chark":    KottChark,
	"mejeri, ost & ägg":      Mejeri,
	"frukt & grönsaker":      FruktGront,
	"fisk & skaldjur":        FiskSkaldjur,
	"bröd, kakor & fikabröd": BrodBageri,
	"frys":                   Fryst,
	"skafferi":               Skafferi,
	"dryck":                  Dryck,
	"godis, glass & snacks":  GodisSnacks,
	"hem & städ":             HygienHushall,
	"skönhet & hygien":       HygienHushall,
}

var lidlTable = map[string]Category{
	"kött & fågel":     KottChark,
	"mejeriprodukter":  Mejeri,
	"frukt & grönt":    FruktGront,
	"fisk":             FiskSkaldjur,
	"bröd & bakverk":   BrodBageri,
	"frysta livsmedel": Fryst,
	"skafferi":         Skafferi,
	"drycker":          Dryck,
	"sött & salt":      GodisSnacks,
	"hushåll":          HygienHushall,
}

// keywordGroup pairs a taxonomy tag with product-name keywords. Groups are
// tried in order and the first hit wins, so the more specific food groups
// come before the catch-all household group.
type keywordGroup struct {
	category Category
	pattern  *regexp.Regexp
}

var keywordGroups = []keywordGroup{
	{KottChark, regexp.MustCompile(`(?i)kyckling|nötfärs|blandfärs|fläsk|biff|korv|bacon|skinka|entrecôte|karré|lamm|kalkon|köttbull|salami|leverpastej|hamburg`)},
	{Mejeri, regexp.MustCompile(`(?i)mjölk|fil\b|yoghurt|youghurt|grädde|crème|creme fraiche|smör\b|ost\b|ägg\b|kvarg|margarin|kefir`)},
	{FruktGront, regexp.MustCompile(`(?i)äpple|banan|apelsin|tomat|gurka|sallad|paprika|potatis|lök\b|morot|morötter|avokado|citron|vindruv|broccoli|blomkål|spenat|päron|melon`)},
	{FiskSkaldjur, regexp.MustCompile(`(?i)\blax|torsk|sill\b|räkor|fisk|skaldjur|makrill|tonfisk|kaviar|musslor`)},
	{BrodBageri, regexp.MustCompile(`(?i)bröd|limpa|baguette|knäcke|bulle|bullar|tortilla|pita|croissant|skorp`)},
	{Fryst, regexp.MustCompile(`(?i)fryst|frysta|glass\b|frozen`)},
	{Skafferi, regexp.MustCompile(`(?i)pasta|spaghetti|makaroner|\bris\b|mjöl|socker|müsli|musli|flingor|gryn|konserv|krossade tomater|buljong|olja\b|vinäger|ketchup|senap|sylt|honung|kaffe|\bte\b`)},
	{Dryck, regexp.MustCompile(`(?i)läsk|juice|saft|dricka|dryck|vatten|cider|öl\b|must\b|smoothie|energidryck`)},
	{GodisSnacks, regexp.MustCompile(`(?i)godis|choklad|chips|snacks|popcorn|nötter|kex|lakrits|karamell`)},
	{HygienHushall, regexp.MustCompile(`(?i)diskmedel|tvättmedel|tvål|schampo|balsam|tandkräm|deodorant|hushållspapper|toalettpapper|blöjor|rengöring|sköljmedel`)},
}

func tableFor(chain models.Chain) map[string]Category {
	switch chain {
	case models.ChainICA, models.ChainHemkop:
		return icaTable
	case models.ChainCoop:
		return coopTable
	case models.ChainLidl:
		return lidlTable
	}
	return icaTable
}

// Classify maps a store-supplied category string and a product name to a
// standard category. The store category is tried first (exact lookup, then
// substring containment in both directions with longest-key-wins tie-break);
// the product name keyword scan is the fallback.
func Classify(storeCategory, productName string, chain models.Chain) Category {
	if storeCategory != "" {
		if c := classifyStoreCategory(storeCategory, chain); c != Ovrigt {
			return c
		}
	}
	return classifyName(productName)
}

func classifyStoreCategory(storeCategory string, chain models.Chain) Category {
	key := strings.ToLower(strings.TrimSpace(storeCategory))
	table := tableFor(chain)

	if c, ok := table[key]; ok {
		return c
	}

	// Substring containment in both directions. Longest table key wins so
	// "mejeri, ost & ägg" beats "mejeri" when both contain the input.
	best := Ovrigt
	bestLen := 0
	for tableKey, c := range table {
		if len(tableKey) <= bestLen {
			continue
		}
		if strings.Contains(key, tableKey) || strings.Contains(tableKey, key) {
			best = c
			bestLen = len(tableKey)
		}
	}
	return best
}

func classifyName(productName string) Category {
	for _, g := range keywordGroups {
		if g.pattern.MatchString(productName) {
			return g.category
		}
	}
	return Ovrigt
}
