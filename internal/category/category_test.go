package category

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/matkollen/offerscraper/internal/models"
)

func TestClassifyStoreCategory(t *testing.T) {
	tests := []struct {
		name          string
		storeCategory string
		chain         models.Chain
		want          Category
	}{
		{name: "ica exact", storeCategory: "Mejeri", chain: models.ChainICA, want: Mejeri},
		{name: "hemkop shares ica table", storeCategory: "Kött & chark", chain: models.ChainHemkop, want: KottChark},
		{name: "coop vocabulary", storeCategory: "Godis, glass & snacks", chain: models.ChainCoop, want: GodisSnacks},
		{name: "lidl vocabulary", storeCategory: "Mejeriprodukter", chain: models.ChainLidl, want: Mejeri},
		{name: "containment input superset", storeCategory: "Veckans frukt & grönt", chain: models.ChainICA, want: FruktGront},
		{name: "containment input fragment", storeCategory: "frukt", chain: models.ChainCoop, want: FruktGront},
		{name: "unknown falls through", storeCategory: "husdjur", chain: models.ChainICA, want: Ovrigt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyStoreCategory(tt.storeCategory, tt.chain))
		})
	}
}

func TestClassifyNameFallback(t *testing.T) {
	tests := []struct {
		product string
		want    Category
	}{
		{product: "Kycklingfilé 925g", want: KottChark},
		{product: "Arla Mellanmjölk 1,5L", want: Mejeri},
		{product: "Gurka Sverige", want: FruktGront},
		{product: "Laxfilé 4-pack", want: FiskSkaldjur},
		{product: "Rågbröd skivat", want: BrodBageri},
		{product: "Diskmedel Yes Original", want: HygienHushall},
		{product: "Coca-Cola Zero 1,5L läsk", want: Dryck},
		{product: "Marabou mjölkchoklad", want: GodisSnacks},
		{product: "Okänd produkt", want: Ovrigt},
	}

	for _, tt := range tests {
		t.Run(tt.product, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify("", tt.product, models.ChainICA))
		})
	}
}

func TestClassifyPrefersStoreCategory(t *testing.T) {
	// Store category wins even when the name keywords would say otherwise.
	got := Classify("Fryst", "Kycklingfilé", models.ChainICA)
	assert.Equal(t, Fryst, got)

	// An unusable store category falls back to the name scan.
	got = Classify("veckans klipp", "Kycklingfilé", models.ChainICA)
	assert.Equal(t, KottChark, got)
}

func TestClassifyIdempotent(t *testing.T) {
	// Feeding a produced tag back in must not change the result.
	first := Classify("Mejeri & ost", "Smör", models.ChainICA)
	second := Classify(string(first), "Smör", models.ChainICA)
	assert.Equal(t, first, second)
}

func TestLongestKeyWinsTieBreak(t *testing.T) {
	// "mejeri, ost & ägg special" contains both "mejeri" and the longer
	// "mejeri, ost & ägg". Both map to Mejeri here, so assert through a case
	// where the outcome differs: coop's "frys" is a substring of input that
	// also contains "skafferi".
	got := classifyStoreCategory("skafferi och frys", models.ChainCoop)
	assert.Equal(t, Skafferi, got)
}
