package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
		ok   bool
	}{
		{name: "comma decimal", text: "12,50 kr", want: 12.5, ok: true},
		{name: "dot decimal", text: "25.90", want: 25.9, ok: true},
		{name: "whole kronor", text: "49 kr", want: 49, ok: true},
		{name: "multi-buy yields per unit", text: "3 för 89 kr", want: 29.67, ok: true},
		{name: "multi-buy with st", text: "2 st för 25 kr", want: 12.5, ok: true},
		{name: "multi-buy uppercase", text: "2 FÖR 29,90 kr", want: 14.95, ok: true},
		{name: "no digits", text: "kampanjpris", want: 0, ok: false},
		{name: "empty", text: "", want: 0, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParsePrice(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.want, got, 0.001)
		})
	}
}

func TestParseMultiBuy(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantQty   int
		wantTotal float64
		ok        bool
	}{
		{name: "basic", text: "3 för 89 kr", wantQty: 3, wantTotal: 89, ok: true},
		{name: "comma total", text: "2 för 29,90", wantQty: 2, wantTotal: 29.9, ok: true},
		{name: "ascii o", text: "4 for 100 kr", wantQty: 4, wantTotal: 100, ok: true},
		{name: "colon suffix", text: "2 för 50:-", wantQty: 2, wantTotal: 50, ok: true},
		{name: "zero quantity rejected", text: "0 för 10 kr", ok: false},
		{name: "plain price is not multi-buy", text: "29,90 kr", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qty, total, ok := ParseMultiBuy(tt.text)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.wantQty, qty)
				assert.InDelta(t, tt.wantTotal, total, 0.001)
			}
		})
	}
}

func TestParseColonPrice(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
		ok   bool
	}{
		{name: "whole kronor", text: "50:-", want: 50, ok: true},
		{name: "kronor and ore", text: "29:90", want: 29.9, ok: true},
		{name: "per kilo suffix", text: "149:-/kg", want: 149, ok: true},
		{name: "spaced colon", text: "35 : 50", want: 35.5, ok: true},
		{name: "plain decimal is not colon", text: "29,90", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseColonPrice(tt.text)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 0.001)
			}
		})
	}
}

func TestParseUnit(t *testing.T) {
	tests := []struct {
		text string
		want string
		ok   bool
	}{
		{text: "149:-/kg", want: "kg", ok: true},
		{text: "12,50/st", want: "st", ok: true},
		{text: "89:-/förp", want: "förp", ok: true},
		{text: "29,90 kr", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := ParseUnit(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseMaxPerHousehold(t *testing.T) {
	n, ok := ParseMaxPerHousehold("Max 2 köp per hushåll")
	assert.True(t, ok)
	assert.Equal(t, 2, n)

	n, ok = ParseMaxPerHousehold("Max 3 kop/hushåll")
	assert.True(t, ok)
	assert.Equal(t, 3, n)

	_, ok = ParseMaxPerHousehold("Gäller hela veckan")
	assert.False(t, ok)
}

func TestBestPrice(t *testing.T) {
	tests := []struct {
		name       string
		candidates []float64
		want       float64
		ok         bool
	}{
		{name: "minimum wins", candidates: []float64{39.9, 29.9, 49.9}, want: 29.9, ok: true},
		{name: "implausibly small ignored", candidates: []float64{0.5, 25}, want: 25, ok: true},
		{name: "implausibly large ignored", candidates: []float64{25000, 149}, want: 149, ok: true},
		{name: "nothing plausible", candidates: []float64{0.2, 99999}, ok: false},
		{name: "empty", candidates: nil, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := BestPrice(tt.candidates)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 0.001)
			}
		})
	}
}

func TestCandidatePrices(t *testing.T) {
	// Colon digits must not leak into the decimal pass.
	got := CandidatePrices("Nu 29:90 ord. 39,90 kr")
	assert.ElementsMatch(t, []float64{29.9, 39.9}, got)

	got = CandidatePrices("50:- /st")
	assert.Equal(t, []float64{50}, got)

	assert.Empty(t, CandidatePrices("veckans vara"))
}
