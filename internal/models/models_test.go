package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseChain(t *testing.T) {
	tests := []struct {
		input string
		want  Chain
		ok    bool
	}{
		{input: "ica", want: ChainICA, ok: true},
		{input: "ICA", want: ChainICA, ok: true},
		{input: " hemkop ", want: ChainHemkop, ok: true},
		{input: "coop", want: ChainCoop, ok: true},
		{input: "lidl", want: ChainLidl, ok: true},
		{input: "willys", ok: false},
		{input: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseChain(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewStoreID(t *testing.T) {
	assert.Equal(t, "ica-1003638", NewStoreID(ChainICA, "1003638"))
	assert.Equal(t, "lidl-national", NewStoreID(ChainLidl, "national"))
}

func TestNewOfferID(t *testing.T) {
	at := time.Unix(1756300000, 0)

	a := NewOfferID(ChainICA, "ica-1", "Kycklingfilé", at)
	b := NewOfferID(ChainICA, "ica-1", "  kycklingfilé ", at)
	c := NewOfferID(ChainICA, "ica-1", "Laxfilé", at)

	// Name normalization makes ids stable within a pass, and different
	// products never collide.
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Contains(t, a, "ica:ica-1:")
	assert.Contains(t, a, ":1756300000")

	// A later scrape of the same product gets a fresh id.
	later := NewOfferID(ChainICA, "ica-1", "Kycklingfilé", at.Add(time.Hour))
	assert.NotEqual(t, a, later)
}

func TestPlausiblePrice(t *testing.T) {
	assert.True(t, PlausiblePrice(1))
	assert.True(t, PlausiblePrice(29.9))
	assert.True(t, PlausiblePrice(10000))
	assert.False(t, PlausiblePrice(0.99))
	assert.False(t, PlausiblePrice(10000.01))
	assert.False(t, PlausiblePrice(0))
	assert.False(t, PlausiblePrice(-5))
}
