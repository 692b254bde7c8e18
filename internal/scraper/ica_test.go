package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestICAStoreIDFromHref(t *testing.T) {
	assert.Equal(t, "maxi-lindhagen-1003638", icaStoreIDFromHref("/butiker/maxi/stockholm/maxi-lindhagen-1003638/"))
	assert.Equal(t, "kvantum-mobilia-1004022", icaStoreIDFromHref("butiker/kvantum/lund/kvantum-mobilia-1004022"))
	assert.Equal(t, "", icaStoreIDFromHref(""))
}

func TestICAProfileFromName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{name: "ICA Maxi Lindhagen", want: "Maxi"},
		{name: "ICA Kvantum Mobilia", want: "Kvantum"},
		{name: "ICA Supermarket Aptiten", want: "Supermarket"},
		{name: "ICA Nära Banergatan", want: "Nära"},
		{name: "Matöppet Hörnet", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, icaProfileFromName(tt.name))
		})
	}
}
