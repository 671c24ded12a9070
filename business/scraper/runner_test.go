package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"$1,299.99", 1299.99},
		{"1.299,99 €", 1299.99},
		{"49", 49},
		{"Price: 12,50", 12.50},
		{"USD 1,299", 1299},
		{"3.5", 3.5},
	}

	for _, tc := range cases {
		got, err := parsePrice(tc.in)
		require.NoError(t, err, "input %q", tc.in)
		assert.InDelta(t, tc.want, got, 1e-9, "input %q", tc.in)
	}
}

func TestParsePriceRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "out of stock", "0", "0.00"} {
		_, err := parsePrice(in)
		assert.Error(t, err, "input %q", in)
	}
}
