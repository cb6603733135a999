package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuote(t *testing.T) {
	tests := map[string]struct {
		subtotal      float64
		wantShipping  float64
		wantTax       float64
		wantTotal     float64
		wantRemaining float64
	}{
		"empty cart": {
			subtotal: 0, wantShipping: 0, wantTax: 0, wantTotal: 0, wantRemaining: 2000,
		},
		"below threshold": {
			subtotal: 999, wantShipping: 199, wantTax: 179.82, wantTotal: 1377.82, wantRemaining: 1001,
		},
		"exactly at threshold pays shipping": {
			subtotal: 2000, wantShipping: 199, wantTax: 360, wantTotal: 2559, wantRemaining: 0,
		},
		"above threshold ships free": {
			subtotal: 2997, wantShipping: 0, wantTax: 539.46, wantTotal: 3536.46, wantRemaining: 0,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got := Quote(tc.subtotal)
			assert.InDelta(t, tc.subtotal, got.Subtotal, 0.0001)
			assert.InDelta(t, tc.wantShipping, got.Shipping, 0.0001)
			assert.InDelta(t, tc.wantTax, got.Tax, 0.0001)
			assert.InDelta(t, tc.wantTotal, got.Total, 0.0001)
			assert.InDelta(t, tc.wantRemaining, got.FreeShippingRemaining, 0.0001)
		})
	}
}
