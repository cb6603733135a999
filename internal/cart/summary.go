package cart

const (
	FreeShippingThreshold = 2000.0
	StandardShipping      = 199.0
	TaxRate               = 0.18
)

// Summary is the order summary shown next to the cart.
type Summary struct {
	Subtotal              float64 `json:"subtotal"`
	Shipping              float64 `json:"shipping"`
	Tax                   float64 `json:"tax"`
	Total                 float64 `json:"total"`
	FreeShippingRemaining float64 `json:"freeShippingRemaining"`
}

func Quote(subtotal float64) Summary {
	if subtotal <= 0 {
		return Summary{FreeShippingRemaining: FreeShippingThreshold}
	}

	shipping := StandardShipping
	if subtotal > FreeShippingThreshold {
		shipping = 0
	}
	tax := subtotal * TaxRate

	remaining := FreeShippingThreshold - subtotal
	if remaining < 0 {
		remaining = 0
	}

	return Summary{
		Subtotal:              subtotal,
		Shipping:              shipping,
		Tax:                   tax,
		Total:                 subtotal + shipping + tax,
		FreeShippingRemaining: remaining,
	}
}
