package cart

import (
	"math"
	"strings"
)

type ItemOption func(*ItemInput)

func WithCategory(category string) ItemOption {
	return func(in *ItemInput) { in.Category = category }
}

func WithImage(image string) ItemOption {
	return func(in *ItemInput) { in.Image = image }
}

func WithOriginalPrice(price float64) ItemOption {
	return func(in *ItemInput) { in.OriginalPrice = &price }
}

func WithColor(color string) ItemOption {
	return func(in *ItemInput) { in.SelectedColor = &color }
}

func WithSize(size string) ItemOption {
	return func(in *ItemInput) { in.SelectedSize = &size }
}

// NewItemInput builds a validated ADD_ITEM payload from product data.
func NewItemInput(id int, name string, price float64, opts ...ItemOption) (ItemInput, error) {
	in := ItemInput{ID: id, Name: name, Price: price}
	for _, opt := range opts {
		opt(&in)
	}
	if err := in.Normalize(); err != nil {
		return ItemInput{}, err
	}
	return in, nil
}

// Normalize validates the required fields and turns blank variant selectors
// into the "no variant" value.
func (in *ItemInput) Normalize() error {
	if in.ID <= 0 {
		return invalid("id", "must be a positive integer")
	}
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return invalid("name", "is required")
	}
	if !validPrice(in.Price) {
		return invalid("price", "must be a non-negative number")
	}
	if in.OriginalPrice != nil && !validPrice(*in.OriginalPrice) {
		return invalid("originalPrice", "must be a non-negative number")
	}
	in.SelectedColor = blankToNil(in.SelectedColor)
	in.SelectedSize = blankToNil(in.SelectedSize)
	return nil
}

func validPrice(p float64) bool {
	return !math.IsNaN(p) && !math.IsInf(p, 0) && p >= 0
}

func blankToNil(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}
