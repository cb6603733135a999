package cart

// LineItem is one row of the cart: a product in a specific color/size
// combination and how many units of it were added.
type LineItem struct {
	ID            int      `json:"id"`
	Name          string   `json:"name"`
	Category      string   `json:"category"`
	Image         string   `json:"image"`
	Price         float64  `json:"price"`
	OriginalPrice *float64 `json:"originalPrice,omitempty"`
	SelectedColor *string  `json:"selectedColor,omitempty"`
	SelectedSize  *string  `json:"selectedSize,omitempty"`
	Quantity      int      `json:"quantity"`
}

// ItemInput is the payload of a single ADD_ITEM. It carries no quantity:
// every addition is exactly one unit.
type ItemInput struct {
	ID            int      `json:"id"`
	Name          string   `json:"name"`
	Category      string   `json:"category"`
	Image         string   `json:"image"`
	Price         float64  `json:"price"`
	OriginalPrice *float64 `json:"originalPrice,omitempty"`
	SelectedColor *string  `json:"selectedColor,omitempty"`
	SelectedSize  *string  `json:"selectedSize,omitempty"`
}

// VariantKey is the identity of a line item. A nil Color or Size is the
// "no variant" value and only equals another nil.
type VariantKey struct {
	ID    int     `json:"id"`
	Color *string `json:"selectedColor,omitempty"`
	Size  *string `json:"selectedSize,omitempty"`
}

// State is a point-in-time snapshot of the cart. Total and ItemCount are
// derived from Items when the snapshot is taken.
type State struct {
	Items     []LineItem `json:"items"`
	Total     float64    `json:"total"`
	ItemCount int        `json:"itemCount"`
}

func (li LineItem) Key() VariantKey {
	return VariantKey{ID: li.ID, Color: li.SelectedColor, Size: li.SelectedSize}
}

func (in ItemInput) Key() VariantKey {
	return VariantKey{ID: in.ID, Color: in.SelectedColor, Size: in.SelectedSize}
}

func (k VariantKey) Equal(other VariantKey) bool {
	return k.ID == other.ID && sameVariant(k.Color, other.Color) && sameVariant(k.Size, other.Size)
}

func sameVariant(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (in ItemInput) lineItem() LineItem {
	return LineItem{
		ID:            in.ID,
		Name:          in.Name,
		Category:      in.Category,
		Image:         in.Image,
		Price:         in.Price,
		OriginalPrice: cloneFloat(in.OriginalPrice),
		SelectedColor: cloneString(in.SelectedColor),
		SelectedSize:  cloneString(in.SelectedSize),
		Quantity:      1,
	}
}

func (li LineItem) clone() LineItem {
	li.OriginalPrice = cloneFloat(li.OriginalPrice)
	li.SelectedColor = cloneString(li.SelectedColor)
	li.SelectedSize = cloneString(li.SelectedSize)
	return li
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func totals(items []LineItem) (float64, int) {
	total := 0.0
	count := 0
	for _, it := range items {
		total += it.Price * float64(it.Quantity)
		count += it.Quantity
	}
	return total, count
}
