package cartstore

import (
	"errors"
	"math"
	"strings"
)

var (
	ErrMissingProduct  = errors.New("missing productId or product details")
	ErrInvalidProduct  = errors.New("invalid productId")
	ErrUnknownProduct  = errors.New("product not found")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

// SavedItem is one row of a signed-in shopper's persisted cart.
type SavedItem struct {
	ID       string       `json:"id"`
	Quantity int          `json:"quantity"`
	Product  SavedProduct `json:"product"`
}

type SavedProduct struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	PriceCents *int64  `json:"price_cents"`
	ImageURL   *string `json:"image_url"`
}

// ProductDetails describes a product that may not exist in the catalog
// yet. Either price or price_cents may be sent; the same goes for image
// and image_url.
type ProductDetails struct {
	Name       string   `json:"name"`
	Price      *float64 `json:"price,omitempty"`
	PriceCents *int64   `json:"price_cents,omitempty"`
	Image      *string  `json:"image,omitempty"`
	ImageURL   *string  `json:"image_url,omitempty"`
}

type AddRequest struct {
	ProductID string          `json:"productId,omitempty"`
	Quantity  *int            `json:"quantity,omitempty"`
	Product   *ProductDetails `json:"product,omitempty"`
}

type SavedLine struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

func (p ProductDetails) priceCents() int64 {
	switch {
	case p.PriceCents != nil:
		return *p.PriceCents
	case p.Price != nil:
		return int64(math.Round(*p.Price * 100))
	default:
		return 0
	}
}

func (p ProductDetails) imageURL() *string {
	if p.ImageURL != nil {
		return p.ImageURL
	}
	return p.Image
}

func (r AddRequest) quantity() int {
	if r.Quantity == nil {
		return 1
	}
	return *r.Quantity
}

func (r AddRequest) productName() string {
	if r.Product == nil {
		return ""
	}
	return strings.TrimSpace(r.Product.Name)
}
