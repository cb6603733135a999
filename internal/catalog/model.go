package catalog

import (
	"errors"
	"math"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/itanishqshelar/Flashfits-AI/internal/cart"
)

var ErrNotFound = errors.New("not found")

const (
	DefaultLimit    = 12
	MaxLimit        = 100
	DefaultCategory = "General"
	DefaultImage    = "/placeholder.svg"
)

type Sort string

const (
	SortFeatured  Sort = "featured"
	SortPriceLow  Sort = "price-low"
	SortPriceHigh Sort = "price-high"
	SortName      Sort = "name"
)

type ListQuery struct {
	Limit    int
	Offset   int
	Search   string
	Category string
	Sort     Sort
}

// ProductSummary is the storefront's view of a product. ID is the 1-based
// position within the returned page; ItemNo is stable across pages.
type ProductSummary struct {
	ID            int      `json:"id"`
	DBID          string   `json:"dbId"`
	ItemNo        int      `json:"itemNo"`
	Name          string   `json:"name"`
	Price         int      `json:"price"`
	OriginalPrice *int     `json:"originalPrice,omitempty"`
	Category      string   `json:"category"`
	Image         string   `json:"image"`
	Colors        []string `json:"colors"`
	Sizes         []string `json:"sizes"`
	IsNew         bool     `json:"isNew"`
	IsSale        bool     `json:"isSale"`
}

type Page struct {
	Items      []ProductSummary `json:"items"`
	Total      int              `json:"total"`
	NextOffset int              `json:"nextOffset"`
	HasMore    bool             `json:"hasMore"`
}

// ItemInput converts the product into a cart addition for the chosen
// variant, keyed by the stable item number.
func (p ProductSummary) ItemInput(color, size string) (cart.ItemInput, error) {
	opts := []cart.ItemOption{
		cart.WithCategory(p.Category),
		cart.WithImage(p.Image),
		cart.WithColor(color),
		cart.WithSize(size),
	}
	if p.OriginalPrice != nil {
		opts = append(opts, cart.WithOriginalPrice(float64(*p.OriginalPrice)))
	}
	return cart.NewItemInput(p.ItemNo, p.Name, float64(p.Price), opts...)
}

type productRow struct {
	id                 string
	itemNo             int64
	name               string
	priceCents         pgtype.Int8
	originalPriceCents pgtype.Int8
	imageURL           pgtype.Text
	category           pgtype.Text
	isNew              bool
	isSale             bool
	colors             []string
	sizes              []string
}

func (r productRow) summary(position int) ProductSummary {
	s := ProductSummary{
		ID:       position,
		DBID:     r.id,
		ItemNo:   int(r.itemNo),
		Name:     r.name,
		Price:    centsToUnits(r.priceCents.Int64),
		Category: DefaultCategory,
		Image:    DefaultImage,
		Colors:   r.colors,
		Sizes:    r.sizes,
		IsNew:    r.isNew,
		IsSale:   r.isSale,
	}
	if r.originalPriceCents.Valid && r.originalPriceCents.Int64 != 0 {
		v := centsToUnits(r.originalPriceCents.Int64)
		s.OriginalPrice = &v
	}
	if r.category.Valid {
		s.Category = r.category.String
	}
	if r.imageURL.Valid {
		s.Image = r.imageURL.String
	}
	if s.Colors == nil {
		s.Colors = []string{}
	}
	if s.Sizes == nil {
		s.Sizes = []string{}
	}
	return s
}

func centsToUnits(cents int64) int {
	return int(math.Round(float64(cents) / 100))
}
