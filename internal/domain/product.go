package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a sellable item.
type Product struct {
	ID          int64
	Name        string
	Description string
	Price       decimal.Decimal
	ImageID     *int64
	Image       *Image
	// CategoryIDs and ImageIDs are the related category and gallery image ids.
	CategoryIDs []int64
	ImageIDs    []int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProductFilter narrows product listings by a case-insensitive name substring.
type ProductFilter struct {
	Name string
}

// PartialProductUpdate carries optional fields to update a product.
// Nil relation slices leave relations untouched, an empty slice clears them.
type PartialProductUpdate struct {
	ID          int64
	Name        *string
	Description *string
	Price       *decimal.Decimal
	ImageID     *int64
	CategoryIDs []int64
	ImageIDs    []int64
}
