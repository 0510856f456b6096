package domain

import "time"

// Category groups products.
type Category struct {
	ID          int64
	Title       string
	Description string
	ImageID     *int64
	Image       *Image
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CategoryFilter narrows category listings. Empty Title matches everything.
type CategoryFilter struct {
	Title string
}

// PartialCategoryUpdate carries optional fields to update a category.
// A nil field means “do not change” that attribute.
type PartialCategoryUpdate struct {
	ID          int64
	Title       *string
	Description *string
	ImageID     *int64
}
