package domain

import "time"

// Image is an uploaded picture stored by the storage backend under Path.
type Image struct {
	ID           int64
	Path         string
	Size         int64
	OriginalName string
	Extension    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
