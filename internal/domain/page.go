package domain

import "math"

// Pagination bounds.
const (
	DefaultPage    = 1
	DefaultPerPage = 10
	MaxPerPage     = 100
	// MaxPage keeps (MaxPage-1)*MaxPerPage inside int.
	MaxPage = math.MaxInt/MaxPerPage + 1
)

// PageRequest selects a window of a listing. Page is 1-based.
type PageRequest struct {
	Page    int
	PerPage int
}

// Normalize applies defaults and caps Page and PerPage.
func (p PageRequest) Normalize() PageRequest {
	if p.Page <= 0 {
		p.Page = DefaultPage
	}
	if p.PerPage <= 0 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	return p
}

// Offset returns the number of rows to skip. It is never negative.
func (p PageRequest) Offset() int {
	if p.Page <= 1 || p.PerPage <= 0 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.PerPage {
		return math.MaxInt
	}
	return (p.Page - 1) * p.PerPage
}

// Page is one window of a listing plus paging metadata.
type Page[T any] struct {
	Total    int64
	PerPage  int
	Page     int
	LastPage int
	Data     []T
}

// NewPage builds a Page. LastPage is ceil(total/perPage) and at least 1.
func NewPage[T any](req PageRequest, total int64, data []T) Page[T] {
	req = req.Normalize()
	last := int((total + int64(req.PerPage) - 1) / int64(req.PerPage))
	if last < 1 {
		last = 1
	}
	if data == nil {
		data = []T{}
	}
	return Page[T]{
		Total:    total,
		PerPage:  req.PerPage,
		Page:     req.Page,
		LastPage: last,
		Data:     data,
	}
}
