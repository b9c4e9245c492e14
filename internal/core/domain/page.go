package domain

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageRequest selects a 1-based page of a listing.
type PageRequest struct {
	Page int
	Size int
}

// Normalize clamps the request to a valid page and size.
func (r PageRequest) Normalize() PageRequest {
	if r.Page <= 0 {
		r.Page = 1
	}
	if r.Size <= 0 {
		r.Size = DefaultPageSize
	}
	if r.Size > MaxPageSize {
		r.Size = MaxPageSize
	}
	return r
}

// Offset is the number of items preceding the requested page.
func (r PageRequest) Offset() int64 {
	return int64(r.Page-1) * int64(r.Size)
}

// Page is one slice of a paginated listing.
type Page[T any] struct {
	Items      []T
	Page       int
	Size       int
	Total      int64
	TotalPages int
}

// NewPage computes the page metadata for items drawn under req.
func NewPage[T any](items []T, req PageRequest, total int64) Page[T] {
	pages := 0
	if req.Size > 0 {
		pages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}
	return Page[T]{Items: items, Page: req.Page, Size: req.Size, Total: total, TotalPages: pages}
}
