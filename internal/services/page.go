package services

import "math"

// DefaultLimit is the page size when none or an invalid one is given.
const DefaultLimit = 100

// Page is one slice of a listing.
type Page[T any] struct {
	Items   []T
	Total   int64
	Page    int
	Limit   int
	HasNext bool
	HasPrev bool
}

// NormalizePage coerces non-positive page and limit to their defaults and
// caps page so its offset fits in an int.
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if maxPage := math.MaxInt/limit + 1; page > maxPage {
		page = maxPage
	}
	return page, limit
}

// offsetOf saturates at math.MaxInt instead of wrapping.
func offsetOf(page, limit int) int {
	if page <= 1 || limit <= 0 {
		return 0
	}
	if page-1 > math.MaxInt/limit {
		return math.MaxInt
	}
	return (page - 1) * limit
}

func newPage[T any](items []T, total int64, page, limit int) *Page[T] {
	offset := offsetOf(page, limit)
	return &Page[T]{
		Items:   items,
		Total:   total,
		Page:    page,
		Limit:   limit,
		HasNext: total-int64(offset) > int64(limit),
		HasPrev: offset > 0,
	}
}
