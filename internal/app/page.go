package service

import "fmt"

// Page is one 0-based page of a larger result.
type Page[T any] struct {
	Items         []T
	Page          int
	Size          int
	TotalPages    int
	TotalElements int
	IsFirst       bool
	IsLast        bool
}

// pageBounds validates a page request against total elements and returns
// the slice bounds. size <= 0 selects the default size.
func (s *Service) pageBounds(page, size, total int) (lo, hi, effSize int, err error) {
	if page < 0 {
		return 0, 0, 0, fmt.Errorf("%w: page %d", ErrInvalidPage, page)
	}
	effSize = size
	if effSize <= 0 {
		effSize = defaultPageSize
	}
	if effSize > s.maxPageSize {
		effSize = s.maxPageSize
	}
	if page >= (total+effSize-1)/effSize {
		return total, total, effSize, nil
	}
	lo = page * effSize
	hi = min(lo+effSize, total)
	return lo, hi, effSize, nil
}

func newPage[T any](items []T, page, size, total int) Page[T] {
	pages := 0
	if size > 0 {
		pages = (total + size - 1) / size
	}
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:         items,
		Page:          page,
		Size:          size,
		TotalPages:    pages,
		TotalElements: total,
		IsFirst:       page == 0,
		IsLast:        page >= pages-1,
	}
}
