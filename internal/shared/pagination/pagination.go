// Package pagination slices an in-memory list into fixed-size pages.
package pagination

type Page[T any] struct {
	Items      []T `json:"items"`
	PageIndex  int `json:"page_index"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
	TotalPages int `json:"total_pages"`
}

func (p Page[T]) HasPrevious() bool {
	return p.PageIndex > 1
}

func (p Page[T]) HasNext() bool {
	return p.PageIndex < p.TotalPages
}

// Create returns page pageNumber (1-indexed) of items. A pageNumber below 1 is
// treated as 1; a page past the end has no items. pageSize must be positive.
func Create[T any](items []T, pageNumber, pageSize int) Page[T] {
	if pageSize < 1 {
		pageSize = 1
	}
	if pageNumber < 1 {
		pageNumber = 1
	}

	total := len(items)
	start := (pageNumber - 1) * pageSize
	end := start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	pageItems := make([]T, end-start)
	copy(pageItems, items[start:end])

	return Page[T]{
		Items:      pageItems,
		PageIndex:  pageNumber,
		PageSize:   pageSize,
		TotalCount: total,
		TotalPages: (total + pageSize - 1) / pageSize,
	}
}
