package domain

// PageMeta is the pagination envelope attached to every list response.
// For recommendation endpoints TotalItems reflects the ranked-candidate-list
// length at cache-generation time, not a live product count.
type PageMeta struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	TotalItems int  `json:"totalItems"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

func NewPageMeta(page, limit, totalItems int) PageMeta {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	totalPages := totalItems / limit
	if totalItems%limit != 0 {
		totalPages++
	}

	return PageMeta{
		Page:       page,
		Limit:      limit,
		TotalItems: totalItems,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1 && totalItems > 0,
	}
}

// PageBounds returns the [start, end) slice bounds for a page over n items.
func PageBounds(page, limit, n int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	start := (page - 1) * limit
	if start > n {
		start = n
	}
	end := start + limit
	if end > n {
		end = n
	}

	return start, end
}
