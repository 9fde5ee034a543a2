package main

import (
	"net/http"
	"strconv"
)

type Pagination struct {
	Page        int    `json:"page"`
	Pages       int    `json:"pages"`
	Total       int64  `json:"total"`
	HasPrevious bool   `json:"has_previous"`
	HasNext     bool   `json:"has_next"`
	PreviousURL string `json:"previous_url,omitempty"`
	NextURL     string `json:"next_url,omitempty"`
}

// newPagination reads the page query parameter and clamps it to the pages
// available for total items. There is always at least one page.
func newPagination(r *http.Request, total int64, size int, url func(page int) string) *Pagination {
	pages := int((total + int64(size) - 1) / int64(size))
	if pages < 1 {
		pages = 1
	}

	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}

	p := &Pagination{
		Page:        page,
		Pages:       pages,
		Total:       total,
		HasPrevious: page > 1,
		HasNext:     page < pages,
	}
	if p.HasPrevious {
		p.PreviousURL = url(page - 1)
	}
	if p.HasNext {
		p.NextURL = url(page + 1)
	}
	return p
}

func (p *Pagination) Offset(size int) int {
	return (p.Page - 1) * size
}
