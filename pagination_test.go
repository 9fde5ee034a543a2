package main

import (
	"net/http/httptest"
	"strconv"
	"testing"
)

func TestNewPagination(t *testing.T) {
	url := func(pg int) string { return "/p/" + strconv.Itoa(pg) }

	tests := []struct {
		name  string
		query string
		total int64
		page  int
		pages int
	}{
		{"default", "", 50, 1, 3},
		{"second page", "?page=2", 50, 2, 3},
		{"non numeric", "?page=abc", 50, 1, 3},
		{"negative", "?page=-4", 50, 1, 3},
		{"past the end", "?page=99", 50, 3, 3},
		{"empty", "?page=3", 0, 1, 1},
		{"exact fit", "?page=2", 42, 2, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/catalog"+tt.query, nil)
			p := newPagination(r, tt.total, 21, url)

			if p.Page != tt.page || p.Pages != tt.pages {
				t.Errorf("got page %d/%d, want %d/%d", p.Page, p.Pages, tt.page, tt.pages)
			}
			if p.HasPrevious != (tt.page > 1) || p.HasNext != (tt.page < tt.pages) {
				t.Errorf("unexpected navigation %+v", p)
			}
			if p.HasNext && p.NextURL != url(tt.page+1) {
				t.Errorf("unexpected next url %q", p.NextURL)
			}
		})
	}
}

func TestPaginationOffset(t *testing.T) {
	p := &Pagination{Page: 3}
	if got := p.Offset(21); got != 42 {
		t.Errorf("expected offset 42, got %d", got)
	}
}
