package service

import "github.com/taskflow/taskflow-api/internal/core/ports"

const (
	defaultPageSize = 20
	maxPageSize     = 100
	// Keeps (page-1)*limit well inside int64.
	maxPage = 1_000_000_000
)

// normalizePage applies defaults and caps to a requested page.
func normalizePage(f ports.ListFilter) ports.ListFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Page > maxPage {
		f.Page = maxPage
	}
	if f.Limit < 1 {
		f.Limit = defaultPageSize
	}
	if f.Limit > maxPageSize {
		f.Limit = maxPageSize
	}
	return f
}

func totalPages(total int64, limit int) int {
	if total == 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
