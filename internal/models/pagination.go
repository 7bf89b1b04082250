package models

// Pagination defaults
const (
	DefaultPage     = 1
	DefaultPageSize = 50
	MaxPageSize     = 100
)

// PageRequest holds normalized pagination parameters
type PageRequest struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// NewPageRequest validates pagination parameters and sets defaults
func NewPageRequest(page, limit int) PageRequest {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return PageRequest{Page: page, Limit: limit}
}

// Offset calculates the SQL offset for the page
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// PaginationResult describes a returned page
type PaginationResult struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalCount int64 `json:"total_count"`
	TotalPages int   `json:"total_pages"`
}

// NewPaginationResult builds pagination metadata for a page of results
func NewPaginationResult(p PageRequest, totalCount int64) PaginationResult {
	totalPages := 0
	if p.Limit > 0 {
		totalPages = int((totalCount + int64(p.Limit) - 1) / int64(p.Limit))
	}
	return PaginationResult{
		Page:       p.Page,
		Limit:      p.Limit,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}
}
