package schema

import "github.com/komo1iddin/advanced-next-system-offer-sub001/internal/listing"

// PaginatedResponse represents a unified paginated API response
type PaginatedResponse[T any] struct {
	Pagination *PaginationMetadata `json:"pagination"`
	Data       []T                 `json:"data"`
	Links      *PaginationLinks    `json:"links"`
}

// PaginationMetadata represents the metadata present in a PaginatedResponse
type PaginationMetadata struct {
	Page          int  `json:"page"`
	Limit         int  `json:"limit"`
	Total         int  `json:"total"`
	TotalPages    int  `json:"total_pages"`
	HasNextPage   bool `json:"has_next_page"`
	HasPrevPage   bool `json:"has_prev_page"`
	IncludedCount int  `json:"included_count"`
}

// PaginationLinks holds the shareable links of the current, the next and the previous page
type PaginationLinks struct {
	Self string `json:"self"`
	Next string `json:"next,omitempty"`
	Prev string `json:"prev,omitempty"`
}

// BuildPaginatedResponse builds a unified paginated API response
func BuildPaginatedResponse[T any](pagination listing.Pagination, data []T, links *PaginationLinks) *PaginatedResponse[T] {
	if data == nil {
		data = []T{}
	}
	return &PaginatedResponse[T]{
		Pagination: &PaginationMetadata{
			Page:          pagination.Page,
			Limit:         pagination.Limit,
			Total:         pagination.Total,
			TotalPages:    pagination.TotalPages,
			HasNextPage:   pagination.HasNextPage,
			HasPrevPage:   pagination.HasPrevPage,
			IncludedCount: len(data),
		},
		Data:  data,
		Links: links,
	}
}
