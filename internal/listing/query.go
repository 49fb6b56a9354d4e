package listing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// Names of the query parameters that are not filters
const (
	ParamSearch    = "search"
	ParamPage      = "page"
	ParamLimit     = "limit"
	ParamSortBy    = "sortBy"
	ParamSortOrder = "sortOrder"
)

var reservedParams = map[string]struct{}{
	ParamSearch:    {},
	ParamPage:      {},
	ParamLimit:     {},
	ParamSortBy:    {},
	ParamSortOrder: {},
}

// IsReserved reports whether name is one of the non-filter query parameters
func IsReserved(name string) bool {
	_, ok := reservedParams[name]
	return ok
}

// Query is the fully resolved request descriptor: it is both the input of a fetch and the identity of its result.
// Filters named like a reserved parameter are shadowed by that parameter.
type Query struct {
	Filters   Filters
	Search    string
	Page      int
	Limit     int
	SortBy    string
	SortOrder SortOrder
}

// Result represents one page of items and the total count of matching items before pagination
type Result[T any] struct {
	Data  []T `json:"data"`
	Total int `json:"total"`
}

// FetchFunc retrieves the page described by a query
type FetchFunc[T any] func(ctx context.Context, query Query) (Result[T], error)

// Offset returns the amount of items preceding the requested page
func (query Query) Offset() int {
	if query.Page < 1 {
		return 0
	}
	return (query.Page - 1) * query.Limit
}

// Equal reports whether both queries describe the same request
func (query Query) Equal(other Query) bool {
	return query.Search == other.Search &&
		query.Page == other.Page &&
		query.Limit == other.Limit &&
		query.SortBy == other.SortBy &&
		query.SortOrder == other.SortOrder &&
		query.Filters.Equal(other.Filters)
}

func (query Query) flatten() map[string]any {
	flat := make(map[string]any, len(query.Filters)+5)
	for key, val := range query.Filters {
		flat[key] = val
	}
	flat[ParamSearch] = query.Search
	flat[ParamPage] = query.Page
	flat[ParamLimit] = query.Limit
	flat[ParamSortOrder] = string(query.SortOrder)
	if query.SortBy != "" {
		flat[ParamSortBy] = query.SortBy
	} else {
		delete(flat, ParamSortBy)
	}
	return flat
}

// Key returns the cache key of the query under the given name.
// Equal queries always produce equal keys; the JSON encoding orders map keys.
func (query Query) Key(name string) string {
	raw, err := json.Marshal(query.flatten())
	if err != nil {
		return fmt.Sprintf("%s:%v", name, query.flatten())
	}
	return name + ":" + string(raw)
}

// Values renders every part of the query as URL query parameters, leaving out empty values
func (query Query) Values() url.Values {
	values := url.Values{}
	for key, val := range query.Filters {
		if IsReserved(key) {
			continue
		}
		if formatted := FormatValue(val); formatted != "" {
			values.Set(key, formatted)
		}
	}
	if query.Search != "" {
		values.Set(ParamSearch, query.Search)
	}
	values.Set(ParamPage, strconv.Itoa(query.Page))
	values.Set(ParamLimit, strconv.Itoa(query.Limit))
	if query.SortBy != "" {
		values.Set(ParamSortBy, query.SortBy)
	}
	if query.SortOrder != "" {
		values.Set(ParamSortOrder, string(query.SortOrder))
	}
	return values
}

// Pagination holds the values derived from a total count and the current page
type Pagination struct {
	Page        int
	Limit       int
	Total       int
	TotalPages  int
	HasNextPage bool
	HasPrevPage bool
}

// Paginate derives the pagination values of a page
func Paginate(page, limit, total int) Pagination {
	totalPages := 0
	if limit > 0 && total > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return Pagination{
		Page:        page,
		Limit:       limit,
		Total:       total,
		TotalPages:  totalPages,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}
}
