package university

import (
	"strings"

	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/listing"
)

// QueryKey names university listings in the query cache
const QueryKey = "universities"

const (
	FilterCountry = "country"
	FilterCity    = "city"

	SortName      = "name"
	SortRanking   = "ranking"
	SortCreatedAt = "createdAt"
)

// SortColumns maps the sort fields to their storage columns
var SortColumns = map[string]string{
	SortName:      "name",
	SortRanking:   "ranking",
	SortCreatedAt: "created_at",
}

// Filter is used to query universities based on a filter
type Filter struct {
	Country *string
	City    *string

	// Search matches the name, city and country case-insensitively
	Search string

	SortBy    string
	SortOrder listing.SortOrder
	Offset    uint64
	Limit     uint64
}

// FilterOfQuery builds a filter out of a canonical listing query
func FilterOfQuery(query listing.Query) (*Filter, error) {
	filter := &Filter{
		Search:    strings.TrimSpace(query.Search),
		SortBy:    query.SortBy,
		SortOrder: query.SortOrder,
		Offset:    uint64(query.Offset()),
		Limit:     uint64(query.Limit),
	}
	if filter.SortBy == "" {
		filter.SortBy = SortName
	}
	if _, ok := SortColumns[filter.SortBy]; !ok {
		return nil, &ValidationError{Field: listing.ParamSortBy, Value: query.SortBy, Reason: "unknown sort field"}
	}
	if !filter.SortOrder.Valid() {
		filter.SortOrder = listing.Asc
	}

	for key, val := range query.Filters {
		str := listing.FormatValue(val)
		switch key {
		case FilterCountry:
			filter.Country = &str
		case FilterCity:
			filter.City = &str
		default:
			return nil, &ValidationError{Field: key, Value: val, Reason: "unknown filter"}
		}
	}
	return filter, nil
}

// Matches reports whether a university passes every condition of the filter
func (filter *Filter) Matches(obj *University) bool {
	if filter.Country != nil && !strings.EqualFold(obj.Country, *filter.Country) {
		return false
	}
	if filter.City != nil && !strings.EqualFold(obj.City, *filter.City) {
		return false
	}
	if filter.Search == "" {
		return true
	}
	search := strings.ToLower(filter.Search)
	return strings.Contains(strings.ToLower(obj.Name), search) ||
		strings.Contains(strings.ToLower(obj.City), search) ||
		strings.Contains(strings.ToLower(obj.Country), search)
}
