package offer

import (
	"strings"

	"github.com/google/uuid"
	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/listing"
)

// QueryKey names offer listings in the query cache
const QueryKey = "offers"

// Filter keys accepted in a listing query
const (
	FilterCategory     = "category"
	FilterCountry      = "country"
	FilterCity         = "city"
	FilterLanguage     = "language"
	FilterUniversityID = "universityId"
	FilterScholarship  = "scholarship"
	FilterMinTuition   = "minTuition"
	FilterMaxTuition   = "maxTuition"
)

// Sort fields accepted in a listing query
const (
	SortTitle     = "title"
	SortTuition   = "tuition"
	SortDeadline  = "deadline"
	SortCreatedAt = "createdAt"
)

// SortColumns maps the sort fields to their storage columns
var SortColumns = map[string]string{
	SortTitle:     "title",
	SortTuition:   "tuition",
	SortDeadline:  "deadline",
	SortCreatedAt: "created_at",
}

// Filter is used to query offers based on a filter
type Filter struct {
	Category     *Category
	Country      *string
	City         *string
	Language     *string
	UniversityID *uuid.UUID
	Scholarship  *bool
	MinTuition   *float64
	MaxTuition   *float64

	// Search matches the title, city and country case-insensitively
	Search string

	SortBy    string
	SortOrder listing.SortOrder
	Offset    uint64
	Limit     uint64
}

// FilterOfQuery builds a filter out of a canonical listing query.
// Unknown filter keys, unknown sort fields and values of the wrong type result in a *ValidationError.
func FilterOfQuery(query listing.Query) (*Filter, error) {
	filter := &Filter{
		Search:    strings.TrimSpace(query.Search),
		SortBy:    query.SortBy,
		SortOrder: query.SortOrder,
		Offset:    uint64(query.Offset()),
		Limit:     uint64(query.Limit),
	}
	if filter.SortBy == "" {
		filter.SortBy = SortCreatedAt
	}
	if _, ok := SortColumns[filter.SortBy]; !ok {
		return nil, invalid(listing.ParamSortBy, query.SortBy, "unknown sort field")
	}
	if !filter.SortOrder.Valid() {
		filter.SortOrder = listing.Desc
	}

	for key, val := range query.Filters {
		switch key {
		case FilterCategory:
			category := Category(listing.FormatValue(val))
			if !category.Valid() {
				return nil, invalid(key, val, "must be one of Bachelor, Master, PhD or Language")
			}
			filter.Category = &category
		case FilterCountry:
			filter.Country = text(val)
		case FilterCity:
			filter.City = text(val)
		case FilterLanguage:
			filter.Language = text(val)
		case FilterUniversityID:
			id, err := uuid.Parse(listing.FormatValue(val))
			if err != nil {
				return nil, invalid(key, val, "must be a UUID")
			}
			filter.UniversityID = &id
		case FilterScholarship:
			scholarship, ok := val.(bool)
			if !ok {
				return nil, invalid(key, val, "must be a boolean")
			}
			filter.Scholarship = &scholarship
		case FilterMinTuition, FilterMaxTuition:
			amount, ok := number(val)
			if !ok {
				return nil, invalid(key, val, "must be a number")
			}
			if key == FilterMinTuition {
				filter.MinTuition = &amount
			} else {
				filter.MaxTuition = &amount
			}
		default:
			return nil, invalid(key, val, "unknown filter")
		}
	}
	return filter, nil
}

// Matches reports whether an offer passes every condition of the filter; pagination and sorting are ignored
func (filter *Filter) Matches(obj *Offer) bool {
	switch {
	case filter.Category != nil && obj.Category != *filter.Category:
		return false
	case filter.Country != nil && !strings.EqualFold(obj.Country, *filter.Country):
		return false
	case filter.City != nil && !strings.EqualFold(obj.City, *filter.City):
		return false
	case filter.Language != nil && !strings.EqualFold(obj.Language, *filter.Language):
		return false
	case filter.UniversityID != nil && obj.UniversityID != *filter.UniversityID:
		return false
	case filter.Scholarship != nil && obj.Scholarship != *filter.Scholarship:
		return false
	case filter.MinTuition != nil && obj.Tuition < *filter.MinTuition:
		return false
	case filter.MaxTuition != nil && obj.Tuition > *filter.MaxTuition:
		return false
	}
	if filter.Search == "" {
		return true
	}
	search := strings.ToLower(filter.Search)
	for _, field := range []string{obj.Title, obj.City, obj.Country} {
		if strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}

func text(val any) *string {
	str := listing.FormatValue(val)
	return &str
}

func number(val any) (float64, bool) {
	switch num := val.(type) {
	case int:
		return float64(num), true
	case int64:
		return float64(num), true
	case float64:
		return num, true
	}
	return 0, false
}
