package offer

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/listing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDraft() *Draft {
	return &Draft{
		Title:        "  Computer Science  ",
		UniversityID: uuid.New(),
		Category:     CategoryBachelor,
		Country:      "Germany",
		City:         "Berlin",
		Language:     "English",
		Tuition:      1500,
		Deadline:     time.Date(2027, 1, 15, 0, 0, 0, 0, time.UTC),
		Tags:         []string{"stem", " ", "it "},
	}
}

func TestOfDraft(t *testing.T) {
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	obj, err := OfDraft(validDraft(), now)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, obj.ID)
	assert.Equal(t, "Computer Science", obj.Title)
	assert.Equal(t, []string{"stem", "it"}, obj.Tags)
	assert.Equal(t, now, obj.CreatedAt)
}

func TestOfDraftValidation(t *testing.T) {
	tests := map[string]struct {
		mutate func(draft *Draft)
		field  string
	}{
		"empty title":      {func(draft *Draft) { draft.Title = "  " }, "title"},
		"no university":    {func(draft *Draft) { draft.UniversityID = uuid.Nil }, "university_id"},
		"unknown category": {func(draft *Draft) { draft.Category = "Diploma" }, "category"},
		"no country":       {func(draft *Draft) { draft.Country = "" }, "country"},
		"negative tuition": {func(draft *Draft) { draft.Tuition = -1 }, "tuition"},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			draft := validDraft()
			test.mutate(draft)
			_, err := OfDraft(draft, time.Now())
			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, test.field, validationErr.Field)
		})
	}
}

func TestFilterOfQuery(t *testing.T) {
	universityID := uuid.New()
	filter, err := FilterOfQuery(listing.Query{
		Filters: listing.Filters{
			FilterCategory:     "Master",
			FilterCountry:      "Germany",
			FilterUniversityID: universityID.String(),
			FilterScholarship:  true,
			FilterMinTuition:   1000,
			FilterMaxTuition:   2500.5,
		},
		Search:    " berlin ",
		Page:      3,
		Limit:     20,
		SortOrder: listing.Asc,
	})
	require.NoError(t, err)
	assert.Equal(t, CategoryMaster, *filter.Category)
	assert.Equal(t, "Germany", *filter.Country)
	assert.Equal(t, universityID, *filter.UniversityID)
	assert.True(t, *filter.Scholarship)
	assert.Equal(t, 1000.0, *filter.MinTuition)
	assert.Equal(t, 2500.5, *filter.MaxTuition)
	assert.Equal(t, "berlin", filter.Search)
	assert.Equal(t, SortCreatedAt, filter.SortBy)
	assert.Equal(t, listing.Asc, filter.SortOrder)
	assert.Equal(t, uint64(40), filter.Offset)
	assert.Equal(t, uint64(20), filter.Limit)
	assert.Nil(t, filter.City)
}

func TestFilterOfQueryRejects(t *testing.T) {
	tests := map[string]struct {
		query listing.Query
		field string
	}{
		"unknown filter":     {listing.Query{Filters: listing.Filters{"color": "red"}}, "color"},
		"unknown sort":       {listing.Query{SortBy: "price"}, listing.ParamSortBy},
		"bad category":       {listing.Query{Filters: listing.Filters{FilterCategory: "Diploma"}}, FilterCategory},
		"bad university id":  {listing.Query{Filters: listing.Filters{FilterUniversityID: 12}}, FilterUniversityID},
		"string scholarship": {listing.Query{Filters: listing.Filters{FilterScholarship: "yes"}}, FilterScholarship},
		"string tuition":     {listing.Query{Filters: listing.Filters{FilterMinTuition: "cheap"}}, FilterMinTuition},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			test.query.Page, test.query.Limit = 1, 10
			_, err := FilterOfQuery(test.query)
			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, test.field, validationErr.Field)
		})
	}
}

func TestFilterMatches(t *testing.T) {
	obj, err := OfDraft(validDraft(), time.Now())
	require.NoError(t, err)

	match := func(filters listing.Filters, search string) bool {
		filter, err := FilterOfQuery(listing.Query{Filters: filters, Search: search, Page: 1, Limit: 10})
		require.NoError(t, err)
		return filter.Matches(obj)
	}

	assert.True(t, match(nil, ""))
	assert.True(t, match(listing.Filters{FilterCountry: "germany"}, ""))
	assert.True(t, match(nil, "SCIENCE"))
	assert.True(t, match(nil, "berl"))
	assert.False(t, match(nil, "medicine"))
	assert.False(t, match(listing.Filters{FilterCategory: "PhD"}, ""))
	assert.False(t, match(listing.Filters{FilterScholarship: true}, ""))
	assert.True(t, match(listing.Filters{FilterMinTuition: 1500, FilterMaxTuition: 1500}, ""))
	assert.False(t, match(listing.Filters{FilterMinTuition: 1500.01}, ""))
}

func TestCompare(t *testing.T) {
	a := &Offer{Title: "alpha", Tuition: 100, Deadline: time.Unix(10, 0), CreatedAt: time.Unix(20, 0)}
	b := &Offer{Title: "Beta", Tuition: 50, Deadline: time.Unix(30, 0), CreatedAt: time.Unix(20, 0)}

	assert.Equal(t, -1, Compare(a, b, SortTitle))
	assert.Equal(t, 1, Compare(a, b, SortTuition))
	assert.Equal(t, -1, Compare(a, b, SortDeadline))
	assert.Equal(t, 0, Compare(a, b, SortCreatedAt))
	assert.Equal(t, 0, Compare(a, b, "unknown"))
}
