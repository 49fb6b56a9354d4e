package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryKeyIsStable(t *testing.T) {
	a := Query{
		Filters:   Filters{"category": "Bachelor", "country": "DE", "scholarship": true},
		Search:    "med",
		Page:      2,
		Limit:     10,
		SortBy:    "deadline",
		SortOrder: Asc,
	}
	b := Query{
		Filters:   Filters{"scholarship": true, "country": "DE", "category": "Bachelor"},
		Search:    "med",
		Page:      2,
		Limit:     10,
		SortBy:    "deadline",
		SortOrder: Asc,
	}
	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Key("offers"), b.Key("offers"))
	assert.Equal(t,
		`offers:{"category":"Bachelor","country":"DE","limit":10,"page":2,"scholarship":true,"search":"med","sortBy":"deadline","sortOrder":"asc"}`,
		a.Key("offers"))

	assert.NotEqual(t, a.Key("offers"), a.Key("universities"))

	b.Page = 3
	assert.False(t, a.Equal(b))
	assert.NotEqual(t, a.Key("offers"), b.Key("offers"))
}

func TestQueryKeyNumbers(t *testing.T) {
	integer := Query{Filters: Filters{"ranking": 1}, Page: 1, Limit: 10}
	float := Query{Filters: Filters{"ranking": 1.0}, Page: 1, Limit: 10}
	text := Query{Filters: Filters{"ranking": "1"}, Page: 1, Limit: 10}

	assert.True(t, integer.Equal(float))
	assert.Equal(t, integer.Key("k"), float.Key("k"))
	assert.False(t, integer.Equal(text))
	assert.NotEqual(t, integer.Key("k"), text.Key("k"))
}

func TestQueryReservedFiltersAreShadowed(t *testing.T) {
	query := Query{Filters: Filters{"page": 9, "sortBy": "x"}, Page: 1, Limit: 10}
	assert.Equal(t, `k:{"limit":10,"page":1,"search":"","sortOrder":""}`, query.Key("k"))
	assert.Equal(t, "limit=10&page=1", query.Values().Encode())
}

func TestQueryValues(t *testing.T) {
	query := Query{
		Filters:   Filters{"category": "Master", "minTuition": 1500.5, "scholarship": false, "city": ""},
		Search:    "law",
		Page:      4,
		Limit:     25,
		SortBy:    "tuition",
		SortOrder: Desc,
	}
	assert.Equal(t,
		"category=Master&limit=25&minTuition=1500.5&page=4&scholarship=false&search=law&sortBy=tuition&sortOrder=desc",
		query.Values().Encode())
	assert.Equal(t, 75, query.Offset())
	assert.Equal(t, 0, Query{}.Offset())
}

func TestPaginate(t *testing.T) {
	for page := 1; page <= 5; page++ {
		pagination := Paginate(page, 10, 47)
		assert.Equal(t, 5, pagination.TotalPages)
		assert.Equal(t, page < 5, pagination.HasNextPage, "page %d", page)
		assert.Equal(t, page > 1, pagination.HasPrevPage, "page %d", page)
	}

	assert.Equal(t, 0, Paginate(1, 10, 0).TotalPages)
	assert.False(t, Paginate(1, 10, 0).HasNextPage)
	assert.Equal(t, 1, Paginate(1, 10, 10).TotalPages)
	assert.Equal(t, 2, Paginate(1, 10, 11).TotalPages)
}

func TestSortOrder(t *testing.T) {
	assert.Equal(t, Desc, Asc.Toggle())
	assert.Equal(t, Asc, Desc.Toggle())
	assert.Equal(t, Asc, SortOrder("").Toggle())
	assert.Equal(t, Desc, ParseSortOrder("desc"))
	assert.Equal(t, SortOrder(""), ParseSortOrder("DESC"))
}

func TestFormatAndParseValue(t *testing.T) {
	tests := []struct {
		value any
		raw   string
	}{
		{"Bachelor", "Bachelor"},
		{true, "true"},
		{false, "false"},
		{3, "3"},
		{int64(-12), "-12"},
		{2.5, "2.5"},
		{"", ""},
	}
	for _, test := range tests {
		assert.Equal(t, test.raw, FormatValue(test.value))
		assert.True(t, valuesEqual(test.value, ParseValue(test.raw)), "%v", test.value)
	}

	assert.Equal(t, "", FormatValue(nil))
	assert.Equal(t, "007a", ParseValue("007a"))
	assert.Equal(t, 7, ParseValue("007"))
	assert.Equal(t, "NaN", ParseValue("NaN"))
	assert.Equal(t, "Inf", ParseValue("Inf"))
	assert.Equal(t, "True", ParseValue("True"))
	assert.Equal(t, 1000.0, ParseValue("1e3"))
}
