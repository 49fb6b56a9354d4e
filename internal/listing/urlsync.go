package listing

import (
	"net/url"
	"strconv"
	"sync"
)

// Address is the navigable location a listing mirrors its state to
type Address interface {
	// Values returns the current query parameters
	Values() url.Values

	// Replace replaces the current query parameters without creating a new history entry
	Replace(values url.Values)
}

// MemoryAddress implements Address on top of an in-process URL
type MemoryAddress struct {
	mtx          sync.Mutex
	location     *url.URL
	replacements int
}

var _ Address = (*MemoryAddress)(nil)

// NewMemoryAddress creates a new in-process address starting at the given URL
func NewMemoryAddress(raw string) (*MemoryAddress, error) {
	location, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &MemoryAddress{location: location}, nil
}

// Values returns the current query parameters
func (address *MemoryAddress) Values() url.Values {
	address.mtx.Lock()
	defer address.mtx.Unlock()
	return address.location.Query()
}

// Replace replaces the current query parameters
func (address *MemoryAddress) Replace(values url.Values) {
	address.mtx.Lock()
	defer address.mtx.Unlock()
	address.location.RawQuery = values.Encode()
	address.replacements++
}

// Replacements returns how often the query parameters were replaced
func (address *MemoryAddress) Replacements() int {
	address.mtx.Lock()
	defer address.mtx.Unlock()
	return address.replacements
}

// String returns the current URL
func (address *MemoryAddress) String() string {
	address.mtx.Lock()
	defer address.mtx.Unlock()
	return address.location.String()
}

// ParseState reads a state out of query parameters. Parameters that are absent or invalid keep their default
// value; filters not present in the parameters keep their default filter value. An empty value removes a filter
// that has a default and is ignored otherwise.
func ParseState(values url.Values, defaults State) State {
	state := defaults.Clone()
	for key, raw := range values {
		if len(raw) == 0 || IsReserved(key) {
			continue
		}
		if raw[0] == "" {
			delete(state.Filters, key)
			continue
		}
		state.Filters[key] = ParseValue(raw[0])
	}

	if values.Has(ParamSearch) {
		state.Search = values.Get(ParamSearch)
	}
	if page, err := strconv.Atoi(values.Get(ParamPage)); err == nil && page >= 1 {
		state.Page = page
	}
	if limit, err := strconv.Atoi(values.Get(ParamLimit)); err == nil && limit >= 1 {
		state.Limit = limit
	}
	if sortBy := values.Get(ParamSortBy); sortBy != "" {
		state.SortBy = sortBy
	}
	if order := ParseSortOrder(values.Get(ParamSortOrder)); order != "" {
		state.SortOrder = order
	}
	return state
}

// EncodeState renders a state as query parameters, leaving out every value that equals its default.
// A filter without a default is left out while it is empty; a removed filter that has a default is rendered with an
// empty value.
func EncodeState(state State, defaults State) url.Values {
	values := url.Values{}
	for key := range defaults.Filters {
		if _, ok := state.Filters[key]; !ok && !IsReserved(key) {
			values.Set(key, "")
		}
	}
	for key, val := range state.Filters {
		if IsReserved(key) {
			continue
		}
		def, hasDefault := defaults.Filters[key]
		if hasDefault && valuesEqual(val, def) {
			continue
		}
		formatted := FormatValue(val)
		if !hasDefault && formatted == "" {
			continue
		}
		values.Set(key, formatted)
	}
	if state.Search != defaults.Search {
		values.Set(ParamSearch, state.Search)
	}
	if state.Page != defaults.Page {
		values.Set(ParamPage, strconv.Itoa(state.Page))
	}
	if state.Limit != defaults.Limit {
		values.Set(ParamLimit, strconv.Itoa(state.Limit))
	}
	if state.SortBy != defaults.SortBy {
		values.Set(ParamSortBy, state.SortBy)
	}
	if state.SortOrder != defaults.SortOrder {
		values.Set(ParamSortOrder, string(state.SortOrder))
	}
	return values
}
