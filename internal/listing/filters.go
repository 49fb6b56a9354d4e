package listing

import (
	"fmt"
	"math"
	"strconv"
)

// Filters maps caller-defined filter names to string, number or boolean values
type Filters map[string]any

// Clone returns a shallow copy of the filters; a nil receiver yields an empty map
func (filters Filters) Clone() Filters {
	cloned := make(Filters, len(filters))
	for key, val := range filters {
		cloned[key] = val
	}
	return cloned
}

// Equal reports whether both filter sets hold the same keys with equal values.
// Numbers are compared by value regardless of their Go type.
func (filters Filters) Equal(other Filters) bool {
	if len(filters) != len(other) {
		return false
	}
	for key, val := range filters {
		otherVal, ok := other[key]
		if !ok || !valuesEqual(val, otherVal) {
			return false
		}
	}
	return true
}

// SortOrder represents the direction of a sort; the zero value means "not specified"
type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// Valid reports whether the order is either Asc or Desc
func (order SortOrder) Valid() bool {
	return order == Asc || order == Desc
}

// Toggle returns the opposite order
func (order SortOrder) Toggle() SortOrder {
	if order == Asc {
		return Desc
	}
	return Asc
}

// ParseSortOrder parses "asc" or "desc"; any other input yields the zero value
func ParseSortOrder(raw string) SortOrder {
	order := SortOrder(raw)
	if !order.Valid() {
		return ""
	}
	return order
}

func valuesEqual(a, b any) bool {
	na, aNumeric := toFloat(a)
	nb, bNumeric := toFloat(b)
	if aNumeric || bNumeric {
		return aNumeric && bNumeric && na == nb
	}
	return a == b
}

func toFloat(val any) (float64, bool) {
	switch num := val.(type) {
	case int:
		return float64(num), true
	case int8:
		return float64(num), true
	case int16:
		return float64(num), true
	case int32:
		return float64(num), true
	case int64:
		return float64(num), true
	case uint:
		return float64(num), true
	case uint8:
		return float64(num), true
	case uint16:
		return float64(num), true
	case uint32:
		return float64(num), true
	case uint64:
		return float64(num), true
	case float32:
		return float64(num), true
	case float64:
		return num, true
	default:
		return 0, false
	}
}

// FormatValue renders a filter value the way it appears in a query string.
// Values of unsupported types are rendered using their default formatting.
func FormatValue(val any) string {
	switch typed := val.(type) {
	case nil:
		return ""
	case string:
		return typed
	case bool:
		return strconv.FormatBool(typed)
	case float32:
		return strconv.FormatFloat(float64(typed), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	}
	if _, ok := toFloat(val); ok {
		return fmt.Sprintf("%d", val)
	}
	return fmt.Sprint(val)
}

// ParseValue interprets a raw query string value: "true" and "false" become booleans, numeric-looking values
// become int (when integral) or float64 and everything else stays a string
func ParseValue(raw string) any {
	switch raw {
	case "true":
		return true
	case "false":
		return false
	case "":
		return raw
	}
	if num, err := strconv.ParseInt(raw, 10, 0); err == nil {
		return int(num)
	}
	if num, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsInf(num, 0) && !math.IsNaN(num) {
		return num
	}
	return raw
}
