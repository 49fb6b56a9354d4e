package offer

import "fmt"

// ValidationError represents an invalid offer field or filter value
type ValidationError struct {
	Field  string
	Value  any
	Reason string
}

func (err *ValidationError) Error() string {
	return fmt.Sprintf("invalid value for '%s': %s", err.Field, err.Reason)
}

func invalid(field string, value any, reason string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}
