package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"reflect"
	"strconv"
	"strings"
)

// MaxBodySize is the largest request body UnmarshalBody accepts
const MaxBodySize = 1 << 20

func errRequestBodyInvalidJSON(err error) *Error {
	return &Error{
		Type:    "validation.requestBody.invalidJSON",
		Message: "Request body is not a valid JSON input.",
		Details: map[string]any{
			"error": err.Error(),
		},
	}
}

func errRequestBodyTooLarge(limit int64) *Error {
	return &Error{
		Type:    "validation.requestBody.tooLarge",
		Message: fmt.Sprintf("Request body exceeds the maximum size of %d bytes.", limit),
		Details: map[string]any{
			"limit": limit,
		},
	}
}

func errRequestBodyParameterUnknown(name string) *Error {
	return &Error{
		Type:    "validation.requestBody.parameter.unknown",
		Message: fmt.Sprintf("The request body parameter '%s' is not supported.", name),
		Details: map[string]any{
			"parameter": name,
		},
	}
}

func errRequestBodyParameterInvalidType(name, expectedType string) *Error {
	return &Error{
		Type:    "validation.requestBody.parameter.invalidType",
		Message: fmt.Sprintf("The request body parameter '%s' could not be assigned to the required type (%s).", name, expectedType),
		Details: map[string]any{
			"parameter":     name,
			"expected_type": expectedType,
		},
	}
}

func errRequestBodyParameterMissing(name string) *Error {
	return &Error{
		Type:    "validation.requestBody.parameter.missing",
		Message: fmt.Sprintf("The request body parameter '%s' is required but was not present in the request.", name),
		Details: map[string]any{
			"parameter": name,
		},
	}
}

func errRequestBodyParameterOutOfRange(name string, value float64, rule fieldRule) *Error {
	comparison := fmt.Sprintf("%v [given] > %v [max]", value, rule.max)
	if value < rule.min {
		comparison = fmt.Sprintf("%v [given] < %v [min]", value, rule.min)
	}
	details := map[string]any{
		"parameter": name,
		"value":     value,
	}
	if !math.IsInf(rule.min, -1) {
		details["min"] = rule.min
	}
	if !math.IsInf(rule.max, 1) {
		details["max"] = rule.max
	}
	return &Error{
		Type:    "validation.requestBody.parameter.number.outOfRange",
		Message: fmt.Sprintf("The request body parameter '%s' is out of the required range (%s).", name, comparison),
		Details: details,
	}
}

func errRequestBodyParameterTooManyItems(name string, count, limit int) *Error {
	return &Error{
		Type:    "validation.requestBody.parameter.tooManyItems",
		Message: fmt.Sprintf("The request body parameter '%s' holds %d items but at most %d are allowed.", name, count, limit),
		Details: map[string]any{
			"parameter": name,
			"count":     count,
			"limit":     limit,
		},
	}
}

// UnmarshalBody decodes a JSON request body of at most MaxBodySize bytes and validates it.
// Unknown parameters are rejected. Fields are validated using the 'required' (pointer fields only), 'min' and 'max'
// (numbers) and 'maxItems' (slices) struct tags.
func UnmarshalBody[T any](request *http.Request) (*T, []*Error, error) {
	decoder := json.NewDecoder(http.MaxBytesReader(nil, request.Body, MaxBodySize))
	decoder.DisallowUnknownFields()

	target := new(T)
	if err := decoder.Decode(target); err != nil {
		return nil, []*Error{decodeError(err)}, nil
	}
	if decoder.More() {
		return nil, []*Error{errRequestBodyInvalidJSON(errors.New("unexpected data after the top-level value"))}, nil
	}

	errs, err := validateStruct("", reflect.ValueOf(target).Elem())
	if err != nil {
		return nil, nil, err
	}
	return target, errs, nil
}

// decodeError maps a decoding error to the error reported to the client.
// Errors of custom unmarshalers (malformed UUIDs or timestamps) count as invalid JSON.
func decodeError(err error) *Error {
	var typeErr *json.UnmarshalTypeError
	var sizeErr *http.MaxBytesError
	switch {
	case errors.As(err, &typeErr):
		return errRequestBodyParameterInvalidType(typeErr.Field, typeErr.Type.String())
	case errors.As(err, &sizeErr):
		return errRequestBodyTooLarge(sizeErr.Limit)
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		name, _ := strconv.Unquote(strings.TrimPrefix(err.Error(), "json: unknown field "))
		return errRequestBodyParameterUnknown(name)
	}
	return errRequestBodyInvalidJSON(err)
}

// fieldRule holds the validation requirements of a struct field
type fieldRule struct {
	required bool
	min      float64
	max      float64
	maxItems int
}

func ruleOf(def reflect.StructField) fieldRule {
	rule := fieldRule{
		required: strings.EqualFold(def.Tag.Get("required"), "true"),
		min:      math.Inf(-1),
		max:      math.Inf(1),
		maxItems: -1,
	}
	if min, err := strconv.ParseFloat(def.Tag.Get("min"), 64); err == nil {
		rule.min = min
	}
	if max, err := strconv.ParseFloat(def.Tag.Get("max"), 64); err == nil {
		rule.max = max
	}
	if maxItems, err := strconv.Atoi(def.Tag.Get("maxItems")); err == nil {
		rule.maxItems = maxItems
	}
	return rule
}

func validateStruct(fieldPrefix string, ref reflect.Value) ([]*Error, error) {
	if ref.Kind() != reflect.Struct {
		return nil, errors.New("illegal call to validateStruct with non-struct parameter")
	}
	typ := ref.Type()

	var errs []*Error
	for i := 0; i < typ.NumField(); i++ {
		def := typ.Field(i)
		if !def.IsExported() {
			continue
		}
		rule := ruleOf(def)
		name := fieldPrefix + fieldName(def)

		field := ref.Field(i)
		if field.Kind() == reflect.Pointer {
			if field.IsNil() {
				if rule.required {
					errs = append(errs, errRequestBodyParameterMissing(name))
				}
				continue
			}
			field = field.Elem()
		}

		var number float64
		isNumber := true
		switch {
		case field.CanInt():
			number = float64(field.Int())
		case field.CanUint():
			number = float64(field.Uint())
		case field.CanFloat():
			number = field.Float()
		default:
			isNumber = false
		}
		if isNumber {
			if number < rule.min || number > rule.max {
				errs = append(errs, errRequestBodyParameterOutOfRange(name, number, rule))
			}
			continue
		}

		switch field.Kind() {
		case reflect.Slice, reflect.Array:
			if rule.maxItems >= 0 && field.Len() > rule.maxItems {
				errs = append(errs, errRequestBodyParameterTooManyItems(name, field.Len(), rule.maxItems))
			}
		case reflect.Struct:
			subErrs, err := validateStruct(name+".", field)
			if err != nil {
				return nil, err
			}
			errs = append(errs, subErrs...)
		}
	}
	return errs, nil
}

func fieldName(def reflect.StructField) string {
	jsonVal, ok := def.Tag.Lookup("json")
	if !ok || jsonVal == "-" {
		return def.Name
	}
	name, _, _ := strings.Cut(jsonVal, ",")
	if name == "" {
		return def.Name
	}
	return name
}
