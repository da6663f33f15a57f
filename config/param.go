package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/project8/morpho/models"
)

type requiredMarker struct{}

// Required marks a parameter that has no default value.
// ReadParam returns a MissingParameterError when such a parameter is absent.
var Required = requiredMarker{}

// ReadParam resolves a dotted path against a nested configuration mapping.
// Segments walk mappings by key and lists by decimal index.
// When the path is absent the default is returned unmodified,
// unless the default is Required.
func ReadParam(doc map[string]any, path string, def any) (any, error) {
	value, ok := lookup(doc, path)
	if ok {
		return value, nil
	}
	if _, required := def.(requiredMarker); required {
		return nil, models.ErrMissingParameter(path)
	}
	return def, nil
}

// Has reports whether path is present in doc
func Has(doc map[string]any, path string) bool {
	_, ok := lookup(doc, path)
	return ok
}

func lookup(doc map[string]any, path string) (any, bool) {
	var current any = doc
	for _, segment := range strings.Split(path, ".") {
		switch node := current.(type) {
		case map[string]any:
			next, exists := node[segment]
			if !exists {
				return nil, false
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

// Param reads path as a T, falling back to def when absent.
// Numbers convert between integer and floating kinds and []any converts element-wise.
func Param[T any](doc map[string]any, path string, def T) (T, error) {
	raw, ok := lookup(doc, path)
	if !ok {
		return def, nil
	}
	return convert[T](path, raw)
}

// ParamRequired reads path as a T and fails when it is absent
func ParamRequired[T any](doc map[string]any, path string) (T, error) {
	var zero T
	raw, err := ReadParam(doc, path, Required)
	if err != nil {
		return zero, err
	}
	return convert[T](path, raw)
}

func convert[T any](path string, raw any) (T, error) {
	var zero T
	if v, ok := raw.(T); ok {
		return v, nil
	}

	var out any
	var err error
	switch any(zero).(type) {
	case int:
		out, err = toInt(path, raw)
	case int64:
		var n int
		n, err = toInt(path, raw)
		out = int64(n)
	case float64:
		out, err = toFloat(path, raw)
	case string:
		switch raw.(type) {
		case int, int64, uint64, float64, bool:
			out = fmt.Sprintf("%v", raw)
		default:
			return zero, models.ErrInvalidParameter(path, raw, "string")
		}
	case []string:
		out, err = toSlice(path, raw, func(p string, v any) (string, error) {
			s, ok := v.(string)
			if !ok {
				return "", models.ErrInvalidParameter(p, v, "string")
			}
			return s, nil
		})
	case []float64:
		out, err = toSlice(path, raw, toFloat)
	case []int:
		out, err = toSlice(path, raw, toInt)
	case map[string]any:
		if raw == nil {
			return zero, nil
		}
		return zero, models.ErrInvalidParameter(path, raw, "mapping")
	case []any:
		if raw == nil {
			return zero, nil
		}
		return zero, models.ErrInvalidParameter(path, raw, "list")
	default:
		return zero, models.ErrInvalidParameter(path, raw, fmt.Sprintf("%T", zero))
	}
	if err != nil {
		return zero, err
	}
	return out.(T), nil
}

func toFloat(path string, raw any) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	}
	return 0, models.ErrInvalidParameter(path, raw, "number")
}

func toInt(path string, raw any) (int, error) {
	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		if v >= math.MinInt && v <= math.MaxInt {
			return int(v), nil
		}
	case uint64:
		if v <= math.MaxInt {
			return int(v), nil
		}
	case float64:
		// MaxInt is not representable as float64; it rounds up to 2^63
		if v == math.Trunc(v) && v >= math.MinInt && v < math.MaxInt {
			return int(v), nil
		}
	}
	return 0, models.ErrInvalidParameter(path, raw, "integer")
}

func toSlice[E any](path string, raw any, elem func(string, any) (E, error)) ([]E, error) {
	items, ok := raw.([]any)
	if !ok {
		// a single scalar is accepted as a one-element list
		e, err := elem(path, raw)
		if err != nil {
			return nil, models.ErrInvalidParameter(path, raw, "list")
		}
		return []E{e}, nil
	}
	out := make([]E, 0, len(items))
	for i, item := range items {
		e, err := elem(fmt.Sprintf("%s.%d", path, i), item)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}
