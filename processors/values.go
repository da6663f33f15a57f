package processors

import (
	"fmt"
	"reflect"
)

// floats converts a numeric list of any element kind to []float64
func floats(value any) ([]float64, error) {
	switch v := value.(type) {
	case []float64:
		return v, nil
	case nil:
		return nil, fmt.Errorf("expected a numeric list, got nil")
	}
	items := toAnySlice(value)
	if items == nil {
		return nil, fmt.Errorf("expected a numeric list, got %T", value)
	}
	out := make([]float64, len(items))
	for i, item := range items {
		rv := reflect.ValueOf(item)
		switch {
		case rv.CanFloat():
			out[i] = rv.Float()
		case rv.CanInt():
			out[i] = float64(rv.Int())
		case rv.CanUint():
			out[i] = float64(rv.Uint())
		case rv.Kind() == reflect.Bool:
			if rv.Bool() {
				out[i] = 1
			}
		default:
			return nil, fmt.Errorf("element %d is %T, not a number", i, item)
		}
	}
	return out, nil
}

// toAnySlice returns the elements of any slice or array, or nil for other values
func toAnySlice(value any) []any {
	if items, ok := value.([]any); ok {
		return items
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}
