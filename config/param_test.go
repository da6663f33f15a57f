package config

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/project8/morpho/models"
)

func sampleParams() map[string]any {
	return map[string]any{
		"iter":  2000,
		"width": 0.5,
		"name":  "gen",
		"nested": map[string]any{
			"level": map[string]any{"value": "deep"},
		},
		"priors": []any{
			map[string]any{"name": "a", "prior_params": []any{0, 1.5}},
		},
		"empty": nil,
	}
}

func TestReadParam(t *testing.T) {
	doc := sampleParams()

	tests := []struct {
		path string
		def  any
		want any
	}{
		{"iter", 10, 2000},
		{"nested.level.value", "x", "deep"},
		{"priors.0.name", "", "a"},
		{"priors.0.prior_params.1", 0.0, 1.5},
		{"missing", "fallback", "fallback"},
		{"nested.missing.value", 42, 42},
		{"priors.3.name", "none", "none"},
		{"iter.deeper", "leaf", "leaf"},
		// a present null is returned as is
		{"empty", "fallback", nil},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			got, err := ReadParam(doc, tc.path, tc.def)
			if err != nil {
				t.Fatalf("ReadParam(%q): %v", tc.path, err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("ReadParam(%q) mismatch (-want +got):\n%s", tc.path, diff)
			}
		})
	}
}

func TestReadParam_Required(t *testing.T) {
	_, err := ReadParam(sampleParams(), "nested.level.absent", Required)

	var missing *models.MissingParameterError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingParameterError, got %v", err)
	}
	if missing.Path != "nested.level.absent" {
		t.Errorf("Expected path 'nested.level.absent', got '%s'", missing.Path)
	}

	got, err := ReadParam(sampleParams(), "name", Required)
	if err != nil || got != "gen" {
		t.Errorf("Expected 'gen', got %v (%v)", got, err)
	}
}

func TestReadParam_Idempotent(t *testing.T) {
	doc := sampleParams()
	before := sampleParams()

	for i := 0; i < 3; i++ {
		if _, err := ReadParam(doc, "nested.level.value", Required); err != nil {
			t.Fatal(err)
		}
		if _, err := ReadParam(doc, "absent", "default"); err != nil {
			t.Fatal(err)
		}
	}
	if diff := cmp.Diff(before, doc); diff != "" {
		t.Errorf("document changed by ReadParam (-before +after):\n%s", diff)
	}
}

func TestHas(t *testing.T) {
	doc := sampleParams()
	if !Has(doc, "empty") {
		t.Error("Has should report a present null value")
	}
	if Has(doc, "absent") {
		t.Error("Has should not report an absent key")
	}
}

func TestParam_Conversions(t *testing.T) {
	doc := map[string]any{
		"int":       3,
		"float":     2.0,
		"fraction":  2.5,
		"json_num":  float64(7),
		"flag":      true,
		"ints":      []any{1, 2, 3},
		"mixed":     []any{1, 2.5},
		"names":     []any{"a", "b"},
		"one":       "solo",
		"number":    12,
		"mapping":   map[string]any{"k": "v"},
		"word":      "text",
		"list_nums": []any{"x", 1},
	}

	if v, err := Param(doc, "int", 0.0); err != nil || v != 3.0 {
		t.Errorf("int as float64: %v (%v)", v, err)
	}
	if v, err := Param(doc, "float", 0); err != nil || v != 2 {
		t.Errorf("integral float as int: %v (%v)", v, err)
	}
	if v, err := Param(doc, "json_num", int64(0)); err != nil || v != 7 {
		t.Errorf("float64 as int64: %v (%v)", v, err)
	}
	if v, err := Param(doc, "flag", false); err != nil || !v {
		t.Errorf("bool: %v (%v)", v, err)
	}
	if v, err := Param(doc, "ints", []int(nil)); err != nil || !cmp.Equal(v, []int{1, 2, 3}) {
		t.Errorf("[]int: %v (%v)", v, err)
	}
	if v, err := Param(doc, "mixed", []float64(nil)); err != nil || !cmp.Equal(v, []float64{1, 2.5}) {
		t.Errorf("[]float64: %v (%v)", v, err)
	}
	if v, err := Param(doc, "names", []string(nil)); err != nil || !cmp.Equal(v, []string{"a", "b"}) {
		t.Errorf("[]string: %v (%v)", v, err)
	}
	if v, err := Param(doc, "one", []string(nil)); err != nil || !cmp.Equal(v, []string{"solo"}) {
		t.Errorf("scalar as []string: %v (%v)", v, err)
	}
	if v, err := Param(doc, "number", ""); err != nil || v != "12" {
		t.Errorf("number as string: %v (%v)", v, err)
	}
	if v, err := Param(doc, "mapping", map[string]any(nil)); err != nil || v["k"] != "v" {
		t.Errorf("mapping: %v (%v)", v, err)
	}
	if v, err := Param(doc, "absent", 9); err != nil || v != 9 {
		t.Errorf("default: %v (%v)", v, err)
	}

	invalid := []struct {
		name string
		fn   func() error
	}{
		{"fraction as int", func() error { _, err := Param(doc, "fraction", 0); return err }},
		{"word as float", func() error { _, err := Param(doc, "word", 0.0); return err }},
		{"word as bool", func() error { _, err := Param(doc, "word", false); return err }},
		{"mapping as string", func() error { _, err := Param(doc, "mapping", ""); return err }},
		{"list as mapping", func() error { _, err := Param(doc, "ints", map[string]any(nil)); return err }},
		{"mixed list as []float64", func() error { _, err := Param(doc, "list_nums", []float64(nil)); return err }},
	}
	for name, raw := range map[string]any{
		"uint64 above MaxInt": uint64(math.MaxUint64),
		"float above MaxInt":  1e300,
		"float below MinInt":  -1e300,
		"float 2^63":          float64(1 << 63),
		"infinity":            math.Inf(1),
		"NaN":                 math.NaN(),
	} {
		invalid = append(invalid, struct {
			name string
			fn   func() error
		}{name, func() error { _, err := Param(map[string]any{"n": raw}, "n", 0); return err }})
	}
	for _, tc := range invalid {
		t.Run(tc.name, func(t *testing.T) {
			var invalidErr *models.InvalidParameterError
			if err := tc.fn(); !errors.As(err, &invalidErr) {
				t.Errorf("expected InvalidParameterError, got %v", err)
			}
		})
	}
}

func TestParamRequired(t *testing.T) {
	doc := map[string]any{"filename": "out.json"}

	name, err := ParamRequired[string](doc, "filename")
	if err != nil || name != "out.json" {
		t.Errorf("Expected 'out.json', got %q (%v)", name, err)
	}

	_, err = ParamRequired[[]any](doc, "variables")
	var missing *models.MissingParameterError
	if !errors.As(err, &missing) {
		t.Errorf("expected MissingParameterError, got %v", err)
	}
}
