package config

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/project8/morpho/models"
)

func TestParseEndpoint(t *testing.T) {
	tests := []struct {
		input     string
		processor string
		attribute string
	}{
		{"gen:results", "gen", "results"},
		{"reader:data", "reader", "data"},
		// the last colon separates the attribute
		{"ns:gen:results", "ns:gen", "results"},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			ep, err := ParseEndpoint(tc.input)
			if err != nil {
				t.Fatalf("ParseEndpoint(%q): %v", tc.input, err)
			}
			if ep.Processor != tc.processor {
				t.Errorf("Expected processor '%s', got '%s'", tc.processor, ep.Processor)
			}
			if ep.Attribute != tc.attribute {
				t.Errorf("Expected attribute '%s', got '%s'", tc.attribute, ep.Attribute)
			}
			if ep.String() != tc.input {
				t.Errorf("Expected String() '%s', got '%s'", tc.input, ep.String())
			}
		})
	}
}

func TestParseEndpoint_Invalid(t *testing.T) {
	for _, input := range []string{"gen", "gen:", ":results", ""} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseEndpoint(input)
			var connErr *models.InvalidConnectionError
			if !errors.As(err, &connErr) {
				t.Fatalf("expected InvalidConnectionError for %q, got %v", input, err)
			}
		})
	}
}

const sampleYAML = `
processors-toolbox:
  processors:
    - name: gen
      type: GaussianSamplingProcessor
    - name: hist
      type: morpho:Histogram
  connections:
    - signal: "gen:results"
      slot: "hist:data"
gen:
  iter: 100
  mean: 1.5
hist:
  variables: x
`

const sampleJSON = `{
  "processors-toolbox": {
    "processors": [
      {"name": "gen", "type": "GaussianSamplingProcessor"},
      {"name": "hist", "type": "morpho:Histogram"}
    ],
    "connections": [
      {"signal": "gen:results", "slot": "hist:data"}
    ]
  },
  "gen": {"iter": 100, "mean": 1.5},
  "hist": {"variables": "x"}
}`

func TestParse_Toolbox(t *testing.T) {
	want := ToolboxConfig{
		Processors: []ProcessorConfig{
			{Name: "gen", Type: "GaussianSamplingProcessor"},
			{Name: "hist", Type: "morpho:Histogram"},
		},
		Connections: []ConnectionConfig{
			{Signal: "gen:results", Slot: "hist:data"},
		},
	}

	for _, tc := range []struct {
		format Format
		src    string
	}{
		{FormatYAML, sampleYAML},
		{FormatJSON, sampleJSON},
	} {
		t.Run(string(tc.format), func(t *testing.T) {
			doc, err := Parse([]byte(tc.src), tc.format)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			tbc, err := doc.Toolbox()
			if err != nil {
				t.Fatalf("Toolbox: %v", err)
			}
			if diff := cmp.Diff(want, tbc); diff != "" {
				t.Errorf("toolbox mismatch (-want +got):\n%s", diff)
			}

			iter, err := Param(doc.ParamsFor("gen"), "iter", 0)
			if err != nil || iter != 100 {
				t.Errorf("Expected gen.iter 100, got %v (%v)", iter, err)
			}
		})
	}
}

func TestToolbox_Invalid(t *testing.T) {
	tests := map[string]string{
		"missing section":  "gen: {iter: 3}",
		"section not map":  "processors-toolbox: [1, 2]",
		"processor noname": "processors-toolbox: {processors: [{type: Histogram}]}",
		"processor notype": "processors-toolbox: {processors: [{name: h}]}",
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			doc, err := Parse([]byte(src), FormatYAML)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			_, err = doc.Toolbox()
			var docErr *models.InvalidDocumentError
			if !errors.As(err, &docErr) {
				t.Fatalf("expected InvalidDocumentError, got %v", err)
			}
		})
	}
}

func TestParamsFor_Absent(t *testing.T) {
	doc, err := Parse([]byte(sampleYAML), FormatYAML)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	params := doc.ParamsFor("nobody")
	if params == nil || len(params) != 0 {
		t.Errorf("Expected empty mapping, got %v", params)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	files := map[string]string{
		"config.yaml": sampleYAML,
		"config.yml":  sampleYAML,
		"config.json": sampleJSON,
		"config.conf": sampleJSON,
	}
	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				t.Fatal(err)
			}
			doc, err := Load(path, logger)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if _, err := doc.Toolbox(); err != nil {
				t.Errorf("Toolbox: %v", err)
			}
		})
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml"), logger); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist for missing file, got %v", err)
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path   string
		format Format
		known  bool
	}{
		{"a.json", FormatJSON, true},
		{"a.YAML", FormatYAML, true},
		{"dir/a.yml", FormatYAML, true},
		{"a.txt", FormatJSON, false},
	}
	for _, tc := range tests {
		format, known := FormatFromPath(tc.path)
		if format != tc.format || known != tc.known {
			t.Errorf("FormatFromPath(%q) = %s, %v; want %s, %v", tc.path, format, known, tc.format, tc.known)
		}
	}
}
