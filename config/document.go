package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/project8/morpho/models"
	"gopkg.in/yaml.v3"
)

// ToolboxKey is the top-level key holding the processor and connection declarations
const ToolboxKey = "processors-toolbox"

// Format is the serialization of a configuration document
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Document is a parsed configuration document
type Document struct {
	Raw map[string]any
}

// ToolboxConfig declares the processors of a run and how they are connected
type ToolboxConfig struct {
	Processors  []ProcessorConfig  `yaml:"processors"`
	Connections []ConnectionConfig `yaml:"connections"`
}

// ProcessorConfig declares one processor instance
type ProcessorConfig struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"` // "module:Class" or "Class"
}

// ConnectionConfig links an output attribute to an input attribute
// Format of both ends: "processor:attribute"
type ConnectionConfig struct {
	Signal string `yaml:"signal"`
	Slot   string `yaml:"slot"`
}

// Endpoint is a parsed "processor:attribute" reference
type Endpoint struct {
	Processor string
	Attribute string
}

func (e Endpoint) String() string {
	return e.Processor + ":" + e.Attribute
}

// ParseEndpoint parses "processor:attribute", splitting on the last colon
func ParseEndpoint(ref string) (Endpoint, error) {
	idx := strings.LastIndex(ref, ":")
	if idx == -1 {
		return Endpoint{}, models.ErrInvalidConnection(ref, "missing ':' separator")
	}
	ep := Endpoint{Processor: ref[:idx], Attribute: ref[idx+1:]}
	if ep.Processor == "" {
		return Endpoint{}, models.ErrInvalidConnection(ref, "empty processor name")
	}
	if ep.Attribute == "" {
		return Endpoint{}, models.ErrInvalidConnection(ref, "empty attribute name")
	}
	return ep, nil
}

// FormatFromPath picks the document format from the file extension
func FormatFromPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, true
	case ".yaml", ".yml":
		return FormatYAML, true
	}
	return FormatJSON, false
}

// Load reads a configuration document from disk.
// Files with an unknown extension are read as JSON.
func Load(path string, logger *slog.Logger) (*Document, error) {
	if logger == nil {
		logger = slog.Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration %s: %w", path, err)
	}
	format, known := FormatFromPath(path)
	if !known {
		logger.Warn("unknown configuration format; trying json", "file", path)
	}
	doc, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("error while reading %s: %w", path, err)
	}
	return doc, nil
}

// Parse decodes a configuration document
func Parse(data []byte, format Format) (*Document, error) {
	raw := make(map[string]any)
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	}
	if raw == nil {
		raw = make(map[string]any)
	}
	return &Document{Raw: raw}, nil
}

// Toolbox decodes the processors-toolbox section
func (d *Document) Toolbox() (ToolboxConfig, error) {
	var tc ToolboxConfig
	section, ok := d.Raw[ToolboxKey]
	if !ok {
		return tc, &models.InvalidDocumentError{Reason: "missing " + ToolboxKey + " section"}
	}
	if _, isMap := section.(map[string]any); !isMap {
		return tc, &models.InvalidDocumentError{Reason: ToolboxKey + " must be a mapping"}
	}
	// re-encode so JSON and YAML sources share the struct decoding
	encoded, err := yaml.Marshal(section)
	if err != nil {
		return tc, &models.InvalidDocumentError{Reason: "cannot encode " + ToolboxKey, Err: err}
	}
	if err := yaml.Unmarshal(encoded, &tc); err != nil {
		return tc, &models.InvalidDocumentError{Reason: "cannot decode " + ToolboxKey, Err: err}
	}
	for i, p := range tc.Processors {
		if p.Name == "" {
			return tc, &models.InvalidDocumentError{Reason: fmt.Sprintf("processor #%d has no name", i)}
		}
		if p.Type == "" {
			return tc, &models.InvalidDocumentError{Reason: fmt.Sprintf("processor <%s> has no type", p.Name)}
		}
	}
	return tc, nil
}

// ParamsFor returns the configuration mapping of a processor, or an empty mapping
func (d *Document) ParamsFor(name string) map[string]any {
	if params, ok := d.Raw[name].(map[string]any); ok {
		return params
	}
	return map[string]any{}
}
