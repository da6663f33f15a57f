package processors

import (
	"encoding/json"
	"log/slog"
	"os"

	"github.com/project8/morpho/models"
	"gopkg.in/yaml.v3"
)

// documentCodec stores the variables as the keys of one JSON or YAML mapping
type documentCodec struct {
	unmarshal func([]byte, any) error
	marshal   func(any) ([]byte, error)
}

func (c documentCodec) read(path string, variables []ioVariable) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	content := make(map[string]any)
	if err := c.unmarshal(raw, &content); err != nil {
		return nil, err
	}
	data := make(map[string]any, len(variables))
	for _, v := range variables {
		if value, ok := content[v.Alias]; ok {
			data[v.Name] = value
		}
	}
	return data, nil
}

func (c documentCodec) write(path string, data map[string]any, variables []ioVariable) error {
	content := make(map[string]any, len(variables))
	for _, v := range variables {
		content[v.Alias] = data[v.Name]
	}
	out, err := c.marshal(content)
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o644)
}

var jsonCodec = documentCodec{
	unmarshal: json.Unmarshal,
	marshal: func(v any) ([]byte, error) {
		return json.MarshalIndent(v, "", "    ")
	},
}

var yamlCodec = documentCodec{
	unmarshal: yaml.Unmarshal,
	marshal:   yaml.Marshal,
}

// NewIOJSON creates an IOProcessor for JSON files
func NewIOJSON(name string, logger *slog.Logger) models.Processor {
	return newIOProcessor(name, logger, "json", jsonCodec)
}

// NewIOYAML creates an IOProcessor for YAML files
func NewIOYAML(name string, logger *slog.Logger) models.Processor {
	return newIOProcessor(name, logger, "yaml", yamlCodec)
}
