package config

import (
	"strings"

	"github.com/project8/morpho/models"
	"gopkg.in/yaml.v3"
)

// ApplyOverrides merges "key.path=value" arguments into a copy of doc.
// The input document is left untouched.
func ApplyOverrides(doc *Document, args []string) (*Document, error) {
	merged, _ := deepCopy(doc.Raw).(map[string]any)
	if merged == nil {
		merged = make(map[string]any)
	}
	for _, arg := range args {
		key, raw, found := strings.Cut(arg, "=")
		if !found || key == "" {
			return nil, &models.InvalidOverrideError{Argument: arg}
		}
		segments := strings.Split(key, ".")
		var update any = ParseLiteral(raw)
		for i := len(segments) - 1; i >= 0; i-- {
			update = map[string]any{segments[i]: update}
		}
		merge(merged, update.(map[string]any))
	}
	return &Document{Raw: merged}, nil
}

// ParseLiteral interprets a command-line value as a YAML flow literal.
// Numbers, booleans (including True/False), lists and mappings are decoded;
// None becomes nil; an empty value is returned unchanged and anything else
// stays a string.
func ParseLiteral(raw string) any {
	switch strings.TrimSpace(raw) {
	case "None":
		return nil
	case "":
		return raw
	}
	var value any
	if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
		return raw
	}
	switch value.(type) {
	case map[string]any, []any, string, bool, int, float64, nil:
		return value
	}
	// timestamps and other tagged scalars stay verbatim
	return raw
}

func merge(dst, src map[string]any) {
	for key, value := range src {
		if srcMap, ok := value.(map[string]any); ok {
			if dstMap, ok := dst[key].(map[string]any); ok {
				merge(dstMap, srcMap)
				continue
			}
		}
		dst[key] = value
	}
}

func deepCopy(v any) any {
	switch node := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(node))
		for k, val := range node {
			out[k] = deepCopy(val)
		}
		return out
	case []any:
		out := make([]any, len(node))
		for i, val := range node {
			out[i] = deepCopy(val)
		}
		return out
	default:
		return v
	}
}
