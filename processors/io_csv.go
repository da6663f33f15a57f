package processors

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/project8/morpho/config"
	"github.com/project8/morpho/models"
)

// csvCodec stores one variable per row: name, JSON-encoded value.
// With discard_warmup set, list entries whose is_sample flag is 0 are dropped on write.
type csvCodec struct {
	discardWarmup bool
}

func (c *csvCodec) configure(params map[string]any) error {
	var err error
	c.discardWarmup, err = config.Param(params, "discard_warmup", false)
	return err
}

func (c *csvCodec) read(path string, variables []ioVariable) (map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 2
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	content := make(map[string]string, len(rows))
	for _, row := range rows {
		content[row[0]] = row[1]
	}

	data := make(map[string]any, len(variables))
	for _, v := range variables {
		cell, ok := content[v.Alias]
		if !ok {
			continue
		}
		var value any
		if err := json.Unmarshal([]byte(cell), &value); err != nil {
			// cells that are not JSON are kept as plain strings
			value = cell
		}
		data[v.Name] = value
	}
	return data, nil
}

func (c *csvCodec) write(path string, data map[string]any, variables []ioVariable) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var mask []bool
	if c.discardWarmup {
		if flags, ok := data["is_sample"]; ok {
			if mask, err = sampleMask(flags); err != nil {
				return err
			}
		}
	}

	w := csv.NewWriter(f)
	for _, v := range variables {
		value := data[v.Name]
		if mask != nil {
			value = applyMask(value, mask)
		}
		cell, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("encoding %s: %w", v.Name, err)
		}
		if err := w.Write([]string{v.Alias, string(cell)}); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

func sampleMask(flags any) ([]bool, error) {
	values, err := floats(flags)
	if err != nil {
		return nil, fmt.Errorf("is_sample: %w", err)
	}
	mask := make([]bool, len(values))
	for i, v := range values {
		mask[i] = v == 1
	}
	return mask, nil
}

// applyMask keeps the entries of a list whose mask flag is set;
// values that are not lists of the mask length pass through unchanged
func applyMask(value any, mask []bool) any {
	items := toAnySlice(value)
	if items == nil || len(items) != len(mask) {
		return value
	}
	kept := make([]any, 0, len(items))
	for i, item := range items {
		if mask[i] {
			kept = append(kept, item)
		}
	}
	return kept
}

// NewIOCSV creates an IOProcessor for CSV files
func NewIOCSV(name string, logger *slog.Logger) models.Processor {
	return newIOProcessor(name, logger, "csv", &csvCodec{})
}
