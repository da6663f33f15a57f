package processors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/project8/morpho/config"
	"github.com/project8/morpho/models"
)

const (
	actionRead  = "read"
	actionWrite = "write"
)

// ioVariable is one entry of the variables list.
// Alias is the key used inside the file; it defaults to Name.
type ioVariable struct {
	Name  string
	Alias string
}

// codec reads and writes one file format
type codec interface {
	read(path string, variables []ioVariable) (map[string]any, error)
	write(path string, data map[string]any, variables []ioVariable) error
}

// configurableCodec is implemented by codecs that take extra parameters
type configurableCodec interface {
	configure(params map[string]any) error
}

// IOProcessor reads variables from a file or writes connected data to it.
// Parameters:
//
//	filename (required): path of the file
//	variables (required): names, or {variable, json_alias} mappings
//	action: "read" (default) or "write"
//
// Input: data (map of variable name to value, used by "write")
// Results: data (map of variable name to value, filled by "read")
type IOProcessor struct {
	Base
	format    string
	codec     codec
	filename  string
	variables []ioVariable
	action    string

	data     map[string]any
	produced bool
}

func newIOProcessor(name string, logger *slog.Logger, format string, c codec) *IOProcessor {
	return &IOProcessor{
		Base:   newBase(name, logger),
		format: format,
		codec:  c,
	}
}

func (p *IOProcessor) Configure(params map[string]any) error {
	if err := p.configureBase(params); err != nil {
		return err
	}
	var err error
	if p.filename, err = config.ParamRequired[string](params, "filename"); err != nil {
		return err
	}
	raw, err := config.ReadParam(params, "variables", config.Required)
	if err != nil {
		return err
	}
	if p.variables, err = parseVariables(raw); err != nil {
		return err
	}
	if p.action, err = config.Param(params, "action", actionRead); err != nil {
		return err
	}
	if p.action != actionRead && p.action != actionWrite {
		return models.ErrInvalidParameter("action", p.action, `"read" or "write"`)
	}
	if cc, ok := p.codec.(configurableCodec); ok {
		if err := cc.configure(params); err != nil {
			return err
		}
	}
	p.data = map[string]any{}
	p.produced = false
	return nil
}

func parseVariables(raw any) ([]ioVariable, error) {
	items, ok := raw.([]any)
	if !ok {
		if s, isString := raw.(string); isString {
			return []ioVariable{{Name: s, Alias: s}}, nil
		}
		return nil, models.ErrInvalidParameter("variables", raw, "list")
	}
	vars := make([]ioVariable, 0, len(items))
	for i, item := range items {
		switch v := item.(type) {
		case string:
			vars = append(vars, ioVariable{Name: v, Alias: v})
		case map[string]any:
			path := fmt.Sprintf("variables.%d", i)
			name, err := config.ParamRequired[string](v, "variable")
			if err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			alias, err := config.Param(v, "json_alias", name)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			vars = append(vars, ioVariable{Name: name, Alias: alias})
		default:
			return nil, models.ErrInvalidParameter(fmt.Sprintf("variables.%d", i), item, "string or mapping")
		}
	}
	return vars, nil
}

func (p *IOProcessor) Run(ctx context.Context) error {
	if p.action == actionWrite {
		return p.writeFile()
	}
	return p.readFile()
}

func (p *IOProcessor) readFile() error {
	p.logger.Debug("reading file", "file", p.filename, "format", p.format)
	if _, err := os.Stat(p.filename); err != nil {
		return fmt.Errorf("file %s does not exist: %w", p.filename, err)
	}
	data, err := p.codec.read(p.filename, p.variables)
	if err != nil {
		return fmt.Errorf("error while reading %s: %w", p.filename, err)
	}
	for _, v := range p.variables {
		if _, ok := data[v.Name]; !ok {
			p.logger.Error("variable does not exist in file", "variable", v.Alias, "file", p.filename)
		}
	}
	p.data = data
	p.produced = true
	return nil
}

func (p *IOProcessor) writeFile() error {
	if len(p.data) == 0 {
		return errors.New("no data to write")
	}
	p.logger.Debug("saving data", "file", p.filename, "format", p.format)
	if dir := filepath.Dir(p.filename); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating folder %s: %w", dir, err)
		}
	}
	present := make([]ioVariable, 0, len(p.variables))
	for _, v := range p.variables {
		if _, ok := p.data[v.Name]; !ok {
			p.logger.Error("variable does not exist in data", "variable", v.Name)
			continue
		}
		present = append(present, v)
	}
	if err := p.codec.write(p.filename, p.data, present); err != nil {
		return fmt.Errorf("error while writing %s: %w", p.filename, err)
	}
	p.produced = true
	p.logger.Debug("file saved", "file", p.filename)
	return nil
}

func (p *IOProcessor) Outputs() map[string]models.OutputFunc {
	return map[string]models.OutputFunc{
		"data": func() (any, bool) { return p.data, p.produced },
	}
}

func (p *IOProcessor) Inputs() map[string]models.InputFunc {
	return map[string]models.InputFunc{
		"data": func(value any) error {
			data, ok := value.(map[string]any)
			if !ok {
				return fmt.Errorf("data must be a mapping, got %T", value)
			}
			p.data = data
			return nil
		},
	}
}
