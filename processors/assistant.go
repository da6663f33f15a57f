package processors

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dop251/goja"
	"github.com/project8/morpho/config"
	"github.com/project8/morpho/models"
)

// ProcessorAssistant wraps a JavaScript function as a processor.
// Parameters:
//
//	module_name (required): script path; ".js" is appended when there is no extension
//	function_name (required): function called as fn(params, data)
//
// Input: data (any value, passed as the second argument)
// Results: results (exported return value of the function)
type ProcessorAssistant struct {
	Base
	params   map[string]any
	module   string
	function string
	runtime  *goja.Runtime
	fn       goja.Callable

	data     any
	results  any
	produced bool
}

func NewProcessorAssistant(name string, logger *slog.Logger) models.Processor {
	return &ProcessorAssistant{Base: newBase(name, logger)}
}

func (p *ProcessorAssistant) Configure(params map[string]any) error {
	if err := p.configureBase(params); err != nil {
		return err
	}
	var err error
	if p.module, err = config.ParamRequired[string](params, "module_name"); err != nil {
		return err
	}
	if p.function, err = config.ParamRequired[string](params, "function_name"); err != nil {
		return err
	}
	path := p.module
	if filepath.Ext(path) == "" {
		path += ".js"
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot load module %s: %w", p.module, err)
	}

	runtime := goja.New()
	if _, err := runtime.RunScript(path, string(src)); err != nil {
		return fmt.Errorf("cannot evaluate module %s: %w", p.module, err)
	}
	fn, ok := goja.AssertFunction(runtime.Get(p.function))
	if !ok {
		return fmt.Errorf("couldn't find %s using %s", p.function, p.module)
	}
	p.logger.Info("found function", "function", p.function, "module", p.module)

	p.params = params
	p.runtime = runtime
	p.fn = fn
	p.results, p.produced = nil, false
	return nil
}

func (p *ProcessorAssistant) Run(ctx context.Context) error {
	result, err := p.fn(goja.Undefined(), p.runtime.ToValue(p.params), p.runtime.ToValue(p.data))
	if err != nil {
		return fmt.Errorf("%s failed: %w", p.function, err)
	}
	p.results = result.Export()
	p.produced = true
	return nil
}

func (p *ProcessorAssistant) Outputs() map[string]models.OutputFunc {
	return map[string]models.OutputFunc{
		"results": func() (any, bool) { return p.results, p.produced },
	}
}

func (p *ProcessorAssistant) Inputs() map[string]models.InputFunc {
	return map[string]models.InputFunc{
		"data": func(value any) error {
			p.data = value
			return nil
		},
	}
}

// Close drops the script runtime
func (p *ProcessorAssistant) Close() error {
	p.runtime, p.fn = nil, nil
	return nil
}
