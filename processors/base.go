// Package processors holds the processor types bundled with morpho.
package processors

import (
	"log/slog"

	"github.com/project8/morpho/builder"
	"github.com/project8/morpho/config"
	"github.com/project8/morpho/models"
)

// Base carries the name, logger and teardown flag shared by every processor.
// Parameters:
//
//	delete: release the processor after running (default true)
type Base struct {
	name   string
	logger *slog.Logger
	delete bool
}

func newBase(name string, logger *slog.Logger) Base {
	if logger == nil {
		logger = slog.Default()
	}
	return Base{name: name, logger: logger, delete: true}
}

func (b *Base) Name() string {
	return b.name
}

func (b *Base) Delete() bool {
	return b.delete
}

func (b *Base) configureBase(params map[string]any) error {
	b.logger.Info("configure", "params", len(params))
	del, err := config.Param(params, "delete", true)
	if err != nil {
		return err
	}
	b.delete = del
	return nil
}

func (b *Base) Outputs() map[string]models.OutputFunc {
	return map[string]models.OutputFunc{}
}

func (b *Base) Inputs() map[string]models.InputFunc {
	return map[string]models.InputFunc{}
}

// Register lists every bundled processor type
func Register(r *builder.Registry) {
	r.MustRegister("GaussianSamplingProcessor", NewGaussianSampling)
	r.MustRegister("PriorSamplingProcessor", NewPriorSampling)
	r.MustRegister("IOJSONProcessor", NewIOJSON)
	r.MustRegister("IOYAMLProcessor", NewIOYAML)
	r.MustRegister("IOCSVProcessor", NewIOCSV)
	r.MustRegister("IOSQLProcessor", NewIOSQL)
	r.MustRegister("ProcessorAssistant", NewProcessorAssistant)
	r.MustRegister("Histogram", NewHistogram)
}

// NewRegistry returns a registry holding every bundled processor type
func NewRegistry() *builder.Registry {
	r := builder.NewRegistry()
	Register(r)
	return r
}
