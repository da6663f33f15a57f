package morpho

import (
	"github.com/project8/morpho/builder"
	"github.com/project8/morpho/config"
)

// BuildFromDocument builds a toolbox from a configuration document
//
// Phase 1 creates every processor, phase 2 configures them with the
// top-level mapping named after each processor, phase 3 declares the
// connections and computes the chain. Nothing runs if a phase fails.
func BuildFromDocument(doc *config.Document, registry *builder.Registry, opts ...Option) (*ToolBox, error) {
	tb := New(registry, opts...)
	if err := tb.Build(doc); err != nil {
		return nil, err
	}
	return tb, nil
}
