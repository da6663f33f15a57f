package builder

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/project8/morpho/models"
)

// DefaultModule is the module assumed by type references without a "module:" prefix
const DefaultModule = "morpho"

// Factory creates an unconfigured processor bound to name
type Factory func(name string, logger *slog.Logger) models.Processor

// Registry maps type references ("module:Class") to factories.
// It is populated explicitly at startup; there is no package-level registry.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// NormalizeTypeRef expands "Class" to "morpho:Class"
func NormalizeTypeRef(typeRef string) (string, error) {
	module, class, found := strings.Cut(typeRef, ":")
	if !found {
		module, class = DefaultModule, typeRef
	}
	if module == "" || class == "" || strings.Contains(class, ":") {
		return "", fmt.Errorf("malformed processor type reference %q", typeRef)
	}
	return module + ":" + class, nil
}

// Register registers a factory for a type reference.
// Registering the same reference twice replaces the previous factory.
func (r *Registry) Register(typeRef string, factory Factory) error {
	key, err := NormalizeTypeRef(typeRef)
	if err != nil {
		return err
	}
	if factory == nil {
		return fmt.Errorf("nil factory for processor type %s", key)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[key] = factory
	return nil
}

// MustRegister is Register for startup code with constant references
func (r *Registry) MustRegister(typeRef string, factory Factory) {
	if err := r.Register(typeRef, factory); err != nil {
		panic(err)
	}
}

// Lookup returns the factory for a type reference
func (r *Registry) Lookup(typeRef string) (Factory, error) {
	key, err := NormalizeTypeRef(typeRef)
	if err != nil {
		return nil, models.ErrUnknownProcessorType("", typeRef)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, exists := r.factories[key]
	if !exists {
		return nil, models.ErrUnknownProcessorType("", typeRef)
	}
	return factory, nil
}

// Create instantiates a processor of the given type
func (r *Registry) Create(name, typeRef string, logger *slog.Logger) (models.Processor, error) {
	factory, err := r.Lookup(typeRef)
	if err != nil {
		return nil, models.ErrUnknownProcessorType(name, typeRef)
	}
	if logger == nil {
		logger = slog.Default()
	}
	proc := factory(name, logger.With(slog.String("processor", name)))
	if proc == nil {
		return nil, fmt.Errorf("factory for %s returned no processor", typeRef)
	}
	return proc, nil
}

// Types returns all registered type references, sorted
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
