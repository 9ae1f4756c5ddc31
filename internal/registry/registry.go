package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/vk/geogridgo/internal/manifest"
	"github.com/zclconf/go-cty/cty"
)

// Module is the interface that all built-in operator modules must implement
// to be registered.
type Module interface {
	Register(ctx context.Context, r *Registry) error
}

// Handler is the pure execute function of an operator type. It maps
// declared input values to output values and must not depend on any state
// outside its arguments.
type Handler func(ctx context.Context, inputs map[string]cty.Value) (map[string]cty.Value, error)

// RegisteredOperator bundles an operator type's manifest definition with
// its compiled Go handler.
type RegisteredOperator struct {
	Definition *manifest.Definition
	Execute    Handler
}

// Registry holds all registered operator types for a single application
// instance.
type Registry struct {
	types map[string]*RegisteredOperator
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{types: make(map[string]*RegisteredOperator)}
}

// RegisterOperator registers an operator type. Registering the same type
// name twice is a programmer error and panics.
func (r *Registry) RegisterOperator(ro *RegisteredOperator) {
	if ro == nil || ro.Definition == nil {
		panic("registry: operator registration requires a definition")
	}
	name := ro.Definition.Type
	if _, exists := r.types[name]; exists {
		panic(fmt.Sprintf("operator type '%s' already registered", name))
	}
	slog.Debug("Registering operator type.", "type", name)
	r.types[name] = ro
}

// Lookup returns the registered operator type with the given name.
func (r *Registry) Lookup(name string) (*RegisteredOperator, bool) {
	ro, ok := r.types[name]
	return ro, ok
}

// Types returns the sorted names of all registered operator types.
func (r *Registry) Types() []string {
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate performs a startup integrity check over all registered types.
func (r *Registry) Validate(ctx context.Context) error {
	var errs []string
	for _, name := range r.Types() {
		ro := r.types[name]
		if ro.Execute == nil {
			errs = append(errs, fmt.Sprintf("operator type '%s' has no execute handler", name))
		}
		if len(ro.Definition.Outputs) == 0 && len(ro.Definition.Inputs) == 0 {
			errs = append(errs, fmt.Sprintf("operator type '%s' declares neither inputs nor outputs", name))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// Invoke runs the operator type's handler over a bare input map, outside
// any live graph: missing inputs fall back to the declared defaults and
// every provided value is validated against its field schema first. This
// is the non-interactive evaluation path used by tests and batch tooling.
func (ro *RegisteredOperator) Invoke(ctx context.Context, inputs map[string]cty.Value) (map[string]cty.Value, error) {
	resolved := make(map[string]cty.Value, len(ro.Definition.Inputs))
	for _, in := range ro.Definition.Inputs {
		raw, ok := inputs[in.Name]
		if !ok {
			resolved[in.Name] = in.Schema.Default()
			continue
		}
		parsed, err := in.Schema.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("input %q: %w", in.Name, err)
		}
		resolved[in.Name] = parsed
	}
	return ro.Execute(ctx, resolved)
}
