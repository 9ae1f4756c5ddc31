// internal/operator/operator.go
package operator

import (
	"context"
	"fmt"

	"github.com/vk/geogridgo/internal/ctxlog"
	"github.com/vk/geogridgo/internal/field"
	"github.com/vk/geogridgo/internal/manifest"
	"github.com/vk/geogridgo/internal/oppath"
	"github.com/vk/geogridgo/internal/registry"
	"github.com/vk/geogridgo/internal/schema"
	"github.com/zclconf/go-cty/cty"
)

// Lookup resolves qualified paths to live operators. The directory
// implements it; operators use it to materialize cross-references.
type Lookup interface {
	Find(p oppath.Path) (*Operator, bool)
}

// Operator is a live graph node.
type Operator struct {
	path oppath.Path
	reg  *registry.RegisteredOperator

	inputs      map[string]*field.Field
	inputOrder  []string
	outputs     map[string]*field.Field
	outputOrder []string

	// compounds and lists hold the composite wrappers for the input
	// fields that have one; the embedded cells live in inputs too.
	compounds map[string]*field.CompoundField
	lists     map[string]*field.ListField

	isInput map[*field.Field]bool

	// locked excludes serialized inputs from upstream overwrite: a locked
	// operator's upstream-driven values are baked into its serialization.
	locked bool

	lookup    Lookup
	executing bool
}

// New instantiates an operator of a registered type at the given path.
// serialized holds wire-shape input values by field name; unset inputs
// fall back to the field defaults. Invalid serialized values are logged
// and skipped, keeping the default.
func New(ctx context.Context, path oppath.Path, reg *registry.RegisteredOperator, serialized map[string]cty.Value) (*Operator, error) {
	if reg == nil || reg.Definition == nil {
		return nil, fmt.Errorf("operator %s: missing type registration", path.String())
	}

	o := &Operator{
		path:      path,
		reg:       reg,
		inputs:    make(map[string]*field.Field),
		outputs:   make(map[string]*field.Field),
		compounds: make(map[string]*field.CompoundField),
		lists:     make(map[string]*field.ListField),
		isInput:   make(map[*field.Field]bool),
	}

	for _, def := range reg.Definition.Inputs {
		f, err := o.buildField(def)
		if err != nil {
			return nil, fmt.Errorf("operator %s: %w", path.String(), err)
		}
		o.inputs[def.Name] = f
		o.inputOrder = append(o.inputOrder, def.Name)
		o.isInput[f] = true
	}
	for _, def := range reg.Definition.Outputs {
		f, err := o.buildField(def)
		if err != nil {
			return nil, fmt.Errorf("operator %s: %w", path.String(), err)
		}
		o.outputs[def.Name] = f
		o.outputOrder = append(o.outputOrder, def.Name)
	}

	logger := ctxlog.FromContext(ctx)
	for name, raw := range serialized {
		if err := o.ApplySerializedInput(ctx, name, raw); err != nil {
			logger.Warn("Serialized input ignored.", "operator", path.String(), "input", name, "error", err)
		}
	}

	return o, nil
}

func (o *Operator) buildField(def *manifest.FieldDef) (*field.Field, error) {
	switch def.Kind {
	case schema.Compound:
		cf, err := field.NewCompound(def.Name, def.Schema, o)
		if err != nil {
			return nil, err
		}
		o.compounds[def.Name] = cf
		return cf.Field, nil
	case schema.List:
		lf, err := field.NewList(def.Name, def.Schema, o)
		if err != nil {
			return nil, err
		}
		o.lists[def.Name] = lf
		return lf.Field, nil
	default:
		if def.Accessor {
			return field.NewAccessor(def.Name, def.Schema, o), nil
		}
		return field.New(def.Name, def.Schema, o), nil
	}
}

// Path returns the operator's qualified path.
func (o *Operator) Path() oppath.Path { return o.path }

// Type returns the operator's registered type name.
func (o *Operator) Type() string { return o.reg.Definition.Type }

// Definition returns the operator type's manifest definition.
func (o *Operator) Definition() *manifest.Definition { return o.reg.Definition }

// Locked reports whether serialized inputs are excluded from upstream
// overwrite.
func (o *Operator) Locked() bool { return o.locked }

// SetLocked sets the locked flag.
func (o *Operator) SetLocked(locked bool) { o.locked = locked }

// SetLookup wires the operator to the directory it lives in; required
// before cross-references can materialize.
func (o *Operator) SetLookup(l Lookup) { o.lookup = l }

// Input returns the input field with the given name, or nil.
func (o *Operator) Input(name string) *field.Field { return o.inputs[name] }

// Output returns the output field with the given name, or nil.
func (o *Operator) Output(name string) *field.Field { return o.outputs[name] }

// CompoundInput returns the compound wrapper of an input field, or nil.
func (o *Operator) CompoundInput(name string) *field.CompoundField { return o.compounds[name] }

// ListInput returns the list wrapper of an input field, or nil.
func (o *Operator) ListInput(name string) *field.ListField { return o.lists[name] }

// InputNames returns the declared input names in manifest order.
func (o *Operator) InputNames() []string { return append([]string(nil), o.inputOrder...) }

// OutputNames returns the declared output names in manifest order.
func (o *Operator) OutputNames() []string { return append([]string(nil), o.outputOrder...) }

// Fields returns every field of the operator, inputs first, in manifest
// order. Used for connection teardown.
func (o *Operator) Fields() []*field.Field {
	out := make([]*field.Field, 0, len(o.inputs)+len(o.outputs))
	for _, name := range o.inputOrder {
		out = append(out, o.inputs[name])
	}
	for _, name := range o.outputOrder {
		out = append(out, o.outputs[name])
	}
	return out
}

// FieldChanged implements field.Owner. An input change re-synchronizes the
// field's reference edges (for code fields) and re-executes the operator;
// output changes propagate through their own connections and need nothing
// here.
func (o *Operator) FieldChanged(ctx context.Context, f *field.Field) error {
	if !o.isInput[f] {
		return nil
	}
	if f.Schema().Kind() == schema.Code {
		if err := o.syncFieldReferences(ctx, f); err != nil {
			return err
		}
	}
	return o.Execute(ctx)
}

// Execute materializes the current input values, runs the type's handler,
// and writes its results into the output fields, propagating downstream
// before returning. A re-entrant call during an ongoing execution is a
// no-op; genuine connection cycles are caught at the field layer.
func (o *Operator) Execute(ctx context.Context) error {
	if o.executing {
		return nil
	}
	o.executing = true
	defer func() { o.executing = false }()

	logger := ctxlog.FromContext(ctx)

	inputs := make(map[string]cty.Value, len(o.inputs))
	for name, f := range o.inputs {
		v, err := f.Value().Materialize()
		if err != nil {
			return fmt.Errorf("operator %s: input %q: %w", o.path.String(), name, err)
		}
		inputs[name] = v
	}

	outputs, err := o.reg.Execute(ctx, inputs)
	if err != nil {
		logger.Error("Operator execution failed.", "operator", o.path.String(), "error", err)
		return fmt.Errorf("operator %s: %w", o.path.String(), err)
	}

	for _, name := range o.outputOrder {
		v, ok := outputs[name]
		if !ok {
			continue
		}
		if err := o.outputs[name].SetConcrete(ctx, v); err != nil {
			return err
		}
	}
	for name := range outputs {
		if _, declared := o.outputs[name]; !declared {
			logger.Warn("Handler produced undeclared output.", "operator", o.path.String(), "output", name)
		}
	}
	return nil
}

// Teardown disconnects every field of the operator, applying normal
// removal semantics on both sides. Called by the directory on removal.
func (o *Operator) Teardown(ctx context.Context) {
	for _, f := range o.Fields() {
		f.DisconnectAll(ctx)
	}
}
