// internal/operator/serialize.go
package operator

import (
	"context"
	"fmt"

	"github.com/vk/geogridgo/internal/field"
	"github.com/zclconf/go-cty/cty"
)

// SerializeInputs emits the operator's persistent input state as
// wire-shape values keyed by field name.
//
// An input is omitted when its value equals the field default, or when it
// is driven by an upstream value connection on an unlocked operator (the
// upstream will repopulate it on load). A locked operator bakes its
// upstream-driven values in explicitly. Deferred thunk values have no wire
// form and are omitted.
func (o *Operator) SerializeInputs() (map[string]cty.Value, error) {
	out := make(map[string]cty.Value)
	for _, name := range o.inputOrder {
		f := o.inputs[name]

		if f.HasValueConnection() && !o.locked {
			continue
		}
		v := f.Value()
		if v.IsDeferred() {
			continue
		}
		raw := v.Concrete()
		if raw == cty.NilVal || raw.RawEquals(f.Default().Concrete()) {
			continue
		}
		wire, err := f.Schema().Serialize(raw)
		if err != nil {
			return nil, fmt.Errorf("operator %s: input %q: %w", o.path.String(), name, err)
		}
		out[name] = wire
	}
	return out, nil
}

// ApplySerializedInput writes one wire-shape value into the named input
// field, converting it through the field schema's Deserialize first.
func (o *Operator) ApplySerializedInput(ctx context.Context, name string, wire cty.Value) error {
	f, ok := o.inputs[name]
	if !ok {
		return fmt.Errorf("no input %q", name)
	}
	mem, err := f.Schema().Deserialize(wire)
	if err != nil {
		return err
	}
	return f.SetValue(ctx, field.ConcreteVal(mem))
}
