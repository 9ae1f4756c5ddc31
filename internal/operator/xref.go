// internal/operator/xref.go
package operator

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/geogridgo/internal/ctxlog"
	"github.com/vk/geogridgo/internal/field"
	"github.com/vk/geogridgo/internal/schema"
	"github.com/vk/geogridgo/internal/xref"
	"github.com/zclconf/go-cty/cty"
)

// SyncReferences re-synchronizes the reference edges of every code input
// against the references embedded in its current text. Called after a
// graph load, once all operators exist.
func (o *Operator) SyncReferences(ctx context.Context) error {
	var errs []string
	for _, name := range o.inputOrder {
		f := o.inputs[name]
		if f.Schema().Kind() != schema.Code {
			continue
		}
		if err := o.syncFieldReferences(ctx, f); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("operator %s: %s", o.path.String(), strings.Join(errs, "; "))
	}
	return nil
}

// syncFieldReferences diffs the references embedded in the field's text
// against its materialized reference edges and applies the exact adds and
// removes needed to make them match.
func (o *Operator) syncFieldReferences(ctx context.Context, f *field.Field) error {
	if o.lookup == nil {
		return nil
	}
	v := f.Value()
	if v.IsDeferred() {
		return nil
	}
	raw := v.Concrete()
	if raw == cty.NilVal || raw.IsNull() || raw.Type() != cty.String {
		return nil
	}

	desired := xref.Scan(ctx, raw.AsString(), o.path)

	current := make(map[string]bool)
	for id := range f.Connections() {
		if strings.HasPrefix(id, "xref:") {
			current[id] = true
		}
	}

	adds, removes := xref.Diff(current, desired)
	logger := ctxlog.FromContext(ctx)

	for _, id := range removes {
		if err := f.RemoveConnection(ctx, id, field.ReferenceConn); err != nil {
			return err
		}
	}

	var errs []string
	for _, ref := range adds {
		target, ok := o.lookup.Find(ref.Operator)
		if !ok {
			err := fmt.Errorf("unresolved reference %s in field %s: no live operator", ref.Operator.String(), f.DebugPath())
			logger.Error("Reference resolution failed.", "error", err)
			errs = append(errs, err.Error())
			continue
		}
		var targetField *field.Field
		switch ref.Namespace {
		case xref.Inputs:
			targetField = target.Input(ref.Field())
		case xref.Outputs:
			targetField = target.Output(ref.Field())
		}
		if targetField == nil {
			err := fmt.Errorf("unresolved reference %s.%s.%s in field %s: no such field",
				ref.Operator.String(), ref.Namespace, ref.Field(), f.DebugPath())
			logger.Error("Reference resolution failed.", "error", err)
			errs = append(errs, err.Error())
			continue
		}
		if err := f.AddConnection(ctx, ref.ConnectionID(), targetField, field.ReferenceConn); err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}
