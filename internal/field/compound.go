// internal/field/compound.go
package field

import (
	"context"
	"fmt"

	"github.com/vk/geogridgo/internal/oppath"
	"github.com/vk/geogridgo/internal/schema"
	"github.com/zclconf/go-cty/cty"
)

// CompoundField owns a fixed set of named child fields and keeps a merged
// object value in sync with them.
//
// Setting the compound fans the matching attributes out to the declared
// children; attributes with no declared child ride along opaquely in the
// merged value. Editing a child fans the change back up into the merged
// value. Both directions are guarded by an in-progress flag so neither
// re-enters the other.
type CompoundField struct {
	*Field

	children map[string]*Field
	order    []string
	updating bool
}

// childOwner routes a child field's change notifications to its compound.
type childOwner struct {
	parent *CompoundField
}

func (o *childOwner) Path() oppath.Path {
	if o.parent.owner == nil {
		return oppath.Root()
	}
	return o.parent.owner.Path()
}

func (o *childOwner) FieldChanged(ctx context.Context, f *Field) error {
	return o.parent.childChanged(ctx, f)
}

// NewCompound creates a compound field from a compound schema; the child
// fields are instantiated from the schema's declared children.
func NewCompound(name string, s schema.Schema, owner Owner) (*CompoundField, error) {
	children := schema.ChildrenOf(s)
	if children == nil {
		return nil, fmt.Errorf("field %q: schema kind %q has no declared children", name, s.Kind())
	}

	cf := &CompoundField{
		Field:    New(name, s, owner),
		children: make(map[string]*Field, len(children)),
		order:    append([]string(nil), schema.ChildOrderOf(s)...),
	}
	route := &childOwner{parent: cf}
	for childName, childSchema := range children {
		cf.children[childName] = New(childName, childSchema, route)
	}
	cf.Field.afterSet = cf.fanOut
	return cf, nil
}

// Child returns the declared child field with the given name, or nil.
func (cf *CompoundField) Child(name string) *Field {
	return cf.children[name]
}

// ChildOrder returns the declaration order of the children.
func (cf *CompoundField) ChildOrder() []string {
	return cf.order
}

// fanOut pushes the matching attributes of a freshly written merged value
// down into the declared children.
func (cf *CompoundField) fanOut(ctx context.Context, v Value) error {
	if cf.updating || v.IsDeferred() {
		return nil
	}
	cf.updating = true
	defer func() { cf.updating = false }()

	merged := v.Concrete()
	if merged.IsNull() || merged.LengthInt() == 0 {
		return nil
	}
	attrs := merged.AsValueMap()

	for _, name := range cf.order {
		attr, ok := attrs[name]
		if !ok {
			continue
		}
		if err := cf.children[name].SetConcrete(ctx, attr); err != nil {
			return err
		}
	}
	return nil
}

// childChanged folds one child's new value back into the merged object and
// re-emits it.
func (cf *CompoundField) childChanged(ctx context.Context, child *Field) error {
	if cf.updating {
		return nil
	}
	cf.updating = true
	defer func() { cf.updating = false }()

	attrs := map[string]cty.Value{}
	if cur := cf.Field.value.Concrete(); cur != cty.NilVal && !cur.IsNull() && cur.LengthInt() > 0 {
		attrs = cur.AsValueMap()
	}
	if cv := child.Value(); !cv.IsDeferred() {
		attrs[child.Name()] = cv.Concrete()
	}
	cf.Field.value = ConcreteVal(cty.ObjectVal(attrs))
	return cf.Field.emit(ctx)
}
