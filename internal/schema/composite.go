// internal/schema/composite.go
package schema

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// --- compound ---

// compoundSchema owns a fixed set of named child schemas. Its value is the
// shape-merged object of the children's values; upstream keys that have no
// declared child pass through opaquely.
type compoundSchema struct {
	children map[string]Schema
	order    []string
}

// NewCompound creates a compound schema from named child schemas. order
// fixes the declaration order of the children; it must list every key in
// children exactly once.
func NewCompound(children map[string]Schema, order []string) Schema {
	if len(order) != len(children) {
		panic("compound schema order must list every declared child")
	}
	for _, name := range order {
		if _, ok := children[name]; !ok {
			panic(fmt.Sprintf("compound schema order names undeclared child %q", name))
		}
	}
	return &compoundSchema{children: children, order: order}
}

func (s *compoundSchema) Kind() Kind        { return Compound }
func (s *compoundSchema) CtyType() cty.Type { return cty.DynamicPseudoType }

// Children returns the declared child schemas.
func (s *compoundSchema) Children() map[string]Schema { return s.children }

// ChildOrder returns the declaration order of the children.
func (s *compoundSchema) ChildOrder() []string { return s.order }

func (s *compoundSchema) Default() cty.Value {
	merged := make(map[string]cty.Value, len(s.children))
	for name, child := range s.children {
		merged[name] = child.Default()
	}
	return cty.ObjectVal(merged)
}

func (s *compoundSchema) Parse(v cty.Value) (cty.Value, error) {
	incoming, err := objectAttrs(v)
	if err != nil {
		return cty.NilVal, err
	}

	merged := make(map[string]cty.Value, len(incoming))
	for name, child := range s.children {
		raw, ok := incoming[name]
		if !ok {
			merged[name] = child.Default()
			continue
		}
		parsed, err := child.Parse(raw)
		if err != nil {
			return cty.NilVal, fmt.Errorf("child %q: %w", name, err)
		}
		merged[name] = parsed
	}
	// Undeclared upstream keys pass through opaquely.
	for name, raw := range incoming {
		if _, declared := s.children[name]; !declared {
			merged[name] = raw
		}
	}
	return cty.ObjectVal(merged), nil
}

func (s *compoundSchema) Serialize(v cty.Value) (cty.Value, error) {
	return s.convertAttrs(v, Schema.Serialize)
}

func (s *compoundSchema) Deserialize(v cty.Value) (cty.Value, error) {
	out, err := s.convertAttrs(v, Schema.Deserialize)
	if err != nil {
		return cty.NilVal, err
	}
	return s.Parse(out)
}

func (s *compoundSchema) convertAttrs(v cty.Value, fn func(Schema, cty.Value) (cty.Value, error)) (cty.Value, error) {
	attrs, err := objectAttrs(v)
	if err != nil {
		return cty.NilVal, err
	}
	out := make(map[string]cty.Value, len(attrs))
	for name, raw := range attrs {
		child, declared := s.children[name]
		if !declared {
			out[name] = raw
			continue
		}
		converted, err := fn(child, raw)
		if err != nil {
			return cty.NilVal, fmt.Errorf("child %q: %w", name, err)
		}
		out[name] = converted
	}
	return cty.ObjectVal(out), nil
}

func objectAttrs(v cty.Value) (map[string]cty.Value, error) {
	if v.IsNull() {
		return nil, fmt.Errorf("compound value is required")
	}
	ty := v.Type()
	if !ty.IsObjectType() && !ty.IsMapType() {
		return nil, fmt.Errorf("expected an object, got %s", ty.FriendlyName())
	}
	if v.LengthInt() == 0 {
		return map[string]cty.Value{}, nil
	}
	return v.AsValueMap(), nil
}

// --- array / list ---

// arraySchema validates an ordered sequence against one element-template
// schema.
type arraySchema struct {
	elem Schema
	kind Kind
}

// NewArray creates an array schema with a single element-template schema.
func NewArray(elem Schema) Schema {
	return &arraySchema{elem: elem, kind: Array}
}

// NewList creates a list schema. List fields share the array value contract
// but additionally concatenate multiple upstream connections in connection
// order; that behavior lives in the field layer.
func NewList(elem Schema) Schema {
	return &arraySchema{elem: elem, kind: List}
}

func (s *arraySchema) Kind() Kind        { return s.kind }
func (s *arraySchema) CtyType() cty.Type { return cty.DynamicPseudoType }

// Elem returns the element-template schema.
func (s *arraySchema) Elem() Schema { return s.elem }

func (s *arraySchema) Default() cty.Value { return cty.EmptyTupleVal }

func (s *arraySchema) Parse(v cty.Value) (cty.Value, error) {
	return s.convertElems(v, Schema.Parse)
}

func (s *arraySchema) Serialize(v cty.Value) (cty.Value, error) {
	return s.convertElems(v, Schema.Serialize)
}

func (s *arraySchema) Deserialize(v cty.Value) (cty.Value, error) {
	return s.convertElems(v, Schema.Deserialize)
}

func (s *arraySchema) convertElems(v cty.Value, fn func(Schema, cty.Value) (cty.Value, error)) (cty.Value, error) {
	if v.IsNull() {
		return cty.NilVal, fmt.Errorf("sequence value is required")
	}
	if !v.CanIterateElements() {
		return cty.NilVal, fmt.Errorf("expected a sequence, got %s", v.Type().FriendlyName())
	}
	var out []cty.Value
	i := 0
	for it := v.ElementIterator(); it.Next(); i++ {
		_, elem := it.Element()
		converted, err := fn(s.elem, elem)
		if err != nil {
			return cty.NilVal, fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, converted)
	}
	if len(out) == 0 {
		return cty.EmptyTupleVal, nil
	}
	return cty.TupleVal(out), nil
}

// ElemOf returns the element-template schema of an array or list schema,
// or nil when s is not a sequence schema.
func ElemOf(s Schema) Schema {
	if seq, ok := s.(interface{ Elem() Schema }); ok {
		return seq.Elem()
	}
	return nil
}

// ChildrenOf returns the declared children of a compound schema, or nil.
func ChildrenOf(s Schema) map[string]Schema {
	if c, ok := s.(interface{ Children() map[string]Schema }); ok {
		return c.Children()
	}
	return nil
}

// ChildOrderOf returns the declaration order of a compound schema's
// children, or nil.
func ChildOrderOf(s Schema) []string {
	if c, ok := s.(interface{ ChildOrder() []string }); ok {
		return c.ChildOrder()
	}
	return nil
}
