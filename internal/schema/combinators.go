// internal/schema/combinators.go
package schema

import (
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// optionalSchema permits null values on top of an inner schema.
type optionalSchema struct{ inner Schema }

// Optional wraps a schema so that a null value is accepted and passed
// through instead of being rejected.
func Optional(inner Schema) Schema {
	return &optionalSchema{inner: inner}
}

// IsOptional reports whether a schema permits null values.
func IsOptional(s Schema) bool {
	_, ok := s.(*optionalSchema)
	return ok
}

func (s *optionalSchema) Kind() Kind         { return s.inner.Kind() }
func (s *optionalSchema) CtyType() cty.Type  { return s.inner.CtyType() }
func (s *optionalSchema) Default() cty.Value { return s.inner.Default() }

func (s *optionalSchema) Parse(v cty.Value) (cty.Value, error) {
	if v.IsNull() {
		return cty.NullVal(s.inner.CtyType()), nil
	}
	return s.inner.Parse(v)
}

func (s *optionalSchema) Serialize(v cty.Value) (cty.Value, error) {
	if v.IsNull() {
		return v, nil
	}
	return s.inner.Serialize(v)
}

func (s *optionalSchema) Deserialize(v cty.Value) (cty.Value, error) {
	if v.IsNull() {
		return cty.NullVal(s.inner.CtyType()), nil
	}
	return s.inner.Deserialize(v)
}

// defaultedSchema overrides the default value of an inner schema.
type defaultedSchema struct {
	inner Schema
	def   cty.Value
}

// WithDefault wraps a schema, replacing its default value. The default is
// expected to be in the schema's in-memory form (run it through Parse
// first when it comes from a manifest).
func WithDefault(inner Schema, def cty.Value) Schema {
	return &defaultedSchema{inner: inner, def: def}
}

func (s *defaultedSchema) Kind() Kind                                 { return s.inner.Kind() }
func (s *defaultedSchema) CtyType() cty.Type                          { return s.inner.CtyType() }
func (s *defaultedSchema) Default() cty.Value                         { return s.def }
func (s *defaultedSchema) Parse(v cty.Value) (cty.Value, error)       { return s.inner.Parse(v) }
func (s *defaultedSchema) Serialize(v cty.Value) (cty.Value, error)   { return s.inner.Serialize(v) }
func (s *defaultedSchema) Deserialize(v cty.Value) (cty.Value, error) { return s.inner.Deserialize(v) }

// transformedSchema applies a post-parse transform to an inner schema.
type transformedSchema struct {
	inner Schema
	fn    func(cty.Value) (cty.Value, error)
}

// Transformed wraps a schema with a transform applied after a successful
// parse. Serialization is delegated to the inner schema untouched.
func Transformed(inner Schema, fn func(cty.Value) (cty.Value, error)) Schema {
	return &transformedSchema{inner: inner, fn: fn}
}

func (s *transformedSchema) Kind() Kind         { return s.inner.Kind() }
func (s *transformedSchema) CtyType() cty.Type  { return s.inner.CtyType() }
func (s *transformedSchema) Default() cty.Value { return s.inner.Default() }

func (s *transformedSchema) Parse(v cty.Value) (cty.Value, error) {
	out, err := s.inner.Parse(v)
	if err != nil {
		return cty.NilVal, err
	}
	return s.fn(out)
}

func (s *transformedSchema) Serialize(v cty.Value) (cty.Value, error) {
	return s.inner.Serialize(v)
}

func (s *transformedSchema) Deserialize(v cty.Value) (cty.Value, error) {
	out, err := s.inner.Deserialize(v)
	if err != nil {
		return cty.NilVal, err
	}
	return s.fn(out)
}

// unionSchema accepts a value satisfying any of its member schemas, tried
// in declaration order.
type unionSchema struct{ members []Schema }

// OneOf creates a union schema. Kind, type and default are taken from the
// first member.
func OneOf(members ...Schema) Schema {
	if len(members) == 0 {
		panic("union schema requires at least one member")
	}
	return &unionSchema{members: members}
}

func (s *unionSchema) Kind() Kind         { return s.members[0].Kind() }
func (s *unionSchema) CtyType() cty.Type  { return s.members[0].CtyType() }
func (s *unionSchema) Default() cty.Value { return s.members[0].Default() }

func (s *unionSchema) Parse(v cty.Value) (cty.Value, error) {
	var reasons []string
	for _, m := range s.members {
		out, err := m.Parse(v)
		if err == nil {
			return out, nil
		}
		reasons = append(reasons, err.Error())
	}
	return cty.NilVal, fmt.Errorf("no union member matched: %s", strings.Join(reasons, "; "))
}

func (s *unionSchema) Serialize(v cty.Value) (cty.Value, error) {
	return s.members[0].Serialize(v)
}

func (s *unionSchema) Deserialize(v cty.Value) (cty.Value, error) {
	var reasons []string
	for _, m := range s.members {
		out, err := m.Deserialize(v)
		if err == nil {
			return out, nil
		}
		reasons = append(reasons, err.Error())
	}
	return cty.NilVal, fmt.Errorf("no union member matched: %s", strings.Join(reasons, "; "))
}
