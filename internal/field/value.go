// internal/field/value.go
package field

import (
	"github.com/zclconf/go-cty/cty"
)

// Thunk is a deferred computation producing a field value on demand.
// Callers may pass through positional arguments (a datum, an index, ...);
// thunks must propagate errors rather than swallow them.
type Thunk func(args ...cty.Value) (cty.Value, error)

// Transform maps one concrete value to another.
type Transform func(cty.Value) (cty.Value, error)

// Value is the tagged union held by a field: either a concrete cty.Value or
// a deferred Thunk. The zero Value is concrete cty.NilVal and is invalid.
type Value struct {
	thunk Thunk
	val   cty.Value
}

// ConcreteVal wraps a concrete cty.Value.
func ConcreteVal(v cty.Value) Value {
	return Value{val: v}
}

// DeferredVal wraps a deferred thunk.
func DeferredVal(fn Thunk) Value {
	return Value{thunk: fn}
}

// IsDeferred reports whether the value is a deferred thunk.
func (v Value) IsDeferred() bool {
	return v.thunk != nil
}

// Concrete returns the concrete value, or cty.NilVal when deferred.
func (v Value) Concrete() cty.Value {
	if v.thunk != nil {
		return cty.NilVal
	}
	return v.val
}

// Thunk returns the deferred thunk, or nil when concrete.
func (v Value) Thunk() Thunk {
	return v.thunk
}

// Materialize produces a concrete value: a deferred value is invoked with
// the given arguments, a concrete value is returned as-is.
func (v Value) Materialize(args ...cty.Value) (cty.Value, error) {
	if v.thunk != nil {
		return v.thunk(args...)
	}
	return v.val, nil
}

// Compose combines a value with a transform.
//
// A deferred value yields a new thunk that invokes the original with the
// caller's arguments unchanged and applies the transform to its result,
// propagating any error from either stage. A concrete value has the
// transform applied immediately.
//
// This lets an operator declare "a number, or a function producing a
// number" and lets downstream operators stack further transforms without
// knowing which case held upstream.
func Compose(v Value, transform Transform) (Value, error) {
	if v.IsDeferred() {
		inner := v.thunk
		return DeferredVal(func(args ...cty.Value) (cty.Value, error) {
			out, err := inner(args...)
			if err != nil {
				return cty.NilVal, err
			}
			return transform(out)
		}), nil
	}
	out, err := transform(v.val)
	if err != nil {
		return Value{}, err
	}
	return ConcreteVal(out), nil
}
