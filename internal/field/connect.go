// internal/field/connect.go
package field

import (
	"github.com/vk/geogridgo/internal/schema"
	"github.com/zclconf/go-cty/cty"
)

// ConnKind distinguishes the two edge semantics of the graph.
type ConnKind string

const (
	// ValueConn keeps the downstream field's value synchronized with the
	// upstream field, schema-validated on every emission.
	ValueConn ConnKind = "value"
	// ReferenceConn signals upstream change without value coupling; it backs
	// textual references embedded in free-form fields.
	ReferenceConn ConnKind = "reference"
)

// CanConnect decides whether an output field may feed an input field.
//
// A wildcard-typed field matches anything in either direction. Otherwise
// the upstream's *current value* is validated against the downstream
// schema (the element schema when the downstream is an array or list).
//
// This is deliberately a value-level check, not a structural-type check:
// compatibility between two fields can change as the upstream value's
// shape changes over time.
func CanConnect(from, to *Field) bool {
	if from.schema.Kind() == schema.Wildcard || to.schema.Kind() == schema.Wildcard {
		return true
	}

	// A deferred upstream value carries no shape to validate; only an
	// accessor-enabled downstream can take it.
	if from.value.IsDeferred() {
		return to.accessor
	}

	raw := from.value.Concrete()
	if elem := schema.ElemOf(to.schema); elem != nil {
		if _, err := elem.Parse(raw); err == nil {
			return true
		}
		// A sequence whose elements all fit splices into the list.
		if raw != cty.NilVal && !raw.IsNull() && raw.CanIterateElements() {
			for it := raw.ElementIterator(); it.Next(); {
				_, e := it.Element()
				if _, err := elem.Parse(e); err != nil {
					return false
				}
			}
			return true
		}
		return false
	}

	_, err := to.schema.Parse(raw)
	return err == nil
}
