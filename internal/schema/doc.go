// internal/schema/doc.go

/*
Package schema defines the value contracts for every field kind in the
operator graph.

The set of kinds is closed: each kind is a small struct implementing the
Schema capability interface (Parse, Default, Serialize, Deserialize) and the
graph dispatches on it structurally. Values are represented as cty.Value
throughout, so validation is value-level conversion via go-cty rather than
Go-type reflection.

Serialization maps in-memory values to their wire shape and back; the two
shapes differ for some kinds (multi-line text serializes as a line array,
colors serialize as a hex string regardless of in-memory channel form), but
Deserialize(Serialize(v)) always round-trips to an equal value.
*/
package schema
