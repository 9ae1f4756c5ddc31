// internal/field/doc.go

/*
Package field implements the typed, validated, observable value cell that
every operator port is built from.

A Field holds a Value (either a concrete cty.Value or a deferred thunk for
accessor-enabled fields) validated against a schema.Schema. Writes that
fail validation are logged and rejected, leaving the prior value in place;
successful writes synchronously notify subscribers in registration order
before SetValue returns.

Edges between fields come in two kinds. A value connection keeps the
downstream field's value synchronized with the upstream field; removing it
resets the downstream field to its default. A reference connection only
signals that the upstream changed, re-emitting the downstream field's own
current value without coupling the two values; it backs textual references
embedded in free-form fields.

Propagation is single-threaded and recursive. Each field carries an
in-progress flag so a cyclic connection fails fast with an error instead of
recursing unbounded.

Composite fields build on the same cell: a compound field fans writes out to
its declared children and folds child edits back into the merged object
value, and a list field concatenates an ordered set of upstream connections.
*/
package field
