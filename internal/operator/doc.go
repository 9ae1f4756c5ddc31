// internal/operator/doc.go

/*
Package operator implements the graph node: a named bundle of typed input
and output fields plus the pure execute handler of its registered type.

An operator's qualified path is its process-wide identity. Input fields are
instantiated from the type's manifest definition and seeded from serialized
values, falling back to field defaults; any relevant input change triggers a
synchronous re-execution that writes the handler's results into the output
fields, which propagate onward through their connections.

Free-form code inputs are scanned for embedded operator references on every
change, and the field's reference edges are kept in sync with the text.
*/
package operator
