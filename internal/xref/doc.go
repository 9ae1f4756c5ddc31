// internal/xref/doc.go

/*
Package xref keeps the reference edges of free-form fields synchronized
with the operator references embedded in their text.

Two equivalent syntaxes denote a reference, each carrying an operator path,
an input/output namespace tag, and a dotted field path:

	{{../source.out.features.count}}
	op('/layers/source').par.center.lon

Scan extracts every embedded reference from a text, resolving each path
against the owning operator's container and deduplicating references that
target the same (operator, namespace, field). Diff compares the desired set
against the currently materialized edge ids and yields the exact add/remove
operations needed to make the live edge set match the text.
*/
package xref
