// internal/oppath/doc.go

/*
Package oppath provides a structured, type-safe representation for operator
identifiers within the system, based on the canonical POSIX-style format
`/container/sub/name`.

A path is an absolute, slash-separated sequence of segments reflecting
container nesting, e.g., `/project/layers/roads`. The root container is `/`.

Relative forms (`./x`, `../x`, bare `x`) are accepted only by Resolve, which
interprets them against a context operator's container. This package enforces
the identifier schema and centralizes all formatting, parsing, resolution,
and unique-name generation logic.
*/
package oppath
