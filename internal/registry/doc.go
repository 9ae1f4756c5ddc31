// Package registry provides the central "glue" for the operator-type system.
//
// The Registry stores the mapping between operator type names (e.g.
// "geo_distance") and the pair of artifacts that implement them: the parsed
// manifest Definition describing the typed input/output fields, and the
// compiled Go execute handler.
//
// During application startup the registry is populated by the built-in
// modules and then validated, so a mismatch between a manifest and its
// handler is caught before any graph is loaded.
package registry
