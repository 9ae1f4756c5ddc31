// internal/project/doc.go

/*
Package project defines the persistent document format for a graph session
and the load/save round-trip against a live directory.

A document holds two flat lists: operator states (path, type, locked flag
and the serialized inputs that differ from their defaults) and value
connections. Reference edges never persist; they are re-derived from the
reference text during the load's sync pass. Connection order in the
document is meaningful: list fields concatenate in that order.
*/
package project
