// internal/directory/doc.go

/*
Package directory implements the registry of live operators, keyed by
qualified path.

The directory is explicit, dependency-injected state: collaborators create
one per graph session and must Clear it between independent graph loads;
stale entries would otherwise satisfy cross-references from the previous
load.

All mutation happens on one logical thread (the graph core is synchronous
and single-threaded), so the directory uses a plain map without locking.
Besides instantiation and removal it answers the query API: direct children
of a container, ancestry tests, and contextual path resolution.
*/
package directory
