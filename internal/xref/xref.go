// internal/xref/xref.go
package xref

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/vk/geogridgo/internal/ctxlog"
	"github.com/vk/geogridgo/internal/oppath"
)

// Namespace tags which side of an operator a reference targets.
type Namespace string

const (
	// Inputs is the `par` namespace: the referenced operator's input fields.
	Inputs Namespace = "par"
	// Outputs is the `out` namespace: the referenced operator's output fields.
	Outputs Namespace = "out"
)

// Ref is one embedded operator reference, with its path already resolved
// to an absolute operator path.
type Ref struct {
	Operator  oppath.Path
	Namespace Namespace
	// FieldPath is the dotted path into the referenced field; only the
	// first segment selects the field, deeper segments address into its
	// value.
	FieldPath []string
}

// Field returns the referenced field name (the first path segment).
func (r Ref) Field() string {
	return r.FieldPath[0]
}

// ConnectionID derives the deterministic edge id for this reference.
// References targeting the same (operator, namespace, field) share an id,
// which is what deduplicates them into a single edge.
func (r Ref) ConnectionID() string {
	return "xref:" + r.Operator.String() + ":" + string(r.Namespace) + ":" + r.Field()
}

// The two reference syntaxes parse identically. The path part of the
// mustache form is everything up to the first `.par.` / `.out.` anchor, so
// relative paths containing dots (`../x`) survive.
var (
	mustacheRe = regexp.MustCompile(`\{\{\s*([^{}]+?)\.(par|out)\.([A-Za-z_][A-Za-z0-9_]*(?:\.[A-Za-z_][A-Za-z0-9_]*)*)\s*\}\}`)
	opCallRe   = regexp.MustCompile(`\bop\(\s*'([^']+)'\s*\)\.(par|out)\.([A-Za-z_][A-Za-z0-9_]*(?:\.[A-Za-z_][A-Za-z0-9_]*)*)`)
)

// Scan extracts all embedded references from text, resolving each operator
// path against the container of the owning operator. Malformed paths are
// logged and skipped. The result is deduplicated by (operator, namespace,
// field), keeping first-occurrence order.
func Scan(ctx context.Context, text string, owner oppath.Path) []Ref {
	logger := ctxlog.FromContext(ctx)

	var refs []Ref
	seen := make(map[string]bool)

	collect := func(rawPath, ns, dotted string) {
		resolved, err := oppath.Resolve(rawPath, owner)
		if err != nil {
			logger.Warn("Skipping malformed reference path.", "path", rawPath, "owner", owner.String(), "error", err)
			return
		}
		ref := Ref{
			Operator:  resolved,
			Namespace: Namespace(ns),
			FieldPath: strings.Split(dotted, "."),
		}
		if id := ref.ConnectionID(); !seen[id] {
			seen[id] = true
			refs = append(refs, ref)
		}
	}

	for _, m := range mustacheRe.FindAllStringSubmatch(text, -1) {
		collect(strings.TrimSpace(m[1]), m[2], m[3])
	}
	for _, m := range opCallRe.FindAllStringSubmatch(text, -1) {
		collect(m[1], m[2], m[3])
	}
	return refs
}

// Diff compares the desired reference set against the currently
// materialized edge ids and returns the adds and removes that make the
// live set match exactly. current holds the active xref connection ids.
func Diff(current map[string]bool, desired []Ref) (adds []Ref, removes []string) {
	want := make(map[string]bool, len(desired))
	for _, ref := range desired {
		id := ref.ConnectionID()
		want[id] = true
		if !current[id] {
			adds = append(adds, ref)
		}
	}
	for id := range current {
		if !want[id] {
			removes = append(removes, id)
		}
	}
	sort.Strings(removes)
	return adds, removes
}
