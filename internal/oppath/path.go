// internal/oppath/path.go
package oppath

import (
	"fmt"
	"regexp"
	"strings"
)

// segmentRegex is used to validate a single segment of a path, e.g., `roads`
// or `layer-2`. Dots and slashes are excluded so a segment can never be
// mistaken for a traversal step.
var segmentRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Path is the structured representation of a unique operator identifier.
// It is modeled as an absolute path, broken into container segments.
// The zero value is the root container `/`.
type Path struct {
	segments []string
}

// Root returns the path of the root container.
func Root() Path {
	return Path{}
}

// Parse creates a new Path by parsing its canonical absolute string
// representation. Relative forms are rejected; use Resolve for those.
func Parse(raw string) (Path, error) {
	if raw == "" {
		return Path{}, fmt.Errorf("identifier cannot be empty")
	}
	if !strings.HasPrefix(raw, "/") {
		return Path{}, fmt.Errorf("identifier %q is not absolute", raw)
	}

	var segments []string
	for _, seg := range strings.Split(raw, "/") {
		switch seg {
		case "", ".":
			// Redundant separators and self-references normalize away.
		case "..":
			// Stepping above the root collapses to the root.
			if len(segments) > 0 {
				segments = segments[:len(segments)-1]
			}
		default:
			if !segmentRegex.MatchString(seg) {
				return Path{}, fmt.Errorf("invalid path segment %q in %q", seg, raw)
			}
			segments = append(segments, seg)
		}
	}

	return Path{segments: segments}, nil
}

// MustParse is a Parse that panics on error, for statically known paths.
func MustParse(raw string) Path {
	p, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return p
}

// String serializes the Path into its canonical string representation.
func (p Path) String() string {
	if len(p.segments) == 0 {
		return "/"
	}
	return "/" + strings.Join(p.segments, "/")
}

// Equal checks for equality between two paths.
func (p Path) Equal(other Path) bool {
	if len(p.segments) != len(other.segments) {
		return false
	}
	for i, seg := range p.segments {
		if other.segments[i] != seg {
			return false
		}
	}
	return true
}

// IsRoot reports whether the path names the root container.
func (p Path) IsRoot() bool {
	return len(p.segments) == 0
}

// Base returns the final segment of the path, or "" for the root.
func (p Path) Base() string {
	if len(p.segments) == 0 {
		return ""
	}
	return p.segments[len(p.segments)-1]
}

// Parent returns the container holding this path. The parent of the root
// is the root itself.
func (p Path) Parent() Path {
	if len(p.segments) == 0 {
		return Path{}
	}
	return Path{segments: append([]string(nil), p.segments[:len(p.segments)-1]...)}
}

// Join returns the path extended by one child segment.
func (p Path) Join(name string) Path {
	segments := make([]string, 0, len(p.segments)+1)
	segments = append(segments, p.segments...)
	segments = append(segments, name)
	return Path{segments: segments}
}

// IsAncestorOf reports whether p is a strict ancestor container of other.
func (p Path) IsAncestorOf(other Path) bool {
	if len(p.segments) >= len(other.segments) {
		return false
	}
	for i, seg := range p.segments {
		if other.segments[i] != seg {
			return false
		}
	}
	return true
}
