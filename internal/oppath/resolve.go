// internal/oppath/resolve.go
package oppath

import (
	"fmt"
	"strings"
)

// Resolve converts a raw path reference into an absolute Path.
//
// Absolute references are normalized and returned as-is. Relative references
// (`./x`, `../x`, or bare `x`, which is equivalent to `./x`) are resolved
// against the *container* of the context operator, i.e. contextPath.Parent(),
// never against the operator itself. Stepping above the root with `..`
// collapses to the root; this is a documented choice, not an error.
//
// An empty raw reference is malformed and yields an error.
func Resolve(raw string, contextPath Path) (Path, error) {
	if raw == "" {
		return Path{}, fmt.Errorf("cannot resolve empty path reference")
	}

	if strings.HasPrefix(raw, "/") {
		return Parse(raw)
	}

	base := contextPath.Parent()
	segments := append([]string(nil), base.segments...)

	for _, seg := range strings.Split(raw, "/") {
		switch seg {
		case "", ".":
		case "..":
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
