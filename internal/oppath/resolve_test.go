// internal/oppath/resolve_test.go
package oppath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	testCases := []struct {
		name        string
		raw         string
		context     string
		expectedStr string
		expectErr   bool
	}{
		{name: "absolute ignores context", raw: "/x/y", context: "/a/b", expectedStr: "/x/y"},
		{name: "absolute is normalized", raw: "/x/./y/../z", context: "/a/b", expectedStr: "/x/z"},
		{name: "bare name resolves against container", raw: "x", context: "/a/b", expectedStr: "/a/x"},
		{name: "dot-slash resolves against container", raw: "./x", context: "/a/b", expectedStr: "/a/x"},
		{name: "parent step", raw: "../x", context: "/a/b/c", expectedStr: "/a/x"},
		{name: "sibling of root-level operator", raw: "target", context: "/operator", expectedStr: "/target"},
		{name: "empty raw is malformed", raw: "", context: "/a", expectErr: true},
		{name: "invalid segment", raw: "x y", context: "/a", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctxPath := MustParse(tc.context)
			p, err := Resolve(tc.raw, ctxPath)
			if tc.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedStr, p.String())
		})
	}
}

// Resolution happens against the context operator's container, so `..` from
// an operator directly under the root steps above the root and collapses
// back to it. This is the documented behavior, not an error.
func TestResolve_ParentOfRootCollapsesToRoot(t *testing.T) {
	p, err := Resolve("../target", MustParse("/operator"))
	require.NoError(t, err)
	assert.Equal(t, "/target", p.String())
}

func TestUniqueID(t *testing.T) {
	container := MustParse("/c")
	taken := map[string]bool{}
	occupied := func(p Path) bool { return taken[p.String()] }

	// Free base name is used directly.
	p := UniqueID("x", container, occupied)
	assert.Equal(t, "/c/x", p.String())

	// With /c/x placed, the first probe wins.
	taken["/c/x"] = true
	p = UniqueID("x", container, occupied)
	assert.Equal(t, "/c/x-1", p.String())

	// Occupying x-1 and x-2, then freeing x-1, must reuse the lowest slot.
	taken["/c/x-1"] = true
	taken["/c/x-2"] = true
	p = UniqueID("x", container, occupied)
	assert.Equal(t, "/c/x-3", p.String())

	delete(taken, "/c/x-1")
	p = UniqueID("x", container, occupied)
	assert.Equal(t, "/c/x-1", p.String())
}
