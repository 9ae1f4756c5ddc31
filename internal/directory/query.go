// internal/directory/query.go
package directory

import (
	"fmt"
	"sort"

	"github.com/vk/geogridgo/internal/operator"
	"github.com/vk/geogridgo/internal/oppath"
)

// Children enumerates the live operators directly inside container, sorted
// by path.
func (d *Directory) Children(container oppath.Path) []*operator.Operator {
	var out []*operator.Operator
	for _, op := range d.ops {
		if op.Path().Parent().Equal(container) {
			out = append(out, op)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Path().String() < out[j].Path().String()
	})
	return out
}

// IsAncestor reports whether ancestor strictly contains descendant.
func (d *Directory) IsAncestor(ancestor, descendant oppath.Path) bool {
	return ancestor.IsAncestorOf(descendant)
}

// Resolve resolves a raw path reference against a context operator's
// container and returns the live operator it names.
func (d *Directory) Resolve(raw string, contextPath oppath.Path) (*operator.Operator, error) {
	p, err := oppath.Resolve(raw, contextPath)
	if err != nil {
		return nil, err
	}
	op, ok := d.Find(p)
	if !ok {
		return nil, fmt.Errorf("no live operator at %s", p.String())
	}
	return op, nil
}

// Paths returns the sorted paths of all live operators.
func (d *Directory) Paths() []string {
	out := make([]string, 0, len(d.ops))
	for key := range d.ops {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}
