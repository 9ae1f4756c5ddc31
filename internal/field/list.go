// internal/field/list.go
package field

import (
	"context"
	"fmt"

	"github.com/vk/geogridgo/internal/ctxlog"
	"github.com/vk/geogridgo/internal/schema"
	"github.com/zclconf/go-cty/cty"
)

// ListField concatenates the values of an ordered set of live upstream
// connections, in connection order, into one sequence value.
//
// An upstream contribution that parses as a single element is appended
// as-is; one that is itself a sequence of elements is spliced in. The order
// defaults to the order connections were added and can be changed
// explicitly with Reorder.
type ListField struct {
	*Field

	// order holds value-connection ids in concatenation order.
	order []string
}

// NewList creates a list field from a list schema.
func NewList(name string, s schema.Schema, owner Owner) (*ListField, error) {
	if s.Kind() != schema.List {
		return nil, fmt.Errorf("field %q: schema kind %q is not a list", name, s.Kind())
	}
	lf := &ListField{Field: New(name, s, owner)}
	lf.Field.onUpstream = lf.refresh
	return lf, nil
}

// ConnectionOrder returns the current concatenation order of value
// connections.
func (lf *ListField) ConnectionOrder() []string {
	return append([]string(nil), lf.order...)
}

// Reorder replaces the concatenation order. ids must be a permutation of
// the currently active value connections.
func (lf *ListField) Reorder(ctx context.Context, ids []string) error {
	if len(ids) != len(lf.order) {
		return fmt.Errorf("field %s: reorder needs exactly %d connection ids, got %d",
			lf.DebugPath(), len(lf.order), len(ids))
	}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if !lf.HasConnection(id) {
			return fmt.Errorf("field %s: unknown connection id %q in reorder", lf.DebugPath(), id)
		}
		if seen[id] {
			return fmt.Errorf("field %s: duplicate connection id %q in reorder", lf.DebugPath(), id)
		}
		seen[id] = true
	}
	lf.order = append([]string(nil), ids...)
	return lf.refresh(ctx, "")
}

// refresh is the list's upstream hook: it runs when a connection is added,
// removed, or emits, and rebuilds the concatenated value.
func (lf *ListField) refresh(ctx context.Context, connID string) error {
	if connID != "" && !lf.inOrder(connID) {
		lf.order = append(lf.order, connID)
	}

	// Drop order entries whose connection is gone.
	kept := lf.order[:0]
	for _, id := range lf.order {
		if conn, ok := lf.conns[id]; ok && conn.Kind == ValueConn {
			kept = append(kept, id)
		}
	}
	lf.order = kept

	elemSchema := schema.ElemOf(lf.schema)
	logger := ctxlog.FromContext(ctx)

	var elems []cty.Value
	for _, id := range lf.order {
		up := lf.conns[id].Upstream
		v := up.Value()
		if v.IsDeferred() {
			logger.Warn("List contribution skipped: deferred upstream value.",
				"field", lf.DebugPath(), "connection", id)
			continue
		}
		raw := v.Concrete()
		if parsed, err := elemSchema.Parse(raw); err == nil {
			elems = append(elems, parsed)
			continue
		}
		if raw != cty.NilVal && !raw.IsNull() && raw.CanIterateElements() {
			spliced, err := lf.splice(raw, elemSchema)
			if err == nil {
				elems = append(elems, spliced...)
				continue
			}
			logger.Warn("List contribution skipped.", "field", lf.DebugPath(), "connection", id, "error", err)
			continue
		}
		logger.Warn("List contribution skipped: not an element.",
			"field", lf.DebugPath(), "connection", id, "from", up.DebugPath())
	}

	if len(elems) == 0 {
		lf.Field.value = ConcreteVal(cty.EmptyTupleVal)
	} else {
		lf.Field.value = ConcreteVal(cty.TupleVal(elems))
	}
	return lf.Field.emit(ctx)
}

func (lf *ListField) splice(raw cty.Value, elemSchema schema.Schema) ([]cty.Value, error) {
	var out []cty.Value
	i := 0
	for it := raw.ElementIterator(); it.Next(); i++ {
		_, elem := it.Element()
		parsed, err := elemSchema.Parse(elem)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, parsed)
	}
	return out, nil
}

func (lf *ListField) inOrder(id string) bool {
	for _, have := range lf.order {
		if have == id {
			return true
		}
	}
	return false
}
