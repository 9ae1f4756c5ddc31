// internal/project/snapshot.go
package project

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/vk/geogridgo/internal/directory"
	"github.com/vk/geogridgo/internal/field"
	"github.com/vk/geogridgo/internal/operator"
	"github.com/vk/geogridgo/internal/oppath"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// Snapshot captures the persistent state of every live operator. Operators
// appear sorted by path; connections appear per input in concatenation
// order (list fields) or sorted by id.
func Snapshot(d *directory.Directory) (*Document, error) {
	doc := &Document{}

	for _, key := range d.Paths() {
		op, ok := d.Find(oppath.MustParse(key))
		if !ok {
			continue
		}

		inputs, err := op.SerializeInputs()
		if err != nil {
			return nil, err
		}
		state := OperatorState{
			Path:   key,
			Type:   op.Type(),
			Locked: op.Locked(),
		}
		if len(inputs) > 0 {
			state.Inputs = make(map[string]ctyjson.SimpleJSONValue, len(inputs))
			for name, v := range inputs {
				state.Inputs[name] = ctyjson.SimpleJSONValue{Value: v}
			}
		}
		doc.Operators = append(doc.Operators, state)

		doc.Connections = append(doc.Connections, snapshotConnections(op)...)
	}
	return doc, nil
}

// snapshotConnections collects the persistent value connections ending at
// an operator's inputs, including compound children. Reference edges are
// derived state and stay out of the document.
func snapshotConnections(op *operator.Operator) []ConnectionState {
	var out []ConnectionState
	for _, name := range op.InputNames() {
		f := op.Input(name)
		out = append(out, fieldConnections(f, fieldRef(op.Path().String(), name), connOrder(op, name, f))...)

		if cf := op.CompoundInput(name); cf != nil {
			for _, child := range cf.ChildOrder() {
				childField := cf.Child(child)
				to := fieldRef(op.Path().String(), name+"."+child)
				out = append(out, fieldConnections(childField, to, sortedConnIDs(childField))...)
			}
		}
	}
	return out
}

func connOrder(op *operator.Operator, name string, f *field.Field) []string {
	if lf := op.ListInput(name); lf != nil {
		return lf.ConnectionOrder()
	}
	return sortedConnIDs(f)
}

func sortedConnIDs(f *field.Field) []string {
	var ids []string
	for id := range f.Connections() {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func fieldConnections(f *field.Field, to string, order []string) []ConnectionState {
	conns := f.Connections()
	var out []ConnectionState
	for _, id := range order {
		conn, ok := conns[id]
		if !ok || conn.Kind != field.ValueConn || strings.HasPrefix(id, "xref:") {
			continue
		}
		up := conn.Upstream
		if up.Owner() == nil {
			continue
		}
		out = append(out, ConnectionState{
			ID:   id,
			From: fieldRef(up.Owner().Path().String(), up.Name()),
			To:   to,
		})
	}
	return out
}

// WriteTo is a convenience wrapper: snapshot then encode.
func WriteTo(d *directory.Directory, w io.Writer) error {
	doc, err := Snapshot(d)
	if err != nil {
		return fmt.Errorf("snapshotting project: %w", err)
	}
	return doc.Encode(w)
}
