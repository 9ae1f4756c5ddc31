// internal/project/load.go
package project

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/vk/geogridgo/internal/ctxlog"
	"github.com/vk/geogridgo/internal/directory"
	"github.com/vk/geogridgo/internal/field"
	"github.com/vk/geogridgo/internal/operator"
	"github.com/vk/geogridgo/internal/oppath"
	"github.com/vk/geogridgo/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// Load replaces the directory's contents with the document's graph.
//
// The sequence is: clear the directory, instantiate every operator with its
// serialized inputs, re-establish the persisted value connections, then
// sync reference edges and evaluate. Connections that no longer validate
// and references that no longer resolve are logged and skipped; a load
// never half-fails over them.
func Load(ctx context.Context, reg *registry.Registry, dir *directory.Directory, doc *Document) error {
	logger := ctxlog.FromContext(ctx)
	dir.Clear(ctx)

	for _, st := range doc.Operators {
		ro, ok := reg.Lookup(st.Type)
		if !ok {
			return fmt.Errorf("operator %s: unknown type %q", st.Path, st.Type)
		}
		p, err := oppath.Parse(st.Path)
		if err != nil {
			return fmt.Errorf("operator %s: %w", st.Path, err)
		}

		serialized := make(map[string]cty.Value, len(st.Inputs))
		for name, v := range st.Inputs {
			serialized[name] = v.Value
		}

		op, err := operator.New(ctx, p, ro, serialized)
		if err != nil {
			return err
		}
		op.SetLocked(st.Locked)
		if err := dir.Place(ctx, op); err != nil {
			return err
		}
	}

	for _, cs := range doc.Connections {
		if err := connect(ctx, dir, cs); err != nil {
			logger.Warn("Skipping persisted connection.", "id", cs.ID, "from", cs.From, "to", cs.To, "error", err)
		}
	}

	for _, key := range dir.Paths() {
		op, ok := dir.Find(oppath.MustParse(key))
		if !ok {
			continue
		}
		if err := op.SyncReferences(ctx); err != nil {
			logger.Warn("Reference sync incomplete.", "operator", key, "error", err)
		}
	}

	for _, key := range dir.Paths() {
		op, ok := dir.Find(oppath.MustParse(key))
		if !ok {
			continue
		}
		if err := op.Execute(ctx); err != nil {
			logger.Warn("Operator evaluation failed on load.", "operator", key, "error", err)
		}
	}

	logger.Info("Project loaded.", "operators", dir.Len(), "connections", len(doc.Connections))
	return nil
}

func connect(ctx context.Context, dir *directory.Directory, cs ConnectionState) error {
	from, err := ResolveOutput(dir, cs.From)
	if err != nil {
		return err
	}
	to, err := ResolveInput(dir, cs.To)
	if err != nil {
		return err
	}
	if !field.CanConnect(from, to) {
		return fmt.Errorf("value of %s does not fit %s", cs.From, cs.To)
	}
	id := cs.ID
	if id == "" {
		id = uuid.NewString()
	}
	return to.AddConnection(ctx, id, from, field.ValueConn)
}

// ResolveOutput resolves a `/path.field` reference to a live output field.
func ResolveOutput(dir *directory.Directory, raw string) (*field.Field, error) {
	op, fieldPath, err := resolveOperator(dir, raw)
	if err != nil {
		return nil, err
	}
	f := op.Output(fieldPath[0])
	if f == nil {
		return nil, fmt.Errorf("%s: no output %q", op.Path().String(), fieldPath[0])
	}
	if len(fieldPath) > 1 {
		return nil, fmt.Errorf("%s: output references cannot address into %q", op.Path().String(), strings.Join(fieldPath, "."))
	}
	return f, nil
}

// ResolveInput resolves a `/path.field` or `/path.field.child` reference to
// a live input field or compound child.
func ResolveInput(dir *directory.Directory, raw string) (*field.Field, error) {
	op, fieldPath, err := resolveOperator(dir, raw)
	if err != nil {
		return nil, err
	}
	f := op.Input(fieldPath[0])
	if f == nil {
		return nil, fmt.Errorf("%s: no input %q", op.Path().String(), fieldPath[0])
	}
	if len(fieldPath) == 1 {
		return f, nil
	}
	cf := op.CompoundInput(fieldPath[0])
	if cf == nil || len(fieldPath) > 2 {
		return nil, fmt.Errorf("%s: input %q has no child %q", op.Path().String(), fieldPath[0], strings.Join(fieldPath[1:], "."))
	}
	child := cf.Child(fieldPath[1])
	if child == nil {
		return nil, fmt.Errorf("%s: input %q has no child %q", op.Path().String(), fieldPath[0], fieldPath[1])
	}
	return child, nil
}

func resolveOperator(dir *directory.Directory, raw string) (*operator.Operator, []string, error) {
	opPath, fieldPath, err := splitFieldRef(raw)
	if err != nil {
		return nil, nil, err
	}
	p, err := oppath.Parse(opPath)
	if err != nil {
		return nil, nil, err
	}
	op, ok := dir.Find(p)
	if !ok {
		return nil, nil, fmt.Errorf("no live operator at %s", p.String())
	}
	return op, fieldPath, nil
}
