// internal/directory/directory.go
package directory

import (
	"context"
	"fmt"

	"github.com/vk/geogridgo/internal/ctxlog"
	"github.com/vk/geogridgo/internal/operator"
	"github.com/vk/geogridgo/internal/oppath"
	"github.com/vk/geogridgo/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// Directory maps qualified paths to live operators for one graph session.
type Directory struct {
	ops map[string]*operator.Operator
}

// New creates an empty directory.
func New() *Directory {
	return &Directory{ops: make(map[string]*operator.Operator)}
}

// Find returns the live operator at the given path. It implements
// operator.Lookup.
func (d *Directory) Find(p oppath.Path) (*operator.Operator, bool) {
	op, ok := d.ops[p.String()]
	return op, ok
}

// Occupied reports whether a path holds a live operator.
func (d *Directory) Occupied(p oppath.Path) bool {
	_, ok := d.ops[p.String()]
	return ok
}

// Len returns the number of live operators.
func (d *Directory) Len() int {
	return len(d.ops)
}

// UniquePath returns the lowest-available unique path for baseName inside
// container, reusing freed suffix slots.
func (d *Directory) UniquePath(baseName string, container oppath.Path) oppath.Path {
	return oppath.UniqueID(baseName, container, d.Occupied)
}

// Place registers a live operator under its path and wires it to this
// directory for reference resolution. Placing onto an occupied path is an
// error; callers avoid it by allocating paths through UniquePath.
func (d *Directory) Place(ctx context.Context, op *operator.Operator) error {
	key := op.Path().String()
	if _, exists := d.ops[key]; exists {
		return fmt.Errorf("path %s is already occupied", key)
	}
	op.SetLookup(d)
	d.ops[key] = op
	ctxlog.FromContext(ctx).Debug("Operator placed.", "path", key, "type", op.Type())
	return nil
}

// Instantiate creates an operator of a registered type inside container,
// resolving name collisions through UniquePath, and places it.
func (d *Directory) Instantiate(ctx context.Context, reg *registry.RegisteredOperator, baseName string, container oppath.Path, serialized map[string]cty.Value) (*operator.Operator, error) {
	path := d.UniquePath(baseName, container)
	op, err := operator.New(ctx, path, reg, serialized)
	if err != nil {
		return nil, err
	}
	if err := d.Place(ctx, op); err != nil {
		return nil, err
	}
	return op, nil
}

// Remove deletes the operator at the given path, tearing down all of its
// connections first. Removing an unknown path is a no-op.
func (d *Directory) Remove(ctx context.Context, p oppath.Path) {
	key := p.String()
	op, ok := d.ops[key]
	if !ok {
		return
	}
	op.Teardown(ctx)
	delete(d.ops, key)
	ctxlog.FromContext(ctx).Debug("Operator removed.", "path", key)
}

// Clear removes every operator, tearing down all connections. Must be
// called between independent graph loads so no state leaks across them.
func (d *Directory) Clear(ctx context.Context) {
	for key, op := range d.ops {
		op.Teardown(ctx)
		delete(d.ops, key)
	}
	ctxlog.FromContext(ctx).Debug("Directory cleared.")
}
